// Package forms holds the draft (unsubmitted, string-typed) create forms of
// each page, their local validation and their coercion into API payloads.
package forms

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// money: a non-negative decimal with at most two fractional digits.
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		f, ok := parseMoney(fl.Field().String())
		return ok && f >= 0
	})
	// positive: a decimal strictly greater than zero.
	_ = v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && f > 0
	})
	// count: a non-negative integer.
	_ = v.RegisterValidation("count", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 0
	})
	return v
}

// ValidationError is a local precondition failure. Nothing was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UserMessage makes the message show verbatim in notifications.
func (e *ValidationError) UserMessage() string { return e.Message }

// messages maps "Field.tag" (or just "Field") to the text shown to the user.
type messages map[string]string

// check validates s and converts the first failure into a ValidationError
// using msgs. Struct fields are checked in declaration order.
func check(s interface{}, msgs messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.StructField()
	if m, ok := msgs[field+"."+fe.Tag()]; ok {
		return &ValidationError{Field: field, Message: m}
	}
	if m, ok := msgs[field]; ok {
		return &ValidationError{Field: field, Message: m}
	}
	return &ValidationError{Field: field, Message: strings.ToLower(field) + " is invalid"}
}

func parseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return 0, false
	}
	return f, true
}

func atoiOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
