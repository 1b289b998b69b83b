package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrNetwork marks failures where no response was received.
	ErrNetwork = errors.New("network error")
	// ErrUnauthorized matches APIErrors with status 401 or 403. It only
	// classifies; nothing refreshes or retries.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a response received with a non-2xx status.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

// maxErrorBody is how many runes of the response body Error includes.
const maxErrorBody = 200

func (e *APIError) Error() string {
	body := strings.TrimSpace(string(e.Body))
	if r := []rune(body); len(r) > maxErrorBody {
		body = string(r[:maxErrorBody]) + "…"
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, body)
}

// Is lets errors.Is(err, ErrUnauthorized) match auth failures.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// FieldMessage extracts the first message of the first field of a structured
// error body, in document order. Bodies look like
// {"sku": ["product with this sku already exists."], "name": [...]} or
// {"detail": "No active account found"}. Nested item errors
// ({"items": [{"quantity": ["..."]}]}) are followed down to the first string.
// ok is false when the body is not such an object.
func (e *APIError) FieldMessage() (field, msg string, ok bool) {
	if !gjson.ValidBytes(e.Body) {
		return "", "", false
	}
	root := gjson.ParseBytes(e.Body)
	if !root.IsObject() {
		return "", "", false
	}
	root.ForEach(func(k, v gjson.Result) bool {
		if m, found := firstString(v); found {
			field, msg, ok = k.String(), m, true
			return false
		}
		return true
	})
	return field, msg, ok
}

func firstString(v gjson.Result) (string, bool) {
	switch {
	case v.Type == gjson.String:
		return v.String(), v.String() != ""
	case v.IsArray(), v.IsObject():
		var out string
		var found bool
		v.ForEach(func(_, el gjson.Result) bool {
			out, found = firstString(el)
			return !found
		})
		return out, found
	}
	return "", false
}

// fieldsWithoutLabel are DRF keys whose message reads fine on its own.
var fieldsWithoutLabel = map[string]bool{
	"detail":           true,
	"non_field_errors": true,
	"message":          true,
	"error":            true,
}

// UserMessage turns err into one notification line. Messages carried by
// errors implementing UserMessager are used as is; an APIError with a
// structured body yields its first field's first message; anything else
// yields fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var um UserMessager
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if field, msg, ok := apiErr.FieldMessage(); ok {
			if fieldsWithoutLabel[field] {
				return msg
			}
			return field + ": " + msg
		}
	}
	return fallback
}

// UserMessager is implemented by errors that are already fit to show.
type UserMessager interface {
	UserMessage() string
}
