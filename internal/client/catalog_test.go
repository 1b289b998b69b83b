package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepPaymentMethod(t *testing.T) {
	tests := []struct {
		name string
		from PaymentMethod
		step int
		want PaymentMethod
	}{
		{"forward", PaymentCash, 1, PaymentUPI},
		{"forward wraps", PaymentOther, 1, PaymentCash},
		{"backward wraps", PaymentCash, -1, PaymentOther},
		{"two back", PaymentCard, -2, PaymentCash},
		{"unknown starts at first", PaymentMethod("CHEQUE"), 1, PaymentCash},
		{"empty starts at first", "", -1, PaymentCash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StepPaymentMethod(tt.from, tt.step))
		})
	}
}

func TestPaymentLabel(t *testing.T) {
	assert.Equal(t, "UPI", PaymentLabel(PaymentUPI))
	assert.Equal(t, "CHEQUE", PaymentLabel("CHEQUE"))
}
