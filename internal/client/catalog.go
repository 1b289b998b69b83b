package client

// paymentLabels mirrors the API's payment method choices.
var paymentLabels = map[PaymentMethod]string{
	PaymentCash:  "Cash",
	PaymentUPI:   "UPI",
	PaymentCard:  "Card",
	PaymentOther: "Other",
}

// PaymentLabel returns the display label for m, or m itself when unknown.
func PaymentLabel(m PaymentMethod) string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return string(m)
}

// StepPaymentMethod moves step places through PaymentMethods from m,
// wrapping at both ends. An unknown m starts from the first method.
func StepPaymentMethod(m PaymentMethod, step int) PaymentMethod {
	n := len(PaymentMethods)
	for i, pm := range PaymentMethods {
		if pm == m {
			return PaymentMethods[((i+step)%n+n)%n]
		}
	}
	return PaymentMethods[0]
}
