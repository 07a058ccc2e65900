package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is how a friend settles their share.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentInstaPay PaymentMethod = "InstaPay"
)

// ParsePaymentMethod accepts "cash" or "instapay" in any case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentCash, nil
	case "instapay":
		return PaymentInstaPay, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// PaymentMethodFromBool maps the legacy join flag: true is InstaPay, false is Cash.
func PaymentMethodFromBool(instaPay bool) PaymentMethod {
	if instaPay {
		return PaymentInstaPay
	}
	return PaymentCash
}

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentInstaPay
}

func (m PaymentMethod) String() string {
	return string(m)
}

// UnmarshalJSON accepts either the method name or the legacy boolean flag.
func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*m = PaymentMethodFromBool(flag)
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("paymentMethod must be a boolean or a string")
	}
	parsed, err := ParsePaymentMethod(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
