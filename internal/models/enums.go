package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UserType distinguishes regular subscribers from administrators.
type UserType uint8

const (
	UserTypeNormal UserType = iota
	UserTypeAdmin
)

var userTypeNames = [...]string{
	UserTypeNormal: "normal",
	UserTypeAdmin:  "admin",
}

func (t UserType) String() string {
	if int(t) < len(userTypeNames) {
		return userTypeNames[t]
	}
	return fmt.Sprintf("UserType(%d)", uint8(t))
}

// ParseUserType converts the persisted text form into a UserType.
func ParseUserType(s string) (UserType, error) {
	for i, name := range userTypeNames {
		if name == s {
			return UserType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown user type %q", s)
}

// MarshalJSON encodes the user type as its text form.
func (t UserType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Scan implements sql.Scanner.
func (t *UserType) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return fmt.Errorf("scan user type: %w", err)
	}
	parsed, err := ParseUserType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t UserType) Value() (driver.Value, error) {
	if int(t) >= len(userTypeNames) {
		return nil, fmt.Errorf("invalid user type %d", uint8(t))
	}
	return t.String(), nil
}

// PaymentStatus is the settlement state of a bill.
// A bill is PaymentStatusPaid exactly when its remaining amount is zero.
type PaymentStatus uint8

const (
	PaymentStatusUnpaid PaymentStatus = iota
	PaymentStatusPaid
)

var paymentStatusNames = [...]string{
	PaymentStatusUnpaid: "unpaid",
	PaymentStatusPaid:   "paid",
}

func (s PaymentStatus) String() string {
	if int(s) < len(paymentStatusNames) {
		return paymentStatusNames[s]
	}
	return fmt.Sprintf("PaymentStatus(%d)", uint8(s))
}

// ParsePaymentStatus converts the persisted text form into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for i, name := range paymentStatusNames {
		if name == s {
			return PaymentStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment status %q", s)
}

// MarshalJSON encodes the status as its text form.
func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Scan implements sql.Scanner.
func (s *PaymentStatus) Scan(src any) error {
	text, err := scanText(src)
	if err != nil {
		return fmt.Errorf("scan payment status: %w", err)
	}
	parsed, err := ParsePaymentStatus(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s PaymentStatus) Value() (driver.Value, error) {
	if int(s) >= len(paymentStatusNames) {
		return nil, fmt.Errorf("invalid payment status %d", uint8(s))
	}
	return s.String(), nil
}

func scanText(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported source type %T", src)
	}
}
