package storage

import "github.com/mmynk/billpay/internal/models"

// ValidateNewBill checks the inputs of CreateBill.
// A zero total is rejected: an unpaid bill with nothing remaining would
// break the status invariant from the moment it is created.
func ValidateNewBill(month string, total int64) error {
	if month == "" {
		return &ValidationError{Field: "month", Reason: "must not be empty"}
	}
	if total <= 0 {
		return &ValidationError{Field: "bill_total", Reason: "must be positive"}
	}
	return nil
}

// ValidateBillState checks the balance invariants before a save.
func ValidateBillState(b *models.Bill) error {
	if b.RemainingAmount < 0 || b.RemainingAmount > b.BillTotal {
		return &ValidationError{Field: "remaining_amount", Reason: "must be between 0 and bill_total"}
	}
	if (b.RemainingAmount == 0) != (b.PaymentStatus == models.PaymentStatusPaid) {
		return &ValidationError{Field: "payment_status", Reason: "must be paid exactly when nothing remains"}
	}
	return nil
}
