package billing

import "github.com/mmynk/billpay/internal/models"

// Outcome is the state a bill moves to after an accepted payment.
type Outcome struct {
	RemainingAmount int64
	Status          models.PaymentStatus
}

// Classify decides how a payment of paid changes bill. It does not modify
// the bill.
func Classify(bill *models.Bill, paid int64) (Outcome, error) {
	invalid := func(reason string) (Outcome, error) {
		return Outcome{}, &InvalidAmountError{
			Paid:      paid,
			Total:     bill.BillTotal,
			Remaining: bill.RemainingAmount,
			Reason:    reason,
		}
	}

	switch {
	case paid <= 0:
		return invalid(reasonNotPositive)
	case bill.IsPaid():
		return invalid(reasonAlreadyPaid)
	case paid == bill.BillTotal:
		return Outcome{RemainingAmount: 0, Status: models.PaymentStatusPaid}, nil
	case paid < bill.RemainingAmount:
		return Outcome{RemainingAmount: bill.RemainingAmount - paid, Status: models.PaymentStatusUnpaid}, nil
	case paid == bill.RemainingAmount:
		return Outcome{RemainingAmount: 0, Status: models.PaymentStatusPaid}, nil
	case paid > bill.BillTotal:
		return invalid(reasonExceedsTotal)
	default:
		return invalid(reasonNotMatching)
	}
}
