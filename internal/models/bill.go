package models

// Bill represents one billing period's obligation for a subscriber.
//
// Invariants:
//   - 0 <= RemainingAmount <= BillTotal
//   - PaymentStatus == PaymentStatusPaid iff RemainingAmount == 0
type Bill struct {
	// ID is the system-assigned identifier.
	ID int64

	// SubscriberID references the owning Subscriber.
	SubscriberID int64

	// Month is the billing period label (e.g. "5" or "2024-05").
	Month string

	// BillTotal is fixed at creation.
	BillTotal int64

	// RemainingAmount is what is still owed. Only the payment engine
	// changes it.
	RemainingAmount int64

	PaymentStatus PaymentStatus

	// Version is incremented by the store on every save and guards
	// against lost updates.
	Version int64

	CreatedAt int64
	UpdatedAt int64
}

// IsPaid reports whether the bill has been settled.
func (b *Bill) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}
