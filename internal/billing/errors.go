package billing

import "fmt"

// InvalidAmountError reports a payment the bill cannot accept.
// The bill is never modified when this error is returned.
type InvalidAmountError struct {
	Paid      int64
	Total     int64
	Remaining int64
	Reason    string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid payment amount %d (total %d, remaining %d): %s",
		e.Paid, e.Total, e.Remaining, e.Reason)
}

const (
	reasonNotPositive  = "amount must be positive"
	reasonAlreadyPaid  = "bill is already paid"
	reasonExceedsTotal = "paid amount exceeds total bill amount"
	reasonNotMatching  = "paid amount exceeds remaining amount"
)
