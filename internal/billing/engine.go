package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/billpay/internal/metrics"
	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

// Engine applies payments and creates bills on top of a storage.Store.
type Engine struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine creates a new Engine. m may be nil.
func NewEngine(store storage.Store, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// subscriber resolves a subscriber number. Subscribers are immutable, so the
// lookup may run outside the payment transaction (and hit a cache).
func (e *Engine) subscriber(ctx context.Context, number string) (*models.Subscriber, error) {
	sub, err := e.store.FindSubscriberByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &storage.NotFoundError{Entity: "subscriber", Key: number}
	}
	return sub, nil
}

// ApplyPayment pays paid towards the subscriber's bill for month and
// returns the bill's new status.
func (e *Engine) ApplyPayment(ctx context.Context, subscriberNumber, month string, paid int64) (models.PaymentStatus, error) {
	var outcome Outcome

	err := func() error {
		sub, err := e.subscriber(ctx, subscriberNumber)
		if err != nil {
			return err
		}

		return e.store.WithTx(ctx, func(q storage.Queries) error {
			bill, err := q.FindBill(ctx, sub.ID, month)
			if err != nil {
				return err
			}
			if bill == nil {
				return &storage.NotFoundError{Entity: "bill", Key: subscriberNumber + "/" + month}
			}

			outcome, err = Classify(bill, paid)
			if err != nil {
				return err
			}

			bill.RemainingAmount = outcome.RemainingAmount
			bill.PaymentStatus = outcome.Status
			if err := q.SaveBill(ctx, bill); err != nil {
				return fmt.Errorf("failed to save bill: %w", err)
			}
			return nil
		})
	}()

	e.metrics.RecordPayment(paymentOutcome(outcome, err))
	if err != nil {
		e.logger.Warn("Payment rejected",
			"subscriber_number", subscriberNumber,
			"month", month,
			"paid_amount", paid,
			"error", err,
		)
		return 0, err
	}

	e.logger.Info("Payment applied",
		"subscriber_number", subscriberNumber,
		"month", month,
		"paid_amount", paid,
		"remaining_amount", outcome.RemainingAmount,
		"status", outcome.Status,
	)
	return outcome.Status, nil
}

func paymentOutcome(outcome Outcome, err error) string {
	var invalid *InvalidAmountError
	var notFound *storage.NotFoundError
	var conflict *storage.ConflictError
	switch {
	case err == nil:
		return outcome.Status.String()
	case errors.As(err, &invalid):
		return "invalid_amount"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &conflict):
		return "conflict"
	default:
		return "error"
	}
}

// AddBill creates an unpaid bill for the subscriber.
func (e *Engine) AddBill(ctx context.Context, subscriberNumber, month string, total int64) (*models.Bill, error) {
	sub, err := e.subscriber(ctx, subscriberNumber)
	if err != nil {
		return nil, err
	}

	var bill *models.Bill
	err = e.store.WithTx(ctx, func(q storage.Queries) error {
		var createErr error
		bill, createErr = q.CreateBill(ctx, sub.ID, month, total)
		return createErr
	})
	if err != nil {
		e.logger.Warn("AddBill failed", "subscriber_number", subscriberNumber, "month", month, "error", err)
		return nil, err
	}

	e.metrics.RecordBillCreated()
	e.logger.Info("Bill added",
		"bill_id", bill.ID,
		"subscriber_number", subscriberNumber,
		"month", month,
		"bill_total", total,
	)
	return bill, nil
}

// UnpaidBills returns the subscriber's unpaid bills. A subscriber with
// none gets a NotFoundError, which is what the banking channel expects.
func (e *Engine) UnpaidBills(ctx context.Context, subscriberNumber string) ([]*models.Bill, error) {
	sub, err := e.subscriber(ctx, subscriberNumber)
	if err != nil {
		return nil, err
	}

	bills, err := e.store.FindUnpaidBills(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, &storage.NotFoundError{Entity: "unpaid bills", Key: subscriberNumber}
	}
	return bills, nil
}

// QueryBill returns the subscriber's bill for month.
func (e *Engine) QueryBill(ctx context.Context, subscriberNumber, month string) (*models.Bill, error) {
	sub, err := e.subscriber(ctx, subscriberNumber)
	if err != nil {
		return nil, err
	}

	bill, err := e.store.FindBill(ctx, sub.ID, month)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, &storage.NotFoundError{Entity: "bill", Key: subscriberNumber + "/" + month}
	}
	return bill, nil
}

// QueryBillPage returns one page of the subscriber's bills for month.
// An empty page is reported as a NotFoundError.
func (e *Engine) QueryBillPage(ctx context.Context, subscriberNumber, month string, page, perPage int) (*storage.BillPage, error) {
	sub, err := e.subscriber(ctx, subscriberNumber)
	if err != nil {
		return nil, err
	}

	result, err := e.store.ListBills(ctx, sub.ID, month, page, perPage)
	if err != nil {
		return nil, err
	}
	if len(result.Bills) == 0 {
		return nil, &storage.NotFoundError{Entity: "bill", Key: subscriberNumber + "/" + month}
	}
	return result, nil
}
