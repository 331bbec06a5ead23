package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

const billColumns = `id, subscriber_id, month, bill_total, remaining_amount, payment_status, version, created_at, updated_at`

// scanBill reads the status as text so the enum never depends on how pgx
// treats named integer types.
func scanBill(row pgx.Row) (*models.Bill, error) {
	bill := &models.Bill{}
	var status string
	err := row.Scan(
		&bill.ID,
		&bill.SubscriberID,
		&bill.Month,
		&bill.BillTotal,
		&bill.RemainingAmount,
		&status,
		&bill.Version,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if bill.PaymentStatus, err = models.ParsePaymentStatus(status); err != nil {
		return nil, err
	}
	return bill, nil
}

// CreateBill persists a new unpaid bill for the subscriber.
func (q *queries) CreateBill(ctx context.Context, subscriberID int64, month string, total int64) (*models.Bill, error) {
	if err := storage.ValidateNewBill(month, total); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	bill := &models.Bill{
		SubscriberID:    subscriberID,
		Month:           month,
		BillTotal:       total,
		RemainingAmount: total,
		PaymentStatus:   models.PaymentStatusUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := q.db.QueryRow(ctx,
		`INSERT INTO bills (subscriber_id, month, bill_total, remaining_amount, payment_status, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $7) RETURNING id`,
		bill.SubscriberID, bill.Month, bill.BillTotal, bill.RemainingAmount, bill.PaymentStatus.String(),
		bill.CreatedAt, bill.UpdatedAt,
	).Scan(&bill.ID)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgerrcode.ForeignKeyViolation {
			return nil, &storage.ReferenceError{Entity: "subscriber", ID: subscriberID}
		}
		return nil, fmt.Errorf("failed to insert bill: %w", err)
	}
	return bill, nil
}

// FindBill retrieves the oldest bill for the subscriber and month, locking
// it when called inside a transaction.
func (q *queries) FindBill(ctx context.Context, subscriberID int64, month string) (*models.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE subscriber_id = $1 AND month = $2 ORDER BY id LIMIT 1`
	if q.inTx {
		query += ` FOR UPDATE`
	}

	bill, err := scanBill(q.db.QueryRow(ctx, query, subscriberID, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// FindUnpaidBills retrieves all unpaid bills for a subscriber.
func (q *queries) FindUnpaidBills(ctx context.Context, subscriberID int64) ([]*models.Bill, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE subscriber_id = $1 AND payment_status = $2 ORDER BY id`,
		subscriberID, models.PaymentStatusUnpaid.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid bills: %w", err)
	}
	return collectBills(rows)
}

// ListBills retrieves one page of a subscriber's bills for a month.
func (q *queries) ListBills(ctx context.Context, subscriberID int64, month string, page, perPage int) (*storage.BillPage, error) {
	page, perPage = storage.NormalizePage(page, perPage)

	var total int
	if err := q.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM bills WHERE subscriber_id = $1 AND month = $2",
		subscriberID, month,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count bills: %w", err)
	}

	rows, err := q.db.Query(ctx,
		`SELECT `+billColumns+` FROM bills WHERE subscriber_id = $1 AND month = $2 ORDER BY id LIMIT $3 OFFSET $4`,
		subscriberID, month, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	bills, err := collectBills(rows)
	if err != nil {
		return nil, err
	}
	return storage.NewBillPage(bills, page, perPage, total), nil
}

// SaveBill writes the payment fields of a bill if its version is unchanged.
func (q *queries) SaveBill(ctx context.Context, bill *models.Bill) error {
	if err := storage.ValidateBillState(bill); err != nil {
		return err
	}

	now := time.Now().Unix()
	tag, err := q.db.Exec(ctx,
		`UPDATE bills SET remaining_amount = $1, payment_status = $2, version = version + 1, updated_at = $3
		 WHERE id = $4 AND version = $5`,
		bill.RemainingAmount, bill.PaymentStatus.String(), now, bill.ID, bill.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists int
		err := q.db.QueryRow(ctx, "SELECT 1 FROM bills WHERE id = $1", bill.ID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return &storage.NotFoundError{Entity: "bill", Key: fmt.Sprint(bill.ID)}
		}
		if err != nil {
			return fmt.Errorf("failed to check bill existence: %w", err)
		}
		return storage.NewStaleBillError(bill.ID, bill.Version)
	}

	bill.Version++
	bill.UpdatedAt = now
	return nil
}

func collectBills(rows pgx.Rows) ([]*models.Bill, error) {
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}
