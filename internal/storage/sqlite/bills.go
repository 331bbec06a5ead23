package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

const billColumns = `id, subscriber_id, month, bill_total, remaining_amount, payment_status, version, created_at, updated_at`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*models.Bill, error) {
	bill := &models.Bill{}
	err := row.Scan(
		&bill.ID,
		&bill.SubscriberID,
		&bill.Month,
		&bill.BillTotal,
		&bill.RemainingAmount,
		&bill.PaymentStatus,
		&bill.Version,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// CreateBill persists a new unpaid bill for the subscriber.
func (q *queries) CreateBill(ctx context.Context, subscriberID int64, month string, total int64) (*models.Bill, error) {
	if err := storage.ValidateNewBill(month, total); err != nil {
		return nil, err
	}

	exists, err := q.subscriberExists(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &storage.ReferenceError{Entity: "subscriber", ID: subscriberID}
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

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO bills (subscriber_id, month, bill_total, remaining_amount, payment_status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		bill.SubscriberID, bill.Month, bill.BillTotal, bill.RemainingAmount, bill.PaymentStatus,
		bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, &storage.ReferenceError{Entity: "subscriber", ID: subscriberID}
		}
		return nil, fmt.Errorf("failed to insert bill: %w", err)
	}

	bill.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read bill id: %w", err)
	}
	return bill, nil
}

// FindBill retrieves the oldest bill for the subscriber and month.
// Transactions already hold the only connection, so no explicit lock is taken.
func (q *queries) FindBill(ctx context.Context, subscriberID int64, month string) (*models.Bill, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE subscriber_id = ? AND month = ? ORDER BY id LIMIT 1`,
		subscriberID, month,
	)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// FindUnpaidBills retrieves all unpaid bills for a subscriber.
func (q *queries) FindUnpaidBills(ctx context.Context, subscriberID int64) ([]*models.Bill, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE subscriber_id = ? AND payment_status = ? ORDER BY id`,
		subscriberID, models.PaymentStatusUnpaid,
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
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bills WHERE subscriber_id = ? AND month = ?",
		subscriberID, month,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count bills: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE subscriber_id = ? AND month = ? ORDER BY id LIMIT ? OFFSET ?`,
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
	res, err := q.db.ExecContext(ctx,
		`UPDATE bills SET remaining_amount = ?, payment_status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		bill.RemainingAmount, bill.PaymentStatus, now, bill.ID, bill.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		var exists int
		err := q.db.QueryRowContext(ctx, "SELECT 1 FROM bills WHERE id = ?", bill.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
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

func collectBills(rows *sql.Rows) ([]*models.Bill, error) {
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
