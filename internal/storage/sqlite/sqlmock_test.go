package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(db), mock
}

func TestWithTx_RollsBackWhenFnFails(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM bills WHERE subscriber_id = \\? AND month = \\?").
		WithArgs(int64(1), "5").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := store.WithTx(ctx, func(q storage.Queries) error {
		_, err := q.FindBill(ctx, 1, "5")
		return err
	})
	assert.ErrorContains(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_ReportsCommitFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

	err := store.WithTx(context.Background(), func(q storage.Queries) error { return nil })
	assert.ErrorContains(t, err, "failed to commit transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBill_WritesVersionGuard(t *testing.T) {
	store, mock := newMockStore(t)

	bill := &models.Bill{ID: 3, BillTotal: 2000, RemainingAmount: 1500, Version: 4}

	mock.ExpectExec("UPDATE bills SET remaining_amount = \\?, payment_status = \\?, version = version \\+ 1").
		WithArgs(int64(1500), "unpaid", sqlmock.AnyArg(), int64(3), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveBill(context.Background(), bill))
	assert.Equal(t, int64(5), bill.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSubscriber_WrapsDriverErrors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO subscribers").
		WillReturnError(errors.New("disk full"))

	err := store.CreateSubscriber(context.Background(), models.NewSubscriber("1", "elif", "hash", models.UserTypeNormal))
	assert.ErrorContains(t, err, "failed to create subscriber")

	var conflict *storage.ConflictError
	assert.False(t, errors.As(err, &conflict))
}
