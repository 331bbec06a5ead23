package billing

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billpay/internal/metrics"
	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
	"github.com/mmynk/billpay/internal/storage/sqlite"
)

type fixture struct {
	engine  *Engine
	store   *sqlite.SQLiteStore
	metrics *metrics.Metrics
	sub     *models.Subscriber
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "billing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sub := models.NewSubscriber("1", "elif", "hash", models.UserTypeNormal)
	require.NoError(t, store.CreateSubscriber(context.Background(), sub))

	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		engine:  NewEngine(store, logger, m),
		store:   store,
		metrics: m,
		sub:     sub,
	}
}

func (f *fixture) bill(t *testing.T, month string) *models.Bill {
	t.Helper()
	bill, err := f.store.FindBill(context.Background(), f.sub.ID, month)
	require.NoError(t, err)
	require.NotNil(t, bill)
	return bill
}

func TestApplyPayment_FullPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddBill(ctx, "1", "1", 1500)
	require.NoError(t, err)

	status, err := f.engine.ApplyPayment(ctx, "1", "1", 1500)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	bill := f.bill(t, "1")
	assert.Equal(t, int64(0), bill.RemainingAmount)
	assert.True(t, bill.IsPaid())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsTotal.WithLabelValues("paid")))
}

func TestApplyPayment_PartialPaymentsAccumulate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddBill(ctx, "1", "5", 2000)
	require.NoError(t, err)

	status, err := f.engine.ApplyPayment(ctx, "1", "5", 500)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, status)
	assert.Equal(t, int64(1500), f.bill(t, "5").RemainingAmount)

	status, err = f.engine.ApplyPayment(ctx, "1", "5", 500)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, status)
	assert.Equal(t, int64(1000), f.bill(t, "5").RemainingAmount)

	status, err = f.engine.ApplyPayment(ctx, "1", "5", 1000)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)
	assert.Equal(t, int64(0), f.bill(t, "5").RemainingAmount)
}

func TestApplyPayment_TotalSettlesAfterPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddBill(ctx, "1", "5", 2000)
	require.NoError(t, err)
	_, err = f.engine.ApplyPayment(ctx, "1", "5", 500)
	require.NoError(t, err)

	status, err := f.engine.ApplyPayment(ctx, "1", "5", 2000)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)
	assert.Equal(t, int64(0), f.bill(t, "5").RemainingAmount)
}

func TestApplyPayment_UnknownSubscriber(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ApplyPayment(context.Background(), "404", "1", 100)

	var notFound *storage.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "subscriber", notFound.Entity)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsTotal.WithLabelValues("not_found")))
}

func TestApplyPayment_UnknownBill(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ApplyPayment(context.Background(), "1", "12", 100)

	var notFound *storage.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "bill", notFound.Entity)
}

func TestApplyPayment_ExceedsTotalLeavesBillUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddBill(ctx, "1", "5", 2000)
	require.NoError(t, err)
	before := f.bill(t, "5")

	_, err = f.engine.ApplyPayment(ctx, "1", "5", 2500)

	var invalid *InvalidAmountError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, before, f.bill(t, "5"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PaymentsTotal.WithLabelValues("invalid_amount")))
}

func TestApplyPayment_PaidBillRejectsFurtherPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddBill(ctx, "1", "5", 2000)
	require.NoError(t, err)
	_, err = f.engine.ApplyPayment(ctx, "1", "5", 2000)
	require.NoError(t, err)
	settled := f.bill(t, "5")

	for _, amount := range []int64{2000, 1, 0} {
		_, err = f.engine.ApplyPayment(ctx, "1", "5", amount)
		var invalid *InvalidAmountError
		require.ErrorAs(t, err, &invalid, "amount %d", amount)
	}
	assert.Equal(t, settled, f.bill(t, "5"))
}

func TestApplyPayment_ConcurrentPartialPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.AddBill(ctx, "1", "5", 2000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.ApplyPayment(ctx, "1", "5", 100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), f.bill(t, "5").RemainingAmount)
}

func TestAddBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bill, err := f.engine.AddBill(ctx, "1", "3", 900)
	require.NoError(t, err)
	assert.Equal(t, int64(900), bill.RemainingAmount)
	assert.Equal(t, models.PaymentStatusUnpaid, bill.PaymentStatus)
	assert.Equal(t, f.sub.ID, bill.SubscriberID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BillsCreated))

	_, err = f.engine.AddBill(ctx, "404", "3", 900)
	var notFound *storage.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = f.engine.AddBill(ctx, "1", "3", -5)
	var invalid *storage.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.UnpaidBills(ctx, "1")
	var notFound *storage.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "unpaid bills", notFound.Entity)

	_, err = f.engine.AddBill(ctx, "1", "1", 100)
	require.NoError(t, err)
	_, err = f.engine.AddBill(ctx, "1", "2", 200)
	require.NoError(t, err)
	_, err = f.engine.ApplyPayment(ctx, "1", "1", 100)
	require.NoError(t, err)

	unpaid, err := f.engine.UnpaidBills(ctx, "1")
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, "2", unpaid[0].Month)

	bill, err := f.engine.QueryBill(ctx, "1", "1")
	require.NoError(t, err)
	assert.True(t, bill.IsPaid())

	_, err = f.engine.QueryBill(ctx, "1", "9")
	assert.ErrorAs(t, err, &notFound)

	page, err := f.engine.QueryBillPage(ctx, "1", "2", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Page)

	_, err = f.engine.QueryBillPage(ctx, "1", "2", 5, 1)
	assert.ErrorAs(t, err, &notFound)

	_, err = f.engine.QueryBillPage(ctx, "404", "2", 1, 1)
	assert.ErrorAs(t, err, &notFound)
}
