package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/billpay/internal/models"
)

func TestNewBillPage(t *testing.T) {
	tests := []struct {
		name      string
		perPage   int
		total     int
		wantPages int
	}{
		{"empty", 1, 0, 0},
		{"exact", 2, 4, 2},
		{"remainder", 2, 5, 3},
		{"single per page", 1, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewBillPage(nil, 1, tt.perPage, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
		})
	}
}

func TestNormalizePage(t *testing.T) {
	page, per := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, per)

	page, per = NormalizePage(3, 1000)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPerPage, per)
}

func TestErrorsUnwrapThroughWrapping(t *testing.T) {
	err := fmt.Errorf("apply payment: %w", &NotFoundError{Entity: "bill", Key: "1/5"})

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "bill", nf.Entity)
	assert.Equal(t, "bill not found: 1/5", nf.Error())

	conflict := NewStaleBillError(4, 2)
	assert.Equal(t, "version", conflict.Field)
}

func TestValidateBillState(t *testing.T) {
	tests := []struct {
		name    string
		bill    models.Bill
		wantErr bool
	}{
		{"fresh", models.Bill{BillTotal: 100, RemainingAmount: 100}, false},
		{"settled", models.Bill{BillTotal: 100, PaymentStatus: models.PaymentStatusPaid}, false},
		{"negative remaining", models.Bill{BillTotal: 100, RemainingAmount: -1}, true},
		{"remaining above total", models.Bill{BillTotal: 100, RemainingAmount: 101}, true},
		{"paid with balance", models.Bill{BillTotal: 100, RemainingAmount: 5, PaymentStatus: models.PaymentStatusPaid}, true},
		{"unpaid without balance", models.Bill{BillTotal: 100}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBillState(&tt.bill)
			if tt.wantErr {
				var ve *ValidationError
				assert.ErrorAs(t, err, &ve)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNewBill(t *testing.T) {
	assert.NoError(t, ValidateNewBill("5", 1))
	assert.Error(t, ValidateNewBill("5", 0))
	assert.Error(t, ValidateNewBill("", 10))
	assert.Error(t, ValidateNewBill("5", -1))
}
