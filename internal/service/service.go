// Package service exposes the billing engine over JSON/HTTP to the banking,
// mobile-provider and website channels.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/billpay/internal/billing"
	"github.com/mmynk/billpay/internal/httputil"
	"github.com/mmynk/billpay/internal/middleware"
	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

// BillEngine is the subset of billing.Engine the handlers use.
type BillEngine interface {
	ApplyPayment(ctx context.Context, subscriberNumber, month string, paid int64) (models.PaymentStatus, error)
	AddBill(ctx context.Context, subscriberNumber, month string, total int64) (*models.Bill, error)
	UnpaidBills(ctx context.Context, subscriberNumber string) ([]*models.Bill, error)
	QueryBill(ctx context.Context, subscriberNumber, month string) (*models.Bill, error)
	QueryBillPage(ctx context.Context, subscriberNumber, month string, page, perPage int) (*storage.BillPage, error)
}

var _ BillEngine = (*billing.Engine)(nil)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeError maps domain errors onto HTTP status codes. It is the only
// place where errors become responses.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		notFound   *storage.NotFoundError
		conflict   *storage.ConflictError
		reference  *storage.ReferenceError
		validation *storage.ValidationError
		invalid    *billing.InvalidAmountError
		fieldErrs  validator.ValidationErrors
	)

	switch {
	case errors.As(err, &notFound):
		httputil.WriteError(w, http.StatusNotFound, notFoundMessage(notFound))
	case errors.As(err, &conflict):
		httputil.WriteError(w, http.StatusConflict, conflict.Error())
	case errors.As(err, &reference):
		httputil.WriteError(w, http.StatusBadRequest, reference.Error())
	case errors.As(err, &validation):
		httputil.WriteError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &invalid):
		httputil.WriteError(w, http.StatusBadRequest, invalid.Reason)
	case errors.As(err, &fieldErrs):
		httputil.WriteError(w, http.StatusBadRequest, describeValidation(fieldErrs))
	default:
		logger.Error("Request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

func notFoundMessage(err *storage.NotFoundError) string {
	switch err.Entity {
	case "subscriber":
		return "User not found or not a subscriber"
	case "unpaid bills":
		return "Unpaid bill details not found for this subscriber"
	case "bill":
		return "Bill details not found for this subscriber and month"
	default:
		return err.Error()
	}
}

func describeValidation(errs validator.ValidationErrors) string {
	fe := errs[0]
	return fmt.Sprintf("invalid %s: failed %q check", fe.Field(), fe.Tag())
}

// bodyError describes a request body that failed to decode. Amounts are
// integer minor units, so a value like 1500.0 is reported against its field.
func bodyError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		switch typeErr.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return fmt.Sprintf("%s must be an integer amount", typeErr.Field)
		default:
			return fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind())
		}
	}
	return "invalid JSON body"
}

// badRequest wraps a parse failure so writeError reports it as 400.
func badRequest(field, reason string) error {
	return &storage.ValidationError{Field: field, Reason: reason}
}

// queryInt reads an integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(key, "must be an integer")
	}
	return v, nil
}

// billView is the JSON form of a bill shared by the query endpoints.
type billView struct {
	Month           string               `json:"month"`
	BillTotal       int64                `json:"bill_total"`
	RemainingAmount int64                `json:"remaining_amount"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
	PaidStatus      bool                 `json:"paid_status"`
}

func newBillView(b *models.Bill) billView {
	return billView{
		Month:           b.Month,
		BillTotal:       b.BillTotal,
		RemainingAmount: b.RemainingAmount,
		PaymentStatus:   b.PaymentStatus,
		PaidStatus:      b.IsPaid(),
	}
}

func newBillViews(bills []*models.Bill) []billView {
	views := make([]billView, len(bills))
	for i, b := range bills {
		views[i] = newBillView(b)
	}
	return views
}
