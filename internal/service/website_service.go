package service

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/billpay/internal/httputil"
	"github.com/mmynk/billpay/internal/middleware"
	"github.com/mmynk/billpay/internal/models"
)

// WebsiteService serves bill payment and the admin bill creation form.
type WebsiteService struct {
	engine BillEngine
	logger *slog.Logger
}

// NewWebsiteService creates a new WebsiteService.
func NewWebsiteService(engine BillEngine, logger *slog.Logger) *WebsiteService {
	return &WebsiteService{engine: engine, logger: logger}
}

// PayBillRequest is the body of a payment.
type PayBillRequest struct {
	SubscriberNumber string `json:"subscriber_number" validate:"required,max=20"`
	Month            string `json:"month" validate:"required,max=20"`
	PaidAmount       int64  `json:"paid_amount"`
}

// PayBillResponse reports the bill's status after a payment.
type PayBillResponse struct {
	Message       string               `json:"message"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

// PayBill handles POST /banking/pay-bill.
func (s *WebsiteService) PayBill(w http.ResponseWriter, r *http.Request) {
	var req PayBillRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, bodyError(err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	status, err := s.engine.ApplyPayment(r.Context(), req.SubscriberNumber, req.Month, req.PaidAmount)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, PayBillResponse{
		Message:       "Bill payment successful",
		PaymentStatus: status,
	})
}

// AddBillRequest is the body of an admin bill creation.
type AddBillRequest struct {
	SubscriberNumber string `json:"subscriber_number" validate:"required,max=20"`
	Month            string `json:"month" validate:"required,max=20"`
	BillTotal        int64  `json:"bill_total" validate:"gt=0"`
}

// AddBillResponse confirms a created bill.
type AddBillResponse struct {
	Message string `json:"message"`
	BillID  int64  `json:"bill_id"`
}

// AddBill handles POST /admin/add-bill. The route is admin-only.
func (s *WebsiteService) AddBill(w http.ResponseWriter, r *http.Request) {
	var req AddBillRequest
	if err := httputil.ParseJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, bodyError(err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	bill, err := s.engine.AddBill(r.Context(), req.SubscriberNumber, req.Month, req.BillTotal)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.logger.Info("Admin added bill",
		"admin", middleware.GetSubscriberNumber(r.Context()),
		"bill_id", bill.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, AddBillResponse{
		Message: "Bill added successfully",
		BillID:  bill.ID,
	})
}
