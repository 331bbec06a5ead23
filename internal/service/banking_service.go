package service

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/billpay/internal/httputil"
)

// BankingService serves the banking application channel.
type BankingService struct {
	engine BillEngine
	logger *slog.Logger
}

// NewBankingService creates a new BankingService.
func NewBankingService(engine BillEngine, logger *slog.Logger) *BankingService {
	return &BankingService{engine: engine, logger: logger}
}

type unpaidBillsParams struct {
	SubscriberNumber string `validate:"required,max=20"`
}

// UnpaidBillsResponse lists a subscriber's unpaid bills.
type UnpaidBillsResponse struct {
	Bills []billView `json:"bills"`
}

// GetUnpaidBills handles GET /banking/bill?subscriber_number=.
func (s *BankingService) GetUnpaidBills(w http.ResponseWriter, r *http.Request) {
	params := unpaidBillsParams{SubscriberNumber: r.URL.Query().Get("subscriber_number")}
	if err := validate.Struct(params); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	bills, err := s.engine.UnpaidBills(r.Context(), params.SubscriberNumber)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	s.logger.Debug("Unpaid bills served", "subscriber_number", params.SubscriberNumber, "count", len(bills))
	httputil.WriteJSON(w, http.StatusOK, UnpaidBillsResponse{Bills: newBillViews(bills)})
}
