package service

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/billpay/internal/httputil"
)

// MobileProviderService serves the mobile-provider application channel.
type MobileProviderService struct {
	engine BillEngine
	logger *slog.Logger
}

// NewMobileProviderService creates a new MobileProviderService.
func NewMobileProviderService(engine BillEngine, logger *slog.Logger) *MobileProviderService {
	return &MobileProviderService{engine: engine, logger: logger}
}

type queryBillParams struct {
	SubscriberNumber string `validate:"required,max=20"`
	Month            string `validate:"required,max=20"`
}

func parseQueryBillParams(r *http.Request) (queryBillParams, error) {
	params := queryBillParams{
		SubscriberNumber: r.URL.Query().Get("subscriber_number"),
		Month:            r.URL.Query().Get("month"),
	}
	return params, validate.Struct(params)
}

// QueryBillResponse is the mobile-provider view of one bill.
type QueryBillResponse struct {
	BillTotal  int64 `json:"bill_total"`
	PaidStatus bool  `json:"paid_status"`
}

// QueryBill handles GET /mobile-provider/query-bill.
func (s *MobileProviderService) QueryBill(w http.ResponseWriter, r *http.Request) {
	params, err := parseQueryBillParams(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	bill, err := s.engine.QueryBill(r.Context(), params.SubscriberNumber, params.Month)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, QueryBillResponse{
		BillTotal:  bill.BillTotal,
		PaidStatus: bill.IsPaid(),
	})
}

// QueryBillDetailedResponse is one page of bills for a month.
type QueryBillDetailedResponse struct {
	Bills       []billView `json:"bills"`
	TotalPages  int        `json:"total_pages"`
	CurrentPage int        `json:"current_page"`
}

// QueryBillDetailed handles GET /mobile-provider/query-bill-detailed.
// page and per_page default to 1.
func (s *MobileProviderService) QueryBillDetailed(w http.ResponseWriter, r *http.Request) {
	params, err := parseQueryBillParams(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	perPage, err := queryInt(r, "per_page", 1)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	result, err := s.engine.QueryBillPage(r.Context(), params.SubscriberNumber, params.Month, page, perPage)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, QueryBillDetailedResponse{
		Bills:       newBillViews(result.Bills),
		TotalPages:  result.TotalPages,
		CurrentPage: result.Page,
	})
}
