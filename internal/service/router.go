package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/billpay/internal/auth"
	"github.com/mmynk/billpay/internal/httputil"
	"github.com/mmynk/billpay/internal/metrics"
	"github.com/mmynk/billpay/internal/middleware"
)

// APIPrefix is the path prefix shared by every channel.
const APIPrefix = "/api/v1"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig collects the dependencies of the HTTP surface.
type RouterConfig struct {
	Engine        BillEngine
	Authenticator auth.Authenticator
	JWTManager    *auth.JWTManager
	Health        Pinger
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	// Gatherer backs /metrics. The route is omitted when nil.
	Gatherer prometheus.Gatherer
}

// NewRouter wires every channel onto a gorilla/mux router.
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	banking := NewBankingService(cfg.Engine, logger)
	mobile := NewMobileProviderService(cfg.Engine, logger)
	website := NewWebsiteService(cfg.Engine, logger)
	authService := NewAuthService(cfg.Authenticator, cfg.JWTManager, logger)

	logging := middleware.Logging(logger, cfg.Metrics)

	r := mux.NewRouter()
	r.Use(logging)

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc("/_login", authService.Login).Methods(http.MethodPost)
	api.HandleFunc("/banking/bill", banking.GetUnpaidBills).Methods(http.MethodGet)
	api.HandleFunc("/banking/pay-bill", website.PayBill).Methods(http.MethodPost)
	api.HandleFunc("/mobile-provider/query-bill", mobile.QueryBill).Methods(http.MethodGet)
	api.HandleFunc("/mobile-provider/query-bill-detailed", mobile.QueryBillDetailed).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAuth(cfg.JWTManager), middleware.RequireAdmin)
	admin.HandleFunc("/add-bill", website.AddBill).Methods(http.MethodPost)

	r.HandleFunc("/healthz", healthHandler(cfg.Health, logger)).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// mux skips router middleware for these two, so wrap them directly.
	r.NotFoundHandler = logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "route not found")
	}))
	r.MethodNotAllowedHandler = logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))
	return r
}

func healthHandler(p Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				logger.Error("Health check failed", "error", err)
				httputil.WriteError(w, http.StatusServiceUnavailable, "storage unavailable")
				return
			}
		}
		httputil.WriteMessage(w, "ok")
	}
}
