// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veriseq/internal/platform/metrics"
	"veriseq/internal/platform/middleware"
)

// Router wires all public endpoints.
type Router struct {
	logger       *slog.Logger
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator

	validate  *ValidateHandler
	campaigns *CampaignHandler
	ledger    *LedgerHandler
	auth      *AuthHandler
}

func NewRouter(
	validate *ValidateHandler,
	campaigns *CampaignHandler,
	ledger *LedgerHandler,
	auth *AuthHandler,
	jwtValidator middleware.JWTValidator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		logger:       logger,
		metrics:      m,
		jwtValidator: jwtValidator,
		validate:     validate,
		campaigns:    campaigns,
		ledger:       ledger,
		auth:         auth,
	}
}

// Handler builds the chi router. Read endpoints are public; starting and
// cancelling campaigns requires an operator token.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(rt.logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(rt.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/auth/token", rt.auth.handleToken)
		r.Post("/validate", rt.validate.handleValidate)

		r.Get("/spaces", rt.campaigns.handleListSpaces)
		r.Get("/spaces/{name}/plan", rt.campaigns.handlePlan)
		r.Get("/harnesses", rt.campaigns.handleListHarnesses)

		r.Get("/campaigns", rt.campaigns.handleListCampaigns)
		r.Get("/campaigns/{id}", rt.campaigns.handleGetCampaign)
		r.Get("/campaigns/{id}/ledger", rt.campaigns.handleCampaignLedger)

		r.Get("/ledger", rt.ledger.handleListRecords)
		r.Get("/ledger/summary", rt.ledger.handleSummary)
	})

	// CSV exports write their own content type.
	r.Get("/ledger.csv", rt.ledger.handleExportCSV)
	r.Get("/campaigns/{id}/ledger.csv", rt.campaigns.handleCampaignLedgerCSV)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(rt.jwtValidator, rt.logger))

		r.Post("/campaigns", rt.campaigns.handleStartCampaign)
		r.Post("/campaigns/{id}/cancel", rt.campaigns.handleCancelCampaign)
	})

	return r
}
