package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"veriseq/internal/ledger"
	"veriseq/internal/platform/middleware"
	"veriseq/internal/transport/http/shared"
	dErrors "veriseq/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_ledger.go -destination=mocks/ledger-mocks.go -package=mocks LedgerService

// LedgerService reads the run ledger.
type LedgerService interface {
	Records(ctx context.Context, f ledger.Filter) ([]ledger.Record, error)
}

// LedgerHandler exposes read-only views over the append-only run ledger.
type LedgerHandler struct {
	logger *slog.Logger
	ledger LedgerService
}

func NewLedgerHandler(svc LedgerService, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{logger: logger, ledger: svc}
}

func filterFromQuery(r *http.Request) (ledger.Filter, error) {
	f := ledger.Filter{
		Module:  r.URL.Query().Get("module"),
		Harness: r.URL.Query().Get("harness"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := ledger.Status(raw)
		if !status.Valid() {
			return ledger.Filter{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown status %q", raw)
		}
		f.Status = status
	}
	return f, nil
}

func (h *LedgerHandler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.records(w, r, f)
	if err != nil {
		return
	}
	if records == nil {
		records = []ledger.Record{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

// handleExportCSV streams the ledger in its canonical CSV form, the same
// seven-column layout the file store appends.
func (h *LedgerHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.records(w, r, f)
	if err != nil {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="verification_records.csv"`)
	if err := ledger.WriteCSV(w, records); err != nil {
		h.logger.ErrorContext(r.Context(), "csv export failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
	}
}

func (h *LedgerHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	records, err := h.records(w, r, f)
	if err != nil {
		return
	}
	shared.WriteJSON(w, http.StatusOK, ledger.Summarize(records))
}

// records fetches ledger records and writes the error response itself, so
// callers can simply bail on error.
func (h *LedgerHandler) records(w http.ResponseWriter, r *http.Request, f ledger.Filter) ([]ledger.Record, error) {
	records, err := h.ledger.Records(r.Context(), f)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read ledger",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to read ledger"))
		return nil, err
	}
	return records, nil
}
