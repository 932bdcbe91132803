package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"veriseq/internal/campaign"
	"veriseq/internal/ledger"
	"veriseq/internal/platform/middleware"
	"veriseq/internal/transport/http/shared"
	dErrors "veriseq/pkg/domain-errors"
)

//go:generate mockgen -source=handlers_campaign.go -destination=mocks/campaign-mocks.go -package=mocks CampaignService

// CampaignService defines the campaign operations the HTTP layer needs.
type CampaignService interface {
	Spaces() []campaign.Space
	Plan(space string, chunks int) ([]campaign.Harness, error)
	Start(ctx context.Context, space string, chunks int, resume bool) (campaign.Campaign, error)
	Get(ctx context.Context, id uuid.UUID) (campaign.Campaign, error)
	List(ctx context.Context) ([]campaign.Campaign, error)
	Cancel(id uuid.UUID) error
}

// CampaignHandler exposes verification spaces and campaign lifecycle
// endpoints.
type CampaignHandler struct {
	logger    *slog.Logger
	campaigns CampaignService
	records   LedgerService
}

func NewCampaignHandler(campaigns CampaignService, records LedgerService, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{logger: logger, campaigns: campaigns, records: records}
}

// SpaceBody is one verification space as the API reports it.
type SpaceBody struct {
	Name          string `json:"name"`
	Size          uint64 `json:"size"`
	Expect        string `json:"expect"`
	ChunkCounts   []int  `json:"chunk_counts"`
	DefaultChunks int    `json:"default_chunks"`
}

// HarnessBody is one planned chunk of a space.
type HarnessBody struct {
	Name  string `json:"name"`
	Space string `json:"space"`
	Chunk int    `json:"chunk"`
	Of    int    `json:"of"`
	Bound uint64 `json:"bound"`
}

// StartCampaignRequest starts a campaign over a named space.
type StartCampaignRequest struct {
	Space  string `json:"space" valid:"required"`
	Chunks int    `json:"chunks,omitempty"`
	Resume bool   `json:"resume,omitempty"`
}

func (h *CampaignHandler) handleListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces := h.campaigns.Spaces()
	out := make([]SpaceBody, 0, len(spaces))
	for _, sp := range spaces {
		out = append(out, SpaceBody{
			Name:          sp.Name,
			Size:          sp.Size(),
			Expect:        string(sp.Expect),
			ChunkCounts:   sp.ChunkCounts,
			DefaultChunks: sp.DefaultChunks(),
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

// handleListHarnesses reports every harness the default plans produce. The
// listing is deterministic: spaces come back sorted and chunks in order, so
// two calls always agree on the discovery set.
func (h *CampaignHandler) handleListHarnesses(w http.ResponseWriter, r *http.Request) {
	var out []HarnessBody
	for _, sp := range h.campaigns.Spaces() {
		harnesses, err := h.campaigns.Plan(sp.Name, sp.DefaultChunks())
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		for _, harness := range harnesses {
			out = append(out, HarnessBody{
				Name:  harness.Name,
				Space: harness.Space,
				Chunk: harness.Chunk.Index,
				Of:    harness.Of,
				Bound: harness.Bound(),
			})
		}
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *CampaignHandler) handlePlan(w http.ResponseWriter, r *http.Request) {
	space := chi.URLParam(r, "name")
	chunks := 0
	if raw := r.URL.Query().Get("chunks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "chunks must be an integer"))
			return
		}
		chunks = n
	}

	harnesses, err := h.campaigns.Plan(space, chunks)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]HarnessBody, 0, len(harnesses))
	for _, harness := range harnesses {
		out = append(out, HarnessBody{
			Name:  harness.Name,
			Space: harness.Space,
			Chunk: harness.Chunk.Index,
			Of:    harness.Of,
			Bound: harness.Bound(),
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *CampaignHandler) handleStartCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	operator := middleware.GetOperator(ctx)

	var req StartCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if _, err := govalidator.ValidateStruct(req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	c, err := h.campaigns.Start(ctx, req.Space, req.Chunks, req.Resume)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) || dErrors.Is(err, dErrors.CodeInvalidInput) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to start campaign",
			"request_id", requestID,
			"space", req.Space,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to start campaign"))
		return
	}

	h.logger.InfoContext(ctx, "campaign started",
		"request_id", requestID,
		"operator", operator,
		"campaign_id", c.ID,
		"space", c.Space,
		"chunks", c.Chunks,
	)
	shared.WriteJSON(w, http.StatusAccepted, c)
}

func (h *CampaignHandler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid campaign id"))
		return
	}

	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.campaigns.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if campaigns == nil {
		campaigns = []campaign.Campaign{}
	}
	shared.WriteJSON(w, http.StatusOK, campaigns)
}

// campaignRecords resolves a campaign and returns its slice of the ledger,
// keyed by the campaign's space.
func (h *CampaignHandler) campaignRecords(w http.ResponseWriter, r *http.Request) ([]ledger.Record, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid campaign id"))
		return nil, false
	}

	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return nil, false
	}

	records, err := h.records.Records(r.Context(), ledger.Filter{Module: c.Space})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to read campaign ledger",
			"request_id", middleware.GetRequestID(r.Context()),
			"campaign_id", id,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to read ledger"))
		return nil, false
	}
	return records, true
}

func (h *CampaignHandler) handleCampaignLedger(w http.ResponseWriter, r *http.Request) {
	records, ok := h.campaignRecords(w, r)
	if !ok {
		return
	}
	if records == nil {
		records = []ledger.Record{}
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *CampaignHandler) handleCampaignLedgerCSV(w http.ResponseWriter, r *http.Request) {
	records, ok := h.campaignRecords(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="verification_records.csv"`)
	_ = ledger.WriteCSV(w, records)
}

func (h *CampaignHandler) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid campaign id"))
		return
	}

	if err := h.campaigns.Cancel(id); err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "campaign cancelled",
		"request_id", middleware.GetRequestID(ctx),
		"operator", middleware.GetOperator(ctx),
		"campaign_id", id,
	)
	w.WriteHeader(http.StatusNoContent)
}
