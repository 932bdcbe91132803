package httptransport

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"veriseq/internal/platform/middleware"
	"veriseq/internal/transport/http/shared"
	"veriseq/internal/validator"
	dErrors "veriseq/pkg/domain-errors"
)

// ValidateHandler runs single sequences through the layer chain. It is
// stateless and unauthenticated; the validator itself is pure.
type ValidateHandler struct {
	logger    *slog.Logger
	validator *validator.Validator
}

func NewValidateHandler(v *validator.Validator, logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{logger: logger, validator: v}
}

// ValidateRequest carries the candidate sequence. Base64 lets callers submit
// arbitrary byte sequences that are not valid JSON strings.
type ValidateRequest struct {
	Sequence string `json:"sequence"`
	Base64   bool   `json:"base64,omitempty"`
}

type proofBody struct {
	Chain  string `json:"chain"`
	Digest string `json:"digest"`
	Length int    `json:"length"`
}

type violationBody struct {
	Layer  string `json:"layer"`
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
	Kind   string `json:"kind,omitempty"`
}

// ValidateResponse reports either a proof or the first violation, never both.
type ValidateResponse struct {
	Accepted  bool           `json:"accepted"`
	Proof     *proofBody     `json:"proof,omitempty"`
	Violation *violationBody `json:"violation,omitempty"`
}

func (h *ValidateHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	input := []byte(req.Sequence)
	if req.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(req.Sequence)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "sequence is not valid base64"))
			return
		}
		input = decoded
	}

	proof, err := h.validator.Validate(input)
	if err != nil {
		var v *validator.Violation
		if errors.As(err, &v) {
			body := &violationBody{
				Layer:  string(v.Layer),
				Offset: v.Offset,
				Reason: string(v.Reason),
			}
			if v.Kind != 0 {
				body.Kind = string(v.Kind)
			}
			shared.WriteJSON(w, http.StatusOK, ValidateResponse{Violation: body})
			return
		}
		var le *validator.LengthError
		if errors.As(err, &le) {
			shared.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest,
				"sequence exceeds maximum length %d", le.Max))
			return
		}
		h.logger.ErrorContext(ctx, "validation failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "validation failed"))
		return
	}

	digest := proof.Digest()
	shared.WriteJSON(w, http.StatusOK, ValidateResponse{
		Accepted: true,
		Proof: &proofBody{
			Chain:  proof.Chain(),
			Digest: hex.EncodeToString(digest[:]),
			Length: proof.Length(),
		},
	})
}
