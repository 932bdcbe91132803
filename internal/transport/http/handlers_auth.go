package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"

	"veriseq/internal/platform/middleware"
	"veriseq/internal/transport/http/shared"
	dErrors "veriseq/pkg/domain-errors"
	"veriseq/pkg/secrets"
)

//go:generate mockgen -source=handlers_auth.go -destination=mocks/auth-mocks.go -package=mocks TokenService

// TokenService mints operator access tokens.
type TokenService interface {
	GenerateOperatorToken(operator string, expiresIn time.Duration) (string, error)
}

// AuthHandler exchanges a pre-shared operator key for a short-lived JWT.
// Only token holders may start or cancel campaigns.
type AuthHandler struct {
	logger          *slog.Logger
	tokens          TokenService
	operatorKeyHash string
	tokenTTL        time.Duration
}

func NewAuthHandler(tokens TokenService, operatorKeyHash string, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:          logger,
		tokens:          tokens,
		operatorKeyHash: operatorKeyHash,
		tokenTTL:        tokenTTL,
	}
}

// TokenRequest identifies the operator and proves key possession.
type TokenRequest struct {
	Operator string `json:"operator" valid:"required"`
	Key      string `json:"key" valid:"required"`
}

// TokenResponse is the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if h.operatorKeyHash == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "operator token exchange is not configured"))
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if _, err := govalidator.ValidateStruct(req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return
	}

	if err := secrets.Verify(req.Key, h.operatorKeyHash); err != nil {
		h.logger.WarnContext(ctx, "operator key rejected",
			"request_id", requestID,
			"operator", req.Operator,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid operator key"))
		return
	}

	token, err := h.tokens.GenerateOperatorToken(req.Operator, h.tokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to mint operator token",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to mint token"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokenTTL.Seconds()),
	})
}
