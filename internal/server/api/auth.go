package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"github.com/kamikazebr/todo-otp/pkg/utils"
	"go.uber.org/zap"
)

// Authenticator is the auth surface the handlers need.
type Authenticator interface {
	TokenValidator
	RequestCode(ctx context.Context, email string) (int, error)
	VerifyCredentials(ctx context.Context, email, code string) (*services.Identity, error)
	IssueSession(identity *services.Identity) (string, time.Time, error)
}

type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req models.RequestCodeRequest

	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		respondErrorJSON(w, http.StatusBadRequest, "email is required")
		return
	}

	expiresIn, err := h.auth.RequestCode(r.Context(), req.Email)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, models.RequestCodeResponse{
		Message:   "Code sent to email",
		ExpiresIn: expiresIn,
	})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyCodeRequest

	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		respondErrorJSON(w, http.StatusBadRequest, "email and code are required")
		return
	}

	identity, err := h.auth.VerifyCredentials(r.Context(), req.Email, strings.TrimSpace(req.Code))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	token, expiresAt, err := h.auth.IssueSession(identity)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, models.VerifyCodeResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User: models.UserResponse{
			ID:    identity.UserID.String(),
			Email: identity.Email,
			Name:  identity.Name,
		},
	})
}

// requireClaims returns the session claims or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*utils.Claims, bool) {
	claims := GetUserClaims(r)
	if claims == nil {
		respondErrorJSON(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return claims, true
}
