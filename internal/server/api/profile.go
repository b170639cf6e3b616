package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"github.com/kamikazebr/todo-otp/pkg/utils"
	"go.uber.org/zap"
)

type ProfileManager interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) (*models.User, error)
}

type ProfileHandler struct {
	users  ProfileManager
	logger *zap.Logger
}

func NewProfileHandler(users ProfileManager, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, logger: logger}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, profileResponse(user))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateName(r.Context(), claims.UserID, req.FirstName, req.LastName)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, profileResponse(user))
}

func profileResponse(user *models.User) models.ProfileResponse {
	name := user.DisplayName()
	first, last := utils.SplitFullName(name)
	return models.ProfileResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      name,
		FirstName: first,
		LastName:  last,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
