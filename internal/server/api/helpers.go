package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kamikazebr/todo-otp/internal/server/services"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, data)
}

func respondErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// respondServiceError maps a service error onto an HTTP status. Storage
// and unknown errors are logged and reported without detail.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var rateLimited *services.RateLimitError
	switch {
	case errors.As(err, &rateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(rateLimited.RetryAfterSeconds()))
		respondErrorJSON(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrValidation):
		respondErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCodeNotFound),
		errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrInvalidCode):
		respondErrorJSON(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrTodoForbidden):
		respondErrorJSON(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrTodoNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMessageNotFound):
		respondErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDeliveryFailed):
		logger.Error("email delivery failed", zap.Error(err))
		respondErrorJSON(w, http.StatusBadGateway, "failed to send code email, please try again")
	default:
		logger.Error("request failed", zap.Error(err))
		respondErrorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}
