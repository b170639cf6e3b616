package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/kamikazebr/todo-otp/pkg/utils"
)

type contextKey string

const (
	userClaimsKey contextKey = "userClaims"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateSession(token string) (*utils.Claims, error)
}

func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondErrorJSON(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondErrorJSON(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := validator.ValidateSession(parts[1])
			if err != nil {
				respondErrorJSON(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserClaims(r *http.Request) *utils.Claims {
	claims, ok := r.Context().Value(userClaimsKey).(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Retry-After")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
