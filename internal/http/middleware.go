package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
	"github.com/bayramdkmn/ecommerce-api/internal/repository"
	"github.com/google/uuid"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"
)

// AuthMiddleware resolves "Authorization: Token <key>" to an identity.
// It only resolves already-issued tokens; issuing them is someone else's
// job.
func AuthMiddleware(tokens repository.TokenRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			key, ok := strings.CutPrefix(header, "Token ")
			if !ok || key == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header")
				return
			}

			identity, err := tokens.Resolve(r.Context(), key)
			if errors.Is(err, repository.ErrTokenNotFound) {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			if err != nil {
				log.Printf("token resolve error: %v", err)
				respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
