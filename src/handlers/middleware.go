package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/username/twgreports/backend/src/database"
	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/model"
	"github.com/username/twgreports/backend/src/utils"
)

// Define a custom type for context keys to avoid collisions.
type contextKey string

const usernameContextKey contextKey = "username"

// unauthorizedMessage is the single message for every dashboard auth failure.
// Missing, malformed, tampered and expired tokens are indistinguishable on the
// wire on purpose.
const unauthorizedMessage = "unauthorized: session expired or invalid token"

// TokenMiddleware gates every dashboard route on the handoff token carried in
// the URL. There is no session behind it; the token is re-verified on each load.
func (h *DashboardHandler) TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			logger.L.Debug("TokenMiddleware: token parameter missing", "path", r.URL.Path)
			utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
			return
		}

		username, err := h.handoff.Verify(token)
		if err != nil {
			logger.L.Warn("TokenMiddleware: handoff token rejected", "path", r.URL.Path)
			utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware protects portal routes that require a logged-in portal
// session: a valid JWT access token with a live session row behind it.
func (h *PortalHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		username, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if _, err := model.GetSessionByToken(database.DB, tokenString); err != nil {
			logger.L.Warn("AuthMiddleware: session validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUsernameFromContext retrieves the acting identity placed by either middleware.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameContextKey).(string)
	return username, ok
}

// RequestIDMiddleware tags every request with an id for log correlation.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		logger.L.Debug("Request received", "requestID", requestID, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
