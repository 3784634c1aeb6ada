package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/user-accounts-api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey    ContextKey = "user_id"
	UserEmailContextKey ContextKey = "user_email"
	ClientIDContextKey  ContextKey = "client_id"
)

// Middleware gates protected routes. It runs before any resource handler
// and short-circuits unauthenticated calls.
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth validates a user-scoped access token and stores the user's
// identity in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verify(w, r)
		if !ok {
			return
		}

		if claims.Scope != ScopeUser {
			httputil.RespondError(w, "user authentication required", http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			httputil.RespondError(w, "invalid user ID in token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireClientCredentials validates a client-scoped token, the
// machine-to-machine gate used for account creation and resend.
func (m *Middleware) RequireClientCredentials(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verify(w, r)
		if !ok {
			return
		}

		if claims.Scope != ScopeClient {
			httputil.RespondError(w, "client credentials required", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ClientIDContextKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) verify(w http.ResponseWriter, r *http.Request) (*TokenClaims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		httputil.RespondError(w, "missing authentication", http.StatusUnauthorized)
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		httputil.RespondError(w, "invalid authorization header format", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := m.tokenService.VerifyToken(parts[1])
	if err != nil {
		if err == ErrExpiredToken {
			httputil.RespondError(w, "token has expired", http.StatusUnauthorized)
			return nil, false
		}
		httputil.RespondError(w, "invalid token", http.StatusUnauthorized)
		return nil, false
	}

	return claims, true
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}

// GetClientIDFromContext extracts the client id from the request context
func GetClientIDFromContext(ctx context.Context) (string, bool) {
	clientID, ok := ctx.Value(ClientIDContextKey).(string)
	return clientID, ok
}
