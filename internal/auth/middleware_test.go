package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_AcceptsUserToken(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)
	mw := NewMiddleware(svc)

	userID := uuid.New()
	token, err := svc.CreateUserToken(userID, "a@x.com", time.Hour)
	require.NoError(t, err)

	var called bool
	var gotID uuid.UUID
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireAuth(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	assert.Equal(t, userID, gotID)
}

func TestRequireAuth_RejectsClientToken(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)
	mw := NewMiddleware(svc)

	token, err := svc.CreateClientToken("client-id", time.Hour)
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireClientCredentials_RejectsUserToken(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)
	mw := NewMiddleware(svc)

	token, err := svc.CreateUserToken(uuid.New(), "a@x.com", time.Hour)
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireClientCredentials(okHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestMiddleware_MissingOrMalformedHeader(t *testing.T) {
	svc, err := NewPasetoService(testKey)
	require.NoError(t, err)
	mw := NewMiddleware(svc)

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"no bearer prefix", "Token abc"},
		{"garbage token", "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.RequireAuth(okHandler(&called)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}
