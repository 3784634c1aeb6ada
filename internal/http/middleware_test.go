package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/user-accounts-api/internal/user"
)

func captureBody(t *testing.T, mw func(http.Handler) http.Handler, body string) (string, int) {
	t.Helper()

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(raw)
		w.WriteHeader(http.StatusOK)
	})

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/users", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return got, rec.Code
}

func TestTransformInput_RewritesExternalKeys(t *testing.T) {
	mw := TransformInput(user.OriginalAttribute)

	got, code := captureBody(t, mw, `{"name":"Ann","isAdmin":"admin","isVerified":1}`)
	require.Equal(t, http.StatusOK, code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &payload))
	assert.Equal(t, "Ann", payload["name"])
	assert.Equal(t, "admin", payload["role"])
	assert.Equal(t, float64(1), payload["verified"])
	assert.NotContains(t, payload, "isAdmin")
	assert.NotContains(t, payload, "isVerified")
}

func TestTransformInput_UnknownKeysPassThrough(t *testing.T) {
	mw := TransformInput(user.OriginalAttribute)

	got, code := captureBody(t, mw, `{"password":"secret1","password_confirmation":"secret1"}`)
	require.Equal(t, http.StatusOK, code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &payload))
	assert.Equal(t, "secret1", payload["password"])
	assert.Equal(t, "secret1", payload["password_confirmation"])
}

func TestTransformInput_NonObjectBodyUntouched(t *testing.T) {
	mw := TransformInput(user.OriginalAttribute)

	got, code := captureBody(t, mw, `[1,2,3]`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, `[1,2,3]`, got)
}

func TestTransformInput_EmptyBody(t *testing.T) {
	mw := TransformInput(user.OriginalAttribute)

	got, code := captureBody(t, mw, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, got)
}

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	SecurityHeaders(next).ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", rec.Header().Get("Content-Security-Policy"))
}
