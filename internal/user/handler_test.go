package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/user-accounts-api/internal/logging"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewService(repo, &fakeMailer{}, fakeHasher{}, logging.NewLogger(true))
	handler := NewHandler(svc, NewTransformer("http://localhost:8080"), nil)

	r := chi.NewRouter()
	r.Get("/users", handler.List)
	r.Post("/users", handler.Create)
	r.Get("/users/{id}", handler.Show)
	r.Put("/users/{id}", handler.Update)
	r.Delete("/users/{id}", handler.Delete)
	r.Get("/verify/{token}", handler.Verify)
	r.Post("/users/{id}/resend", handler.Resend)
	return r, svc
}

func doJSON(t *testing.T, router *chi.Mux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreate_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Ann","email":"a@x.com","password":"secret1","password_confirmation":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data PublicUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Identifier)
	assert.Equal(t, 0, resp.Data.IsVerified)
	assert.False(t, resp.Data.IsAdmin)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHandlerCreate_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users",
		`{"name":"Ann","email":"bad","password":"secret1","password_confirmation":"secret1"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
}

func TestHandlerCreate_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/users", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerShow_NotFoundOnBadID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/users/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerList_EmptyIsAList(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestHandlerUpdate_RoleOnUnverified(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/users/"+created.ID.String(), `{"role":"admin"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerUpdate_NoChange(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/users/"+created.ID.String(), `{"name":"Ann"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerVerify_Flow(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	token := *created.VerificationToken

	rec := doJSON(t, router, http.MethodGet, "/verify/"+token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "verified successfully")

	// The same token is stale now.
	rec = doJSON(t, router, http.MethodGet, "/verify/"+token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDelete_ReturnsDeletedRecord(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodDelete, "/users/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data PublicUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.DeleteDate)

	rec = doJSON(t, router, http.MethodGet, "/users/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerResend_Conflict(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), *created.VerificationToken)
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/users/"+created.ID.String()+"/resend", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerResend_Success(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/users/"+created.ID.String()+"/resend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resent")
}
