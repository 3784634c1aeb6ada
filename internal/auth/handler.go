package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/redmonkez12/user-accounts-api/internal/httputil"
	"github.com/redmonkez12/user-accounts-api/internal/logging"
)

// Handler contains HTTP handlers for token issuance.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ClientTokenRequest represents the client-credentials grant request body
type ClientTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Login authenticates a user
// @Summary      Log in
// @Description  Exchange email and password for a user-scoped access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} AuthTokens
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      403 {object} httputil.ErrorResponse "Email not verified"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials", "email", req.Email)
			httputil.RespondError(w, ErrInvalidCredentials.Error(), http.StatusUnauthorized)
			return
		}
		if errors.Is(err, ErrEmailNotVerified) {
			logger.Warn("login failed: email not verified", "email", req.Email)
			httputil.RespondError(w, ErrEmailNotVerified.Error(), http.StatusForbidden)
			return
		}
		logger.Error("login failed", "error", err.Error())
		httputil.RespondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, tokens, http.StatusOK)
}

// ClientToken issues a machine token
// @Summary      Client-credentials grant
// @Description  Exchange a configured client id/secret pair for a client-scoped token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ClientTokenRequest true "Client credentials"
// @Success      200 {object} AuthTokens
// @Failure      401 {object} httputil.ErrorResponse "Invalid client credentials"
// @Router       /oauth/token [post]
func (h *Handler) ClientToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ClientTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid client token request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.service.ClientToken(r.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		if errors.Is(err, ErrInvalidClientCredentials) {
			logger.Warn("client token request rejected", "client_id", req.ClientID)
			httputil.RespondError(w, ErrInvalidClientCredentials.Error(), http.StatusUnauthorized)
			return
		}
		logger.Error("client token issuance failed", "error", err.Error())
		httputil.RespondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, tokens, http.StatusOK)
}
