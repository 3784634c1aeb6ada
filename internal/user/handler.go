package user

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/user-accounts-api/internal/httputil"
	"github.com/redmonkez12/user-accounts-api/internal/logging"
	"github.com/redmonkez12/user-accounts-api/internal/ratelimit"
)

// Handler contains the HTTP handlers for the user resource.
type Handler struct {
	service     *Service
	transformer *Transformer
	rateLimiter *ratelimit.Limiter
}

func NewHandler(service *Service, transformer *Transformer, rateLimiter *ratelimit.Limiter) *Handler {
	return &Handler{
		service:     service,
		transformer: transformer,
		rateLimiter: rateLimiter,
	}
}

// List returns all non-deleted users
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.DataResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.service.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	httputil.RespondList(w, h.transformer.TransformAll(users), http.StatusOK)
}

// Create registers a new user account
// @Summary      Create user
// @Description  Creates an unverified regular user and emails a verification link.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     ClientCredentials
// @Param        request body CreateInput true "New account fields"
// @Success      201 {object} httputil.DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Validation error"
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, "create") {
		return
	}

	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("invalid create request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("user created", "user_id", created.ID)
	httputil.RespondOne(w, h.transformer.Transform(created), http.StatusCreated)
}

// Show returns a single user
// @Summary      Show user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User id"
// @Success      200 {object} httputil.DataResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Show(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	httputil.RespondOne(w, h.transformer.Transform(u), http.StatusOK)
}

// Update applies a sparse field update
// @Summary      Update user
// @Description  Applies the supplied fields; an email change resets verification, and only verified users may change role.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User id"
// @Param        request body UpdateInput true "Fields to change"
// @Success      200 {object} httputil.DataResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Role change on unverified user"
// @Failure      422 {object} httputil.ErrorResponse "Validation error or no change"
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Warn("invalid update request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("user updated", "user_id", updated.ID)
	httputil.RespondOne(w, h.transformer.Transform(updated), http.StatusOK)
}

// Delete soft-deletes a user
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User id"
// @Success      200 {object} httputil.DataResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("user deleted", "user_id", deleted.ID)
	httputil.RespondOne(w, h.transformer.Transform(deleted), http.StatusOK)
}

// Verify consumes an email verification token
// @Summary      Verify account
// @Tags         users
// @Produce      json
// @Param        token path string true "Verification token"
// @Success      200 {object} httputil.DataResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown or already-used token"
// @Router       /verify/{token} [get]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")
	if token == "" {
		httputil.RespondError(w, "user not found", http.StatusNotFound)
		return
	}

	verified, err := h.service.Verify(r.Context(), token)
	if err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	logger.Info("user verified", "user_id", verified.ID)
	httputil.RespondMessage(w, "The account has been verified successfully", http.StatusOK)
}

// Resend re-sends the verification email
// @Summary      Resend verification email
// @Tags         users
// @Produce      json
// @Security     ClientCredentials
// @Param        id path string true "User id"
// @Success      200 {object} httputil.DataResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Already verified"
// @Router       /users/{id}/resend [post]
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limited(w, r, "resend") {
		return
	}

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.ResendVerification(r.Context(), id); err != nil {
		h.respondServiceError(w, logger, err)
		return
	}

	httputil.RespondMessage(w, "The verification email has been resent", http.StatusOK)
}

// parseID reads the id route parameter. A malformed id can't name any
// record, so it is reported the same way as an unknown one.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "user not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// limited applies the per-IP rate limit for the given purpose and writes a
// 429 when the budget is spent. A limiter failure never blocks the request.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	if h.rateLimiter == nil {
		return false
	}
	logger := logging.GetLoggerFromContext(r.Context())

	allowed, err := h.rateLimiter.Allow(r.Context(), getClientIP(r), purpose)
	if err != nil {
		logger.Error("failed to check rate limit", "error", err.Error())
		return false
	}
	if !allowed {
		logger.Warn("rate limit exceeded", "purpose", purpose)
		httputil.RespondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return true
	}
	return false
}

func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var validationErr *ValidationError
	var deliveryErr *DeliveryError

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("validation failed", "error", validationErr.Error())
		httputil.RespondError(w, validationErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNoChange):
		logger.Warn("update rejected: no change")
		httputil.RespondError(w, ErrNoChange.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrNotFound):
		httputil.RespondError(w, ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, ErrRoleChangeUnverified):
		logger.Warn("update rejected: role change on unverified user")
		httputil.RespondError(w, ErrRoleChangeUnverified.Error(), http.StatusConflict)
	case errors.Is(err, ErrAlreadyVerified):
		httputil.RespondError(w, ErrAlreadyVerified.Error(), http.StatusConflict)
	case errors.As(err, &deliveryErr):
		logger.Error("verification email delivery failed", "error", deliveryErr.Error())
		httputil.RespondError(w, "the verification email could not be delivered", http.StatusInternalServerError)
	default:
		logger.Error("unexpected error", "error", err.Error())
		httputil.RespondError(w, "internal server error", http.StatusInternalServerError)
	}
}

// getClientIP extracts the client address, honoring X-Forwarded-For when a
// proxy sits in front.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
