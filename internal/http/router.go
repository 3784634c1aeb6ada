package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/user-accounts-api/internal/auth"
	"github.com/redmonkez12/user-accounts-api/internal/config"
	"github.com/redmonkez12/user-accounts-api/internal/httputil"
	"github.com/redmonkez12/user-accounts-api/internal/logging"
	"github.com/redmonkez12/user-accounts-api/internal/user"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	userHandler *user.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Token issuance (public)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/oauth/token", authHandler.ClientToken)

	// Email verification is reached from a mail client, no token required
	r.Get("/verify/{token}", userHandler.Verify)

	// Requests that carry record fields arrive in the external vocabulary
	// and are translated to internal field names before decoding.
	transformInput := TransformInput(user.OriginalAttribute)

	// Machine-to-machine routes (client-credential authenticated)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireClientCredentials)
		r.With(transformInput).Post("/users", userHandler.Create)
		r.Post("/users/{id}/resend", userHandler.Resend)
	})

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/users", userHandler.List)
		r.Get("/users/{id}", userHandler.Show)
		r.With(transformInput).Put("/users/{id}", userHandler.Update)
		r.With(transformInput).Patch("/users/{id}", userHandler.Update)
		r.Delete("/users/{id}", userHandler.Delete)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
