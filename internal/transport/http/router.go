package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fictionverse/internal/auth"
	"fictionverse/internal/handler"
	"fictionverse/internal/httputil"
	authmw "fictionverse/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	StoryHandler       *handler.StoryHandler
	PreferencesHandler *handler.PreferencesHandler
	AdminHandler       *handler.AdminHandler
	Verifier           auth.TokenVerifier
	BasePath           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route(cfg.BasePath, func(r chi.Router) {
		// Health check endpoint (useful for deployment/monitoring)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
		})

		// Public routes - no authentication required
		r.Post("/auth/signup", cfg.AuthHandler.Signup)
		r.Get("/stories", cfg.StoryHandler.List)
		r.Get("/stories/{id}", cfg.StoryHandler.GetByID)
		r.Get("/stories/user/{userId}", cfg.StoryHandler.ListByAuthor)

		// Protected routes - require a resolvable bearer token
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(cfg.Verifier))

			r.Get("/auth/profile", cfg.AuthHandler.GetProfile)
			r.Put("/auth/profile", cfg.AuthHandler.UpdateProfile)

			r.Post("/stories", cfg.StoryHandler.Create)
			r.Put("/stories/{id}", cfg.StoryHandler.Update)
			r.Delete("/stories/{id}", cfg.StoryHandler.Delete)
			r.Post("/stories/{id}/like", cfg.StoryHandler.ToggleLike)

			r.Get("/preferences", cfg.PreferencesHandler.Get)
			r.Put("/preferences", cfg.PreferencesHandler.Update)
		})

		// Operator routes - gated by X-Admin-Token inside the handler
		r.Post("/admin/clear-database", cfg.AdminHandler.ClearDatabase)
	})

	return r
}
