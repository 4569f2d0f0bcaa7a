// Package server assembles the HTTP router and owns the server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cookease/api/internal/application/auth"
	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/infrastructure/http/handlers"
	custommiddleware "github.com/cookease/api/internal/infrastructure/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP server hosting the REST API.
type Server struct {
	httpServer *http.Server
	config     *config.Config
	logger     *zap.Logger
}

// Handlers bundles the per-area handlers the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandlers
	Recipe     *handlers.RecipeHandlers
	Ingredient *handlers.IngredientHandlers
	Cart       *handlers.CartHandlers
	AI         *handlers.AIHandlers
}

// New builds the server with its full route tree.
func New(cfg *config.Config, authService *auth.Service, h Handlers, logger *zap.Logger) *Server {
	router := buildRouter(cfg, authService, h, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		config: cfg,
		logger: logger.Named("http-server"),
	}
}

func buildRouter(cfg *config.Config, authService *auth.Service, h Handlers, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.Security())
	r.Use(custommiddleware.CORS(cfg))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	requireAuth := custommiddleware.Authenticate(authService)
	optionalAuth := custommiddleware.OptionalAuthenticate(authService)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Get("/google", h.Auth.GoogleLogin)
			r.Get("/google/callback", h.Auth.GoogleCallback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/user", h.Auth.CurrentUser)
				r.Get("/verify", h.Auth.Verify)
				r.Put("/update-profile", h.Auth.UpdateProfile)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.Recipe.List)
			r.Get("/filter", h.Recipe.Filter)
			r.Get("/filter-options", h.Recipe.FilterOptions)
			r.Get("/search", h.Recipe.Search)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/favorites", h.Recipe.Favorites)
				r.Post("/", h.Recipe.Create)
				r.Put("/{id}", h.Recipe.Update)
				r.Delete("/{id}", h.Recipe.Delete)
				r.Patch("/{id}/favorite", h.Recipe.ToggleFavorite)
			})

			// chi matches the literal /favorites route before this wildcard.
			r.Get("/{id}", h.Recipe.Get)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", h.Ingredient.List)
			r.Get("/{id}", h.Ingredient.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Cart.Get)
			r.Post("/add", h.Cart.Add)
			r.Put("/{ingredientId}", h.Cart.Update)
			r.Delete("/{ingredientId}", h.Cart.Remove)
			r.Delete("/", h.Cart.Clear)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/recommendations", h.AI.Recommendations)
		})
	})

	return r
}

// Start begins serving. It blocks until the listener fails or the server is
// stopped.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully, bounded by the configured
// shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
