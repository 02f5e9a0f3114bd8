package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/inkwellhq/inkwell/internal/handler"
	"github.com/inkwellhq/inkwell/internal/server/middleware"
	"github.com/inkwellhq/inkwell/internal/service"
	"github.com/inkwellhq/inkwell/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	SecureCookies   bool
	LoginRateLimit  int // requests per minute per IP on the credential endpoints
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		SecureCookies:   false,
		LoginRateLimit:  20,
	}
}

// Server is the top-level HTTP server for the CMS. It owns the Chi router,
// the store, and the authentication service.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	authSvc    *service.AuthService
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, authSvc *service.AuthService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		authSvc: authSvc,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	// --- Health check (no auth required) ---
	r.Get("/health", s.handleHealth)

	authHandler := handler.NewAuthHandler(s.store, s.authSvc, s.cfg.SecureCookies)
	settingsHandler := handler.NewSettingsHandler(s.store)
	topicHandler := handler.NewTopicHandler(s.store)
	articleHandler := handler.NewArticleHandler(s.store)
	newsletterHandler := handler.NewNewsletterHandler(s.store)

	requireSession := middleware.Authenticate(s.authSvc, s.logger)

	r.Route("/api", func(r chi.Router) {

		// Authentication. The credential endpoints are rate limited per IP
		// on top of the bcrypt cost.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(s.cfg.LoginRateLimit, time.Minute))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
				r.Get("/all", authHandler.ListAdmins)
				r.Put("/profile", authHandler.UpdateProfile)
			})
		})

		// Site settings. The signup-status read is public for the auth page.
		r.Route("/settings", func(r chi.Router) {
			r.Get("/signup-status", settingsHandler.SignupStatus)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/", settingsHandler.Get)
				r.Put("/", settingsHandler.Update)
			})
		})

		// Admin content management.
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/topics", topicHandler.List)
			r.Post("/topics", topicHandler.Create)
			r.Get("/topics/{id}", topicHandler.Get)
			r.Put("/topics/{id}", topicHandler.Update)
			r.Delete("/topics/{id}", topicHandler.Delete)

			r.Get("/articles", articleHandler.List)
			r.Post("/articles", articleHandler.Create)
			r.Get("/articles/{id}", articleHandler.Get)
			r.Put("/articles/{id}", articleHandler.Update)
			r.Delete("/articles/{id}", articleHandler.Delete)

			r.Get("/newsletter/subscribers", newsletterHandler.ListSubscribers)
			r.Get("/newsletter/subscribers/stats", newsletterHandler.Stats)
			r.Put("/newsletter/subscribers/{id}/unsubscribe", newsletterHandler.UnsubscribeByID)
			r.Delete("/newsletter/subscribers/{id}", newsletterHandler.DeleteSubscriber)
		})

		// Public read surface.
		r.Route("/public", func(r chi.Router) {
			r.Get("/topics", topicHandler.ListPublic)
			r.Get("/articles", articleHandler.ListPublic)
			r.Get("/articles/recent", articleHandler.ListRecent)
			r.Get("/articles/{slug}", articleHandler.GetPublic)
			r.Post("/newsletter/subscribe", newsletterHandler.Subscribe)
			r.Post("/newsletter/unsubscribe", newsletterHandler.Unsubscribe)
		})
	})

	s.router = r
}

// handleHealth is a liveness probe reporting store connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "OK"
	database := "Connected"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		status = "Degraded"
		database = "Disconnected"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]string{
		"status":   status,
		"database": database,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
