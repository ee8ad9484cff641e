package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/dispatch"
	"github.com/solris/commhub/internal/metrics"
	"github.com/solris/commhub/internal/web/auth"
	"github.com/solris/commhub/internal/web/db"
	"github.com/solris/commhub/internal/web/handlers"
	"github.com/solris/commhub/internal/web/middleware"
	"github.com/solris/commhub/internal/web/repository"
	"github.com/solris/commhub/internal/web/static"
	"github.com/solris/commhub/internal/web/views"
	"github.com/solris/commhub/internal/workspace"
)

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *db.DB
	http    *http.Server
	outbox  *dispatch.Outbox
	metrics *metrics.Metrics
	msrv    *metrics.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// Initialize database
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize views
	viewEngine, err := views.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize views: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		db:      database,
		metrics: metrics.New(),
	}

	// The outbox captures simulated sends for later inspection. It is
	// only needed when no real transport is configured.
	if !cfg.SMTP.Configured() {
		s.outbox, err = dispatch.OpenOutbox(cfg.Outbox.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open outbox: %w", err)
		}
		logger.Info("SMTP not configured, dispatch runs in simulation mode", "outbox", cfg.Outbox.Path)
	}

	sender := dispatch.New(cfg.SMTP, s.outbox, logger)

	h := handlers.New(handlers.Options{
		Config:     cfg,
		DB:         database,
		Logger:     logger,
		Views:      viewEngine,
		Verifier:   s.buildVerifier(repository.NewUserRepository(database.DB)),
		Workspaces: workspace.NewStore(),
		Sender:     sender,
		Metrics:    s.metrics,
	})

	s.http = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.setupRoutes(h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if cfg.Metrics.Enabled {
		s.msrv = metrics.NewServer(s.metrics, cfg.Metrics.ListenAddr, "/metrics", logger)
	}

	return s, nil
}

func (s *Server) buildVerifier(users *repository.UserRepository) auth.CredentialVerifier {
	chain := auth.Chain{&auth.DBVerifier{Users: users}}
	if s.cfg.Auth.Demo.Enabled {
		chain = append(chain, &auth.StaticVerifier{
			Username: s.cfg.Auth.Demo.Username,
			Password: s.cfg.Auth.Demo.Password,
		})
	}
	return chain
}

func (s *Server) setupRoutes(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))
	r.Use(s.metrics.HTTPMiddleware)
	r.Use(middleware.MethodOverride)

	r.Get("/health", h.Health)
	r.Handle("/static/*", http.StripPrefix("/static/", static.Handler()))

	// Auth routes (public)
	r.Get("/auth/login", h.LoginPage)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/logout", h.Logout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.Sessions(), s.logger))

		r.Get("/", h.Dashboard)

		r.Post("/draft/generate", h.DraftGenerate)
		r.Post("/draft/upload", h.DraftUpload)
		r.Post("/draft/editing", h.DraftEditing)
		r.Post("/draft", h.DraftUpdate)
		r.Post("/draft/submit", h.DraftSubmit)
		r.Post("/draft/reset", h.DraftReset)

		r.Post("/draft/attachments", h.AttachmentAdd)
		r.Delete("/draft/attachments/{id}", h.AttachmentDelete)
		r.Post("/draft/attachments/{id}/preview", h.AttachmentPreview)

		r.Get("/board", h.BoardPage)
		r.Post("/board/emails/{id}/generate", h.BoardGenerate)
		r.Post("/board/records/{id}/accept", h.BoardAccept)
		r.Post("/board/records/{id}/update", h.BoardUpdate)
		r.Post("/board/records/{id}/send", h.BoardSend)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting web server", "addr", s.cfg.Server.ListenAddr)
		if s.cfg.Server.TLS.Enabled {
			errCh <- s.http.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			errCh <- s.http.ListenAndServe()
		}
	}()

	if s.msrv != nil {
		go func() {
			if err := s.msrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
		if s.msrv != nil {
			if err := s.msrv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("metrics shutdown error", "error", err)
			}
		}
		s.close()
		return nil
	}
}

func (s *Server) close() {
	if s.outbox != nil {
		if err := s.outbox.Close(); err != nil {
			s.logger.Error("outbox close error", "error", err)
		}
	}
	s.db.Close()
}
