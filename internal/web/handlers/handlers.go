package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/dispatch"
	"github.com/solris/commhub/internal/metrics"
	"github.com/solris/commhub/internal/pipeline"
	"github.com/solris/commhub/internal/web/auth"
	"github.com/solris/commhub/internal/web/db"
	"github.com/solris/commhub/internal/web/middleware"
	"github.com/solris/commhub/internal/web/repository"
	"github.com/solris/commhub/internal/web/views"
	"github.com/solris/commhub/internal/workspace"
)

type Handlers struct {
	cfg    *config.Config
	db     *db.DB
	logger *slog.Logger
	views  *views.Engine

	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	dispatches *repository.DispatchRepository

	verifier   auth.CredentialVerifier
	workspaces *workspace.Store
	sender     dispatch.Sender
	generator  *pipeline.Generator
	metrics    *metrics.Metrics
}

type Options struct {
	Config     *config.Config
	DB         *db.DB
	Logger     *slog.Logger
	Views      *views.Engine
	Verifier   auth.CredentialVerifier
	Workspaces *workspace.Store
	Sender     dispatch.Sender
	Metrics    *metrics.Metrics
}

func New(opts Options) *Handlers {
	return &Handlers{
		cfg:        opts.Config,
		db:         opts.DB,
		logger:     opts.Logger,
		views:      opts.Views,
		users:      repository.NewUserRepository(opts.DB.DB),
		sessions:   repository.NewSessionRepository(opts.DB.DB),
		dispatches: repository.NewDispatchRepository(opts.DB.DB),
		verifier:   opts.Verifier,
		workspaces: opts.Workspaces,
		sender:     opts.Sender,
		generator:  pipeline.NewGenerator(opts.Config.SMTP.Sender),
		metrics:    opts.Metrics,
	}
}

// Sessions exposes the session repository for middleware wiring
func (h *Handlers) Sessions() *repository.SessionRepository {
	return h.sessions
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// ws returns the workspace bound to the request's session
func (h *Handlers) ws(r *http.Request) *workspace.Workspace {
	return h.workspaces.Get(middleware.SessionID(r), middleware.Username(r))
}

// render executes a page template
func (h *Handlers) render(w http.ResponseWriter, name string, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.views.Render(w, name, data); err != nil {
		h.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// redirectWith redirects carrying a flash message as a query parameter
func redirectWith(w http.ResponseWriter, r *http.Request, path, key, msg string) {
	if msg != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + key + "=" + url.QueryEscape(msg)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// flash pulls flash messages out of the query string
func flash(r *http.Request, data map[string]any) {
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	if msg := r.URL.Query().Get("success"); msg != "" {
		data["Success"] = msg
	}
}
