package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/solris/commhub/internal/web/repository"
)

type ctxKey string

const (
	ctxKeySessionID ctxKey = "session_id"
	ctxKeyUsername  ctxKey = "username"
)

// Logger middleware logs HTTP requests
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"duration", time.Since(start),
				"ip", r.RemoteAddr,
			)
		})
	}
}

// Auth middleware validates the session cookie and puts the session ID
// and username in the request context. Unauthenticated requests are
// redirected to the login page.
func Auth(sessions *repository.SessionRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session")
			if err != nil {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			sess, err := sessions.Get(cookie.Value)
			if err != nil {
				logger.Error("session lookup failed", "error", err)
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}
			if sess == nil {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySessionID, sess.ID)
			ctx = context.WithValue(ctx, ctxKeyUsername, sess.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MethodOverride middleware allows overriding HTTP method via _method form field
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.FormValue("_method")
			if method != "" {
				r.Method = method
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SessionID returns the session ID stored by Auth
func SessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeySessionID).(string)
	return id
}

// Username returns the username stored by Auth
func Username(r *http.Request) string {
	name, _ := r.Context().Value(ctxKeyUsername).(string)
	return name
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
