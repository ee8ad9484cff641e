package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// LoginPage renders the login page
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	flash(r, data)
	h.render(w, "login", data)
}

// Login handles login form submission
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, "Invalid form data")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	ok, err := h.verifier.Verify(r.Context(), username, password)
	if err != nil {
		h.logger.Error("credential check failed", "error", err)
		h.metrics.IncLogin("error")
		h.renderLoginError(w, "Login is temporarily unavailable")
		return
	}
	if !ok {
		h.metrics.IncLogin("failure")
		msg := "Invalid credentials."
		if h.cfg.Auth.Demo.Enabled {
			msg = fmt.Sprintf("Invalid credentials. Use %s / %s",
				h.cfg.Auth.Demo.Username, h.cfg.Auth.Demo.Password)
		}
		h.renderLoginError(w, msg)
		return
	}

	sess, err := h.sessions.Create(username, h.cfg.Auth.SessionTTL)
	if err != nil {
		h.logger.Error("failed to create session", "error", err, "username", username)
		h.renderLoginError(w, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.Server.TLS.Enabled,
		SameSite: http.SameSiteLaxMode,
	})

	h.metrics.IncLogin("success")
	h.logger.Info("user logged in", "username", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout ends the session and drops its workspace
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session")
	if err == nil {
		h.workspaces.Delete(cookie.Value)
		if err := h.sessions.Delete(cookie.Value); err != nil {
			h.logger.Error("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})

	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handlers) renderLoginError(w http.ResponseWriter, message string) {
	h.render(w, "login", map[string]any{"Error": message})
}
