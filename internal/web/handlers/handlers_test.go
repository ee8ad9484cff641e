package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/dispatch"
	"github.com/solris/commhub/internal/metrics"
	"github.com/solris/commhub/internal/web/auth"
	"github.com/solris/commhub/internal/web/db"
	"github.com/solris/commhub/internal/web/middleware"
	"github.com/solris/commhub/internal/web/views"
	"github.com/solris/commhub/internal/workspace"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.SessionTTL = time.Hour
	cfg.SMTP.Sender = "success@solis.example"
	cfg.SMTP.Timeout = 30 * time.Second

	database, err := db.New(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	viewEngine, err := views.New()
	if err != nil {
		t.Fatalf("views.New() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(Options{
		Config:     cfg,
		DB:         database,
		Logger:     logger,
		Views:      viewEngine,
		Verifier:   &auth.StaticVerifier{Username: "demo", Password: "demo123"},
		Workspaces: workspace.NewStore(),
		Sender:     dispatch.NewSimulatedSender(nil, logger),
		Metrics:    metrics.New(),
	})

	r := chi.NewRouter()
	r.Use(middleware.MethodOverride)
	r.Get("/auth/login", h.LoginPage)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/logout", h.Logout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.Sessions(), logger))
		r.Get("/", h.Dashboard)
		r.Post("/draft/generate", h.DraftGenerate)
		r.Post("/draft/editing", h.DraftEditing)
		r.Post("/draft", h.DraftUpdate)
		r.Post("/draft/submit", h.DraftSubmit)
		r.Post("/draft/reset", h.DraftReset)
		r.Delete("/draft/attachments/{id}", h.AttachmentDelete)
		r.Post("/draft/attachments/{id}/preview", h.AttachmentPreview)
		r.Get("/board", h.BoardPage)
		r.Post("/board/emails/{id}/generate", h.BoardGenerate)
		r.Post("/board/records/{id}/accept", h.BoardAccept)
		r.Post("/board/records/{id}/send", h.BoardSend)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// client returns an HTTP client with a cookie jar and no redirect following
func client(t *testing.T) *http.Client {
	t.Helper()
	jar := newCookieJar()
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type cookieJar struct {
	cookies map[string][]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{cookies: make(map[string][]*http.Cookie)}
}

func (j *cookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.cookies[u.Host] = append(j.cookies[u.Host], cookies...)
}

func (j *cookieJar) Cookies(u *url.URL) []*http.Cookie {
	return j.cookies[u.Host]
}

func login(t *testing.T, c *http.Client, base string) {
	t.Helper()
	resp, err := c.PostForm(base+"/auth/login", url.Values{
		"username": {"demo"},
		"password": {"demo123"},
	})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", resp.StatusCode)
	}
}

func get(t *testing.T, c *http.Client, rawurl string) string {
	t.Helper()
	resp, err := c.Get(rawurl)
	if err != nil {
		t.Fatalf("GET %s failed: %v", rawurl, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d: %s", rawurl, resp.StatusCode, body)
	}
	return string(body)
}

func postForm(t *testing.T, c *http.Client, rawurl string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(rawurl, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", rawurl, err)
	}
	resp.Body.Close()
	return resp
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	c := client(t)

	resp, err := c.PostForm(srv.URL+"/auth/login", url.Values{
		"username": {"demo"},
		"password": {"wrong"},
	})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Invalid credentials.") {
		t.Error("login page missing error message")
	}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t)
	c := client(t)

	resp, err := c.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/auth/login" {
		t.Errorf("Location = %q", loc)
	}
}

func TestDraftLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := client(t)
	login(t, c, srv.URL)

	// Empty workspace shows the generate form.
	body := get(t, c, srv.URL+"/")
	if !strings.Contains(body, "Generate Draft Email") {
		t.Fatal("dashboard missing generate form")
	}

	// Generate a draft.
	resp := postForm(t, c, srv.URL+"/draft/generate", url.Values{
		"name":            {"Acme Corp"},
		"recipient_email": {"client@acme.com"},
		"cc_email":        {"manager@solis.example"},
		"product":         {"Solis Enterprise"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}

	body = get(t, c, srv.URL+"/")
	if !strings.Contains(body, "Monthly Performance Review: Solis Enterprise") {
		t.Error("dashboard missing generated subject")
	}
	if !strings.Contains(body, "usage_summary.xlsx") || !strings.Contains(body, "device_metrics.xlsx") {
		t.Error("dashboard missing generated attachments")
	}

	// Edit the subject.
	postForm(t, c, srv.URL+"/draft/editing", url.Values{"editing": {"on"}})
	postForm(t, c, srv.URL+"/draft", url.Values{
		"to":      {"client@acme.com"},
		"cc":      {""},
		"subject": {"Revised Review"},
		"body":    {"Short body."},
	})
	body = get(t, c, srv.URL+"/")
	if !strings.Contains(body, "Revised Review") {
		t.Error("edited subject not saved")
	}

	// Submit; transport is unconfigured so the send is simulated.
	resp = postForm(t, c, srv.URL+"/draft/submit", url.Values{})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("submit status = %d", resp.StatusCode)
	}
	body = get(t, c, srv.URL+resp.Header.Get("Location"))
	if !strings.Contains(body, "Simulated send to client@acme.com") {
		t.Error("dashboard missing simulated send notice")
	}
	if !strings.Contains(body, "Recent Dispatches") {
		t.Error("dashboard missing dispatch history")
	}

	// Reset returns to the empty state.
	postForm(t, c, srv.URL+"/draft/reset", url.Values{})
	body = get(t, c, srv.URL+"/")
	if !strings.Contains(body, "Generate Draft Email") {
		t.Error("workspace did not reset")
	}
}

func TestAttachmentRemoveAndPreview(t *testing.T) {
	srv := newTestServer(t)
	c := client(t)
	login(t, c, srv.URL)

	postForm(t, c, srv.URL+"/draft/generate", url.Values{})
	body := get(t, c, srv.URL+"/")

	idPattern := regexp.MustCompile(`/draft/attachments/([0-9a-f-]{36})/preview`)
	matches := idPattern.FindAllStringSubmatch(body, -1)
	if len(matches) != 2 {
		t.Fatalf("found %d attachments, want 2", len(matches))
	}
	first := matches[0][1]

	// Preview the first attachment.
	postForm(t, c, srv.URL+"/draft/attachments/"+first+"/preview", url.Values{})
	body = get(t, c, srv.URL+"/")
	if !strings.Contains(body, "Preview: usage_summary.xlsx") {
		t.Error("preview table not shown")
	}
	if !strings.Contains(body, "Metric") {
		t.Error("preview rows missing header")
	}

	// Remove it via method override.
	postForm(t, c, srv.URL+"/draft/attachments/"+first, url.Values{"_method": {"DELETE"}})
	body = get(t, c, srv.URL+"/")
	if strings.Contains(body, first) {
		t.Error("removed attachment still listed")
	}
	if strings.Contains(body, "Preview: usage_summary.xlsx") {
		t.Error("preview still shown after removal")
	}
}

func TestBoardFlow(t *testing.T) {
	srv := newTestServer(t)
	c := client(t)
	login(t, c, srv.URL)

	body := get(t, c, srv.URL+"/board")
	if !strings.Contains(body, "New Emails (5)") {
		t.Error("board missing seeded email count")
	}
	if !strings.Contains(body, "alice@client.com") {
		t.Error("board missing seeded email")
	}

	// Generate a response for email 103.
	resp := postForm(t, c, srv.URL+"/board/emails/103/generate", url.Values{})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}

	body = get(t, c, srv.URL+"/board?stage=generated")
	if !strings.Contains(body, "Generated Responses (2)") {
		t.Error("generated count did not grow")
	}
	if !strings.Contains(body, "Re: Integration Issues") {
		t.Error("generated reply missing")
	}

	// Accept the seeded generated response.
	postForm(t, c, srv.URL+"/board/records/201/accept", url.Values{})
	body = get(t, c, srv.URL+"/board?stage=approved")
	if !strings.Contains(body, "Approved Responses (2)") {
		t.Error("approved count did not grow")
	}

	// Send it.
	postForm(t, c, srv.URL+"/board/records/201/send", url.Values{"from": {"approved"}})
	body = get(t, c, srv.URL+"/board?stage=sent")
	if !strings.Contains(body, "Responses Sent (2)") {
		t.Error("sent count did not grow")
	}
}
