package repository

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/solris/commhub/internal/web/models"
)

// setupTestDB creates an in-memory SQLite database with all migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS dispatches (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			from_address TEXT NOT NULL,
			to_addresses TEXT NOT NULL,
			cc_addresses TEXT,
			subject TEXT NOT NULL,
			attachment_count INTEGER DEFAULT 0,
			mode TEXT NOT NULL,
			status TEXT DEFAULT 'pending',
			error_message TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			sent_at TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			t.Fatalf("migration failed: %v", err)
		}
	}

	return db
}

func TestUserCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)

	created, err := users.Create("demo", "demo123", "Demo User")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	u, err := users.GetByUsername("demo")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if u == nil {
		t.Fatal("GetByUsername() returned nil")
	}
	if u.ID != created.ID {
		t.Errorf("ID = %q, want %q", u.ID, created.ID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("demo123")); err != nil {
		t.Errorf("password hash does not verify: %v", err)
	}

	missing, err := users.GetByUsername("nobody")
	if err != nil {
		t.Fatalf("GetByUsername(nobody) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetByUsername(nobody) = %+v, want nil", missing)
	}
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionRepository(db)

	s, err := sessions.Create("demo", time.Hour)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := sessions.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.Username != "demo" {
		t.Fatalf("Get() = %+v", got)
	}

	if err := sessions.Delete(s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := sessions.Get(s.ID); got != nil {
		t.Error("session survived Delete")
	}
}

func TestSessionExpiry(t *testing.T) {
	db := setupTestDB(t)
	sessions := NewSessionRepository(db)

	s, err := sessions.Create("demo", -time.Minute)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if got, _ := sessions.Get(s.ID); got != nil {
		t.Error("Get() returned expired session")
	}

	n, err := sessions.DeleteExpired()
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpired() = %d, want 1", n)
	}
}

func TestDispatchLifecycle(t *testing.T) {
	db := setupTestDB(t)
	dispatches := NewDispatchRepository(db)

	d := &models.Dispatch{
		Username:        "demo",
		FromAddress:     "success@solis.example",
		ToAddresses:     "client@acme.com",
		Subject:         "Monthly Performance Review",
		AttachmentCount: 2,
		Mode:            "simulated",
	}
	if err := dispatches.Create(d); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.Status != models.DispatchStatusPending {
		t.Errorf("Status = %q after Create", d.Status)
	}

	if err := dispatches.MarkSent(d.ID); err != nil {
		t.Fatalf("MarkSent() error = %v", err)
	}

	failed := &models.Dispatch{
		Username:    "demo",
		FromAddress: "success@solis.example",
		ToAddresses: "other@acme.com",
		Subject:     "Second",
		Mode:        "smtp",
	}
	if err := dispatches.Create(failed); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := dispatches.MarkFailed(failed.ID, "starttls: connection reset"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	list, err := dispatches.ListRecent("demo", 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListRecent() returned %d rows, want 2", len(list))
	}
	byID := map[string]*models.Dispatch{list[0].ID: list[0], list[1].ID: list[1]}
	if got := byID[d.ID]; got == nil || got.Status != models.DispatchStatusSent || got.SentAt == nil {
		t.Errorf("sent dispatch = %+v", got)
	}
	if got := byID[failed.ID]; got == nil || got.Status != models.DispatchStatusFailed || got.ErrorMessage == "" {
		t.Errorf("failed dispatch = %+v", got)
	}

	other, err := dispatches.ListRecent("someoneelse", 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("ListRecent(someoneelse) returned %d rows", len(other))
	}
}
