package auth

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/solris/commhub/internal/web/repository"
)

func TestStaticVerifier(t *testing.T) {
	v := &StaticVerifier{Username: "demo", Password: "demo123"}
	ctx := context.Background()

	tests := []struct {
		username, password string
		want               bool
	}{
		{"demo", "demo123", true},
		{"demo", "wrong", false},
		{"other", "demo123", false},
		{"", "", false},
	}
	for _, tt := range tests {
		ok, err := v.Verify(ctx, tt.username, tt.password)
		if err != nil {
			t.Fatalf("Verify(%q, %q) error = %v", tt.username, tt.password, err)
		}
		if ok != tt.want {
			t.Errorf("Verify(%q, %q) = %v, want %v", tt.username, tt.password, ok, tt.want)
		}
	}
}

func TestDBVerifier(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		name TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	users := repository.NewUserRepository(db)
	if _, err := users.Create("alice", "s3cret", ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	v := &DBVerifier{Users: users}
	ctx := context.Background()

	if ok, err := v.Verify(ctx, "alice", "s3cret"); err != nil || !ok {
		t.Errorf("Verify(alice, s3cret) = %v, %v", ok, err)
	}
	if ok, _ := v.Verify(ctx, "alice", "wrong"); ok {
		t.Error("wrong password accepted")
	}
	if ok, _ := v.Verify(ctx, "nobody", "s3cret"); ok {
		t.Error("unknown user accepted")
	}
}

func TestChain(t *testing.T) {
	chain := Chain{
		&StaticVerifier{Username: "demo", Password: "demo123"},
		&StaticVerifier{Username: "admin", Password: "hunter2"},
	}
	ctx := context.Background()

	if ok, _ := chain.Verify(ctx, "demo", "demo123"); !ok {
		t.Error("first verifier not consulted")
	}
	if ok, _ := chain.Verify(ctx, "admin", "hunter2"); !ok {
		t.Error("second verifier not consulted")
	}
	if ok, _ := chain.Verify(ctx, "demo", "hunter2"); ok {
		t.Error("mixed credentials accepted")
	}
}
