package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solris/commhub/internal/web/models"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session for the user
func (r *SessionRepository) Create(username string, ttl time.Duration) (*models.Session, error) {
	s := &models.Session{
		ID:        uuid.New().String(),
		Username:  username,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, username, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		s.ID, s.Username, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// Get returns an unexpired session by ID, nil when not found or expired
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	s := &models.Session{}

	err := r.db.QueryRow(`
		SELECT id, username, expires_at, created_at
		FROM sessions WHERE id = ? AND expires_at > ?`, id, time.Now(),
	).Scan(&s.ID, &s.Username, &s.ExpiresAt, &s.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteExpired removes all expired sessions and reports how many
func (r *SessionRepository) DeleteExpired() (int64, error) {
	res, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
