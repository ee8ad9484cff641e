package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/solris/commhub/internal/web/models"
)

type DispatchRepository struct {
	db *sql.DB
}

func NewDispatchRepository(db *sql.DB) *DispatchRepository {
	return &DispatchRepository{db: db}
}

// Create records a pending dispatch
func (r *DispatchRepository) Create(d *models.Dispatch) error {
	d.ID = uuid.New().String()
	d.Status = models.DispatchStatusPending
	d.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO dispatches (id, username, from_address, to_addresses, cc_addresses,
			subject, attachment_count, mode, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Username, d.FromAddress, d.ToAddresses, nullString(d.CCAddresses),
		d.Subject, d.AttachmentCount, d.Mode, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatch: %w", err)
	}
	return nil
}

// MarkSent records a successful dispatch
func (r *DispatchRepository) MarkSent(id string) error {
	now := time.Now()
	_, err := r.db.Exec(
		"UPDATE dispatches SET status = ?, sent_at = ? WHERE id = ?",
		models.DispatchStatusSent, now, id,
	)
	return err
}

// MarkFailed records a failed dispatch with its error
func (r *DispatchRepository) MarkFailed(id, errMsg string) error {
	_, err := r.db.Exec(
		"UPDATE dispatches SET status = ?, error_message = ? WHERE id = ?",
		models.DispatchStatusFailed, errMsg, id,
	)
	return err
}

// ListRecent returns the user's dispatches, newest first
func (r *DispatchRepository) ListRecent(username string, limit int) ([]*models.Dispatch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, username, from_address, to_addresses, cc_addresses, subject,
			attachment_count, mode, status, error_message, created_at, sent_at
		FROM dispatches WHERE username = ?
		ORDER BY created_at DESC LIMIT ?`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Dispatch
	for rows.Next() {
		d := &models.Dispatch{}
		var cc, errMsg sql.NullString
		var sentAt sql.NullTime

		err := rows.Scan(&d.ID, &d.Username, &d.FromAddress, &d.ToAddresses, &cc, &d.Subject,
			&d.AttachmentCount, &d.Mode, &d.Status, &errMsg, &d.CreatedAt, &sentAt)
		if err != nil {
			return nil, err
		}

		d.CCAddresses = cc.String
		d.ErrorMessage = errMsg.String
		if sentAt.Valid {
			d.SentAt = &sentAt.Time
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
