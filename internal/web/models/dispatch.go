package models

import "time"

// Dispatch represents a single outgoing email from the composer
type Dispatch struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	FromAddress     string     `json:"from_address"`
	ToAddresses     string     `json:"to_addresses"` // comma-joined
	CCAddresses     string     `json:"cc_addresses"`
	Subject         string     `json:"subject"`
	AttachmentCount int        `json:"attachment_count"`
	Mode            string     `json:"mode"` // smtp, simulated
	Status          string     `json:"status"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
}

// Dispatch status constants
const (
	DispatchStatusPending = "pending"
	DispatchStatusSent    = "sent"
	DispatchStatusFailed  = "failed"
)
