// Package dispatch delivers finalized drafts. When the transport is
// configured it submits over SMTP with STARTTLS and authentication;
// otherwise it captures the message to an outbox and reports a
// simulated success without contacting any network peer.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/draft"
)

// ErrNoRecipients is returned when a draft reaches dispatch with an
// empty To list.
var ErrNoRecipients = errors.New("draft has no recipients")

// Result describes a completed dispatch attempt.
type Result struct {
	Simulated bool
	Message   string
}

// Sender attempts delivery of a finalized draft. A single attempt; no
// retries.
type Sender interface {
	Send(ctx context.Context, d *draft.Draft) (*Result, error)
}

// Mode returns the label used for logs, metrics and history rows.
func (r *Result) Mode() string {
	if r.Simulated {
		return "simulated"
	}
	return "smtp"
}

// New picks the sender for the given transport configuration.
func New(cfg config.SMTPConfig, outbox *Outbox, logger *slog.Logger) Sender {
	if !cfg.Configured() {
		logger.Info("smtp transport not configured, dispatch runs in simulation mode")
		return NewSimulatedSender(outbox, logger)
	}
	return NewSMTPSender(cfg, logger)
}

// TransportError is a dispatch failure tagged with the SMTP stage that
// produced it.
type TransportError struct {
	Stage string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
