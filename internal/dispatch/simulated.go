package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solris/commhub/internal/draft"
)

// SimulatedSender reports success without any network contact,
// capturing the assembled message to the outbox so the operator can
// inspect what a real send would have delivered.
type SimulatedSender struct {
	outbox *Outbox
	logger *slog.Logger
}

func NewSimulatedSender(outbox *Outbox, logger *slog.Logger) *SimulatedSender {
	return &SimulatedSender{outbox: outbox, logger: logger}
}

func (s *SimulatedSender) Send(ctx context.Context, d *draft.Draft) (*Result, error) {
	if len(d.To) == 0 {
		return nil, ErrNoRecipients
	}

	data, err := BuildMessage(d)
	if err != nil {
		return nil, err
	}

	if s.outbox != nil {
		captured := &CapturedMessage{
			ID:         uuid.New().String(),
			From:       d.Sender,
			To:         d.Recipients(),
			Subject:    d.Subject,
			Data:       data,
			CapturedAt: time.Now(),
		}
		if err := s.outbox.Capture(ctx, captured); err != nil {
			return nil, fmt.Errorf("failed to capture simulated send: %w", err)
		}
	}

	s.logger.Info("simulated send",
		"from", d.Sender,
		"to", d.To,
		"subject", d.Subject,
	)

	return &Result{
		Simulated: true,
		Message:   fmt.Sprintf("Simulated send to %s (SMTP not configured)", strings.Join(d.To, ", ")),
	}, nil
}
