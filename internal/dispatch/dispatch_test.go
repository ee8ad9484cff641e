package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/solris/commhub/internal/config"
)

func TestNewPicksSimulatedWhenUnconfigured(t *testing.T) {
	cfg := config.SMTPConfig{Port: 587, Timeout: 30 * time.Second}

	s := New(cfg, nil, discardLogger())
	if _, ok := s.(*SimulatedSender); !ok {
		t.Fatalf("New() = %T, want *SimulatedSender", s)
	}
}

func TestNewPicksSMTPWhenConfigured(t *testing.T) {
	cfg := config.SMTPConfig{
		Host:     "smtp.solis.example",
		Port:     587,
		Username: "success@solis.example",
		Password: "secret",
		Sender:   "success@solis.example",
		Timeout:  30 * time.Second,
	}

	s := New(cfg, nil, discardLogger())
	if _, ok := s.(*SMTPSender); !ok {
		t.Fatalf("New() = %T, want *SMTPSender", s)
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &TransportError{Stage: "connect", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is does not reach wrapped error")
	}
	if got := err.Error(); got == "" || got == inner.Error() {
		t.Errorf("Error() = %q, want stage-tagged message", got)
	}
}
