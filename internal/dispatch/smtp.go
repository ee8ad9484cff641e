package dispatch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/draft"
)

// SMTPSender submits messages to the configured relay: dial with
// timeout, STARTTLS, authenticate, send to the union of To and Cc.
type SMTPSender struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

func (s *SMTPSender) Send(ctx context.Context, d *draft.Draft) (*Result, error) {
	if len(d.To) == 0 {
		return nil, ErrNoRecipients
	}

	data, err := BuildMessage(d)
	if err != nil {
		return nil, err
	}

	recipients := d.Recipients()

	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return nil, &TransportError{Stage: "connect", Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	} else {
		conn.SetDeadline(time.Now().Add(s.cfg.Timeout))
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return nil, &TransportError{Stage: "handshake", Err: err}
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return nil, &TransportError{Stage: "STARTTLS", Err: errors.New("server does not offer STARTTLS")}
	}
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return nil, &TransportError{Stage: "STARTTLS", Err: err}
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return nil, &TransportError{Stage: "AUTH", Err: err}
	}

	if err := client.Mail(d.Sender); err != nil {
		return nil, &TransportError{Stage: "MAIL FROM", Err: err}
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return nil, &TransportError{Stage: fmt.Sprintf("RCPT TO %s", rcpt), Err: err}
		}
	}

	wc, err := client.Data()
	if err != nil {
		return nil, &TransportError{Stage: "DATA", Err: err}
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return nil, &TransportError{Stage: "DATA write", Err: err}
	}
	if err := wc.Close(); err != nil {
		return nil, &TransportError{Stage: "DATA close", Err: err}
	}

	client.Quit()

	s.logger.Info("message delivered",
		"from", d.Sender,
		"to", recipients,
		"subject", d.Subject,
	)

	return &Result{
		Message: fmt.Sprintf("Email sent to %s", strings.Join(recipients, ", ")),
	}, nil
}
