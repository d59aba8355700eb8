package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"tradegate/internal/platform/config"
)

const (
	smtpDialTimeout = 8 * time.Second
	smtpDeadline    = 15 * time.Second
)

// SMTP delivers mail over a STARTTLS SMTP relay.
type SMTP struct {
	cfg config.SMTPConfig
}

// NewSMTP constructs an SMTP transport from config.
func NewSMTP(cfg config.SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg}
}

// Send delivers one message. A connection deadline bounds the whole exchange
// so a stalled relay cannot hang the caller.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)

	dialer := net.Dialer{Timeout: smtpDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	_ = conn.SetDeadline(time.Now().Add(smtpDeadline))

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = client.Quit() }()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(s.encode(msg)); err != nil {
		_ = w.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return nil
}

func (s *SMTP) encode(msg Message) []byte {
	from := fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.From)
	raw := strings.Join([]string{
		"From: " + from,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		msg.HTML,
	}, "\r\n")
	return []byte(raw)
}
