// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through a relay with PLAIN auth when credentials are set.
type SMTPMailer struct {
	addr string
	host string
	from string
	auth smtp.Auth
	send sendFunc
	now  func() time.Time
}

// New returns an SMTP mailer, or a logging mailer when no host is configured.
func New(cfg config.MailConfig, logg *logger.Logger) Mailer {
	host := strings.TrimSpace(cfg.SMTPHost)
	if host == "" {
		return &LogMailer{logg: logg}
	}
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, host)
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(cfg.SMTPPort)),
		host: host,
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
		now:  time.Now,
	}
}

// Send delivers msg. net/smtp has no context support; ctx is checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.ContainsAny(msg.To+msg.Subject, "\r\n") {
		return fmt.Errorf("header values must not contain line breaks")
	}
	if err := m.send(m.addr, m.auth, m.from, []string{msg.To}, m.render(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) render(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("Date: " + m.now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them. Used in dev.
type LogMailer struct {
	logg *logger.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject, "body": msg.Body})
		m.logg.Info(ctx, "mail delivery skipped (no smtp host)")
	}
	return nil
}
