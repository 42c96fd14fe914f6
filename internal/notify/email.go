package notify

import (
	"context"
	"log/slog"
	"net"
	"net/smtp"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

type smtpMailer struct{ cfg SMTPConfig }

func NewSMTPMailer(cfg SMTPConfig) Mailer { return &smtpMailer{cfg: cfg} }

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	msg := "From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	// MailHog and friends run without auth
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

type logMailer struct{ log *slog.Logger }

// NewLogMailer writes messages to the log instead of sending them; used when
// no SMTP host is configured.
func NewLogMailer(log *slog.Logger) Mailer { return &logMailer{log: log} }

func (m *logMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info("mail", "to", to, "subject", subject, "body", body)
	return nil
}
