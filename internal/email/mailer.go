// Package email delivers transactional mail, currently only the password
// recovery link.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer sends account-related email.
type Mailer interface {
	// SendPasswordReset delivers a recovery link to the given address.
	SendPasswordReset(ctx context.Context, to, link string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates an SMTPMailer. Auth is skipped when username is empty.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	m := &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Reset your NoteSync password\r\n\r\n"+
			"We received a request to reset your password.\r\n\r\n"+
			"Open the link below to choose a new one. It expires in one hour.\r\n\r\n%s\r\n\r\n"+
			"If you did not request this, you can ignore this email.\r\n",
		m.from, to, link,
	)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send password reset mail: %w", err)
	}
	return nil
}

// LogMailer logs reset links instead of sending mail. Used in development
// when no SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	slog.Info("password reset link (mail delivery disabled)", "to", to, "link", link)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = LogMailer{}
)
