package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tbuchert/accounting-api/internal/logging"
)

type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string

	FrontendURL string
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	l := logging.FromContext(ctx).With("svc", "mail.password_reset")

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(m.FrontendURL, "/"), token)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.FromName, m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	msg.WriteString("Subject: Password Reset\r\n")
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "Click the link to reset your password: %s\r\n", resetURL)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	l.Info("password reset email sent", "to", to)
	return nil
}
