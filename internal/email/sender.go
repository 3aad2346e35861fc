package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"news_digest/internal/config"
)

// Sender delivers HTML emails over SMTP with STARTTLS and app-password auth.
type Sender struct {
	cfg    config.EmailConfig
	logger *slog.Logger

	// send is swappable for tests; defaults to smtp.SendMail, which
	// upgrades to TLS when the server advertises STARTTLS.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg config.EmailConfig, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger.With("component", "email_sender"),
		send:   smtp.SendMail,
	}
}

// SendHTML sends one HTML email to one recipient.
func (s *Sender) SendHTML(to, subject, htmlBody string) error {
	if s.cfg.From == "" || s.cfg.Password == "" {
		return fmt.Errorf("smtp credentials not configured")
	}

	msg := buildMessage(s.cfg.From, to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.SMTPHost)

	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// SendConfirmation sends the subscription welcome email.
func (s *Sender) SendConfirmation(to, name string) error {
	if name == "" {
		name = "there"
	}
	body, err := RenderConfirmationHTML(name)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	return s.SendHTML(to, "Welcome to AI News Digest! 🤖", body)
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)
	return []byte(sb.String())
}
