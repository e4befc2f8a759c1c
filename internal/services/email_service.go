package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}

// Dialer is the part of *gomail.Dialer the email service needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
	AppURL       string
}

type emailService struct {
	dialer   Dialer
	from     string
	fromName string
	appURL   string
	log      *zap.SugaredLogger
}

// NewEmailService dials cfg.SMTPHost with username/password auth. gomail
// switches to STARTTLS when the server advertises it; port 465 uses implicit TLS.
func NewEmailService(cfg EmailConfig, log *zap.SugaredLogger) EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return NewEmailServiceWithDialer(dialer, cfg, log)
}

func NewEmailServiceWithDialer(dialer Dialer, cfg EmailConfig, log *zap.SugaredLogger) EmailService {
	return &emailService{
		dialer:   dialer,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		appURL:   strings.TrimRight(cfg.AppURL, "/"),
		log:      log,
	}
}

// VerificationURL builds the link mailed to a new registrant.
func VerificationURL(appURL, token string) string {
	return strings.TrimRight(appURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

func (s *emailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	link := VerificationURL(s.appURL, token)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Verify your email address")

	body := fmt.Sprintf(`
		<h2>Welcome!</h2>
		<p>Please verify your email address by clicking the link below:</p>
		<p><a href="%s">Verify Email Address</a></p>
		<p>This link will expire in 24 hours.</p>
	`, link)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	s.log.Infow("[email][verify] sent", "to", email)
	return nil
}
