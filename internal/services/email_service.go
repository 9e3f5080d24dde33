package services

import (
	"fmt"
	"html"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/the-lucky-clover/agentcy-one/internal/config"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
	SendVerificationEmail(email, name, token string) error
	SendPasswordResetEmail(email, token string) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer sender
	from   string
	appURL string
}

// NewEmailService returns an SMTP-backed sender, or a logging no-op when email is disabled.
func NewEmailService(cfg config.EmailConfig) EmailService {
	if !cfg.Enabled {
		return noopEmailService{}
	}
	return &emailService{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.FromEmail,
		appURL: strings.TrimRight(cfg.AppURL, "/"),
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Agentcy, %s!</h2>
		<p>Your account is ready. Describe what you want to build and we will write the code.</p>
		<p><a href="%s/dashboard">Open your dashboard</a></p>
		<p>The Agentcy Team</p>
	`, html.EscapeString(name), s.appURL)

	if err := s.send(email, "Welcome to Agentcy!", body); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendVerificationEmail(email, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, token)
	body := fmt.Sprintf(`
		<h3>Confirm your email</h3>
		<p>Hi %s, please confirm your email address to finish setting up your account.</p>
		<p><a href="%s">Verify email</a></p>
		<p>The link expires in 24 hours.</p>
	`, html.EscapeString(name), link)

	if err := s.send(email, "Verify your email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appURL, token)
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>We received a request to reset the password for your account.</p>
		<p><a href="%s">Choose a new password</a></p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, link)

	if err := s.send(email, "Password reset request", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

type noopEmailService struct{}

func (noopEmailService) SendWelcomeEmail(email, _ string) error {
	log.Debugf("[email][disabled] welcome to=%s", email)
	return nil
}

func (noopEmailService) SendVerificationEmail(email, _, _ string) error {
	log.Debugf("[email][disabled] verification to=%s", email)
	return nil
}

func (noopEmailService) SendPasswordResetEmail(email, _ string) error {
	log.Debugf("[email][disabled] password reset to=%s", email)
	return nil
}
