// Package services provides external service integrations and technical concerns like notifications and rate limiting
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"
)

// NotificationService handles sending transactional email to leads
type NotificationService interface {
	SendConfirmationEmail(email, name, confirmURL string) error
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, textBody, htmlBody string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	emailProvider EmailProvider
}

// NewNotificationService creates a new notification service
func NewNotificationService(emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		emailProvider: emailProvider,
	}
}

const confirmationSubject = "Confirmá tu email para agendar tu llamada | VILLEX"

var confirmationTemplate = template.Must(template.New("confirm_email").Parse(`<!DOCTYPE html>
<html lang="es">
<body style="font-family: Arial, sans-serif; color: #1a1a1a;">
  <p>Hola {{.Name}},</p>
  <p>Gracias por escribirnos. Para coordinar tu llamada necesitamos confirmar tu email.</p>
  <p style="margin: 24px 0;">
    <a href="{{.ConfirmURL}}" style="background: #111; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Confirmar mi email</a>
  </p>
  <p>Si el botón no funciona, copiá y pegá este enlace en tu navegador:</p>
  <p>{{.ConfirmURL}}</p>
  <p>El enlace vence en 24 horas. Si no enviaste este formulario, ignorá este correo.</p>
  <p>— VILLEX</p>
</body>
</html>`))

// SendConfirmationEmail renders and dispatches the email-confirmation message
func (s *NotificationServiceImpl) SendConfirmationEmail(email, name, confirmURL string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}

	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	var html bytes.Buffer
	err := confirmationTemplate.Execute(&html, struct {
		Name       string
		ConfirmURL string
	}{Name: name, ConfirmURL: confirmURL})
	if err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	text := fmt.Sprintf("Hola %s,\n\nConfirmá tu email para agendar tu llamada:\n%s\n\nEl enlace vence en 24 horas.\n\n— VILLEX", name, confirmURL)

	return s.emailProvider.SendEmail(email, confirmationSubject, text, html.String())
}

// SMTPEmailProvider sends email through an SMTP relay
type SMTPEmailProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail, fromName string) EmailProvider {
	return &SMTPEmailProvider{
		dialer:    gomail.NewDialer(host, port, username, password),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, textBody, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.fromEmail, p.fromName)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if htmlBody != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email, err)
	}

	return nil
}

// SentEmail records one delivery made through the mock provider
type SentEmail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MockEmailProvider logs and records deliveries instead of sending them
type MockEmailProvider struct {
	mu   sync.Mutex
	Sent []SentEmail
	Fail bool
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, textBody, htmlBody string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Fail {
		return fmt.Errorf("mock email provider failure")
	}

	p.Sent = append(p.Sent, SentEmail{To: email, Subject: subject, TextBody: textBody, HTMLBody: htmlBody})
	log.Printf("Email sent to %s [%s]", email, subject)
	return nil
}
