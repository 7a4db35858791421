package services

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wahegurunursing/classes-api/config"
	"github.com/wahegurunursing/classes-api/model"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host         string
	port         int
	username     string
	password     string
	from         string
	contactInbox string
	appURL       string
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnviornmentVariable) *EmailService {
	host := env.SMTP_HOST
	if host == "" {
		host = "smtp.gmail.com"
	}
	from := env.SMTP_FROM
	if from == "" {
		from = "noreply@wahegurunursingclasses.in"
	}
	appURL := env.APP_URL
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	return &EmailService{
		host:         host,
		port:         env.SMTP_PORT,
		username:     env.SMTP_USERNAME,
		password:     env.SMTP_PASSWORD,
		from:         from,
		contactInbox: env.CONTACT_EMAIL,
		appURL:       appURL,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendContactNotification forwards a contact form submission to the
// configured inbox.
func (e *EmailService) SendContactNotification(msg *model.ContactMessage) error {
	if !e.IsConfigured() || e.contactInbox == "" {
		log.Infow("SMTP not configured, contact message stored only", "reference", msg.Reference)
		return fmt.Errorf("SMTP not configured")
	}

	subject := fmt.Sprintf("New contact enquiry from %s", msg.Name)
	body := e.buildContactBody(msg)
	return e.sendEmail(e.contactInbox, subject, body)
}

// SendVerificationEmail sends an email verification link to a new user.
func (e *EmailService) SendVerificationEmail(toEmail, token, userName string) error {
	if !e.IsConfigured() {
		log.Infow("SMTP not configured, skipping verification email", "email", toEmail)
		return fmt.Errorf("SMTP not configured")
	}

	verifyLink := fmt.Sprintf("%s/verify-email?token=%s", e.appURL, token)
	subject := "Verify Your Email - Waheguru Nursing Classes"
	body := e.buildVerificationBody(userName, verifyLink)
	return e.sendEmail(toEmail, subject, body)
}

func (e *EmailService) buildContactBody(msg *model.ContactMessage) string {
	phone := msg.Phone
	if phone == "" {
		phone = "not provided"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #1a3c6e;">New Contact Enquiry</h2>
	<table cellpadding="6">
		<tr><td><strong>Reference</strong></td><td>%s</td></tr>
		<tr><td><strong>Name</strong></td><td>%s</td></tr>
		<tr><td><strong>Email</strong></td><td>%s</td></tr>
		<tr><td><strong>Phone</strong></td><td>%s</td></tr>
	</table>
	<h3>Message</h3>
	<p style="background: #f5f5f5; padding: 12px; border-radius: 4px;">%s</p>
</body>
</html>`,
		msg.Reference,
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(phone),
		html.EscapeString(msg.Message),
	)
}

func (e *EmailService) buildVerificationBody(userName, verifyLink string) string {
	if userName == "" {
		userName = "Student"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #1a3c6e;">Waheguru Nursing Classes</h2>
	<p>Hello %s,</p>
	<p>Welcome! Please verify your email address to activate your account:</p>
	<p style="text-align: center;">
		<a href="%s" style="display: inline-block; background: #1a3c6e; color: #fff; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Verify Email</a>
	</p>
	<p>If the button does not work, copy this link into your browser:</p>
	<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
	<p style="font-size: 12px; color: #666;">This link expires in 24 hours. If you did not create an account, you can ignore this email.</p>
</body>
</html>`, html.EscapeString(userName), verifyLink, verifyLink)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("Waheguru Nursing Classes <%s>", e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Infow("email sent", "to", to, "subject", subject)
	return nil
}
