package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/redmonkez12/user-accounts-api/internal/logging"
)

// Service sends transactional mail over SMTP.
type Service struct {
	dialer      *gomail.Dialer
	fromEmail   string
	frontendURL string
}

func NewService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, frontendURL string) *Service {
	return &Service{
		dialer:      gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		fromEmail:   fromEmail,
		frontendURL: frontendURL,
	}
}

// SendVerificationEmail sends an email verification link to the user.
// Retry policy is owned by the caller.
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	verificationLink := fmt.Sprintf("%s/verify/%s", s.frontendURL, token)

	body, err := renderVerificationTemplate(verificationLink)
	if err != nil {
		logger.Error("failed to render email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Verify your email address")
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Warn("failed to send verification email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

var verificationTemplate = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Verify your email address</h2>
    <p>Thank you for signing up! Please click the button below to verify your email address and activate your account.</p>

    <a href="{{.VerificationLink}}" style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0;">Verify Email Address</a>

    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all; color: #4F46E5;">{{.VerificationLink}}</p>

    <p>If you didn't create an account, you can safely ignore this email.</p>
</body>
</html>
`))

func renderVerificationTemplate(verificationLink string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		VerificationLink string
	}{
		VerificationLink: verificationLink,
	}

	if err := verificationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
