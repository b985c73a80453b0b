package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/config"
)

type EmailService interface {
	SendWelcome(email, name string) error
	SendPasswordReset(email, name, rawToken string) error
	SendReactivate(email, name, rawToken string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	return &emailService{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:        cfg.FromEmail,
		frontendURL: cfg.FrontendURL,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return apperrors.Wrap(apperrors.KindDelivery, "There was an error sending the email. Please try again later.", err)
	}
	return nil
}

func (s *emailService) SendWelcome(email, name string) error {
	body := fmt.Sprintf(`
		<h2>Welcome to Resume Builder, %s!</h2>
		<p>Thank you for signing up. Your account has been created.</p>
		<p>Head over to <a href="%s">the app</a> to build your first resume.</p>
	`, name, s.frontendURL)
	return s.send(email, "Welcome to the Resume Builder", body)
}

func (s *emailService) SendPasswordReset(email, name, rawToken string) error {
	url := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, rawToken)
	body := fmt.Sprintf(`
		<h3>Password reset requested</h3>
		<p>Hi %s, we received a request to reset the password for your account.</p>
		<p><a href="%s">Reset your password</a></p>
		<p>If you did not request this change, you can ignore this email.</p>
	`, name, url)
	return s.send(email, "The link is available for 10 minutes", body)
}

func (s *emailService) SendReactivate(email, name, rawToken string) error {
	url := fmt.Sprintf("%s/reactivate/%s", s.frontendURL, rawToken)
	body := fmt.Sprintf(`
		<h3>Reactivate your account</h3>
		<p>Hi %s, follow the link below to reactivate your account.</p>
		<p><a href="%s">Reactivate account</a></p>
	`, name, url)
	return s.send(email, "Reactivate Account", body)
}
