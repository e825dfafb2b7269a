package services

import (
	"fmt"
	"time"

	"github.com/quickbites/backend/internal/config"
	"github.com/quickbites/backend/pkg/logger"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		logger.WithFields(map[string]interface{}{
			"to":      to,
			"subject": subject,
			"error":   err.Error(),
		}).Error("failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendBanNotification satisfies BanNotifier.
func (s *EmailService) SendBanNotification(email, reason string, until time.Time) error {
	body := fmt.Sprintf(`
		<h2>Review Privileges Suspended</h2>
		<p>Your ability to submit reviews has been suspended until <b>%s</b>.</p>
		<p>Reason: %s</p>
		<p>If you believe this is a mistake, please contact support.</p>
	`, until.Format("January 2, 2006"), reason)

	return s.SendEmail(email, "Your review privileges have been suspended", body)
}
