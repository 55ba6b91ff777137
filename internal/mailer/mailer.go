package mailer

import (
	"fmt"
	"net/smtp"

	"evenza/internal/config"
	"evenza/internal/logger"
)

// Mailer sends transactional notifications. Every send is best-effort:
// callers log the returned error and never fail the parent request on it.
type Mailer struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func New(cfg config.EmailConfig, log *logger.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) send(recipient, subject, body string) error {
	if !m.cfg.Enabled {
		m.log.Debug("MAILER", fmt.Sprintf("SMTP disabled, skipping mail to %s (%s)", recipient, subject))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, recipient, subject, body,
	)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		m.log.Warn("MAILER", fmt.Sprintf("Failed to send mail to %s: %v", recipient, err))
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info("MAILER", fmt.Sprintf("Mail sent to %s (%s)", recipient, subject))
	return nil
}

// SendRegistrationConfirmation notifies a user their registration was recorded.
func (m *Mailer) SendRegistrationConfirmation(recipient, targetTitle string) error {
	subject := "Registration received"
	body := fmt.Sprintf("Hello!\n\nYour registration for \"%s\" has been recorded. "+
		"If the registration requires payment, you will find a pending payment in your account.", targetTitle)
	return m.send(recipient, subject, body)
}

// SendPaymentStatus notifies a user of an admin payment decision.
func (m *Mailer) SendPaymentStatus(recipient, status string, amount float64) error {
	subject := fmt.Sprintf("Payment %s", status)
	body := fmt.Sprintf("Hello!\n\nYour payment of %.2f is now marked as %s.", amount, status)
	return m.send(recipient, subject, body)
}

// SendQueryResponse notifies a user their support query was answered.
func (m *Mailer) SendQueryResponse(recipient, subject, response string) error {
	return m.send(recipient, "Re: "+subject, "Hello!\n\n"+response)
}
