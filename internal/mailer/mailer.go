package mailer

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"taskboard/config"
)

// Mailer delivers password reset codes over SMTP. With no host
// configured it logs the code instead, which is how local setups run.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

func New(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) SendResetCode(email, code string) error {
	if m.cfg.Host == "" {
		m.logger.Info("SMTP not configured, logging reset code instead",
			zap.String("email", email),
			zap.String("code", code),
		)
		return nil
	}

	body := fmt.Sprintf("Your password reset code is: %s\r\n\r\nIt expires in 15 minutes.", code)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password Reset Code\r\n\r\n%s\r\n",
		m.cfg.From, email, body,
	))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	m.logger.Info("Reset code email sent", zap.String("email", email))
	return nil
}
