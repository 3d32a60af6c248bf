package mailer

import "github.com/linapure/salon-api/pkg/logger"

// DevMailer prints mail to the logs instead of sending it.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendReminderReport(toEmail, subject, text string) error {
	logger.Info("DEV MAIL: reminder report",
		"to", toEmail,
		"subject", subject,
		"body", text,
	)
	return nil
}
