package mailer

// Service delivers staff-facing email. Reminder runs mail their report
// to the salon owner when an address is configured.
type Service interface {
	SendReminderReport(toEmail, subject, text string) error
}
