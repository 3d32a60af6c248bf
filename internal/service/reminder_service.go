package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/mailer"
	"github.com/linapure/salon-api/internal/notify"
	"github.com/linapure/salon-api/internal/repo/postgres"
	"github.com/linapure/salon-api/pkg/config"
	"github.com/linapure/salon-api/pkg/events"
	"github.com/linapure/salon-api/pkg/logger"
)

// ErrAppointmentNotFound distinguishes a missing appointment from a
// delivery failure.
var ErrAppointmentNotFound = errors.New("appointment not found")

type ReminderService interface {
	// SendReminder delivers the templated reminder for one appointment.
	SendReminder(ctx context.Context, appointmentID int64, lang string) error
	// SendRemindersForDate delivers reminders for every appointment on a
	// calendar day and returns sent/failed counts.
	SendRemindersForDate(ctx context.Context, date time.Time, lang string) (sent, failed int, err error)
}

type reminderService struct {
	apptRepo postgres.AppointmentRepository
	sender   notify.Sender
	mail     mailer.Service
	eventBus events.Publisher
	salon    config.SalonConfig
	owner    string
	loc      *time.Location
}

func NewReminderService(
	apptRepo postgres.AppointmentRepository,
	sender notify.Sender,
	mail mailer.Service,
	eventBus events.Publisher,
	salon config.SalonConfig,
	ownerEmail string,
) ReminderService {
	loc, err := time.LoadLocation(salon.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &reminderService{
		apptRepo: apptRepo,
		sender:   sender,
		mail:     mail,
		eventBus: eventBus,
		salon:    salon,
		owner:    ownerEmail,
		loc:      loc,
	}
}

// templateParams formats the four ordered template values for an
// appointment in the requested language.
func (s *reminderService) templateParams(apt *domain.Appointment, lang string) notify.TemplateParams {
	local := apt.StartAt.In(s.loc)
	return notify.TemplateParams{
		ClientName: apt.ClientName,
		Date:       notify.FormatDate(local),
		Time:       notify.FormatTime(local.Format("15:04"), notify.GlyphsForLang(lang)),
		Service:    apt.Type.DisplayName(lang),
	}
}

func (s *reminderService) SendReminder(ctx context.Context, appointmentID int64, lang string) error {
	apt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return internalErr("failed to get appointment", err)
	}
	if apt == nil {
		return ErrAppointmentNotFound
	}

	return s.sendOne(ctx, apt, lang)
}

func (s *reminderService) sendOne(ctx context.Context, apt *domain.Appointment, lang string) error {
	// Precondition, checked before any network call.
	if apt.ClientPhone == "" {
		return notify.ErrNoPhone
	}

	if err := s.sender.SendTemplate(ctx, apt.ClientPhone, s.templateParams(apt, lang)); err != nil {
		return err
	}

	event := events.ReminderSentEvent{
		AppointmentID: apt.ID,
		ClientPhone:   apt.ClientPhone,
		Channel:       "template",
		Lang:          lang,
		SentAt:        time.Now(),
	}
	if err := s.eventBus.Publish(ctx, events.ReminderSent, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish reminder sent event", "error", err, "appointment_id", apt.ID)
	}

	return nil
}

func (s *reminderService) SendRemindersForDate(ctx context.Context, date time.Time, lang string) (int, int, error) {
	// The calendar day is the salon's, not the server clock's.
	date = date.In(s.loc)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	appts, err := s.apptRepo.ListBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return 0, 0, internalErr("failed to list appointments", err)
	}

	var sent, failed int
	for i := range appts {
		apt := &appts[i]
		if err := s.sendOne(ctx, apt, lang); err != nil {
			failed++
			logger.ErrorContext(ctx, "Reminder delivery failed",
				"appointment_id", apt.ID,
				"error", err,
			)
			continue
		}
		sent++
	}

	s.mailReport(day, len(appts), sent, failed)
	return sent, failed, nil
}

func (s *reminderService) mailReport(day time.Time, total, sent, failed int) {
	if s.owner == "" {
		return
	}

	subject := fmt.Sprintf("%s: reminder run for %s", s.salon.Name, day.Format("2006-01-02"))
	text := fmt.Sprintf("Appointments: %d\nReminders sent: %d\nFailed: %d\n", total, sent, failed)
	if err := s.mail.SendReminderReport(s.owner, subject, text); err != nil {
		logger.Warn("Failed to mail reminder report", "error", err)
	}
}
