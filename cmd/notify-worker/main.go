package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/notify"
	"github.com/linapure/salon-api/pkg/config"
	"github.com/linapure/salon-api/pkg/events"
	"github.com/linapure/salon-api/pkg/logger"
)

// The notify worker listens for appointment lifecycle events and sends
// booking confirmations out of band, keeping the API request path free
// of provider latency.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	whatsapp := notify.NewWhatsAppSender(cfg.WhatsApp)

	loc, err := time.LoadLocation(cfg.Salon.Timezone)
	if err != nil {
		logger.Warn("Invalid salon timezone, falling back to UTC", "timezone", cfg.Salon.Timezone)
		loc = time.UTC
	}

	err = eventBus.QueueSubscribe(events.AppointmentCreated, "notify-workers", func(msg *events.Message) {
		var event events.AppointmentCreatedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to decode appointment created event", "error", err)
			return
		}

		if !cfg.WhatsApp.ConfirmOnCreate {
			logger.Debug("Booking confirmation disabled", "appointment_id", event.AppointmentID)
			return
		}
		if event.ClientPhone == "" {
			logger.Warn("Appointment client has no phone, skipping confirmation", "appointment_id", event.AppointmentID)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		// Confirmations go out as freeform text. The registered provider
		// template is reserved for reminders.
		lang := cfg.WhatsApp.TemplateLang
		glyphs := notify.GlyphsForLang(lang)
		local := event.StartAt.In(loc)
		body := notify.Render(cfg.Salon.ReminderTemplate, notify.TemplateValues{
			ClientName: event.ClientName,
			Date:       notify.FormatDate(local),
			Time:       notify.FormatTime(local.Format("15:04"), glyphs),
			Service:    domain.ServiceType(event.ServiceType).DisplayName(lang),
		})

		if err := whatsapp.SendText(ctx, event.ClientPhone, body); err != nil {
			logger.Error("Booking confirmation failed",
				"appointment_id", event.AppointmentID,
				"error", err,
			)
			return
		}
		logger.Info("Booking confirmation sent", "appointment_id", event.AppointmentID)
	})
	if err != nil {
		logger.Error("Failed to subscribe to appointment events", "error", err)
		os.Exit(1)
	}

	// Audit log for reminder deliveries from the API.
	err = eventBus.Subscribe(events.ReminderSent, func(msg *events.Message) {
		var event events.ReminderSentEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to decode reminder sent event", "error", err)
			return
		}
		logger.Info("Reminder delivered",
			"appointment_id", event.AppointmentID,
			"channel", event.Channel,
			"lang", event.Lang,
		)
	})
	if err != nil {
		logger.Error("Failed to subscribe to reminder events", "error", err)
		os.Exit(1)
	}

	logger.Info("Notify worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down notify worker...")
}
