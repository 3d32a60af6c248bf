package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linapure/salon-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	AppointmentCreated  = "appointment.created"
	AppointmentUpdated  = "appointment.updated"
	AppointmentCanceled = "appointment.canceled"

	ReminderSent = "reminder.sent"
)

// Event payloads
type AppointmentCreatedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	ServiceType   string    `json:"service_type"`
	StartAt       time.Time `json:"start_at"`
	DurationMin   int       `json:"duration_min"`
	CreatedAt     time.Time `json:"created_at"`
}

type AppointmentUpdatedEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ClientPhone   string    `json:"client_phone"`
	Changes       []string  `json:"changes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AppointmentCanceledEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ClientPhone   string    `json:"client_phone"`
	CanceledAt    time.Time `json:"canceled_at"`
}

type ReminderSentEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	ClientPhone   string    `json:"client_phone"`
	Channel       string    `json:"channel"` // template or text
	Lang          string    `json:"lang"`
	SentAt        time.Time `json:"sent_at"`
}
