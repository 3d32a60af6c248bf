package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/linapure/salon-api/internal/cache"
	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/notify"
	"github.com/linapure/salon-api/internal/repo/postgres"
	"github.com/linapure/salon-api/pkg/config"
)

type mockUserRepo struct {
	createFn     func(ctx context.Context, req *domain.UserReq) (*domain.User, error)
	getByIDFn    func(ctx context.Context, id int64) (*domain.User, error)
	getByPhoneFn func(ctx context.Context, phone string) (*domain.User, error)
	listFn       func(ctx context.Context) ([]domain.User, error)
	updateFn     func(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	deleteFn     func(ctx context.Context, id int64) (bool, error)

	listCalls int
}

func (m *mockUserRepo) Create(ctx context.Context, req *domain.UserReq) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &domain.User{ID: 1, Name: req.Name, Phone: req.Phone}, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.getByPhoneFn != nil {
		return m.getByPhoneFn(ctx, phone)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

type mockApptRepo struct {
	createFn      func(ctx context.Context, userID int64, serviceType domain.ServiceType, startAt time.Time, durationMin int, notes string) (*domain.Appointment, error)
	getByIDFn     func(ctx context.Context, id int64) (*domain.Appointment, error)
	listBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	updateFn      func(ctx context.Context, id int64, patch postgres.AppointmentUpdate) (*domain.Appointment, error)
	deleteFn      func(ctx context.Context, id int64) (bool, error)
}

func (m *mockApptRepo) Create(ctx context.Context, userID int64, serviceType domain.ServiceType, startAt time.Time, durationMin int, notes string) (*domain.Appointment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, serviceType, startAt, durationMin, notes)
	}
	return &domain.Appointment{ID: 100, UserID: userID, Type: serviceType, StartAt: startAt, DurationMin: durationMin, Notes: notes}, nil
}

func (m *mockApptRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockApptRepo) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	if m.listBetweenFn != nil {
		return m.listBetweenFn(ctx, from, to)
	}
	return nil, nil
}

func (m *mockApptRepo) Update(ctx context.Context, id int64, patch postgres.AppointmentUpdate) (*domain.Appointment, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, nil
}

func (m *mockApptRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	m.events = append(m.events, publishedEvent{subject: subject, data: data})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) subjects() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.subject)
	}
	return out
}

type sentMessage struct {
	phone  string
	params notify.TemplateParams
	text   string
}

type mockSender struct {
	err  error
	sent []sentMessage
}

func (m *mockSender) SendTemplate(ctx context.Context, phone string, params notify.TemplateParams) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{phone: phone, params: params})
	return nil
}

func (m *mockSender) SendText(ctx context.Context, phone, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{phone: phone, text: body})
	return nil
}

type mailedReport struct {
	to      string
	subject string
	text    string
}

type mockMailer struct {
	reports []mailedReport
}

func (m *mockMailer) SendReminderReport(toEmail, subject, text string) error {
	m.reports = append(m.reports, mailedReport{to: toEmail, subject: subject, text: text})
	return nil
}

func newTestCache(t *testing.T) *cache.UserCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewUserCache(client, 5*time.Minute)
}

func testSalonConfig() config.SalonConfig {
	return config.SalonConfig{
		Name:         "Lina Pure Nails",
		Timezone:     "Asia/Jerusalem",
		OpenHour:     10,
		CloseHour:    20,
		UserCacheTTL: 5 * time.Minute,
	}
}
