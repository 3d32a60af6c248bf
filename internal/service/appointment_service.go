package service

import (
	"context"
	"fmt"
	"time"

	"github.com/linapure/salon-api/internal/cache"
	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/repo/postgres"
	"github.com/linapure/salon-api/internal/schedule"
	"github.com/linapure/salon-api/internal/utils"
	"github.com/linapure/salon-api/pkg/config"
	"github.com/linapure/salon-api/pkg/events"
	"github.com/linapure/salon-api/pkg/logger"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	BuildSchedule(ctx context.Context, date string, now time.Time) ([]schedule.Slot, error)
	UpdateAppointment(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) (bool, error)
}

type appointmentService struct {
	apptRepo  postgres.AppointmentRepository
	userRepo  postgres.UserRepository
	userCache *cache.UserCache
	eventBus  events.Publisher
	builder   *schedule.Builder
	loc       *time.Location
}

func NewAppointmentService(
	apptRepo postgres.AppointmentRepository,
	userRepo postgres.UserRepository,
	userCache *cache.UserCache,
	eventBus events.Publisher,
	cfg config.SalonConfig,
) AppointmentService {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Invalid salon timezone, falling back to UTC", "timezone", cfg.Timezone)
		loc = time.UTC
	}
	return &appointmentService{
		apptRepo:  apptRepo,
		userRepo:  userRepo,
		userCache: userCache,
		eventBus:  eventBus,
		builder:   schedule.NewBuilder(cfg.OpenHour, cfg.CloseHour, loc),
		loc:       loc,
	}
}

// resolveStartAt turns a submitted time into an absolute instant in the
// salon's timezone. Accepted forms: RFC 3339, or "HH:MM" combined with
// a "YYYY-MM-DD" date.
func (s *appointmentService) resolveStartAt(timeStr, dateStr string) (time.Time, error) {
	if timeStr == "" {
		return time.Time{}, fmt.Errorf("appointment time is required")
	}

	if t, err := time.Parse(time.RFC3339, timeStr); err == nil {
		return t.In(s.loc), nil
	}

	if dateStr == "" {
		return time.Time{}, fmt.Errorf("invalid time %q: expected RFC 3339, or HH:MM with a date", timeStr)
	}

	t, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q for date %q", timeStr, dateStr)
	}
	return t, nil
}

// resolveClient finds the appointment's client by id, or by phone in
// raw name+phone mode, creating the client when unknown.
func (s *appointmentService) resolveClient(ctx context.Context, req *domain.AppointmentReq) (*domain.User, error) {
	if req.UserID > 0 {
		user, err := s.userRepo.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, internalErr("failed to look up client", err)
		}
		if user == nil {
			return nil, fmt.Errorf("client %d not found", req.UserID)
		}
		return user, nil
	}

	name := utils.NormalizeString(req.Name)
	phone := utils.NormalizePhone(req.Phone)
	if err := validateUserInput(name, phone); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, internalErr("failed to look up client", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = s.userRepo.Create(ctx, &domain.UserReq{Name: name, Phone: phone})
	if err != nil {
		return nil, internalErr("failed to create client", err)
	}
	return user, nil
}

func resolveDuration(serviceType domain.ServiceType, requested int) (int, error) {
	if requested != 0 {
		if requested < 0 {
			return 0, fmt.Errorf("duration must be positive")
		}
		return requested, nil
	}
	return domain.ServiceDurations[serviceType], nil
}

func (s *appointmentService) CreateAppointment(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error) {
	serviceType, ok := domain.ParseServiceType(req.Type)
	if !ok {
		return nil, fmt.Errorf("unknown service type %q", req.Type)
	}

	startAt, err := s.resolveStartAt(req.Time, req.Date)
	if err != nil {
		return nil, err
	}

	duration, err := resolveDuration(serviceType, req.Duration)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveClient(ctx, req)
	if err != nil {
		return nil, err
	}

	apt, err := s.apptRepo.Create(ctx, user.ID, serviceType, startAt, duration, utils.NormalizeString(req.Notes))
	if err != nil {
		return nil, internalErr("failed to create appointment", err)
	}

	s.invalidateCache(ctx)

	event := events.AppointmentCreatedEvent{
		AppointmentID: apt.ID,
		ClientName:    apt.ClientName,
		ClientPhone:   apt.ClientPhone,
		ServiceType:   string(apt.Type),
		StartAt:       apt.StartAt,
		DurationMin:   apt.DurationMin,
		CreatedAt:     apt.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCreated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish appointment created event", "error", err, "appointment_id", apt.ID)
	}

	return apt, nil
}

func (s *appointmentService) GetAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	return s.apptRepo.GetByID(ctx, id)
}

// dayBounds returns the [midnight, next midnight) window of a calendar
// date in the salon's timezone.
func (s *appointmentService) dayBounds(date string) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return day, day.AddDate(0, 0, 1), nil
}

func (s *appointmentService) ListByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	from, to, err := s.dayBounds(date)
	if err != nil {
		return nil, err
	}

	appts, err := s.apptRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, internalErr("failed to list appointments", err)
	}
	return appts, nil
}

func (s *appointmentService) BuildSchedule(ctx context.Context, date string, now time.Time) ([]schedule.Slot, error) {
	from, _, err := s.dayBounds(date)
	if err != nil {
		return nil, err
	}

	appts, err := s.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return s.builder.Build(from, appts, now), nil
}

func (s *appointmentService) UpdateAppointment(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	existing, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, internalErr("failed to get appointment", err)
	}
	if existing == nil {
		return nil, nil
	}

	var update postgres.AppointmentUpdate

	if patch.Type != nil {
		serviceType, ok := domain.ParseServiceType(*patch.Type)
		if !ok {
			return nil, fmt.Errorf("unknown service type %q", *patch.Type)
		}
		update.Type = &serviceType
		// Duration follows the service type unless explicitly supplied.
		if patch.Duration == nil {
			d := domain.ServiceDurations[serviceType]
			update.DurationMin = &d
		}
	}

	if patch.Duration != nil {
		if *patch.Duration <= 0 {
			return nil, fmt.Errorf("duration must be positive")
		}
		update.DurationMin = patch.Duration
	}

	if patch.Time != nil || patch.Date != nil {
		// Either field alone moves start_at; the missing half comes from
		// the existing appointment.
		date := existing.StartAt.In(s.loc).Format("2006-01-02")
		if patch.Date != nil {
			date = *patch.Date
		}
		timeStr := existing.StartAt.In(s.loc).Format("15:04")
		if patch.Time != nil {
			timeStr = *patch.Time
		}
		startAt, err := s.resolveStartAt(timeStr, date)
		if err != nil {
			return nil, err
		}
		update.StartAt = &startAt
	}

	if patch.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *patch.UserID)
		if err != nil {
			return nil, internalErr("failed to look up client", err)
		}
		if user == nil {
			return nil, fmt.Errorf("client %d not found", *patch.UserID)
		}
		update.UserID = patch.UserID
	}

	if patch.Notes != nil {
		notes := utils.NormalizeString(*patch.Notes)
		update.Notes = &notes
	}

	updated, err := s.apptRepo.Update(ctx, id, update)
	if err != nil {
		return nil, internalErr("failed to update appointment", err)
	}

	if updated != nil {
		s.invalidateCache(ctx)

		changes := detectChanges(existing, updated)
		if len(changes) > 0 {
			event := events.AppointmentUpdatedEvent{
				AppointmentID: updated.ID,
				ClientPhone:   updated.ClientPhone,
				Changes:       changes,
				UpdatedAt:     updated.UpdatedAt,
			}
			if err := s.eventBus.Publish(ctx, events.AppointmentUpdated, event); err != nil {
				logger.ErrorContext(ctx, "Failed to publish appointment updated event", "error", err, "appointment_id", updated.ID)
			}
		}
	}

	return updated, nil
}

func (s *appointmentService) DeleteAppointment(ctx context.Context, id int64) (bool, error) {
	existing, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return false, internalErr("failed to get appointment", err)
	}
	if existing == nil {
		return false, nil
	}

	deleted, err := s.apptRepo.Delete(ctx, id)
	if err != nil {
		return false, internalErr("failed to delete appointment", err)
	}

	if deleted {
		s.invalidateCache(ctx)

		event := events.AppointmentCanceledEvent{
			AppointmentID: existing.ID,
			ClientPhone:   existing.ClientPhone,
			CanceledAt:    time.Now(),
		}
		if err := s.eventBus.Publish(ctx, events.AppointmentCanceled, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish appointment canceled event", "error", err, "appointment_id", existing.ID)
		}
	}

	return deleted, nil
}

func (s *appointmentService) invalidateCache(ctx context.Context) {
	if err := s.userCache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate client cache", "error", err)
	}
}

func detectChanges(old, new *domain.Appointment) []string {
	var changes []string

	if old.UserID != new.UserID {
		changes = append(changes, "user_id")
	}
	if old.Type != new.Type {
		changes = append(changes, "service_type")
	}
	if !old.StartAt.Equal(new.StartAt) {
		changes = append(changes, "start_at")
	}
	if old.DurationMin != new.DurationMin {
		changes = append(changes, "duration_min")
	}
	if old.Notes != new.Notes {
		changes = append(changes, "notes")
	}

	return changes
}
