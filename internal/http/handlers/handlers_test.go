package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/http/response"
	"github.com/linapure/salon-api/internal/notify"
	"github.com/linapure/salon-api/internal/schedule"
	"github.com/linapure/salon-api/internal/service"
)

type stubAppointmentService struct {
	createFn func(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error)
	listFn   func(ctx context.Context, date string) ([]domain.Appointment, error)
	buildFn  func(ctx context.Context, date string, now time.Time) ([]schedule.Slot, error)
	updateFn func(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error)
	deleteFn func(ctx context.Context, id int64) (bool, error)
}

func (s *stubAppointmentService) CreateAppointment(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error) {
	return s.createFn(ctx, req)
}

func (s *stubAppointmentService) GetAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	return nil, nil
}

func (s *stubAppointmentService) ListByDate(ctx context.Context, date string) ([]domain.Appointment, error) {
	return s.listFn(ctx, date)
}

func (s *stubAppointmentService) BuildSchedule(ctx context.Context, date string, now time.Time) ([]schedule.Slot, error) {
	return s.buildFn(ctx, date, now)
}

func (s *stubAppointmentService) UpdateAppointment(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubAppointmentService) DeleteAppointment(ctx context.Context, id int64) (bool, error) {
	return s.deleteFn(ctx, id)
}

type stubUserService struct {
	createFn func(ctx context.Context, req *domain.UserReq) (*domain.User, error)
	getFn    func(ctx context.Context, id int64) (*domain.User, error)
	listFn   func(ctx context.Context) ([]domain.User, error)
	searchFn func(ctx context.Context, phone string) (*domain.User, error)
	updateFn func(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	deleteFn func(ctx context.Context, id int64) (bool, error)
}

func (s *stubUserService) CreateUser(ctx context.Context, req *domain.UserReq) (*domain.User, error) {
	return s.createFn(ctx, req)
}

func (s *stubUserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) SearchByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return s.searchFn(ctx, phone)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	return s.deleteFn(ctx, id)
}

type stubReminderService struct {
	sendFn    func(ctx context.Context, appointmentID int64, lang string) error
	sendAllFn func(ctx context.Context, date time.Time, lang string) (int, int, error)
}

func (s *stubReminderService) SendReminder(ctx context.Context, appointmentID int64, lang string) error {
	return s.sendFn(ctx, appointmentID, lang)
}

func (s *stubReminderService) SendRemindersForDate(ctx context.Context, date time.Time, lang string) (int, int, error) {
	return s.sendAllFn(ctx, date, lang)
}

func newTestRouter(appt service.AppointmentService, users service.UserService, reminders service.ReminderService, now time.Time) http.Handler {
	h := New(appt, users, reminders)
	if !now.IsZero() {
		h.now = func() time.Time { return now }
	}
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestListAppointmentsRequiresDate(t *testing.T) {
	router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodGet, "/api/appointments", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "Date query parameter")
}

func TestListAppointmentsEmptyDayIsEmptyArray(t *testing.T) {
	appt := &stubAppointmentService{
		listFn: func(ctx context.Context, date string) ([]domain.Appointment, error) {
			assert.Equal(t, "2025-06-25", date)
			return nil, nil
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodGet, "/api/appointments?date=2025-06-25", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetDaySchedule(t *testing.T) {
	now := time.Date(2025, 6, 25, 14, 10, 0, 0, time.UTC)
	appt := &stubAppointmentService{
		buildFn: func(ctx context.Context, date string, gotNow time.Time) ([]schedule.Slot, error) {
			assert.Equal(t, "2025-06-25", date)
			assert.True(t, gotNow.Equal(now), "handler passes its clock through")
			return []schedule.Slot{{Label: "10:00", Appointments: []domain.Appointment{}}}, nil
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, now)

	rec := doRequest(t, router, http.MethodGet, "/api/appointments/schedule?date=2025-06-25", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var slots []schedule.Slot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	require.Len(t, slots, 1)
	assert.Equal(t, "10:00", slots[0].Label)
}

func TestCreateAppointment(t *testing.T) {
	appt := &stubAppointmentService{
		createFn: func(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error) {
			assert.Equal(t, "PEDICURE", req.Type)
			return &domain.Appointment{ID: 100, Type: domain.ServicePedicure}, nil
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/appointments",
		`{"user_id":7,"type":"PEDICURE","time":"14:00","date":"2025-06-25"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var apt domain.Appointment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apt))
	assert.EqualValues(t, 100, apt.ID)
}

func TestCreateAppointmentInvalidJSON(t *testing.T) {
	router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/appointments", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON format", errorBody(t, rec))
}

func TestCreateAppointmentValidationError(t *testing.T) {
	appt := &stubAppointmentService{
		createFn: func(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error) {
			return nil, errors.New(`unknown service type "HAIRCUT"`)
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/appointments", `{"type":"HAIRCUT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "unknown service type")
}

func TestInfrastructureFailuresMapTo500(t *testing.T) {
	appt := &stubAppointmentService{
		createFn: func(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error) {
			return nil, &service.InternalError{Op: "failed to create appointment", Err: errors.New("connection refused")}
		},
		listFn: func(ctx context.Context, date string) ([]domain.Appointment, error) {
			return nil, &service.InternalError{Op: "failed to list appointments", Err: errors.New("connection refused")}
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/appointments",
		`{"user_id":7,"type":"MANICURE","time":"12:00","date":"2025-06-25"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, response.CodeInternalError, errResp.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/appointments?date=2025-06-25", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestValidationFailuresStay400(t *testing.T) {
	appt := &stubAppointmentService{
		createFn: func(ctx context.Context, req *domain.AppointmentReq) (*domain.Appointment, error) {
			return nil, errors.New(`unknown service type "HAIRCUT"`)
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/appointments", `{"type":"HAIRCUT"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, response.CodeInvalidInput, errResp.Code)
}

func TestUpdateAppointmentNotFoundResponse(t *testing.T) {
	appt := &stubAppointmentService{
		updateFn: func(ctx context.Context, id int64, patch domain.AppointmentPatch) (*domain.Appointment, error) {
			assert.EqualValues(t, 123, id)
			return nil, nil
		},
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPut, "/api/appointments/123", `{"notes":"updated"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorBody(t, rec))
}

func TestUpdateAppointmentInvalidID(t *testing.T) {
	router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPut, "/api/appointments/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid appointment id", errorBody(t, rec))
}

func TestDeleteAppointment(t *testing.T) {
	appt := &stubAppointmentService{
		deleteFn: func(ctx context.Context, id int64) (bool, error) { return id == 5, nil },
	}
	router := newTestRouter(appt, &stubUserService{}, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodDelete, "/api/appointments/5", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/appointments/6", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendWhatsAppReminderOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"sent", nil, http.StatusOK, ""},
		{"not found", service.ErrAppointmentNotFound, http.StatusNotFound, response.CodeNotFound},
		{"no phone", notify.ErrNoPhone, http.StatusUnprocessableEntity, response.CodePrecondition},
		{"provider failure", errors.New("whatsapp send failed (500)"), http.StatusBadGateway, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reminders := &stubReminderService{
				sendFn: func(ctx context.Context, id int64, lang string) error {
					assert.Equal(t, "ar", lang, "language defaults to Arabic")
					return tt.err
				},
			}
			router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, reminders, time.Time{})

			rec := doRequest(t, router, http.MethodPost, "/api/appointments/5/send-whatsapp", "")
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				var errResp response.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
				assert.Equal(t, tt.wantCode, errResp.Code)
			}
		})
	}
}

func TestSendWhatsAppReminderHonorsLang(t *testing.T) {
	var gotLang string
	reminders := &stubReminderService{
		sendFn: func(ctx context.Context, id int64, lang string) error {
			gotLang = lang
			return nil
		},
	}
	router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, reminders, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/appointments/5/send-whatsapp", `{"lang":"en"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", gotLang)
}

func TestSendTomorrowRemindersUsesNextDay(t *testing.T) {
	now := time.Date(2025, 6, 25, 9, 0, 0, 0, time.UTC)
	var gotDate time.Time
	reminders := &stubReminderService{
		sendAllFn: func(ctx context.Context, date time.Time, lang string) (int, int, error) {
			gotDate = date
			return 3, 0, nil
		},
	}
	router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, reminders, now)

	rec := doRequest(t, router, http.MethodPost, "/api/send-tomorrow-reminders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 26, gotDate.Day())

	var result reminderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "sent: 3")
}

func TestSendDailyRemindersReportsFailures(t *testing.T) {
	reminders := &stubReminderService{
		sendAllFn: func(ctx context.Context, date time.Time, lang string) (int, int, error) {
			return 2, 1, nil
		},
	}
	router := newTestRouter(&stubAppointmentService{}, &stubUserService{}, reminders, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/send-daily-reminders", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var result reminderResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success, "any failed delivery marks the run unsuccessful")
	assert.Contains(t, result.Message, "failed: 1")
}

func TestSearchUsers(t *testing.T) {
	users := &stubUserService{
		searchFn: func(ctx context.Context, phone string) (*domain.User, error) {
			if phone == "+972521234567" {
				return &domain.User{ID: 1, Name: "Ghazal", Phone: phone}, nil
			}
			return nil, nil
		},
		getFn: func(ctx context.Context, id int64) (*domain.User, error) {
			if id == 1 {
				return &domain.User{ID: 1, Name: "Ghazal"}, nil
			}
			return nil, nil
		},
	}
	router := newTestRouter(&stubAppointmentService{}, users, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodGet, "/api/users/search?phone=%2B972521234567", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/users/search?phone=%2B972000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/users/search?id=1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/users/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUser(t *testing.T) {
	users := &stubUserService{
		createFn: func(ctx context.Context, req *domain.UserReq) (*domain.User, error) {
			return &domain.User{ID: 1, Name: req.Name, Phone: req.Phone}, nil
		},
	}
	router := newTestRouter(&stubAppointmentService{}, users, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodPost, "/api/users", `{"name":"Ghazal","phone":"+972521234567"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListUsersEmptyIsEmptyArray(t *testing.T) {
	users := &stubUserService{
		listFn: func(ctx context.Context) ([]domain.User, error) { return nil, nil },
	}
	router := newTestRouter(&stubAppointmentService{}, users, &stubReminderService{}, time.Time{})

	rec := doRequest(t, router, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
