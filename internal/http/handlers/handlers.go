package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linapure/salon-api/internal/http/response"
	"github.com/linapure/salon-api/internal/service"
)

type Handlers struct {
	appointmentService service.AppointmentService
	userService        service.UserService
	reminderService    service.ReminderService
	now                func() time.Time
}

func New(
	appointmentService service.AppointmentService,
	userService service.UserService,
	reminderService service.ReminderService,
) *Handlers {
	return &Handlers{
		appointmentService: appointmentService,
		userService:        userService,
		reminderService:    reminderService,
		now:                time.Now,
	}
}

// Routes mounts the dashboard API surface.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", h.ListAppointments)
			r.Get("/schedule", h.GetDaySchedule)
			r.Post("/", h.CreateAppointment)
			r.Put("/{id}", h.UpdateAppointment)
			r.Delete("/{id}", h.DeleteAppointment)
			r.Post("/{id}/send-whatsapp", h.SendWhatsAppReminder)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/search", h.SearchUsers)
			r.Post("/", h.CreateUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Post("/send-daily-reminders", h.SendDailyReminders)
		r.Post("/send-tomorrow-reminders", h.SendTomorrowReminders)
	})
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// serviceError maps a service failure to the right status: 500 for
// infrastructure failures, 400 for validation.
func serviceError(w http.ResponseWriter, err error) {
	var ie *service.InternalError
	if errors.As(err, &ie) {
		response.InternalError(w, err.Error())
		return
	}
	response.BadRequest(w, err.Error())
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
