package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/http/response"
)

// ListAppointments handles GET /api/appointments?date=YYYY-MM-DD
func (h *Handlers) ListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "Date query parameter is required")
		return
	}

	appts, err := h.appointmentService.ListByDate(r.Context(), date)
	if err != nil {
		serviceError(w, err)
		return
	}

	if appts == nil {
		appts = []domain.Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// GetDaySchedule handles GET /api/appointments/schedule?date=YYYY-MM-DD
// and returns the slot view of the day.
func (h *Handlers) GetDaySchedule(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "Date query parameter is required")
		return
	}

	slots, err := h.appointmentService.BuildSchedule(r.Context(), date, h.now())
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

// CreateAppointment handles POST /api/appointments
func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req domain.AppointmentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	apt, err := h.appointmentService.CreateAppointment(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, apt)
}

// UpdateAppointment handles PUT /api/appointments/{id}
func (h *Handlers) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment id")
		return
	}

	var patch domain.AppointmentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	apt, err := h.appointmentService.UpdateAppointment(r.Context(), id, patch)
	if err != nil {
		serviceError(w, err)
		return
	}
	if apt == nil {
		response.NotFound(w, "not found")
		return
	}

	writeJSON(w, http.StatusOK, apt)
}

// DeleteAppointment handles DELETE /api/appointments/{id}
func (h *Handlers) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment id")
		return
	}

	deleted, err := h.appointmentService.DeleteAppointment(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if !deleted {
		response.NotFound(w, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment deleted"})
}
