package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/linapure/salon-api/internal/http/response"
	"github.com/linapure/salon-api/internal/notify"
	"github.com/linapure/salon-api/internal/service"
)

type reminderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendWhatsAppReminder handles POST /api/appointments/{id}/send-whatsapp
func (h *Handlers) SendWhatsAppReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment id")
		return
	}

	var req struct {
		Lang string `json:"lang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Lang == "" {
		req.Lang = "ar"
	}

	var internalErr *service.InternalError

	err := h.reminderService.SendReminder(r.Context(), id, req.Lang)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, reminderResult{Success: true, Message: "Reminder sent"})
	case errors.Is(err, service.ErrAppointmentNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, notify.ErrNoPhone):
		response.PreconditionFailed(w, "Client has no phone number")
	case errors.As(err, &internalErr):
		response.InternalError(w, err.Error())
	default:
		writeJSON(w, http.StatusBadGateway, reminderResult{Success: false, Message: err.Error()})
	}
}

// SendDailyReminders handles POST /api/send-daily-reminders
func (h *Handlers) SendDailyReminders(w http.ResponseWriter, r *http.Request) {
	h.sendBulkReminders(w, r, 0)
}

// SendTomorrowReminders handles POST /api/send-tomorrow-reminders
func (h *Handlers) SendTomorrowReminders(w http.ResponseWriter, r *http.Request) {
	h.sendBulkReminders(w, r, 1)
}

func (h *Handlers) sendBulkReminders(w http.ResponseWriter, r *http.Request, dayOffset int) {
	var req struct {
		Lang string `json:"lang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Lang == "" {
		req.Lang = "ar"
	}

	date := h.now().AddDate(0, 0, dayOffset)
	sent, failed, err := h.reminderService.SendRemindersForDate(r.Context(), date, req.Lang)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, reminderResult{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, reminderResult{
		Success: failed == 0,
		Message: fmt.Sprintf("Reminders sent: %d, failed: %d", sent, failed),
	})
}
