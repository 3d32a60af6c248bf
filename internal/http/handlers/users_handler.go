package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/http/response"
)

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to retrieve clients")
		return
	}

	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// SearchUsers handles GET /api/users/search?phone=|id=
func (h *Handlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	var (
		user *domain.User
		err  error
	)

	switch {
	case r.URL.Query().Get("phone") != "":
		user, err = h.userService.SearchByPhone(r.Context(), r.URL.Query().Get("phone"))
	case r.URL.Query().Get("id") != "":
		id, parseErr := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if parseErr != nil {
			response.BadRequest(w, "Invalid id parameter")
			return
		}
		user, err = h.userService.GetUser(r.Context(), id)
	default:
		response.BadRequest(w, "phone or id query parameter is required")
		return
	}

	if err != nil {
		response.InternalError(w, "Failed to search clients")
		return
	}
	if user == nil {
		response.NotFound(w, "not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.userService.CreateUser(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/users/{id}
func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "Invalid client id")
		return
	}

	var patch domain.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, patch)
	if err != nil {
		serviceError(w, err)
		return
	}
	if user == nil {
		response.NotFound(w, "not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/{id}
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "Invalid client id")
		return
	}

	deleted, err := h.userService.DeleteUser(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	if !deleted {
		response.NotFound(w, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Client deleted"})
}
