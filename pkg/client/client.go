// Package client is a Go client for the salon dashboard API: thin
// request/response shaping over net/http, no business logic.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// APIError carries the status line and the response body of a non-2xx
// response.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed: %s - %s", e.Status, e.Body)
}

// Wire types, mirroring the API's JSON shapes.

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Appointment struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Type        string    `json:"type"`
	StartAt     time.Time `json:"start_at"`
	DurationMin int       `json:"duration_min"`
	Notes       string    `json:"notes"`
	ClientName  string    `json:"client_name,omitempty"`
	ClientPhone string    `json:"client_phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Slot struct {
	Label        string        `json:"label"`
	Appointments []Appointment `json:"appointments"`
	Past         bool          `json:"past"`
}

// CreateAppointmentReq resolves the client either by UserID or by raw
// Name+Phone.
type CreateAppointmentReq struct {
	UserID   int64  `json:"user_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Type     string `json:"type"`
	Time     string `json:"time"`
	Date     string `json:"date,omitempty"`
	Duration int    `json:"duration,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type AppointmentPatch struct {
	UserID   *int64  `json:"user_id,omitempty"`
	Type     *string `json:"type,omitempty"`
	Time     *string `json:"time,omitempty"`
	Date     *string `json:"date,omitempty"`
	Duration *int    `json:"duration,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type UserReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ReminderResult is the outcome of a reminder trigger.
type ReminderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListOptions filters appointment listing by calendar date.
type ListOptions struct {
	Date string `url:"date"`
}

// SearchOptions looks a client up by phone or id; set exactly one.
type SearchOptions struct {
	Phone string `url:"phone,omitempty"`
	ID    int64  `url:"id,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, opts, body, out any) error {
	url := c.baseURL + path
	if opts != nil {
		values, err := query.Values(opts)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		url += "?" + values.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) ListAppointments(ctx context.Context, date string) ([]Appointment, error) {
	var appts []Appointment
	err := c.do(ctx, http.MethodGet, "/api/appointments", ListOptions{Date: date}, nil, &appts)
	return appts, err
}

func (c *Client) GetDaySchedule(ctx context.Context, date string) ([]Slot, error) {
	var slots []Slot
	err := c.do(ctx, http.MethodGet, "/api/appointments/schedule", ListOptions{Date: date}, nil, &slots)
	return slots, err
}

func (c *Client) CreateAppointment(ctx context.Context, req *CreateAppointmentReq) (*Appointment, error) {
	var apt Appointment
	if err := c.do(ctx, http.MethodPost, "/api/appointments", nil, req, &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id int64, patch *AppointmentPatch) (*Appointment, error) {
	var apt Appointment
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/appointments/%d", id), nil, patch, &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/appointments/%d", id), nil, nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users)
	return users, err
}

func (c *Client) SearchUser(ctx context.Context, opts SearchOptions) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/search", opts, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, req *UserReq) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, patch *UserPatch) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), nil, patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil, nil)
}

func (c *Client) SendWhatsAppReminder(ctx context.Context, appointmentID int64, lang string) (*ReminderResult, error) {
	var result ReminderResult
	body := map[string]string{"lang": lang}
	path := fmt.Sprintf("/api/appointments/%d/send-whatsapp", appointmentID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SendDailyReminders(ctx context.Context, lang string) (*ReminderResult, error) {
	var result ReminderResult
	body := map[string]string{"lang": lang}
	if err := c.do(ctx, http.MethodPost, "/api/send-daily-reminders", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SendTomorrowReminders(ctx context.Context, lang string) (*ReminderResult, error) {
	var result ReminderResult
	body := map[string]string{"lang": lang}
	if err := c.do(ctx, http.MethodPost, "/api/send-tomorrow-reminders", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
