// Package notify builds reminder messages and delivers them through the
// WhatsApp Business Cloud API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linapure/salon-api/internal/utils"
	"github.com/linapure/salon-api/pkg/config"
	"github.com/linapure/salon-api/pkg/logger"
)

// ErrNoPhone is the precondition failure for a recipient without
// contact information. It is returned before any network call.
var ErrNoPhone = errors.New("notify: recipient phone number missing")

// Sender is the outbound message channel used by services.
type Sender interface {
	// SendTemplate delivers the salon's approved business template with
	// the four ordered body parameters.
	SendTemplate(ctx context.Context, phone string, params TemplateParams) error
	// SendText delivers a freeform text message.
	SendText(ctx context.Context, phone, body string) error
}

// TemplateParams are the ordered body parameters of the provider-side
// message template: client name, date, time, service.
type TemplateParams struct {
	ClientName string
	Date       string
	Time       string
	Service    string
}

// WhatsAppSender posts messages to the Cloud API messages endpoint.
type WhatsAppSender struct {
	cfg        config.WhatsAppConfig
	baseURL    string
	httpClient *http.Client
}

func NewWhatsAppSender(cfg config.WhatsAppConfig) *WhatsAppSender {
	return &WhatsAppSender{
		cfg:     cfg,
		baseURL: "https://graph.facebook.com",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL overrides the API host, for tests.
func (s *WhatsAppSender) WithBaseURL(url string) *WhatsAppSender {
	s.baseURL = url
	return s
}

func (s *WhatsAppSender) SendTemplate(ctx context.Context, phone string, params TemplateParams) error {
	to := utils.PhoneDigits(phone)
	if to == "" {
		return ErrNoPhone
	}

	textParam := func(v string) map[string]any {
		return map[string]any{"type": "text", "text": v}
	}

	components := []map[string]any{}
	if s.cfg.HeaderImage != "" {
		components = append(components, map[string]any{
			"type": "header",
			"parameters": []map[string]any{
				{"type": "image", "image": map[string]any{"link": s.cfg.HeaderImage}},
			},
		})
	}
	components = append(components, map[string]any{
		"type": "body",
		"parameters": []map[string]any{
			textParam(params.ClientName),
			textParam(params.Date),
			textParam(params.Time),
			textParam(params.Service),
		},
	})

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"recipient_type":    "individual",
		"type":              "template",
		"template": map[string]any{
			"name":       s.cfg.TemplateName,
			"language":   map[string]any{"code": s.cfg.TemplateLang},
			"components": components,
		},
	}

	return s.post(ctx, payload)
}

func (s *WhatsAppSender) SendText(ctx context.Context, phone, body string) error {
	to := utils.PhoneDigits(phone)
	if to == "" {
		return ErrNoPhone
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"recipient_type":    "individual",
		"type":              "text",
		"text":              map[string]any{"body": body},
	}

	return s.post(ctx, payload)
}

func (s *WhatsAppSender) post(ctx context.Context, payload map[string]any) error {
	if s.cfg.PhoneNumberID == "" || s.cfg.AccessToken == "" {
		return errors.New("notify: WhatsApp Business API configuration is missing")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", s.baseURL, s.cfg.APIVersion, s.cfg.PhoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Error payload shape: {"error":{"message":"..."}}
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := "unknown error from WhatsApp API"
	if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}

	logger.ErrorContext(ctx, "WhatsApp API error", "status", resp.StatusCode, "message", msg)
	return fmt.Errorf("notify: whatsapp send failed (%d): %s", resp.StatusCode, msg)
}
