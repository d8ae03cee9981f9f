package notify

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/largefullmoon/backend-book-recommendation/internal/config"
)

const graphAPIBase = "https://graph.facebook.com/v22.0"

// WhatsApp text messages are capped at 4096 characters; anything over the
// soft limit is truncated with a marker.
const (
	whatsAppSoftLimit  = 4000
	whatsAppTruncateAt = 3950
	truncationMarker   = "...\n(Message truncated)"
)

// WhatsAppClient sends messages through the WhatsApp Cloud API.
type WhatsAppClient struct {
	http          *http.Client
	limiter       *rate.Limiter
	accessToken   string
	phoneNumberID string
	baseURL       string
	delay         time.Duration
	logger        *slog.Logger
}

// NewWhatsAppClient creates a WhatsApp Cloud API client.
func NewWhatsAppClient(cfg config.WhatsAppConfig, logger *slog.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:       rate.NewLimiter(rate.Every(time.Second), 3),
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       graphAPIBase,
		delay:         cfg.MessageDelay,
		logger:        logger,
	}
}

// Configured reports whether credentials were provided. Handlers refuse
// sends rather than posting unauthenticated requests.
func (c *WhatsAppClient) Configured() bool {
	return c.accessToken != "" && c.phoneNumberID != ""
}

// FormatPhoneNumber normalizes a phone number for the API: digits only,
// leading + dropped, and a US country code assumed for bare 10-digit
// numbers.
func FormatPhoneNumber(phone string) string {
	var digits []byte
	for i := 0; i < len(phone); i++ {
		ch := phone[i]
		if ch >= '0' && ch <= '9' {
			digits = append(digits, ch)
		}
	}
	if len(digits) == 10 {
		return "1" + string(digits)
	}
	return string(digits)
}

// MessageResult is the delivery outcome of one message.
type MessageResult struct {
	MessageNumber int    `json:"message_number"`
	Status        string `json:"status"`
	MessageID     string `json:"message_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// DeliveryReport summarizes a multi-message send.
type DeliveryReport struct {
	TotalMessages      int             `json:"total_messages"`
	SuccessfulMessages int             `json:"successful_messages"`
	MessageResponses   []MessageResult `json:"message_responses"`
	RecipientPhone     string          `json:"recipient_phone"`
}

type textMessagePayload struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textContent `json:"text"`
}

type textContent struct {
	Body string `json:"body"`
}

type templateMessagePayload struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templateContent `json:"template"`
}

type templateContent struct {
	Name     string           `json:"name"`
	Language templateLanguage `json:"language"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type messagesResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText sends a single text message and returns the API message id.
func (c *WhatsAppClient) SendText(ctx context.Context, toPhone, body string) (string, error) {
	payload := textMessagePayload{
		MessagingProduct: "whatsapp",
		To:               toPhone,
		Type:             "text",
		Text:             textContent{Body: body},
	}
	return c.post(ctx, payload)
}

// SendTemplate sends a pre-approved template message. Used by the
// connectivity test endpoint with the hello_world template.
func (c *WhatsAppClient) SendTemplate(ctx context.Context, toPhone, templateName, languageCode string) (string, error) {
	if languageCode == "" {
		languageCode = "en_US"
	}
	payload := templateMessagePayload{
		MessagingProduct: "whatsapp",
		To:               FormatPhoneNumber(toPhone),
		Type:             "template",
		Template: templateContent{
			Name:     templateName,
			Language: templateLanguage{Code: languageCode},
		},
	}
	return c.post(ctx, payload)
}

// SendMultiple delivers a message sequence with a pause between messages
// and per-message truncation. Failures do not stop the sequence; the
// report carries the outcome of every message.
func (c *WhatsAppClient) SendMultiple(ctx context.Context, toPhone string, messages []string) *DeliveryReport {
	formatted := FormatPhoneNumber(toPhone)
	report := &DeliveryReport{
		TotalMessages:    len(messages),
		RecipientPhone:   formatted,
		MessageResponses: make([]MessageResult, 0, len(messages)),
	}

	for i, msg := range messages {
		if runes := []rune(msg); len(runes) > whatsAppSoftLimit {
			msg = string(runes[:whatsAppTruncateAt]) + truncationMarker
		}

		result := MessageResult{MessageNumber: i + 1}
		messageID, err := c.SendText(ctx, formatted, msg)
		if err != nil {
			c.logger.Warn("whatsapp message failed", "message_number", i+1, "error", err)
			result.Status = "failed"
			result.Error = err.Error()
		} else {
			result.Status = "sent"
			result.MessageID = messageID
			report.SuccessfulMessages++
		}
		report.MessageResponses = append(report.MessageResponses, result)

		// Pace consecutive messages; no pause after the last one.
		if i < len(messages)-1 && c.delay > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return report
			}
		}
	}

	return report
}

func (c *WhatsAppClient) post(ctx context.Context, payload any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whatsapp api returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed messagesResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Messages) == 0 {
		// Delivered but the response shape was unexpected.
		return "", nil
	}
	return parsed.Messages[0].ID, nil
}
