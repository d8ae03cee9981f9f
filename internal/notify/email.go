// Package notify implements the outbound notification channels: SendGrid
// email and the WhatsApp Cloud API. Both are thin rate-limited HTTP clients;
// formatting of plan content into messages lives here too.
package notify

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/largefullmoon/backend-book-recommendation/internal/config"
	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// EmailClient sends transactional mail through the SendGrid v3 API.
type EmailClient struct {
	http      *http.Client
	limiter   *rate.Limiter
	apiKey    string
	fromEmail string
	baseURL   string
	logger    *slog.Logger
}

// NewEmailClient creates a SendGrid client.
// Rate limited to 2 requests per second, burst of 5.
func NewEmailClient(cfg config.SendGridConfig, logger *slog.Logger) *EmailClient {
	return &EmailClient{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Every(500*time.Millisecond), 5),
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		baseURL:   sendGridEndpoint,
		logger:    logger,
	}
}

// sendGridRequest is the v3 mail/send payload.
type sendGridRequest struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers one HTML email.
func (c *EmailClient) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	payload := sendGridRequest{
		Personalizations: []sendGridPersonalization{{To: []sendGridAddress{{Email: to}}}},
		From:             sendGridAddress{Email: c.fromEmail},
		Subject:          subject,
		Content:          []sendGridContent{{Type: "text/html", Value: htmlBody}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// BuildPlanEmail renders the recommendation digest: current picks, ranked
// series with storefront links and scores, and the 3-month plan.
func BuildPlanEmail(name string, current []domain.BookEntry, recommendations []domain.RecommendationRecord, future []domain.MonthPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Hello %s's Parent!</h2>\n", html.EscapeString(name))
	fmt.Fprintf(&b, "<p>Here are the book recommendations for %s:</p>\n", html.EscapeString(name))

	b.WriteString("<h3>Current Recommendations:</h3>\n<ul>\n")
	for _, book := range current {
		fmt.Fprintf(&b, "<li><strong>%s</strong> by %s<br/><em>%s</em></li>\n",
			html.EscapeString(book.Title), html.EscapeString(book.Author), html.EscapeString(book.Explanation))
	}
	b.WriteString("</ul>\n")

	b.WriteString("<h3>Recommended Series and Authors:</h3>\n")
	for _, rec := range recommendations {
		fmt.Fprintf(&b, `<div style="margin-bottom: 20px;">`+"\n")
		fmt.Fprintf(&b, `<h4><a href="%s" target="_blank">%s</a> (Confidence Score: %d/10)</h4>`+"\n",
			rec.Link, html.EscapeString(rec.Name), rec.ConfidenceScore)
		fmt.Fprintf(&b, "<p><em>%s</em></p>\n<ul>\n", html.EscapeString(rec.Rationale))
		for _, book := range rec.SampleBooks {
			fmt.Fprintf(&b, "<li><strong>%s</strong> by %s</li>\n",
				html.EscapeString(book.Title), html.EscapeString(book.Author))
		}
		b.WriteString("</ul>\n</div>\n")
	}

	b.WriteString("<h3>3-Month Reading Plan:</h3>\n")
	for _, month := range future {
		fmt.Fprintf(&b, `<div style="margin-bottom: 20px;">`+"\n<h4>%s</h4>\n<ul>\n", html.EscapeString(month.Month))
		for _, book := range month.Books {
			fmt.Fprintf(&b, "<li><strong>%s</strong> by %s<br/><em>%s</em></li>\n",
				html.EscapeString(book.Title), html.EscapeString(book.Author), html.EscapeString(book.Explanation))
		}
		b.WriteString("</ul>\n</div>\n")
	}

	b.WriteString("<p>Happy Reading!</p>\n")
	return b.String()
}
