package api

import (
	"fmt"
	"net/http"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
	"github.com/largefullmoon/backend-book-recommendation/internal/notify"
)

// emailRequest is the email redistribution body: the plan pieces plus the
// recipient, sent by the front-end after generation.
type emailRequest struct {
	Email                 string                        `json:"email"`
	Name                  string                        `json:"name"`
	Recommendations       []domain.BookEntry            `json:"recommendations"`
	SeriesRecommendations []domain.RecommendationRecord `json:"seriesRecommendations"`
	ReadingPlan           []domain.MonthPlan            `json:"readingPlan"`
}

// handleSendEmail renders the plan digest and sends it through SendGrid.
func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var body emailRequest
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if body.Email == "" || body.Name == "" || body.Recommendations == nil || body.ReadingPlan == nil {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"}, s.logger)
		return
	}

	html := notify.BuildPlanEmail(body.Name, body.Recommendations, body.SeriesRecommendations, body.ReadingPlan)
	subject := fmt.Sprintf("Book Recommendations for %s", body.Name)

	if err := s.email.Send(r.Context(), body.Email, subject, html); err != nil {
		s.logger.Error("email send failed", "recipient", body.Email, "error", err)
		response.Raw(w, http.StatusInternalServerError, map[string]string{"error": "Failed to send email"}, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]string{
		"message": "Recommendations sent successfully to email",
	}, s.logger)
}

// whatsAppRequest is the WhatsApp redistribution body.
type whatsAppRequest struct {
	Phone           string                        `json:"phone"`
	Name            string                        `json:"name"`
	Recommendations []domain.RecommendationRecord `json:"recommendations"`
	Current         []domain.BookEntry            `json:"current"`
	Future          []domain.MonthPlan            `json:"future"`
}

// handleSendWhatsApp formats the plan as a message sequence and delivers it
// through the WhatsApp Cloud API, reporting per-message outcomes.
func (s *Server) handleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var body whatsAppRequest
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if body.Phone == "" || body.Name == "" || body.Recommendations == nil ||
		body.Current == nil || body.Future == nil {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"}, s.logger)
		return
	}
	if !s.whatsapp.Configured() {
		response.Raw(w, http.StatusInternalServerError, map[string]string{
			"error": "WhatsApp service not configured. Missing Facebook API credentials.",
		}, s.logger)
		return
	}

	messages := notify.FormatPlanMessages(body.Name, body.Current, body.Recommendations, body.Future)
	if len(messages) == 0 {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": "No messages to send"}, s.logger)
		return
	}

	report := s.whatsapp.SendMultiple(r.Context(), body.Phone, messages)
	response.Raw(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully sent %d out of %d messages",
			report.SuccessfulMessages, report.TotalMessages),
		"total_messages":      report.TotalMessages,
		"successful_messages": report.SuccessfulMessages,
		"message_responses":   report.MessageResponses,
		"recipient_phone":     report.RecipientPhone,
	}, s.logger)
}

// handleTestWhatsApp sends the hello_world template to verify connectivity.
func (s *Server) handleTestWhatsApp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Phone string `json:"phone"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if body.Phone == "" {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": "Phone number is required"}, s.logger)
		return
	}
	if !s.whatsapp.Configured() {
		response.Raw(w, http.StatusInternalServerError, map[string]string{
			"error": "WhatsApp service not configured. Missing Facebook API credentials.",
		}, s.logger)
		return
	}

	formatted := notify.FormatPhoneNumber(body.Phone)
	messageID, err := s.whatsapp.SendTemplate(r.Context(), formatted, "hello_world", "")
	if err != nil {
		s.logger.Error("whatsapp template send failed", "error", err)
		response.Raw(w, http.StatusInternalServerError, map[string]any{
			"error":           "Failed to send message: " + err.Error(),
			"recipient_phone": formatted,
		}, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"message":         "Hello world template sent successfully",
		"recipient_phone": formatted,
		"message_id":      messageID,
	}, s.logger)
}
