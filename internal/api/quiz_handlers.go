package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
	"github.com/largefullmoon/backend-book-recommendation/internal/service"
)

// Quiz responses keep the payload at the top level; the quiz front-end reads
// success/userId/user directly rather than through the envelope.

type quizUserResponse struct {
	Success bool           `json:"success"`
	User    *domain.Reader `json:"user"`
}

// handleQuizConsent records parent consent and creates the quiz reader.
func (s *Server) handleQuizConsent(w http.ResponseWriter, r *http.Request) {
	var input service.QuizConsentInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	readerID, err := s.quiz.StartWithConsent(r.Context(), &input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success": true,
		"userId":  readerID,
		"message": "Parent consent saved and user created successfully",
	}, s.logger)
}

// handleStandaloneConsent records a consent submission outside the quiz.
func (s *Server) handleStandaloneConsent(w http.ResponseWriter, r *http.Request) {
	var input service.StandaloneConsentInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	consent, err := s.quiz.RecordConsent(r.Context(), &input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success":    true,
		"consent_id": consent.ID,
		"message":    "Parent consent recorded successfully",
	}, s.logger)
}

// handleQuizBasicInfo records the reader's name and age.
func (s *Server) handleQuizBasicInfo(w http.ResponseWriter, r *http.Request) {
	var input service.BasicInfoInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.UpdateBasicInfo(r.Context(), chi.URLParam(r, "id"), &input)
	})
}

// handleQuizParentReading records the parent's reading habits.
func (s *Server) handleQuizParentReading(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParentReading string `json:"parentReading"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.UpdateParentReading(r.Context(), chi.URLParam(r, "id"), body.ParentReading)
	})
}

// handleQuizGenres applies the genre-preference step.
func (s *Server) handleQuizGenres(w http.ResponseWriter, r *http.Request) {
	var input service.GenresInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.UpdateGenres(r.Context(), chi.URLParam(r, "id"), &input)
	})
}

// handleQuizInterests applies the interests step.
func (s *Server) handleQuizInterests(w http.ResponseWriter, r *http.Request) {
	var input service.InterestsInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.UpdateInterests(r.Context(), chi.URLParam(r, "id"), &input)
	})
}

// handleQuizBookSeries replaces the reader's whole series-reaction list.
func (s *Server) handleQuizBookSeries(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookSeries []domain.SeriesReaction `json:"bookSeries"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.UpdateBookSeries(r.Context(), chi.URLParam(r, "id"), body.BookSeries)
	})
}

// handleQuizSeriesResponse records one series answer.
func (s *Server) handleQuizSeriesResponse(w http.ResponseWriter, r *http.Request) {
	var input service.SeriesResponseInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.quiz.RecordSeriesResponse(r.Context(), chi.URLParam(r, "id"), &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Book series response saved successfully",
	}, s.logger)
}

// handleQuizComplete finalizes the quiz.
func (s *Server) handleQuizComplete(w http.ResponseWriter, r *http.Request) {
	var input service.CompleteInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	reader, err := s.quiz.Complete(r.Context(), &input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Quiz completed successfully",
		"user":    reader,
	}, s.logger)
}

// handleGetQuizUser returns one reader profile.
func (s *Server) handleGetQuizUser(w http.ResponseWriter, r *http.Request) {
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.GetReader(r.Context(), chi.URLParam(r, "id"))
	})
}

// handleUpdateQuizUser applies a partial profile update.
func (s *Server) handleUpdateQuizUser(w http.ResponseWriter, r *http.Request) {
	var patch service.ReaderPatch
	if err := decodeJSON(r, &patch); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.respondWithReader(w, r, func() (*domain.Reader, error) {
		return s.quiz.UpdateReader(r.Context(), chi.URLParam(r, "id"), &patch)
	})
}

// handleListQuizUsers returns every reader profile.
func (s *Server) handleListQuizUsers(w http.ResponseWriter, r *http.Request) {
	readers, err := s.quiz.ListReaders(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   readers,
	}, s.logger)
}

// handleSaveQuizRecommendations attaches a generated plan to the reader.
func (s *Server) handleSaveQuizRecommendations(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Recommendations []domain.RecommendationRecord `json:"recommendations"`
		GeneratedAt     string                        `json:"generatedAt"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	err := s.quiz.SaveRecommendations(r.Context(), chi.URLParam(r, "id"), body.Recommendations, body.GeneratedAt)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Recommendations saved successfully",
	}, s.logger)
}

// respondWithReader runs a reader mutation and writes the quiz user shape.
func (s *Server) respondWithReader(w http.ResponseWriter, _ *http.Request, fn func() (*domain.Reader, error)) {
	reader, err := fn()
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, quizUserResponse{Success: true, User: reader}, s.logger)
}
