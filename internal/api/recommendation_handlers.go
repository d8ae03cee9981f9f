package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
)

// handleGetAllRecommendations returns every age bracket's curated books,
// keyed by bracket label, denormalized to full documents.
func (s *Server) handleGetAllRecommendations(w http.ResponseWriter, r *http.Request) {
	all, err := s.ageGroups.GetAll(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, all, s.logger)
}

// handleGetAgeGroupRecommendations returns one bracket's curated books.
func (s *Server) handleGetAgeGroupRecommendations(w http.ResponseWriter, r *http.Request) {
	books, err := s.ageGroups.Get(r.Context(), chi.URLParam(r, "ageGroup"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, books, s.logger)
}

// handleUpdateAgeGroupRecommendations replaces one bracket's book list.
// The body is a list of objects carrying book IDs, matching the admin UI.
func (s *Server) handleUpdateAgeGroupRecommendations(w http.ResponseWriter, r *http.Request) {
	var body []struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	bookIDs := make([]string, len(body))
	for i, entry := range body {
		bookIDs[i] = entry.ID
	}

	books, err := s.ageGroups.Update(r.Context(), chi.URLParam(r, "ageGroup"), bookIDs)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Raw(w, http.StatusOK, books, s.logger)
}
