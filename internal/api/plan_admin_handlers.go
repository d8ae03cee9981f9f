package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
)

// Operator surface over persisted plans. Plans are written by the generation
// pipeline and only ever removed here, singly or in bulk.

// handleListPlans returns persisted plans, optionally scoped to one reader
// via the userId query parameter.
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	var (
		plans []*domain.Plan
		err   error
	)
	if readerID := r.URL.Query().Get("userId"); readerID != "" {
		plans, err = s.store.PlansForReader(r.Context(), readerID)
	} else {
		plans, err = s.store.ListPlans(r.Context())
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	if plans == nil {
		plans = []*domain.Plan{}
	}
	response.Success(w, plans, s.logger)
}

// handleDeletePlan removes one persisted plan.
func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]string{"message": "Plan deleted successfully"}, s.logger)
}

// handleDeleteAllPlans removes every persisted plan and reports the count.
func (s *Server) handleDeleteAllPlans(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.store.DeleteAllPlans(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.logger.Info("plans purged", "deleted", deleted)
	response.Success(w, map[string]int{"deleted": deleted}, s.logger)
}
