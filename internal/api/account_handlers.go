package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/largefullmoon/backend-book-recommendation/internal/errors"
	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
	"github.com/largefullmoon/backend-book-recommendation/internal/service"
)

// The account surface keeps its payloads at the top level like the quiz
// routes; its admin front-end reads the document or the error field directly.

// rawError writes a domain error as a top-level {"error": ...} body with the
// error's own status. Unknown errors become a 500.
func (s *Server) rawError(w http.ResponseWriter, err error) {
	var derr *domainerrors.Error
	if domainerrors.As(err, &derr) {
		response.Raw(w, derr.HTTPStatus(), map[string]string{"error": derr.Message}, s.logger)
		return
	}
	s.logger.Error("unhandled account error", "error", err)
	response.Raw(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"}, s.logger)
}

// handleCreateUserProfile stores a preference-only profile.
func (s *Server) handleCreateUserProfile(w http.ResponseWriter, r *http.Request) {
	var input service.ProfileInput
	if err := decodeJSON(r, &input); err != nil {
		s.rawError(w, err)
		return
	}

	account, err := s.accounts.CreateProfile(r.Context(), &input)
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, map[string]any{
		"success": true,
		"user_id": account.ID,
		"message": "User profile created successfully",
	}, s.logger)
}

// handleListUsers returns every parent account.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, accounts, s.logger)
}

// handleGetUser returns one parent account.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, account, s.logger)
}

// handleCreateUser creates a fully specified parent account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var input service.AccountInput
	if err := decodeJSON(r, &input); err != nil {
		s.rawError(w, err)
		return
	}

	account, err := s.accounts.Create(r.Context(), &input)
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusCreated, account, s.logger)
}

// handleUpdateUser applies a partial account update.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch service.AccountPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.rawError(w, err)
		return
	}

	account, err := s.accounts.Update(r.Context(), chi.URLParam(r, "id"), &patch)
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, account, s.logger)
}

// handleDeleteUser removes a parent account.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, map[string]string{"message": "User deleted successfully"}, s.logger)
}

// handleAddUserRecommendation appends a catalog book to the account's
// curated list.
func (s *Server) handleAddUserRecommendation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookID string `json:"book_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.rawError(w, err)
		return
	}

	account, err := s.accounts.AddRecommendation(r.Context(), chi.URLParam(r, "id"), body.BookID)
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, account, s.logger)
}

// handleRemoveUserRecommendation drops a book from the account's curated
// list.
func (s *Server) handleRemoveUserRecommendation(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.RemoveRecommendation(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "bookId"))
	if err != nil {
		s.rawError(w, err)
		return
	}
	response.Raw(w, http.StatusOK, account, s.logger)
}
