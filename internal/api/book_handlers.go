package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
	"github.com/largefullmoon/backend-book-recommendation/internal/search"
	"github.com/largefullmoon/backend-book-recommendation/internal/service"
)

// maxImportSize caps the multipart CSV upload at 10 MB.
const maxImportSize = 10 << 20

// handleListBooks returns the whole catalog.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.ListBooks(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, books, s.logger)
}

// handleCreateBook adds a catalog book.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var input service.BookInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.books.CreateBook(r.Context(), &input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, book, s.logger)
}

// handleUpdateBook replaces a catalog book.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var input service.BookInput
	if err := decodeJSON(r, &input); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	book, err := s.books.UpdateBook(r.Context(), bookID, &input)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a catalog book.
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "id")
	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	if err := s.books.DeleteBook(r.Context(), bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]string{"message": "Book deleted successfully"}, s.logger)
}

// handleSearchBooks runs a full-text catalog search.
// Query parameters: q, genres (comma separated), age, limit, offset, sort, order.
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	params := search.DefaultParams()
	q := r.URL.Query()

	params.Query = q.Get("q")
	if genres := q.Get("genres"); genres != "" {
		for _, g := range strings.Split(genres, ",") {
			if g = strings.TrimSpace(g); g != "" {
				params.Genres = append(params.Genres, g)
			}
		}
	}
	if ageStr := q.Get("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil || age < 0 {
			response.BadRequest(w, "age must be a non-negative number", s.logger)
			return
		}
		params.Age = age
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}
	if sortBy := q.Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := q.Get("order"); order != "" {
		params.SortOrder = order
	}

	result, err := s.books.Search(r.Context(), params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

// handleImportBooks ingests a Shopify CSV export uploaded as multipart
// form-data under the "file" field.
func (s *Server) handleImportBooks(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		response.BadRequest(w, "invalid multipart form: "+err.Error(), s.logger)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "CSV file is required under the \"file\" field", s.logger)
		return
	}
	defer file.Close()

	report, err := s.books.Import(r.Context(), file)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	s.logger.Info("book import completed",
		"imported", report.SuccessCount, "failed", report.ErrorCount)
	response.Success(w, report, s.logger)
}
