package api

import (
	"net/http"
	"strings"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/http/response"
	"github.com/largefullmoon/backend-book-recommendation/internal/recommend"
)

// planRequest is the plan-generation body: either a reader ID referencing a
// completed quiz, or the raw profile fields inline.
type planRequest struct {
	ReaderID string `json:"userId"`

	Name                string                  `json:"name"`
	Age                 *int                    `json:"age"`
	SelectedGenres      []string                `json:"selectedGenres"`
	SelectedInterests   []string                `json:"selectedInterests"`
	NonFictionInterests []string                `json:"nonFictionInterests"`
	BookSeries          []domain.SeriesReaction `json:"bookSeries"`
	ParentEmail         string                  `json:"parentEmail"`
	ParentPhone         string                  `json:"parentPhone"`
}

// handleGeneratePlan validates the profile and runs the recommendation
// pipeline. Validation problems are the only 4xx answers; once the pipeline
// starts, every failure degrades to a 200 with a structured empty plan.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	if err := decodeJSON(r, &body); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	req, errMsg := s.resolvePlanRequest(r, &body)
	if errMsg != "" {
		response.Raw(w, http.StatusBadRequest, map[string]string{"error": errMsg}, s.logger)
		return
	}

	plan := s.planner.GeneratePlan(r.Context(), req)
	response.Raw(w, http.StatusOK, plan, s.logger)
}

// resolvePlanRequest loads the reader's quiz profile when a user ID is
// supplied, otherwise validates the inline fields. Returns a non-empty
// message on validation failure.
func (s *Server) resolvePlanRequest(r *http.Request, body *planRequest) (recommend.Request, string) {
	if body.ReaderID != "" {
		reader, err := s.quiz.GetReader(r.Context(), body.ReaderID)
		if err == nil {
			return recommend.Request{
				ReaderID: reader.ID,
				Profile: domain.PlanProfile{
					Name:                reader.Name,
					Age:                 reader.Age,
					SelectedGenres:      reader.SelectedGenres,
					SelectedInterests:   reader.SelectedInterests,
					NonFictionInterests: reader.NonFictionInterests,
					PrefersSeries:       reader.PrefersSeries(),
					ParentEmail:         reader.ParentEmail,
					ParentPhone:         reader.ParentPhone,
				},
				Exclude:    reader.ExcludedSeries(),
				Prioritize: reader.PrioritizedSeries(),
			}, s.validateProfile(reader.Age, reader.SelectedGenres)
		}
		// Unknown reader IDs fall through to the inline fields, matching the
		// tolerant behavior the quiz front-end depends on.
		s.logger.Warn("plan request with unknown reader id", "readerId", body.ReaderID, "error", err)
	}

	var missing []string
	if body.Name == "" {
		missing = append(missing, "name")
	}
	if body.Age == nil {
		missing = append(missing, "age")
	}
	if body.SelectedGenres == nil {
		missing = append(missing, "selectedGenres")
	}
	if body.SelectedInterests == nil {
		missing = append(missing, "selectedInterests")
	}
	if body.NonFictionInterests == nil {
		missing = append(missing, "nonFictionInterests")
	}
	if body.BookSeries == nil {
		missing = append(missing, "bookSeries")
	}
	if body.ParentEmail == "" {
		missing = append(missing, "parentEmail")
	}
	if body.ParentPhone == "" {
		missing = append(missing, "parentPhone")
	}
	if len(missing) > 0 {
		return recommend.Request{}, "Missing required fields: " + strings.Join(missing, ", ")
	}

	if msg := s.validateProfile(*body.Age, body.SelectedGenres); msg != "" {
		return recommend.Request{}, msg
	}

	// Reuse the reader helpers to derive series preferences from the inline
	// reactions.
	reactions := domain.Reader{BookSeries: body.BookSeries}
	return recommend.Request{
		Profile: domain.PlanProfile{
			Name:                body.Name,
			Age:                 *body.Age,
			SelectedGenres:      body.SelectedGenres,
			SelectedInterests:   body.SelectedInterests,
			NonFictionInterests: body.NonFictionInterests,
			PrefersSeries:       reactions.PrefersSeries(),
			ParentEmail:         body.ParentEmail,
			ParentPhone:         body.ParentPhone,
		},
		Exclude:    reactions.ExcludedSeries(),
		Prioritize: reactions.PrioritizedSeries(),
	}, ""
}

func (s *Server) validateProfile(age int, genres []string) string {
	if age < 0 {
		return "Invalid age value"
	}
	if len(genres) == 0 {
		return "Selected genres must be a non-empty list"
	}
	return ""
}
