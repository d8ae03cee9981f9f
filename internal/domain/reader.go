package domain

import "time"

// SeriesResponse is a reader's reaction to a book series they were quizzed on.
type SeriesResponse string

// Series reactions collected during the quiz.
const (
	ResponseLove            SeriesResponse = "love"
	ResponseLike            SeriesResponse = "like"
	ResponseNeutral         SeriesResponse = "neutral"
	ResponseDidNotEnjoy     SeriesResponse = "didNotEnjoy"
	ResponseDontReadAnymore SeriesResponse = "dontReadAnymore"
)

// SeriesReaction records one quiz answer about a book series.
type SeriesReaction struct {
	SeriesRef string         `json:"seriesId"`
	HasRead   bool           `json:"hasRead"`
	Response  SeriesResponse `json:"response,omitempty"`
}

// QuizProgress tracks which quiz steps a reader has completed.
type QuizProgress struct {
	ParentConsent bool `json:"parentConsent"`
	BasicInfo     bool `json:"basicInfo"`
	ParentReading bool `json:"parentReading"`
	Genres        bool `json:"genres"`
	Interests     bool `json:"interests"`
	BookSeries    bool `json:"bookSeries"`
	Completed     bool `json:"completed"`
}

// Reader statuses.
const (
	StatusConsentGiven = "consent_given"
	StatusCompleted    = "completed"
)

// Reader is a child reader's quiz profile. It is created when parent consent
// is recorded and mutated incrementally as quiz steps complete.
type Reader struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Age         int    `json:"age,omitempty"`
	ParentEmail string `json:"parentEmail"`
	ParentPhone string `json:"parentPhone"`

	ParentReading string `json:"parentReading,omitempty"`

	SelectedGenres         []string `json:"selectedGenres,omitempty"`
	TopThreeGenres         []string `json:"topThreeGenres,omitempty"`
	FictionGenres          []string `json:"fictionGenres,omitempty"`
	NonFictionGenres       []string `json:"nonFictionGenres,omitempty"`
	AdditionalGenres       []string `json:"additionalGenres,omitempty"`
	FictionNonFictionRatio string   `json:"fictionNonFictionRatio,omitempty"`

	SelectedInterests   []string `json:"selectedInterests,omitempty"`
	NonFictionInterests []string `json:"nonFictionInterests,omitempty"`

	BookSeries []SeriesReaction `json:"bookSeries,omitempty"`

	Status           string       `json:"status"`
	QuizProgress     QuizProgress `json:"quizProgress"`
	ConsentTimestamp string       `json:"consentTimestamp,omitempty"`
	CompletedAt      string       `json:"completedAt,omitempty"`

	// Saved plan snapshot, written after a successful generation.
	Recommendations            []RecommendationRecord `json:"recommendations,omitempty"`
	RecommendationsGeneratedAt string                 `json:"recommendationsGeneratedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PrefersSeries reports whether the reader should be pitched book series.
// The quiz never asks this directly; a reader who engaged with the series
// step at all is treated as series-friendly.
func (r *Reader) PrefersSeries() bool {
	return len(r.BookSeries) > 0
}

// ExcludedSeries returns the series refs the reader reacted negatively to.
// These feed the prompt's exclude block.
func (r *Reader) ExcludedSeries() []string {
	var out []string
	for _, s := range r.BookSeries {
		if s.Response == ResponseDidNotEnjoy || s.Response == ResponseDontReadAnymore {
			out = append(out, s.SeriesRef)
		}
	}
	return out
}

// PrioritizedSeries returns the series refs the reader has read and enjoyed.
// These feed the prompt's prioritize block.
func (r *Reader) PrioritizedSeries() []string {
	var out []string
	for _, s := range r.BookSeries {
		if s.HasRead && (s.Response == ResponseLove || s.Response == ResponseLike) {
			out = append(out, s.SeriesRef)
		}
	}
	return out
}

// RecordSeriesReaction updates the reaction for a series, appending if the
// series has not been answered before.
func (r *Reader) RecordSeriesReaction(reaction SeriesReaction) {
	for i := range r.BookSeries {
		if r.BookSeries[i].SeriesRef == reaction.SeriesRef {
			r.BookSeries[i] = reaction
			return
		}
	}
	r.BookSeries = append(r.BookSeries, reaction)
}

// ParentConsent records a standalone consent submission.
type ParentConsent struct {
	ID            string    `json:"id"`
	ChildAge      int       `json:"child_age"`
	ParentName    string    `json:"parent_name"`
	ParentContact string    `json:"parent_contact"`
	ConsentDate   time.Time `json:"consent_date"`
}

// QuizSeriesResponse is the audit record kept for every individual series
// answer, separate from the reader's rolled-up BookSeries list.
type QuizSeriesResponse struct {
	ID        string         `json:"id"`
	ReaderID  string         `json:"userId"`
	SeriesRef string         `json:"seriesId"`
	HasRead   bool           `json:"hasRead"`
	Response  SeriesResponse `json:"response,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
