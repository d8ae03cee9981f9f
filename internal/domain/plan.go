package domain

import "time"

// SampleBook is one title attached to a recommendation record. The author
// label is the series/author name itself: the model suggests titles without
// reliable author attribution, so the record name stands in.
type SampleBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// RecommendationRecord is one ranked series-or-author recommendation derived
// from the model response.
type RecommendationRecord struct {
	Name            string       `json:"name"`
	Link            string       `json:"justbookify_link"`
	Rationale       string       `json:"rationale"`
	ConfidenceScore int          `json:"confidence_score"`
	SampleBooks     []SampleBook `json:"sample_books"`
}

// BookEntry is one concrete book slot in the reading plan.
type BookEntry struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Explanation string `json:"explanation,omitempty"`
	Link        string `json:"link,omitempty"`
}

// MonthPlan is one month bucket of the reading plan.
type MonthPlan struct {
	Month string      `json:"month"`
	Books []BookEntry `json:"books"`
}

// ReadingPlan is the plan-generation response shape. Future always holds
// exactly three month buckets; each bucket holds exactly four books unless
// strict-bucket mode is enabled.
type ReadingPlan struct {
	Current         []BookEntry            `json:"current"`
	Future          []MonthPlan            `json:"future"`
	Recommendations []RecommendationRecord `json:"recommendations"`
	PlanID          string                 `json:"planId,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// PlanProfile is the profile snapshot embedded in a persisted plan.
type PlanProfile struct {
	Name                string   `json:"name"`
	Age                 int      `json:"age"`
	SelectedGenres      []string `json:"selectedGenres"`
	SelectedInterests   []string `json:"selectedInterests"`
	NonFictionInterests []string `json:"nonFictionInterests"`
	PrefersSeries       bool     `json:"prefersSeries"`
	ParentEmail         string   `json:"parentEmail"`
	ParentPhone         string   `json:"parentPhone"`
}

// Plan is the persisted recommendation plan document.
type Plan struct {
	ID              string                 `json:"id"`
	ReaderID        string                 `json:"readerId,omitempty"`
	Profile         PlanProfile            `json:"profile"`
	Current         []BookEntry            `json:"current"`
	Future          []MonthPlan            `json:"future"`
	Recommendations []RecommendationRecord `json:"recommendations"`
	CreatedAt       time.Time              `json:"createdAt"`
}
