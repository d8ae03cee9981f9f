package domain

import "time"

// ParentAccount is an administratively managed parent record, separate from
// the quiz Reader. It carries the contact details entered by staff plus a
// curated list of recommended catalog book IDs.
type ParentAccount struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	ChildName string `json:"childName,omitempty"`
	ChildAge  int    `json:"childAge,omitempty"`

	// Lightweight profile shape used by the profile intake endpoint.
	Age        int      `json:"age,omitempty"`
	Genres     []string `json:"genres,omitempty"`
	LikedBooks []string `json:"liked_books,omitempty"`

	// Curated catalog book IDs, managed one at a time by staff.
	Recommendations []string `json:"recommendations"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddRecommendation appends the book ID if it is not already present.
// Reports whether the list changed.
func (a *ParentAccount) AddRecommendation(bookID string) bool {
	for _, id := range a.Recommendations {
		if id == bookID {
			return false
		}
	}
	a.Recommendations = append(a.Recommendations, bookID)
	return true
}

// RemoveRecommendation drops the book ID from the curated list.
// Reports whether the list changed.
func (a *ParentAccount) RemoveRecommendation(bookID string) bool {
	for i, id := range a.Recommendations {
		if id == bookID {
			a.Recommendations = append(a.Recommendations[:i], a.Recommendations[i+1:]...)
			return true
		}
	}
	return false
}
