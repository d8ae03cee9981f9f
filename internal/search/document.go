// Package search provides full-text catalog search using Bleve, with fuzzy
// matching on titles, genre faceting, and age-suitability filtering.
package search

import (
	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// BookDocument is the document structure for the Bleve index.
//
// Genres and tags are denormalized from the catalog record so a single query
// can rank on them. The index is rebuilt from the store on mapping changes,
// so nothing here is a source of truth.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Age range for suitability filtering.
	AgeMin int `json:"age_min"`
	AgeMax int `json:"age_max"`

	// Unix millis, for recency sorting.
	CreatedAt int64 `json:"created_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"age_min":    d.AgeMin,
		"age_max":    d.AgeMax,
		"created_at": d.CreatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}

	return m
}

// FromBook converts a catalog book to its search document.
func FromBook(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		Genres:      book.Genres,
		Tags:        book.Tags,
		AgeMin:      book.AgeRange.Min,
		AgeMax:      book.AgeRange.Max,
		CreatedAt:   book.CreatedAt.UnixMilli(),
	}
}
