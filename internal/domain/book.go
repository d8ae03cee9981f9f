// Package domain contains the core business entities for the book recommendation service.
package domain

import "time"

// AgeRange is the inclusive reader age span a book is suitable for.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Book represents a title in the catalog.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Genres      []string   `json:"genres"`
	AgeRange    AgeRange   `json:"ageRange"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Image       string     `json:"image,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ImportedAt  *time.Time `json:"importedAt,omitempty"`
}

// SuitableFor reports whether the book's age range covers the given age.
func (b *Book) SuitableFor(age int) bool {
	return b.AgeRange.Min <= age && age <= b.AgeRange.Max
}

// HasAnyGenre reports whether the book carries at least one of the given genres.
func (b *Book) HasAnyGenre(genres []string) bool {
	for _, want := range genres {
		for _, g := range b.Genres {
			if g == want {
				return true
			}
		}
	}
	return false
}
