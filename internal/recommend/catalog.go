// Package recommend implements the plan-generation pipeline: candidate
// selection from the catalog, prompt construction, response parsing, link
// synthesis, and deterministic allocation into the monthly plan shape.
package recommend

import (
	"context"
	"log/slog"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

// CatalogQuery selects candidate books with progressive filter relaxation.
type CatalogQuery struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCatalogQuery creates a candidate query engine over the catalog store.
func NewCatalogQuery(s *store.Store, logger *slog.Logger) *CatalogQuery {
	return &CatalogQuery{store: s, logger: logger}
}

// FindCandidates returns at least minCount books when the catalog holds that
// many, relaxing filters tier by tier:
//
//  1. Genre match and age within the book's range.
//  2. Age only.
//  3. The entire catalog.
//
// The first tier meeting minCount wins; storage order is preserved. An empty
// result means the catalog itself is empty and the caller must skip the
// model call entirely.
func (q *CatalogQuery) FindCandidates(ctx context.Context, age int, genres []string, minCount int) ([]*domain.Book, error) {
	books, err := q.store.FindBooks(ctx, func(b *domain.Book) bool {
		return b.HasAnyGenre(genres) && b.SuitableFor(age)
	})
	if err != nil {
		return nil, err
	}
	q.logger.Debug("strict filter", "count", len(books))
	if len(books) >= minCount {
		return books, nil
	}

	books, err = q.store.FindBooks(ctx, func(b *domain.Book) bool {
		return b.SuitableFor(age)
	})
	if err != nil {
		return nil, err
	}
	q.logger.Debug("age filter only", "count", len(books))
	if len(books) >= minCount {
		return books, nil
	}

	books, err = q.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	q.logger.Debug("no filters", "count", len(books))
	return books, nil
}
