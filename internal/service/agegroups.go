package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/errors"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

// AgeGroupService manages the curated "current recommendations" snapshot
// kept per age bracket. Snapshots store book IDs and are denormalized to
// full book documents on every read, so a stale reference never surfaces.
type AgeGroupService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAgeGroupService creates the age-group snapshot service.
func NewAgeGroupService(s *store.Store, logger *slog.Logger) *AgeGroupService {
	return &AgeGroupService{store: s, logger: logger}
}

// GetAll returns every bracket's recommendations keyed by bracket label.
func (s *AgeGroupService) GetAll(ctx context.Context) (map[string][]*domain.Book, error) {
	out := make(map[string][]*domain.Book, len(domain.DefaultAgeBrackets))
	for _, label := range domain.AgeGroupLabels() {
		books, err := s.Get(ctx, label)
		if err != nil {
			return nil, err
		}
		out[label] = books
	}
	return out, nil
}

// Get returns the denormalized book list for one bracket. An unknown
// bracket label is a validation error; a bracket with no snapshot yet
// returns an empty list.
func (s *AgeGroupService) Get(ctx context.Context, ageGroup string) ([]*domain.Book, error) {
	if !domain.ValidAgeGroup(ageGroup) {
		return nil, invalidAgeGroupError(ageGroup)
	}

	snapshot, err := s.store.AgeGroups.Get(ctx, ageGroup)
	if errors.Is(err, store.ErrNotFound) {
		return []*domain.Book{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.denormalize(ctx, snapshot.BookIDs), nil
}

// Update replaces a bracket's book list. Every referenced book must exist.
// Returns the denormalized result.
func (s *AgeGroupService) Update(ctx context.Context, ageGroup string, bookIDs []string) ([]*domain.Book, error) {
	if !domain.ValidAgeGroup(ageGroup) {
		return nil, invalidAgeGroupError(ageGroup)
	}

	for _, bookID := range bookIDs {
		if bookID == "" {
			return nil, errors.Validation("invalid book ID: empty")
		}
		if _, err := s.store.GetBook(ctx, bookID); err != nil {
			if errors.Is(err, store.ErrBookNotFound) {
				return nil, errors.NotFoundf("book not found: %s", bookID)
			}
			return nil, err
		}
	}

	snapshot := &domain.AgeGroupRecommendations{AgeGroup: ageGroup, BookIDs: bookIDs}
	if err := s.store.AgeGroups.Upsert(ctx, ageGroup, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info("age group recommendations updated", "ageGroup", ageGroup, "books", len(bookIDs))
	return s.denormalize(ctx, bookIDs), nil
}

// denormalize resolves book IDs to documents, silently dropping references
// to books that no longer exist.
func (s *AgeGroupService) denormalize(ctx context.Context, bookIDs []string) []*domain.Book {
	books := make([]*domain.Book, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.store.GetBook(ctx, bookID)
		if err != nil {
			continue
		}
		books = append(books, book)
	}
	return books
}

func invalidAgeGroupError(ageGroup string) error {
	return errors.Validationf("invalid age group %q, must be one of: %s",
		ageGroup, strings.Join(domain.AgeGroupLabels(), ", "))
}
