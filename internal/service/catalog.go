// Package service implements the application services behind the HTTP API:
// catalog administration, age-group recommendation snapshots, and the reader
// quiz flow.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/errors"
	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/largefullmoon/backend-book-recommendation/internal/ingest"
	"github.com/largefullmoon/backend-book-recommendation/internal/search"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
	"github.com/largefullmoon/backend-book-recommendation/internal/validation"
)

// AgeRangeInput is the inclusive age span supplied for a catalog book.
type AgeRangeInput struct {
	Min int `json:"min" validate:"gte=0"`
	Max int `json:"max" validate:"gte=0"`
}

// BookInput is the request body for creating or replacing a catalog book.
type BookInput struct {
	Title       string        `json:"title" validate:"required"`
	Author      string        `json:"author" validate:"required"`
	Genres      []string      `json:"genres" validate:"required,min=1"`
	AgeRange    AgeRangeInput `json:"ageRange"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Image       string        `json:"image"`
}

// BookService manages the catalog: CRUD, full-text search, and CSV import.
type BookService struct {
	store     *store.Store
	search    *search.Index
	importer  *ingest.Importer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates the catalog service.
func NewBookService(s *store.Store, idx *search.Index, validator *validation.Validator, logger *slog.Logger) *BookService {
	return &BookService{
		store:     s,
		search:    idx,
		importer:  ingest.NewImporter(s, logger),
		validator: validator,
		logger:    logger,
	}
}

// ListBooks returns the whole catalog.
func (s *BookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

// GetBook returns one catalog book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	return s.store.GetBook(ctx, bookID)
}

// CreateBook validates and stores a new catalog book.
func (s *BookService) CreateBook(ctx context.Context, input *BookInput) (*domain.Book, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, errors.Internalf("generate book id: %v", err)
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          bookID,
		Title:       input.Title,
		Author:      input.Author,
		Genres:      input.Genres,
		AgeRange:    domain.AgeRange{Min: input.AgeRange.Min, Max: input.AgeRange.Max},
		Description: input.Description,
		Tags:        input.Tags,
		Image:       input.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, err
	}
	s.logger.Info("book created", "bookId", book.ID, "title", book.Title)
	return book, nil
}

// UpdateBook validates and replaces an existing catalog book.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, input *BookInput) (*domain.Book, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		ID:          bookID,
		Title:       input.Title,
		Author:      input.Author,
		Genres:      input.Genres,
		AgeRange:    domain.AgeRange{Min: input.AgeRange.Min, Max: input.AgeRange.Max},
		Description: input.Description,
		Tags:        input.Tags,
		Image:       input.Image,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
		ImportedAt:  existing.ImportedAt,
	}

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book from the catalog and from every age-group
// recommendation snapshot that references it.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}

	for _, label := range domain.AgeGroupLabels() {
		snapshot, err := s.store.AgeGroups.Get(ctx, label)
		if err != nil {
			continue
		}
		kept := snapshot.BookIDs[:0]
		for _, ref := range snapshot.BookIDs {
			if ref != bookID {
				kept = append(kept, ref)
			}
		}
		if len(kept) == len(snapshot.BookIDs) {
			continue
		}
		snapshot.BookIDs = kept
		if err := s.store.AgeGroups.Upsert(ctx, label, snapshot); err != nil {
			s.logger.Warn("failed to prune deleted book from age group",
				"ageGroup", label, "bookId", bookID, "error", err)
		}
	}
	return nil
}

// Search runs a full-text catalog query.
func (s *BookService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.search.Search(ctx, params)
}

// Import loads books from a CSV export stream.
func (s *BookService) Import(ctx context.Context, r io.Reader) (*ingest.Report, error) {
	report, err := s.importer.Import(ctx, r)
	if err != nil {
		return nil, errors.Validation(err.Error())
	}
	return report, nil
}

func (s *BookService) validateInput(input *BookInput) error {
	if err := s.validator.Validate(input); err != nil {
		return err
	}
	if input.AgeRange.Min > input.AgeRange.Max {
		return errors.Validation("invalid age range: min must not exceed max")
	}
	return nil
}
