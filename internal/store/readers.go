package store

import (
	"context"
	"errors"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// CreateReader stores a new reader profile.
func (s *Store) CreateReader(ctx context.Context, reader *domain.Reader) error {
	now := time.Now().UTC()
	reader.CreatedAt = now
	reader.UpdatedAt = now
	return s.Readers.Create(ctx, reader.ID, reader)
}

// GetReader retrieves a reader profile by ID.
func (s *Store) GetReader(ctx context.Context, id string) (*domain.Reader, error) {
	reader, err := s.Readers.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReaderNotFound
	}
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// UpdateReader overwrites an existing reader profile.
func (s *Store) UpdateReader(ctx context.Context, reader *domain.Reader) error {
	reader.UpdatedAt = time.Now().UTC()
	err := s.Readers.Update(ctx, reader.ID, reader)
	if errors.Is(err, ErrNotFound) {
		return ErrReaderNotFound
	}
	return err
}

// ListReaders returns all reader profiles.
func (s *Store) ListReaders(ctx context.Context) ([]*domain.Reader, error) {
	return s.Readers.List(ctx)
}
