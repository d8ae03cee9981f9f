// Package store persists catalog, reader, and plan documents in a Badger
// key-value database, exposing the simple document operations the rest of
// the service is written against.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// SearchIndexer is the interface for updating the catalog search index.
// Store uses this to keep search in sync without depending on the search
// implementation.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexBook is a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopSearchIndexer) DeleteBook(context.Context, string) error { return nil }

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Search indexer for keeping search in sync with catalog changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic document collections.
	Accounts      *Entity[domain.ParentAccount]
	Readers       *Entity[domain.Reader]
	Consents      *Entity[domain.ParentConsent]
	QuizResponses *Entity[domain.QuizSeriesResponse]
	Plans         *Entity[domain.Plan]
	AgeGroups     *Entity[domain.AgeGroupRecommendations]
}

// New creates a new Store instance at the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:            db,
		logger:        logger,
		searchIndexer: NoopSearchIndexer{},
	}

	store.Accounts = NewEntity[domain.ParentAccount](store, "account:")
	store.Readers = NewEntity[domain.Reader](store, "reader:")
	store.Consents = NewEntity[domain.ParentConsent](store, "consent:")
	store.QuizResponses = NewEntity[domain.QuizSeriesResponse](store, "quizresp:")
	store.Plans = NewEntity[domain.Plan](store, "plan:")
	store.AgeGroups = NewEntity[domain.AgeGroupRecommendations](store, "agegroup:")

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// EnsureAgeGroups creates an empty recommendations snapshot for every
// bracket that does not have one yet. Called once at startup.
func (s *Store) EnsureAgeGroups(ctx context.Context) error {
	for _, label := range domain.AgeGroupLabels() {
		_, err := s.AgeGroups.Get(ctx, label)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check age group %q: %w", label, err)
		}
		snapshot := &domain.AgeGroupRecommendations{AgeGroup: label, BookIDs: []string{}}
		if err := s.AgeGroups.Create(ctx, label, snapshot); err != nil && !errors.Is(err, ErrAlreadyExists) {
			return fmt.Errorf("initialize age group %q: %w", label, err)
		}
	}
	return nil
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
