package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for a document collection stored
// under a common key prefix. The zero value is not usable; construct with
// NewEntity.
type Entity[T any] struct {
	store  *Store
	prefix string
}

// NewEntity creates a collection accessor for documents keyed as prefix+id.
func NewEntity[T any](store *Store, prefix string) *Entity[T] {
	return &Entity[T]{store: store, prefix: prefix}
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

// Create stores a new document. Fails with ErrAlreadyExists if the id is
// already taken.
func (e *Entity[T]) Create(ctx context.Context, id string, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := e.store.exists(e.key(id))
	if err != nil {
		return fmt.Errorf("failed to check document existence: %w", err)
	}
	if exists {
		return ErrAlreadyExists
	}

	return e.store.set(e.key(id), doc)
}

// Get retrieves a document by id.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc T
	err := e.store.get(e.key(id), &doc)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// Update overwrites an existing document. Fails with ErrNotFound if the
// document does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := e.store.exists(e.key(id))
	if err != nil {
		return fmt.Errorf("failed to check document existence: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	return e.store.set(e.key(id), doc)
}

// Upsert stores a document regardless of whether it already exists.
func (e *Entity[T]) Upsert(ctx context.Context, id string, doc *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.set(e.key(id), doc)
}

// Delete removes a document by id. Deleting a missing document is not an
// error.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.delete(e.key(id))
}

// List returns all documents in the collection in key order.
func (e *Entity[T]) List(ctx context.Context) ([]*T, error) {
	return e.Find(ctx, nil)
}

// Find returns all documents matching the predicate. A nil predicate matches
// everything.
func (e *Entity[T]) Find(ctx context.Context, match func(*T) bool) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var docs []*T
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var doc T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal document %s: %w", it.Item().Key(), err)
			}
			if match == nil || match(&doc) {
				docs = append(docs, &doc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Count returns the number of documents in the collection.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteAll removes every document in the collection and returns how many
// were deleted.
func (e *Entity[T]) DeleteAll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var keys [][]byte
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range keys {
		if err := e.store.delete(key); err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return len(keys), nil
}
