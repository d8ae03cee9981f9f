package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

const (
	bookPrefix         = "book:"
	bookTitleAuthorIdx = "idx:book:titleauthor:"
)

func bookKey(id string) []byte {
	return []byte(bookPrefix + id)
}

func bookTitleAuthorKey(title, author string) []byte {
	norm := strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
	return []byte(bookTitleAuthorIdx + norm)
}

// CreateBook stores a new catalog book and indexes it for search.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := s.exists(bookKey(book.ID))
	if err != nil {
		return fmt.Errorf("failed to check book existence: %w", err)
	}
	if exists {
		return ErrBookExists
	}

	if err := s.set(bookKey(book.ID), book); err != nil {
		return fmt.Errorf("failed to store book: %w", err)
	}
	if err := s.set(bookTitleAuthorKey(book.Title, book.Author), book.ID); err != nil {
		return fmt.Errorf("failed to store book index: %w", err)
	}

	if err := s.searchIndexer.IndexBook(ctx, book); err != nil && s.logger != nil {
		s.logger.Warn("failed to index book for search", "bookId", book.ID, "error", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book domain.Book
	err := s.get(bookKey(id), &book)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// GetBookByTitleAuthor looks a book up through the title+author index.
// Matching is case-insensitive.
func (s *Store) GetBookByTitleAuthor(ctx context.Context, title, author string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var id string
	err := s.get(bookTitleAuthorKey(title, author), &id)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book index: %w", err)
	}
	return s.GetBook(ctx, id)
}

// UpdateBook overwrites an existing book and refreshes its indexes.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := s.GetBook(ctx, book.ID)
	if err != nil {
		return err
	}

	// If the title or author changed, the old index entry is stale.
	if !strings.EqualFold(existing.Title, book.Title) || !strings.EqualFold(existing.Author, book.Author) {
		if err := s.delete(bookTitleAuthorKey(existing.Title, existing.Author)); err != nil {
			return fmt.Errorf("failed to drop stale book index: %w", err)
		}
	}

	if err := s.set(bookKey(book.ID), book); err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if err := s.set(bookTitleAuthorKey(book.Title, book.Author), book.ID); err != nil {
		return fmt.Errorf("failed to update book index: %w", err)
	}

	if err := s.searchIndexer.IndexBook(ctx, book); err != nil && s.logger != nil {
		s.logger.Warn("failed to re-index book for search", "bookId", book.ID, "error", err)
	}
	return nil
}

// DeleteBook removes a book and its index entries.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return err
	}

	if err := s.delete(bookKey(id)); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if err := s.delete(bookTitleAuthorKey(book.Title, book.Author)); err != nil {
		return fmt.Errorf("failed to delete book index: %w", err)
	}

	if err := s.searchIndexer.DeleteBook(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("failed to remove book from search index", "bookId", id, "error", err)
	}
	return nil
}

// ListBooks returns all catalog books.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.FindBooks(ctx, nil)
}

// FindBooks returns all books matching the predicate. A nil predicate
// matches everything.
func (s *Store) FindBooks(ctx context.Context, match func(*domain.Book) bool) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal book %s: %w", it.Item().Key(), err)
			}
			if match == nil || match(&book) {
				books = append(books, &book)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// CountBooks returns the number of books in the catalog.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
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
