package store

import (
	"context"
	"errors"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// CreateAccount stores a new parent account.
func (s *Store) CreateAccount(ctx context.Context, account *domain.ParentAccount) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	return s.Accounts.Create(ctx, account.ID, account)
}

// GetAccount retrieves a parent account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (*domain.ParentAccount, error) {
	account, err := s.Accounts.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount overwrites an existing parent account.
func (s *Store) UpdateAccount(ctx context.Context, account *domain.ParentAccount) error {
	account.UpdatedAt = time.Now().UTC()
	err := s.Accounts.Update(ctx, account.ID, account)
	if errors.Is(err, ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// DeleteAccount removes a parent account. Deleting a missing account is
// ErrAccountNotFound so handlers can report it.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if _, err := s.GetAccount(ctx, id); err != nil {
		return err
	}
	return s.Accounts.Delete(ctx, id)
}

// ListAccounts returns all parent accounts.
func (s *Store) ListAccounts(ctx context.Context) ([]*domain.ParentAccount, error) {
	return s.Accounts.List(ctx)
}
