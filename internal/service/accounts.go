package service

import (
	"context"
	"log/slog"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/errors"
	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

// ProfileInput is the lightweight profile intake shape: age plus preference
// lists, no contact details.
type ProfileInput struct {
	Age        int      `json:"age"`
	Genres     []string `json:"genres"`
	LikedBooks []string `json:"liked_books"`
}

// AccountInput creates a fully specified parent account. All five fields are
// required; pointers distinguish absent from zero.
type AccountInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ChildName string `json:"childName"`
	ChildAge  *int   `json:"childAge"`
}

// AccountPatch is a partial account update; only non-nil fields are applied.
type AccountPatch struct {
	Name       *string   `json:"name"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	ChildName  *string   `json:"childName"`
	ChildAge   *int      `json:"childAge"`
	Age        *int      `json:"age"`
	Genres     *[]string `json:"genres"`
	LikedBooks *[]string `json:"liked_books"`
}

func (p *AccountPatch) applyTo(a *domain.ParentAccount) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.ChildName != nil {
		a.ChildName = *p.ChildName
	}
	if p.ChildAge != nil {
		a.ChildAge = *p.ChildAge
	}
	if p.Age != nil {
		a.Age = *p.Age
	}
	if p.Genres != nil {
		a.Genres = *p.Genres
	}
	if p.LikedBooks != nil {
		a.LikedBooks = *p.LikedBooks
	}
}

// AccountService manages the administratively curated parent accounts,
// including their per-account recommendation lists.
type AccountService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAccountService creates the parent account service.
func NewAccountService(s *store.Store, logger *slog.Logger) *AccountService {
	return &AccountService{store: s, logger: logger}
}

// CreateProfile stores a preference-only account from the profile intake
// endpoint.
func (s *AccountService) CreateProfile(ctx context.Context, input *ProfileInput) (*domain.ParentAccount, error) {
	accountID, err := id.Generate(id.PrefixAccount)
	if err != nil {
		return nil, errors.Internalf("generate account id: %v", err)
	}

	account := &domain.ParentAccount{
		ID:              accountID,
		Age:             input.Age,
		Genres:          input.Genres,
		LikedBooks:      input.LikedBooks,
		Recommendations: []string{},
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account profile created", "accountId", accountID)
	return account, nil
}

// Create stores a new fully specified parent account.
func (s *AccountService) Create(ctx context.Context, input *AccountInput) (*domain.ParentAccount, error) {
	if input.Name == "" || input.Email == "" || input.Phone == "" ||
		input.ChildName == "" || input.ChildAge == nil {
		return nil, errors.Validation("Missing required fields")
	}

	accountID, err := id.Generate(id.PrefixAccount)
	if err != nil {
		return nil, errors.Internalf("generate account id: %v", err)
	}

	account := &domain.ParentAccount{
		ID:              accountID,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		ChildName:       input.ChildName,
		ChildAge:        *input.ChildAge,
		Recommendations: []string{},
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("account created", "accountId", accountID)
	return account, nil
}

// Get returns one parent account.
func (s *AccountService) Get(ctx context.Context, accountID string) (*domain.ParentAccount, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return nil, errors.NotFound("User not found")
	}
	return account, err
}

// List returns every parent account.
func (s *AccountService) List(ctx context.Context) ([]*domain.ParentAccount, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []*domain.ParentAccount{}
	}
	return accounts, nil
}

// Update applies a partial account update and returns the updated document.
func (s *AccountService) Update(ctx context.Context, accountID string, patch *AccountPatch) (*domain.ParentAccount, error) {
	return s.mutate(ctx, accountID, "User not found", func(a *domain.ParentAccount) error {
		patch.applyTo(a)
		return nil
	})
}

// Delete removes a parent account.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	err := s.store.DeleteAccount(ctx, accountID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return errors.NotFound("User not found")
	}
	return err
}

// AddRecommendation appends a catalog book to the account's curated list.
// The book must exist; adding a book twice reports the same not-found
// condition the removal path does, mirroring a set insert that changed
// nothing.
func (s *AccountService) AddRecommendation(ctx context.Context, accountID, bookID string) (*domain.ParentAccount, error) {
	if bookID == "" {
		return nil, errors.Validation("Book ID is required")
	}
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, errors.NotFound("Book not found")
		}
		return nil, err
	}

	// A missing account and an already-listed book collapse into one message,
	// like a set insert that changed nothing.
	return s.mutate(ctx, accountID, "User not found or book already recommended", func(a *domain.ParentAccount) error {
		if !a.AddRecommendation(bookID) {
			return errors.NotFound("User not found or book already recommended")
		}
		return nil
	})
}

// RemoveRecommendation drops a book from the account's curated list.
func (s *AccountService) RemoveRecommendation(ctx context.Context, accountID, bookID string) (*domain.ParentAccount, error) {
	return s.mutate(ctx, accountID, "User not found or book not in recommendations", func(a *domain.ParentAccount) error {
		if !a.RemoveRecommendation(bookID) {
			return errors.NotFound("User not found or book not in recommendations")
		}
		return nil
	})
}

// mutate loads the account, applies fn and saves the result. A missing
// account surfaces as a not-found error with the given message.
func (s *AccountService) mutate(ctx context.Context, accountID, notFoundMsg string, fn func(*domain.ParentAccount) error) (*domain.ParentAccount, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if errors.Is(err, store.ErrAccountNotFound) {
		return nil, errors.NotFound(notFoundMsg)
	}
	if err != nil {
		return nil, err
	}
	if err := fn(account); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
