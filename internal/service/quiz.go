package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/errors"
	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
	"github.com/largefullmoon/backend-book-recommendation/internal/validation"
)

// QuizConsentInput starts the quiz: parent contact details plus an optional
// client-side consent timestamp.
type QuizConsentInput struct {
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Timestamp string `json:"timestamp"`
}

// StandaloneConsentInput is a consent submission outside the quiz flow.
type StandaloneConsentInput struct {
	ChildAge      int    `json:"child_age" validate:"gte=0"`
	ParentName    string `json:"parent_name" validate:"required"`
	ParentContact string `json:"parent_contact" validate:"required"`
}

// BasicInfoInput is the reader's name and age quiz step.
type BasicInfoInput struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gte=0"`
}

// GenresInput carries the genre-preference quiz step. Only fields present in
// the request body are applied.
type GenresInput struct {
	SelectedGenres         *[]string `json:"selectedGenres"`
	TopThreeGenres         *[]string `json:"topThreeGenres"`
	FictionGenres          *[]string `json:"fictionGenres"`
	NonFictionGenres       *[]string `json:"nonFictionGenres"`
	AdditionalGenres       *[]string `json:"additionalGenres"`
	FictionNonFictionRatio *string   `json:"fictionNonFictionRatio"`
}

// InterestsInput is the interests quiz step.
type InterestsInput struct {
	SelectedInterests   []string `json:"selectedInterests"`
	NonFictionInterests []string `json:"nonFictionInterests"`
}

// SeriesResponseInput is one series answer recorded during the book-series
// quiz step.
type SeriesResponseInput struct {
	SeriesRef string                `json:"seriesId" validate:"required"`
	HasRead   *bool                 `json:"hasRead" validate:"required"`
	Response  domain.SeriesResponse `json:"response"`
	Timestamp string                `json:"timestamp"`
}

// ReaderPatch is a partial reader update. Nil fields are left untouched.
// Complete and the generic PUT endpoint both accept this shape.
type ReaderPatch struct {
	Name                   *string                  `json:"name"`
	Age                    *int                     `json:"age"`
	ParentEmail            *string                  `json:"parentEmail"`
	ParentPhone            *string                  `json:"parentPhone"`
	ParentReading          *string                  `json:"parentReading"`
	SelectedGenres         *[]string                `json:"selectedGenres"`
	TopThreeGenres         *[]string                `json:"topThreeGenres"`
	FictionGenres          *[]string                `json:"fictionGenres"`
	NonFictionGenres       *[]string                `json:"nonFictionGenres"`
	AdditionalGenres       *[]string                `json:"additionalGenres"`
	FictionNonFictionRatio *string                  `json:"fictionNonFictionRatio"`
	SelectedInterests      *[]string                `json:"selectedInterests"`
	NonFictionInterests    *[]string                `json:"nonFictionInterests"`
	BookSeries             *[]domain.SeriesReaction `json:"bookSeries"`
}

func (p *ReaderPatch) applyTo(r *domain.Reader) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Age != nil {
		r.Age = *p.Age
	}
	if p.ParentEmail != nil {
		r.ParentEmail = *p.ParentEmail
	}
	if p.ParentPhone != nil {
		r.ParentPhone = *p.ParentPhone
	}
	if p.ParentReading != nil {
		r.ParentReading = *p.ParentReading
	}
	if p.SelectedGenres != nil {
		r.SelectedGenres = *p.SelectedGenres
	}
	if p.TopThreeGenres != nil {
		r.TopThreeGenres = *p.TopThreeGenres
	}
	if p.FictionGenres != nil {
		r.FictionGenres = *p.FictionGenres
	}
	if p.NonFictionGenres != nil {
		r.NonFictionGenres = *p.NonFictionGenres
	}
	if p.AdditionalGenres != nil {
		r.AdditionalGenres = *p.AdditionalGenres
	}
	if p.FictionNonFictionRatio != nil {
		r.FictionNonFictionRatio = *p.FictionNonFictionRatio
	}
	if p.SelectedInterests != nil {
		r.SelectedInterests = *p.SelectedInterests
	}
	if p.NonFictionInterests != nil {
		r.NonFictionInterests = *p.NonFictionInterests
	}
	if p.BookSeries != nil {
		r.BookSeries = *p.BookSeries
	}
}

// CompleteInput finalizes the quiz. Any profile field supplied alongside the
// reader ID is applied before the status flips.
type CompleteInput struct {
	ReaderID    string `json:"userId" validate:"required"`
	CompletedAt string `json:"completedAt"`
	ReaderPatch
}

// QuizService drives the multi-step reader quiz: consent creates the reader,
// each step mutates it and flips the matching progress flag, and completion
// freezes the profile for plan generation.
type QuizService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewQuizService creates the quiz service.
func NewQuizService(s *store.Store, validator *validation.Validator, logger *slog.Logger) *QuizService {
	return &QuizService{store: s, validator: validator, logger: logger}
}

// StartWithConsent records parent consent and creates the reader that the
// remaining quiz steps mutate. Returns the new reader's ID.
func (s *QuizService) StartWithConsent(ctx context.Context, input *QuizConsentInput) (string, error) {
	if err := s.validator.Validate(input); err != nil {
		return "", err
	}

	readerID, err := id.Generate(id.PrefixReader)
	if err != nil {
		return "", errors.Internalf("generate reader id: %v", err)
	}

	timestamp := input.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	reader := &domain.Reader{
		ID:               readerID,
		ParentEmail:      input.Email,
		ParentPhone:      input.Phone,
		ConsentTimestamp: timestamp,
		Status:           domain.StatusConsentGiven,
		QuizProgress:     domain.QuizProgress{ParentConsent: true},
	}

	if err := s.store.CreateReader(ctx, reader); err != nil {
		return "", err
	}
	s.logger.Info("quiz started", "readerId", readerID)
	return readerID, nil
}

// RecordConsent stores a standalone parent-consent submission.
func (s *QuizService) RecordConsent(ctx context.Context, input *StandaloneConsentInput) (*domain.ParentConsent, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	consentID, err := id.Generate(id.PrefixConsent)
	if err != nil {
		return nil, errors.Internalf("generate consent id: %v", err)
	}

	consent := &domain.ParentConsent{
		ID:            consentID,
		ChildAge:      input.ChildAge,
		ParentName:    input.ParentName,
		ParentContact: input.ParentContact,
		ConsentDate:   time.Now().UTC(),
	}
	if err := s.store.Consents.Create(ctx, consentID, consent); err != nil {
		return nil, err
	}
	return consent, nil
}

// UpdateBasicInfo records the reader's name and age.
func (s *QuizService) UpdateBasicInfo(ctx context.Context, readerID string, input *BasicInfoInput) (*domain.Reader, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	return s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		r.Name = input.Name
		r.Age = input.Age
		r.QuizProgress.BasicInfo = true
	})
}

// UpdateParentReading records the parent's reading habits.
func (s *QuizService) UpdateParentReading(ctx context.Context, readerID, parentReading string) (*domain.Reader, error) {
	if parentReading == "" {
		return nil, errors.Validation("parent reading habits are required")
	}
	return s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		r.ParentReading = parentReading
		r.QuizProgress.ParentReading = true
	})
}

// UpdateGenres applies the genre-preference step.
func (s *QuizService) UpdateGenres(ctx context.Context, readerID string, input *GenresInput) (*domain.Reader, error) {
	return s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		if input.SelectedGenres != nil {
			r.SelectedGenres = *input.SelectedGenres
		}
		if input.TopThreeGenres != nil {
			r.TopThreeGenres = *input.TopThreeGenres
		}
		if input.FictionGenres != nil {
			r.FictionGenres = *input.FictionGenres
		}
		if input.NonFictionGenres != nil {
			r.NonFictionGenres = *input.NonFictionGenres
		}
		if input.AdditionalGenres != nil {
			r.AdditionalGenres = *input.AdditionalGenres
		}
		if input.FictionNonFictionRatio != nil {
			r.FictionNonFictionRatio = *input.FictionNonFictionRatio
		}
		r.QuizProgress.Genres = true
	})
}

// UpdateInterests applies the interests step.
func (s *QuizService) UpdateInterests(ctx context.Context, readerID string, input *InterestsInput) (*domain.Reader, error) {
	return s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		r.SelectedInterests = input.SelectedInterests
		r.NonFictionInterests = input.NonFictionInterests
		r.QuizProgress.Interests = true
	})
}

// UpdateBookSeries replaces the reader's whole series-reaction list.
func (s *QuizService) UpdateBookSeries(ctx context.Context, readerID string, reactions []domain.SeriesReaction) (*domain.Reader, error) {
	return s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		r.BookSeries = reactions
		r.QuizProgress.BookSeries = true
	})
}

// RecordSeriesResponse stores one series answer as an audit record and rolls
// it up into the reader's series list.
func (s *QuizService) RecordSeriesResponse(ctx context.Context, readerID string, input *SeriesResponseInput) error {
	if err := s.validator.Validate(input); err != nil {
		return err
	}

	timestamp := input.Timestamp
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	responseID, err := id.Generate(id.PrefixQuizRes)
	if err != nil {
		return errors.Internalf("generate response id: %v", err)
	}

	record := &domain.QuizSeriesResponse{
		ID:        responseID,
		ReaderID:  readerID,
		SeriesRef: input.SeriesRef,
		HasRead:   *input.HasRead,
		Response:  input.Response,
		Timestamp: timestamp,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.QuizResponses.Create(ctx, responseID, record); err != nil {
		return err
	}

	_, err = s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		r.RecordSeriesReaction(domain.SeriesReaction{
			SeriesRef: input.SeriesRef,
			HasRead:   *input.HasRead,
			Response:  input.Response,
		})
	})
	return err
}

// Complete applies any final profile fields and marks the quiz finished.
func (s *QuizService) Complete(ctx context.Context, input *CompleteInput) (*domain.Reader, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	completedAt := input.CompletedAt
	if completedAt == "" {
		completedAt = time.Now().UTC().Format(time.RFC3339)
	}

	return s.mutateReader(ctx, input.ReaderID, func(r *domain.Reader) {
		input.applyTo(r)
		r.CompletedAt = completedAt
		r.Status = domain.StatusCompleted
		r.QuizProgress.Completed = true
	})
}

// GetReader returns one reader profile.
func (s *QuizService) GetReader(ctx context.Context, readerID string) (*domain.Reader, error) {
	return s.store.GetReader(ctx, readerID)
}

// ListReaders returns every reader profile.
func (s *QuizService) ListReaders(ctx context.Context) ([]*domain.Reader, error) {
	readers, err := s.store.ListReaders(ctx)
	if err != nil {
		return nil, err
	}
	if readers == nil {
		readers = []*domain.Reader{}
	}
	return readers, nil
}

// UpdateReader applies a partial profile update outside the step endpoints.
func (s *QuizService) UpdateReader(ctx context.Context, readerID string, patch *ReaderPatch) (*domain.Reader, error) {
	return s.mutateReader(ctx, readerID, patch.applyTo)
}

// SaveRecommendations attaches a generated recommendation list to the reader.
func (s *QuizService) SaveRecommendations(ctx context.Context, readerID string, records []domain.RecommendationRecord, generatedAt string) error {
	if len(records) == 0 {
		return errors.Validation("recommendations are required")
	}
	if generatedAt == "" {
		generatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err := s.mutateReader(ctx, readerID, func(r *domain.Reader) {
		r.Recommendations = records
		r.RecommendationsGeneratedAt = generatedAt
	})
	return err
}

// mutateReader loads, mutates, and saves a reader in one place so every step
// endpoint shares the same not-found and timestamp handling.
func (s *QuizService) mutateReader(ctx context.Context, readerID string, mutate func(*domain.Reader)) (*domain.Reader, error) {
	reader, err := s.store.GetReader(ctx, readerID)
	if err != nil {
		return nil, err
	}
	mutate(reader)
	if err := s.store.UpdateReader(ctx, reader); err != nil {
		return nil, err
	}
	return reader, nil
}
