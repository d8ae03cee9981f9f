package store

import (
	"context"
	"errors"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// SavePlan persists a generated recommendation plan.
func (s *Store) SavePlan(ctx context.Context, plan *domain.Plan) error {
	return s.Plans.Create(ctx, plan.ID, plan)
}

// GetPlan retrieves a persisted plan by ID.
func (s *Store) GetPlan(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := s.Plans.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// ListPlans returns all persisted plans.
func (s *Store) ListPlans(ctx context.Context) ([]*domain.Plan, error) {
	return s.Plans.List(ctx)
}

// PlansForReader returns all plans generated for the given reader.
func (s *Store) PlansForReader(ctx context.Context, readerID string) ([]*domain.Plan, error) {
	return s.Plans.Find(ctx, func(p *domain.Plan) bool {
		return p.ReaderID == readerID
	})
}

// DeletePlan removes a single persisted plan. Deleting a missing plan is
// ErrPlanNotFound so handlers can report it.
func (s *Store) DeletePlan(ctx context.Context, id string) error {
	if _, err := s.GetPlan(ctx, id); err != nil {
		return err
	}
	return s.Plans.Delete(ctx, id)
}

// DeleteAllPlans removes every persisted plan and returns how many were
// deleted. Backs the bulk operator reset endpoint.
func (s *Store) DeleteAllPlans(ctx context.Context) (int, error) {
	return s.Plans.DeleteAll(ctx)
}
