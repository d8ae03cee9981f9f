package recommend

import (
	"context"
	"log/slog"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/config"
	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/largefullmoon/backend-book-recommendation/internal/llm"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

// Request carries everything plan generation needs. Exclude and Prioritize
// are series lists derived from the reader's quiz reactions.
type Request struct {
	ReaderID   string
	Profile    domain.PlanProfile
	Exclude    []string
	Prioritize []string
}

// Service orchestrates the generation pipeline: candidate query, prompt,
// model call, parse, link synthesis, allocation, and best-effort persistence.
type Service struct {
	store         *store.Store
	catalog       *CatalogQuery
	llm           llm.Client
	allocator     *Allocator
	minCandidates int
	logger        *slog.Logger
	now           func() time.Time
}

// NewService creates the plan-generation service.
func NewService(s *store.Store, llmClient llm.Client, cfg config.RecommendConfig, logger *slog.Logger) *Service {
	return &Service{
		store:         s,
		catalog:       NewCatalogQuery(s, logger),
		llm:           llmClient,
		allocator:     NewAllocator(cfg.StrictBuckets),
		minCandidates: cfg.MinCandidates,
		logger:        logger,
		now:           time.Now,
	}
}

// GeneratePlan runs the full pipeline. It never returns an error: every
// failure mode degrades to a structurally valid plan whose Error field
// carries the diagnostic. Persistence is best-effort; a storage failure is
// logged and the computed plan is still returned.
func (s *Service) GeneratePlan(ctx context.Context, req Request) *domain.ReadingPlan {
	now := s.now()

	candidates, err := s.catalog.FindCandidates(ctx, req.Profile.Age, req.Profile.SelectedGenres, s.minCandidates)
	if err != nil {
		s.logger.Error("candidate query failed", "error", err)
		return s.emptyPlan(now, "failed to query book catalog")
	}
	if len(candidates) == 0 {
		s.logger.Info("catalog empty, skipping model call")
		return s.emptyPlan(now, "No books found in database")
	}

	system, user := BuildPrompt(req.Profile, candidates, req.Exclude, req.Prioritize)

	raw, err := s.llm.Complete(ctx, system, user)
	if err != nil {
		s.logger.Error("completion failed", "error", err)
		return s.emptyPlan(now, "recommendation service unavailable: "+err.Error())
	}

	records, failure := Parse(raw)
	if failure != nil {
		s.logger.Error("response parse failed", "kind", failure.Kind, "detail", failure.Detail)
		return s.emptyPlan(now, "could not parse recommendations: "+string(failure.Kind))
	}
	for i := range records {
		records[i].Link = SynthesizeLink(records[i].Name)
	}
	s.logger.Info("recommendations parsed", "count", len(records))

	current, future := s.allocator.Allocate(records, now)

	plan := &domain.ReadingPlan{
		Current:         current,
		Future:          future,
		Recommendations: records,
	}

	planID, idErr := id.Generate(id.PrefixPlan)
	if idErr != nil {
		s.logger.Error("plan id generation failed", "error", idErr)
		return plan
	}
	persisted := &domain.Plan{
		ID:              planID,
		ReaderID:        req.ReaderID,
		Profile:         req.Profile,
		Current:         current,
		Future:          future,
		Recommendations: records,
		CreatedAt:       now.UTC(),
	}
	if err := s.store.SavePlan(ctx, persisted); err != nil {
		s.logger.Error("plan persistence failed", "planId", persisted.ID, "error", err)
	} else {
		plan.PlanID = persisted.ID
	}

	return plan
}

// emptyPlan is the soft-failure shape: no current picks, three labeled
// months with no books, and the diagnostic in Error.
func (s *Service) emptyPlan(now time.Time, errMsg string) *domain.ReadingPlan {
	future := make([]domain.MonthPlan, 0, futureMonths)
	for m := 0; m < futureMonths; m++ {
		future = append(future, domain.MonthPlan{
			Month: MonthLabel(now, m),
			Books: []domain.BookEntry{},
		})
	}
	return &domain.ReadingPlan{
		Current:         []domain.BookEntry{},
		Future:          future,
		Recommendations: []domain.RecommendationRecord{},
		Error:           errMsg,
	}
}
