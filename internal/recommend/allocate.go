package recommend

import (
	"fmt"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// Plan shape constants.
const (
	currentPicks  = 3
	futureMonths  = 3
	booksPerMonth = 4

	// Filler records are injected only when the ranked supply is this short;
	// above it, cyclic duplication alone fills the plan.
	fillerThreshold = 6
)

// bucketPlaceholder fills a month bucket that ended up empty. Should be
// unreachable given the filler and duplication steps, but the 4-per-month
// shape is enforced unconditionally at this boundary.
var bucketPlaceholder = domain.BookEntry{
	Title:       "Children's Book Selection",
	Author:      "Various Authors",
	Explanation: "A hand-picked title for this age group.",
}

// Allocator distributes ranked recommendation records into the fixed
// 3-month by 4-book plan shape.
//
// In strict mode the pad/duplicate policy is disabled and month buckets may
// hold fewer than four books; the default reproduces the observed behavior
// where buckets are always full even if that means duplicated or filler
// entries.
type Allocator struct {
	strict bool
}

// NewAllocator creates an allocator. strict disables padding and duplication.
func NewAllocator(strict bool) *Allocator {
	return &Allocator{strict: strict}
}

// Allocate produces the current-month picks and the three future month
// buckets from the full ranked record list. Records may appear in both the
// current and future sections; the future allocation deliberately restarts
// from the top of the ranking.
func (a *Allocator) Allocate(records []domain.RecommendationRecord, now time.Time) (current []domain.BookEntry, future []domain.MonthPlan) {
	current = make([]domain.BookEntry, 0, currentPicks)
	for i := 0; i < len(records) && i < currentPicks; i++ {
		current = append(current, entryFor(records[i]))
	}

	const required = futureMonths * booksPerMonth

	pool := records
	if !a.strict {
		if len(pool) < required && len(pool) < fillerThreshold {
			pool = append(append([]domain.RecommendationRecord{}, pool...), fillerRecords()...)
		}
		if len(pool) > 0 && len(pool) < required {
			expanded := make([]domain.RecommendationRecord, 0, required)
			for i := 0; i < required; i++ {
				expanded = append(expanded, pool[i%len(pool)])
			}
			pool = expanded
		}
	}
	if len(pool) > required {
		pool = pool[:required]
	}

	future = make([]domain.MonthPlan, 0, futureMonths)
	for m := 0; m < futureMonths; m++ {
		start := m * booksPerMonth
		end := start + booksPerMonth
		if start > len(pool) {
			start = len(pool)
		}
		if end > len(pool) {
			end = len(pool)
		}

		books := make([]domain.BookEntry, 0, booksPerMonth)
		for _, rec := range pool[start:end] {
			books = append(books, entryFor(rec))
		}

		if !a.strict {
			for len(books) < booksPerMonth {
				if len(books) == 0 {
					books = append(books, bucketPlaceholder)
					continue
				}
				books = append(books, books[len(books)-1])
			}
		}

		future = append(future, domain.MonthPlan{
			Month: MonthLabel(now, m),
			Books: books,
		})
	}

	return current, future
}

// entryFor maps a record to one plan entry: its first sample book, with the
// series/author name standing in as the author. Records without sample
// books cannot occur after parsing, but the defensive placeholder keeps the
// shape invariant local.
func entryFor(rec domain.RecommendationRecord) domain.BookEntry {
	title := fmt.Sprintf("Book from %s", rec.Name)
	if len(rec.SampleBooks) > 0 {
		title = rec.SampleBooks[0].Title
	}
	return domain.BookEntry{
		Title:       title,
		Author:      rec.Name,
		Explanation: rec.Rationale,
		Link:        rec.Link,
	}
}

// MonthLabel names the future month at the given offset: the first of the
// current month plus offset*31 days. Not true calendar arithmetic, but the
// month sequence clients expect.
func MonthLabel(now time.Time, offset int) string {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return firstOfMonth.AddDate(0, 0, offset*31).Month().String()
}

// fillerRecords diversify the padding when the model returns very few
// usable records. Scores sit at the bottom of the accepted range so real
// recommendations always outrank them.
func fillerRecords() []domain.RecommendationRecord {
	names := []struct {
		name  string
		score int
	}{
		{"Additional Children's Books", 8},
		{"Popular Children's Authors", 8},
		{"Educational Books", 7},
	}

	records := make([]domain.RecommendationRecord, 0, len(names))
	for _, n := range names {
		records = append(records, domain.RecommendationRecord{
			Name:            n.name,
			Link:            SynthesizeLink(n.name),
			Rationale:       "A broader selection to round out the reading plan.",
			ConfidenceScore: n.score,
		})
	}
	return records
}
