package search

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := NewIndex(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func testBooks() []*domain.Book {
	now := time.Now()
	return []*domain.Book{
		{
			ID:        "book_1",
			Title:     "Dog Man",
			Author:    "Dav Pilkey",
			Genres:    []string{"Humor", "Graphic Novels"},
			AgeRange:  domain.AgeRange{Min: 6, Max: 10},
			CreatedAt: now,
		},
		{
			ID:          "book_2",
			Title:       "The Magic Tree House",
			Author:      "Mary Pope Osborne",
			Description: "Jack and Annie travel through time from their magic tree house.",
			Genres:      []string{"Adventure", "Fantasy"},
			AgeRange:    domain.AgeRange{Min: 6, Max: 9},
			CreatedAt:   now,
		},
		{
			ID:        "book_3",
			Title:     "Percy Jackson and the Lightning Thief",
			Author:    "Rick Riordan",
			Genres:    []string{"Fantasy", "Mythology"},
			AgeRange:  domain.AgeRange{Min: 10, Max: 14},
			CreatedAt: now,
		},
	}
}

func TestIndexAndSearchByTitle(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	params := DefaultParams()
	params.Query = "magic tree"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book_2", result.Hits[0].ID)
	assert.Equal(t, "The Magic Tree House", result.Hits[0].Title)
}

func TestSearchByAuthor(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	params := DefaultParams()
	params.Query = "riordan"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book_3", result.Hits[0].ID)
}

func TestSearchFuzzyTitle(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	// One character off.
	params := DefaultParams()
	params.Query = "mogic"

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book_2", result.Hits[0].ID)
}

func TestSearchGenreFilter(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	params := DefaultParams()
	params.Genres = []string{"Fantasy"}

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	// Multi-word genre must match exactly.
	params.Genres = []string{"Graphic Novels"}
	result, err = idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "book_1", result.Hits[0].ID)
}

func TestSearchAgeFilter(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	params := DefaultParams()
	params.Age = 7

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	ids := make(map[string]bool)
	for _, h := range result.Hits {
		ids[h.ID] = true
	}
	assert.True(t, ids["book_1"])
	assert.True(t, ids["book_2"])
	assert.False(t, ids["book_3"])

	// Boundary age equals a book's minimum.
	params.Age = 10
	result, err = idx.Search(context.Background(), params)
	require.NoError(t, err)
	ids = make(map[string]bool)
	for _, h := range result.Hits {
		ids[h.ID] = true
	}
	assert.True(t, ids["book_1"], "age equal to age_max must match")
	assert.True(t, ids["book_3"], "age equal to age_min must match")
}

func TestSearchFacets(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	params := DefaultParams()

	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Facets)

	counts := make(map[string]int)
	for _, f := range result.Facets {
		counts[f.Value] = f.Count
	}
	assert.Equal(t, 2, counts["Fantasy"])
	assert.Equal(t, 1, counts["Humor"])
}

func TestDeleteBook(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	require.NoError(t, idx.DeleteBook(context.Background(), "book_1"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestRebuildEmptiesIndex(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks(testBooks()))

	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Index remains usable after rebuild.
	require.NoError(t, idx.IndexBook(context.Background(), testBooks()[0]))
	count, err = idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
