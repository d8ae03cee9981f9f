package ingest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

const csvHeader = `Title,Vendor,Type,Tags,Image Src,Genre (product.metafields.shopify.genre)`

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return NewImporter(s, slog.New(slog.NewTextHandler(io.Discard, nil))), s
}

func TestAgeRangeForReaderTypes(t *testing.T) {
	tests := []struct {
		in   string
		want domain.AgeRange
	}{
		{"early-readers", domain.AgeRange{Min: 3, Max: 5}},
		{"emerging-readers", domain.AgeRange{Min: 6, Max: 8}},
		{"junior-readers", domain.AgeRange{Min: 9, Max: 10}},
		{"preteen-readers", domain.AgeRange{Min: 11, Max: 12}},
		{"teen-readers", domain.AgeRange{Min: 13, Max: 18}},
		// Multiple types widen the range to cover all of them.
		{"emerging-readers; preteen-readers", domain.AgeRange{Min: 6, Max: 12}},
		// Unrecognized or empty falls back to the default.
		{"board-books", domain.AgeRange{Min: 4, Max: 14}},
		{"", domain.AgeRange{Min: 4, Max: 14}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeRangeForReaderTypes(tt.in), tt.in)
	}
}

func TestImportCreatesBooks(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	input := csvHeader + "\n" +
		`Dog Man,Dav Pilkey,emerging-readers,funny; dogs,https://img.example.com/dogman.jpg,Humor; Graphic Novels` + "\n" +
		`The Wild Robot,Peter Brown,junior-readers,robots,,Adventure`

	report, err := im.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, report.SuccessCount)
	assert.Zero(t, report.ErrorCount)

	book, err := s.GetBookByTitleAuthor(ctx, "Dog Man", "Dav Pilkey")
	require.NoError(t, err)
	assert.Equal(t, []string{"Humor", "Graphic Novels"}, book.Genres)
	assert.Equal(t, []string{"funny", "dogs"}, book.Tags)
	assert.Equal(t, domain.AgeRange{Min: 6, Max: 8}, book.AgeRange)
	assert.Equal(t, "https://img.example.com/dogman.jpg", book.Image)
	require.NotNil(t, book.ImportedAt)
}

func TestImportUpsertsByTitleAuthor(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	first := csvHeader + "\n" + `Dog Man,Dav Pilkey,emerging-readers,,,Humor`
	_, err := im.Import(ctx, strings.NewReader(first))
	require.NoError(t, err)

	second := csvHeader + "\n" + `Dog Man,Dav Pilkey,junior-readers,,,Humor; Comics`
	report, err := im.Import(ctx, strings.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)

	n, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "re-import must not duplicate")

	book, err := s.GetBookByTitleAuthor(ctx, "Dog Man", "Dav Pilkey")
	require.NoError(t, err)
	assert.Equal(t, []string{"Humor", "Comics"}, book.Genres)
	assert.Equal(t, domain.AgeRange{Min: 9, Max: 10}, book.AgeRange)
}

func TestImportSkipsEmptyTitle(t *testing.T) {
	im, _ := newTestImporter(t)

	input := csvHeader + "\n" +
		`,Somebody,emerging-readers,,,Humor` + "\n" +
		`Good Book,Somebody,emerging-readers,,,Humor`

	report, err := im.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.ErrorCount)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "Row 2")
	assert.Contains(t, report.Errors[0], "empty title")
}

func TestImportDefaultsAuthor(t *testing.T) {
	im, s := newTestImporter(t)
	ctx := context.Background()

	input := csvHeader + "\n" + `Mystery Book,,early-readers,,,Mystery`
	_, err := im.Import(ctx, strings.NewReader(input))
	require.NoError(t, err)

	book, err := s.GetBookByTitleAuthor(ctx, "Mystery Book", "Unknown")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", book.Author)
}

func TestImportRejectsMissingColumns(t *testing.T) {
	im, _ := newTestImporter(t)

	input := "Title,Vendor\nDog Man,Dav Pilkey"
	_, err := im.Import(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), colGenre)
}
