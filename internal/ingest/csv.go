// Package ingest imports catalog books from a Shopify product-export CSV.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

// Required CSV columns, as exported by the storefront.
const (
	colTitle  = "Title"
	colVendor = "Vendor"
	colType   = "Type"
	colTags   = "Tags"
	colImage  = "Image Src"
	colGenre  = "Genre (product.metafields.shopify.genre)"
)

var requiredColumns = []string{colTitle, colVendor, colType, colTags, colImage, colGenre}

// readerTypeRanges maps storefront reader-type labels to age ranges.
var readerTypeRanges = map[string]domain.AgeRange{
	"early-readers":    {Min: 3, Max: 5},
	"emerging-readers": {Min: 6, Max: 8},
	"junior-readers":   {Min: 9, Max: 10},
	"preteen-readers":  {Min: 11, Max: 12},
	"teen-readers":     {Min: 13, Max: 18},
}

// defaultAgeRange applies when a row carries no recognized reader type.
var defaultAgeRange = domain.AgeRange{Min: 4, Max: 14}

// maxReportedErrors caps the per-row error list in the import report.
const maxReportedErrors = 100

// Report summarizes a CSV import run.
type Report struct {
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

// Importer loads catalog books from CSV exports, upserting by title+author.
type Importer struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImporter creates a CSV importer.
func NewImporter(s *store.Store, logger *slog.Logger) *Importer {
	return &Importer{store: s, logger: logger}
}

// Import reads a CSV stream and upserts one book per row. Row-level
// problems are collected into the report; only unreadable input or a
// missing column aborts the run.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV file: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	report := &Report{Errors: []string{}}
	rowNum := 1 // header row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			report.recordError(rowNum, err.Error())
			continue
		}

		field := func(col string) string {
			idx := columns[col]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		title := field(colTitle)
		if title == "" {
			report.recordError(rowNum, "empty title")
			continue
		}
		author := field(colVendor)
		if author == "" {
			author = "Unknown"
		}

		book := &domain.Book{
			Title:    title,
			Author:   author,
			AgeRange: AgeRangeForReaderTypes(field(colType)),
			Tags:     splitMultiValue(field(colTags)),
			Image:    field(colImage),
			Genres:   splitMultiValue(field(colGenre)),
		}

		if err := im.upsert(ctx, book); err != nil {
			report.recordError(rowNum, err.Error())
			continue
		}
		report.SuccessCount++
	}

	im.logger.Info("csv import finished",
		"imported", report.SuccessCount,
		"failed", report.ErrorCount,
	)
	return report, nil
}

// upsert updates the existing book with the same title and author, or
// creates a new one.
func (im *Importer) upsert(ctx context.Context, book *domain.Book) error {
	now := time.Now().UTC()
	book.ImportedAt = &now

	existing, err := im.store.GetBookByTitleAuthor(ctx, book.Title, book.Author)
	if err == nil {
		book.ID = existing.ID
		book.CreatedAt = existing.CreatedAt
		book.UpdatedAt = now
		return im.store.UpdateBook(ctx, book)
	}
	if !errors.Is(err, store.ErrBookNotFound) {
		return err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return err
	}
	book.ID = bookID
	book.CreatedAt = now
	book.UpdatedAt = now
	return im.store.CreateBook(ctx, book)
}

// AgeRangeForReaderTypes resolves a semicolon-separated reader-type list
// into the widest covered age range, falling back to the catalog default.
func AgeRangeForReaderTypes(types string) domain.AgeRange {
	minAge, maxAge := -1, 0
	for _, t := range splitMultiValue(types) {
		r, ok := readerTypeRanges[t]
		if !ok {
			continue
		}
		if minAge < 0 || r.Min < minAge {
			minAge = r.Min
		}
		if r.Max > maxAge {
			maxAge = r.Max
		}
	}
	if minAge < 0 {
		return defaultAgeRange
	}
	return domain.AgeRange{Min: minAge, Max: maxAge}
}

// splitMultiValue splits a semicolon-separated cell, trimming each value.
func splitMultiValue(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (r *Report) recordError(rowNum int, msg string) {
	r.ErrorCount++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", rowNum, msg))
	}
}
