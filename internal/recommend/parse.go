package recommend

import (
	"encoding/json/v2"
	"regexp"
	"sort"
	"strings"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// FailureKind classifies an unrecoverable parse failure.
type FailureKind string

// Parse failure kinds.
const (
	NoJSONFound     FailureKind = "NoJSONFound"
	MalformedJSON   FailureKind = "MalformedJSON"
	SchemaViolation FailureKind = "SchemaViolation"
)

// ParseFailure is the diagnostic returned alongside an empty record list
// when the model response could not be used at all.
type ParseFailure struct {
	Kind   FailureKind
	Detail string
}

func (f *ParseFailure) Error() string {
	return string(f.Kind) + ": " + f.Detail
}

// arrayPattern matches the outermost JSON array of objects, spanning
// newlines. The model may wrap the array in prose or code fences.
var arrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// Textual repairs for the most common model malformation: trailing commas.
var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// rawRecommendation is the wire shape the prompt mandates.
type rawRecommendation struct {
	Name        string   `json:"name"`
	LikelyScore *float64 `json:"likely_score"`
	Books       []string `json:"books"`
	Rationale   string   `json:"rationale"`
}

// Parse extracts recommendation records from untrusted model output. It
// never returns a Go error: unrecoverable failures yield an empty list and
// a diagnostic. Elements missing a name or book list are dropped without
// aborting the rest; partial output is valid degraded service.
func Parse(raw string) ([]domain.RecommendationRecord, *ParseFailure) {
	candidate := strings.TrimSpace(raw)
	blockFound := false
	if match := arrayPattern.FindString(raw); match != "" {
		candidate = match
		blockFound = true
	}

	var elems []rawRecommendation
	err := json.Unmarshal([]byte(candidate), &elems)
	if err != nil {
		repaired := trailingCommaObject.ReplaceAllString(candidate, "}")
		repaired = trailingCommaArray.ReplaceAllString(repaired, "]")
		err = json.Unmarshal([]byte(repaired), &elems)
	}
	if err != nil {
		if !blockFound {
			return nil, &ParseFailure{Kind: NoJSONFound, Detail: "no JSON array found in response"}
		}
		// A bracketed block that parses as valid JSON but not as an array
		// of recommendation objects is a schema problem, not a syntax one.
		var probe any
		if probeErr := json.Unmarshal([]byte(candidate), &probe); probeErr == nil {
			return nil, &ParseFailure{Kind: SchemaViolation, Detail: "JSON is not an array of recommendation objects"}
		}
		return nil, &ParseFailure{Kind: MalformedJSON, Detail: err.Error()}
	}

	records := make([]domain.RecommendationRecord, 0, len(elems))
	for _, elem := range elems {
		if elem.Name == "" || len(elem.Books) == 0 {
			continue
		}

		score := 8
		if elem.LikelyScore != nil {
			score = int(*elem.LikelyScore)
		}

		samples := make([]domain.SampleBook, 0, len(elem.Books))
		for _, title := range elem.Books {
			// The model does not attribute authors to suggested titles;
			// the series/author name stands in.
			samples = append(samples, domain.SampleBook{Title: title, Author: elem.Name})
		}

		records = append(records, domain.RecommendationRecord{
			Name:            elem.Name,
			Rationale:       elem.Rationale,
			ConfidenceScore: score,
			SampleBooks:     samples,
		})
	}

	if len(records) == 0 && len(elems) > 0 {
		return nil, &ParseFailure{Kind: SchemaViolation, Detail: "no element had both a name and a book list"}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ConfidenceScore > records[j].ConfidenceScore
	})

	return records, nil
}
