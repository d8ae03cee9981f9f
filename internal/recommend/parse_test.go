package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWellFormed(t *testing.T) {
	raw := `[
		{"name": "Dog Man", "likely_score": 9, "books": ["Dog Man", "Dog Man Unleashed"], "rationale": "loves humor"},
		{"name": "Magic Tree House", "likely_score": 8, "books": ["Dinosaurs Before Dark"], "rationale": "adventure fan"}
	]`

	records, failure := Parse(raw)
	require.Nil(t, failure)
	require.Len(t, records, 2)

	assert.Equal(t, "Dog Man", records[0].Name)
	assert.Equal(t, 9, records[0].ConfidenceScore)
	assert.Equal(t, "loves humor", records[0].Rationale)
	require.Len(t, records[0].SampleBooks, 2)
	assert.Equal(t, "Dog Man Unleashed", records[0].SampleBooks[1].Title)
	// The series name stands in as author for model-suggested titles.
	assert.Equal(t, "Dog Man", records[0].SampleBooks[1].Author)
}

func TestParseWrappedInProse(t *testing.T) {
	raw := "Here are my recommendations:\n```json\n" +
		`[{"name": "Amulet", "likely_score": 8, "books": ["The Stonekeeper"], "rationale": "graphic novels"}]` +
		"\n```\nEnjoy!"

	records, failure := Parse(raw)
	require.Nil(t, failure)
	require.Len(t, records, 1)
	assert.Equal(t, "Amulet", records[0].Name)
}

func TestParseTrailingCommaRecovery(t *testing.T) {
	malformed := `[{"name":"Zed Saga","likely_score":9,"books":["Zed 1","Zed 2"],"rationale":"fits"},]`
	corrected := `[{"name":"Zed Saga","likely_score":9,"books":["Zed 1","Zed 2"],"rationale":"fits"}]`

	fromMalformed, failure := Parse(malformed)
	require.Nil(t, failure)
	fromCorrected, failure := Parse(corrected)
	require.Nil(t, failure)

	assert.Equal(t, fromCorrected, fromMalformed)
	require.Len(t, fromMalformed, 1)
	assert.Equal(t, "Zed Saga", fromMalformed[0].Name)
	assert.Equal(t, 9, fromMalformed[0].ConfidenceScore)
	assert.Len(t, fromMalformed[0].SampleBooks, 2)
}

func TestParseTrailingCommaInsideObject(t *testing.T) {
	raw := `[{"name": "Zita", "likely_score": 8, "books": ["Zita the Spacegirl"], "rationale": "space",}]`

	records, failure := Parse(raw)
	require.Nil(t, failure)
	require.Len(t, records, 1)
	assert.Equal(t, "Zita", records[0].Name)
}

func TestParseNoJSON(t *testing.T) {
	records, failure := Parse("I'm sorry, I cannot recommend any books right now.")
	assert.Empty(t, records)
	require.NotNil(t, failure)
	assert.Equal(t, NoJSONFound, failure.Kind)
}

func TestParseMalformedBeyondRepair(t *testing.T) {
	records, failure := Parse(`[{"name": "Broken", "books": ["A" "B"]}]`)
	assert.Empty(t, records)
	require.NotNil(t, failure)
	assert.Equal(t, MalformedJSON, failure.Kind)
}

func TestParseSchemaViolation(t *testing.T) {
	// Every element lacks either a name or a book list.
	records, failure := Parse(`[{"name": "", "books": ["A"]}, {"name": "B", "books": []}]`)
	assert.Empty(t, records)
	require.NotNil(t, failure)
	assert.Equal(t, SchemaViolation, failure.Kind)
}

func TestParseDropsInvalidKeepsValid(t *testing.T) {
	raw := `[
		{"name": "", "books": ["Orphan"]},
		{"name": "Keeper", "likely_score": 7, "books": ["Kept Book"], "rationale": "ok"},
		{"name": "No Books", "likely_score": 9, "books": []}
	]`

	records, failure := Parse(raw)
	require.Nil(t, failure)
	require.Len(t, records, 1)
	assert.Equal(t, "Keeper", records[0].Name)
}

func TestParseDefaults(t *testing.T) {
	records, failure := Parse(`[{"name": "Quiet Series", "books": ["Quiet Book"]}]`)
	require.Nil(t, failure)
	require.Len(t, records, 1)
	assert.Equal(t, 8, records[0].ConfidenceScore, "missing likely_score defaults to 8")
	assert.Empty(t, records[0].Rationale)
}

func TestParseSortsByScoreStable(t *testing.T) {
	raw := `[
		{"name": "Low", "likely_score": 7, "books": ["L"]},
		{"name": "HighA", "likely_score": 9, "books": ["A"]},
		{"name": "HighB", "likely_score": 9, "books": ["B"]},
		{"name": "Mid", "likely_score": 8, "books": ["M"]}
	]`

	records, failure := Parse(raw)
	require.Nil(t, failure)
	require.Len(t, records, 4)
	assert.Equal(t, "HighA", records[0].Name)
	assert.Equal(t, "HighB", records[1].Name, "ties keep input order")
	assert.Equal(t, "Mid", records[2].Name)
	assert.Equal(t, "Low", records[3].Name)
}
