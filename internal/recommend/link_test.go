package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain author", "Dav Pilkey", "dav pilkey"},
		{"strips series suffix", "Dog Man Series", "dog man"},
		{"strips series name suffix", "Dog Man Series Name", "dog man"},
		{"series substring then suffix token", "The Mysteries Series Collection", "the mysteries"},
		{"generic suffix token", "Marvel Comics", "marvel"},
		{"multiple generic tokens", "Harry Potter Series Collection", "harry potter"},
		{"only the word series falls back", "Series", "series"},
		{"whitespace collapsed", "Magic   Tree   House", "magic tree house"},
		{"all tokens generic falls back", "Books Collection", "books collection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SearchTerm(tt.in))
		})
	}
}

func TestSearchTermSubstringPrecedence(t *testing.T) {
	// " series name" must be removed before " series"; otherwise a stray
	// " name" fragment survives.
	assert.Equal(t, "wizards", SearchTerm("Wizards Series Name"))

	// Inner occurrence of "series" is removed at most once.
	assert.Equal(t, "mysteries", SearchTerm("Mysteries Series"))
}

func TestSearchTermIdempotent(t *testing.T) {
	names := []string{
		"Dog Man Series",
		"The Mysteries Series Collection",
		"Harry Potter Series Collection",
		"Marvel Comics",
		"Series",
	}

	for _, name := range names {
		once := SearchTerm(name)
		twice := SearchTerm(once)
		assert.Equal(t, twice, SearchTerm(twice), "fixed point for %q", name)
	}
}

func TestSynthesizeLink(t *testing.T) {
	assert.Equal(t,
		"https://www.justbookify.com/search?q=the%20mysteries&options%5Bprefix%5D=last",
		SynthesizeLink("The Mysteries Series Collection"),
	)
	assert.Equal(t,
		"https://www.justbookify.com/search?q=dog%20man&options%5Bprefix%5D=last",
		SynthesizeLink("Dog Man Series"),
	)
}
