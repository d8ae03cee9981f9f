package id_test

import (
	"strings"
	"testing"

	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := id.Generate(id.PrefixBook)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "book-"))
	// NanoID default length is 21.
	assert.Len(t, got, len("book-")+21)
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		got, err := id.Generate(id.PrefixReader)
		require.NoError(t, err)
		assert.False(t, seen[got], "duplicate ID generated: %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		got := id.MustGenerate(id.PrefixPlan)
		assert.True(t, strings.HasPrefix(got, "plan-"))
	})
}
