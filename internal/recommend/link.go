package recommend

import (
	"fmt"
	"net/url"
	"strings"
)

// searchEndpoint is the storefront search URL. The encoded options suffix
// requests last-word prefix matching so partial series names still hit.
const searchEndpoint = "https://www.justbookify.com/search?q=%s&options%%5Bprefix%%5D=last"

// seriesSubstrings are removed from the name longest-first, each at most
// once. Order matters: removing "series" before " series name" would leave
// stray " name" fragments.
var seriesSubstrings = []string{" series name", "series name", " series", "series"}

// genericSuffixes are filler tokens dropped wholesale after substring
// stripping.
var genericSuffixes = map[string]struct{}{
	"comics":     {},
	"books":      {},
	"series":     {},
	"collection": {},
	"novels":     {},
}

// SearchTerm reduces a series/author name to its storefront search term.
// Pure and deterministic; reapplying it to its own output is stable after
// at most one extra pass.
func SearchTerm(name string) string {
	term := strings.ToLower(name)
	for _, sub := range seriesSubstrings {
		term = strings.Replace(term, sub, "", 1)
	}
	term = strings.Join(strings.Fields(term), " ")
	if term == "" {
		term = strings.TrimSpace(strings.ToLower(name))
	}

	var kept []string
	for _, token := range strings.Fields(term) {
		if _, generic := genericSuffixes[token]; generic {
			continue
		}
		kept = append(kept, token)
	}
	if len(kept) > 0 {
		term = strings.Join(kept, " ")
	}

	return term
}

// SynthesizeLink derives the deterministic storefront search URL for a
// series or author name.
func SynthesizeLink(name string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(SearchTerm(name)), "+", "%20")
	return fmt.Sprintf(searchEndpoint, encoded)
}
