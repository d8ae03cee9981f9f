package recommend

import (
	"fmt"
	"strings"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// systemPrompt frames the model as a children's book recommender. Kept
// stable; tests assert on the user prompt instead.
const systemPrompt = `You are an expert children's book recommendation system that carefully considers age appropriateness, reading preferences, and personal interests. Your recommendations should:
1. Strictly match the reader's age range and interests
2. Only include books that would be enjoyable based on the provided preferences
3. Prioritize books that align with multiple interest areas
4. Consider reading level appropriateness
5. Exclude any books that don't match the specified genres or interests`

// noneLiteral is the exact placeholder for empty exclude/prioritize blocks.
// The downstream parser fixtures depend on this literal.
const noneLiteral = "None"

// BuildPrompt serializes the profile, candidate inventory, and series
// exclude/prioritize lists into the system and user instructions. Pure
// string construction; deterministic for identical inputs.
func BuildPrompt(profile domain.PlanProfile, candidates []*domain.Book, exclude, prioritize []string) (system, user string) {
	var books strings.Builder
	for i, book := range candidates {
		desc := book.Description
		if desc == "" {
			desc = "No description available."
		}
		ageMin, ageMax := book.AgeRange.Min, book.AgeRange.Max
		if ageMin == 0 && ageMax == 0 {
			ageMax = 99
		}
		fmt.Fprintf(&books, `Book %d:
Title: %s
Author: %s
Genres: %s
Description: %s
Age Range: %d-%d
---
`, i+1, book.Title, book.Author, strings.Join(book.Genres, ", "), desc, ageMin, ageMax)
	}

	seriesPhrase := "do not prefer"
	if profile.PrefersSeries {
		seriesPhrase = "enjoy"
	}

	user = fmt.Sprintf(`I need personalized book recommendations for a %d-year-old reader with the following preferences:

GENRES THEY ENJOY: %s
SPECIFIC INTERESTS: %s
NON-FICTION INTERESTS: %s
BOOK SERIES PREFERENCE: They %s book series.

SERIES TO EXCLUDE (the reader did not enjoy these, never recommend them):
%s

SERIES TO PRIORITIZE (the reader has read and loved these, favor similar series):
%s

Available books in our inventory:

%s
Please recommend books that PERFECTLY match these preferences, grouped by author or series. You must return at least 15 recommendations.

IMPORTANT GUIDELINES:
- Only include books that strongly match the specified genres and interests
- Ensure age appropriateness for a %d-year-old reader
- If they don't prefer series, prioritize standalone books
- Focus on books that align with their specific interests
- Consider both fiction and non-fiction based on their preferences
- Exclude any books that don't match their interests or reading level

Return recommendations as a JSON array with this structure:
[
  {
    "name": "Series/Author Name",
    "likely_score": X,  // Score 1-10 based on match with preferences
    "books": [
      "Book Title 1",
      "Book Title 2"
    ],
    "rationale": "Detailed explanation of why this matches their interests"
  }
]

Sort recommendations by likelihood score (highest to lowest), only including books with a score of 7 or higher.`,
		profile.Age,
		strings.Join(profile.SelectedGenres, ", "),
		strings.Join(profile.SelectedInterests, ", "),
		strings.Join(profile.NonFictionInterests, ", "),
		seriesPhrase,
		listBlock(exclude),
		listBlock(prioritize),
		books.String(),
		profile.Age,
	)

	return systemPrompt, user
}

// listBlock renders a line-delimited block, or the "None" literal when empty.
func listBlock(items []string) string {
	if len(items) == 0 {
		return noneLiteral
	}
	return strings.Join(items, "\n")
}
