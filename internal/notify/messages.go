package notify

import (
	"fmt"
	"strings"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
)

// chunkLimit keeps each formatted message safely under the WhatsApp cap,
// leaving headroom for the header repeated on continuation messages.
const chunkLimit = 3800

// rationaleCap bounds per-record explanations in chat messages.
const rationaleCap = 100

// FormatPlanMessages renders a reading plan as a WhatsApp message sequence:
// a top-picks message, one or more series/author digests, and one message
// per plan month. Long sections split at chunkLimit with the header
// repeated.
func FormatPlanMessages(name string, current []domain.BookEntry, recommendations []domain.RecommendationRecord, future []domain.MonthPlan) []string {
	if name == "" {
		name = "Reader"
	}

	var messages []string
	header := fmt.Sprintf("Book Recommendations for %s\n", name)
	currentMessage := header

	if len(current) > 0 {
		var picks strings.Builder
		picks.WriteString("TOP PICKS FOR YOU\n")
		for _, book := range current {
			fmt.Fprintf(&picks, "- %s by %s\n", book.Title, book.Author)
			if book.Explanation != "" {
				fmt.Fprintf(&picks, "  Why: %s\n", clip(book.Explanation, rationaleCap))
			}
			picks.WriteString("\n")
		}

		if len(currentMessage)+picks.Len() > chunkLimit {
			messages = append(messages, currentMessage)
			currentMessage = header + picks.String()
		} else {
			currentMessage += picks.String()
		}
	}

	if len(recommendations) > 0 {
		seriesHeader := "RECOMMENDED SERIES & AUTHORS\n"
		seriesMessage := currentMessage + seriesHeader

		for _, rec := range recommendations {
			var entry strings.Builder
			fmt.Fprintf(&entry, "\n%s (Score: %d/10)\n", rec.Name, rec.ConfidenceScore)
			if rec.Rationale != "" {
				fmt.Fprintf(&entry, "Why: %s\n", clip(rec.Rationale, rationaleCap))
			}
			if len(rec.SampleBooks) > 0 {
				entry.WriteString("Featured Books:\n")
				for _, book := range rec.SampleBooks[:minInt(2, len(rec.SampleBooks))] {
					fmt.Fprintf(&entry, "- %s\n", book.Title)
				}
			}
			fmt.Fprintf(&entry, "View More: %s\n", rec.Link)

			if len(seriesMessage)+entry.Len() > chunkLimit {
				messages = append(messages, seriesMessage)
				seriesMessage = header + seriesHeader + entry.String()
			} else {
				seriesMessage += entry.String()
			}
		}
		messages = append(messages, seriesMessage)
	} else if currentMessage != header {
		messages = append(messages, currentMessage)
	}

	for _, month := range future {
		var monthMessage strings.Builder
		monthMessage.WriteString(header)
		fmt.Fprintf(&monthMessage, "%s READING PLAN\n", strings.ToUpper(month.Month))
		if len(month.Books) > 0 {
			for _, book := range month.Books {
				fmt.Fprintf(&monthMessage, "- %s by %s\n", book.Title, book.Author)
			}
		} else {
			monthMessage.WriteString("More recommendations coming soon!\n")
		}
		messages = append(messages, monthMessage.String()+"\n")
	}

	if len(messages) > 0 {
		messages[len(messages)-1] += "\nHappy Reading!"
	}

	return messages
}

// clip shortens s to at most n runes, marking the cut.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
