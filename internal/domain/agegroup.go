package domain

// AgeBracket is one named bucket in the fixed age partition.
// Max < 0 means the bracket is open-ended.
type AgeBracket struct {
	Label string
	Min   int
	Max   int
}

// Contains reports whether the bracket covers the given age.
func (b AgeBracket) Contains(age int) bool {
	return age >= b.Min && (b.Max < 0 || age <= b.Max)
}

// DefaultAgeBrackets is the fixed partition used for the age-group
// recommendation snapshots. The labels match the public API ("4-7", "8-10",
// "11+"); internally the first bracket absorbs readers younger than 4 so the
// partition covers every non-negative age.
var DefaultAgeBrackets = []AgeBracket{
	{Label: "4-7", Min: 0, Max: 7},
	{Label: "8-10", Min: 8, Max: 10},
	{Label: "11+", Min: 11, Max: -1},
}

// BracketFor returns the bracket covering the given age.
func BracketFor(age int) (AgeBracket, bool) {
	if age < 0 {
		return AgeBracket{}, false
	}
	for _, b := range DefaultAgeBrackets {
		if b.Contains(age) {
			return b, true
		}
	}
	return AgeBracket{}, false
}

// ValidAgeGroup reports whether the label names a known bracket.
func ValidAgeGroup(label string) bool {
	for _, b := range DefaultAgeBrackets {
		if b.Label == label {
			return true
		}
	}
	return false
}

// AgeGroupLabels returns the bracket labels in partition order.
func AgeGroupLabels() []string {
	labels := make([]string, len(DefaultAgeBrackets))
	for i, b := range DefaultAgeBrackets {
		labels[i] = b.Label
	}
	return labels
}

// AgeGroupRecommendations is the per-bracket "current recommendations"
// snapshot: a curated list of catalog book IDs, denormalized to full book
// documents on read.
type AgeGroupRecommendations struct {
	AgeGroup string   `json:"age_group"`
	BookIDs  []string `json:"books"`
}
