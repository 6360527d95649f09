package estimator

import "strings"

// CategoryWeight classifies an apparel category by garment weight. Heavy
// pieces sell against the sun season, light pieces sell with it.
type CategoryWeight int

const (
	WeightLight CategoryWeight = iota
	WeightHeavy
)

func (w CategoryWeight) String() string {
	if w == WeightHeavy {
		return "heavy"
	}
	return "light"
}

// heavyKeywords is the authoritative keyword list for heavy classification.
// Free-text category names are matched by substring, case-insensitive.
var heavyKeywords = []string{"sweat", "hoodie", "jacket", "veste", "heavy"}

// ClassifyCategory maps a free-text category or product name to a weight.
// Anything not recognized as heavy is light.
func ClassifyCategory(name string) CategoryWeight {
	lower := strings.ToLower(name)
	for _, kw := range heavyKeywords {
		if strings.Contains(lower, kw) {
			return WeightHeavy
		}
	}
	return WeightLight
}
