package intake

import "strings"

// SentinelCategory is assigned when no catalog label matches the text.
const SentinelCategory = "general"

// Classify assigns a category by case-insensitive substring containment.
// The first label found in the text wins, so catalog order is precedence:
// the repository supplies labels longest first with an alphabetical
// tie-break, making the most specific label take priority.
func Classify(text string, catalog []string) string {
	lowered := strings.ToLower(text)
	for _, label := range catalog {
		if label == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(label)) {
			return label
		}
	}
	return SentinelCategory
}
