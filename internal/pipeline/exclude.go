package pipeline

import "strings"

// ContainsExcludedTerm returns true if any exclusion term appears
// (case-insensitive) anywhere in the combined title + location text.
//
// Applied to every discovered posting before it is emitted — if true, the
// posting is silently discarded.
func ContainsExcludedTerm(title, location string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	combined := strings.ToLower(title + " " + location)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
