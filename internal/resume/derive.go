package resume

import (
	"sort"

	"github.com/satonodoka/herp-recommender/internal/types"
)

// Only the most recent entries are considered when deriving the current
// employer and highest education.
const derivationWindow = 3

// deriveCurrentCompany tries the company patterns against the most recent
// career entries, newest first. No match across the window means the
// employer is absent, not an error.
func deriveCurrentCompany(entries []types.DateEntry) string {
	for _, e := range topRecent(entries, derivationWindow) {
		for _, p := range companyPatterns {
			if m := p.FindStringSubmatch(e.Content); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// deriveFinalEducation mirrors deriveCurrentCompany over the education
// entries; only entries carrying a graduation marker are eligible.
func deriveFinalEducation(entries []types.DateEntry) string {
	for _, e := range topRecent(entries, derivationWindow) {
		if !containsAny(e.Content, graduationMarkers) {
			continue
		}
		if m := schoolPattern.FindStringSubmatch(e.Content); m != nil {
			return m[1]
		}
	}
	return ""
}

// topRecent returns up to n entries sorted descending by (year, month).
// The input slice is never mutated.
func topRecent(entries []types.DateEntry, n int) []types.DateEntry {
	sorted := make([]types.DateEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year > sorted[j].Year
		}
		return sorted[i].Month > sorted[j].Month
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
