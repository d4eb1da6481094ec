// Package matching reconciles an extracted job title against the live posting
// list. The cascade is deliberately paranoid: it refuses to pick between two
// plausible postings and refuses anything below the 90-confidence floor, so a
// recommendation can never land on the wrong posting.
package matching

import (
	"fmt"
	"strings"

	"github.com/satonodoka/herp-recommender/internal/normalize"
	"github.com/satonodoka/herp-recommender/internal/types"
)

// Tier confidences are fixed. Subset sits below AcceptanceFloor and is
// reported for audit only; it can never be accepted.
const (
	ConfidenceExact      = 100
	ConfidenceNormalized = 95
	ConfidenceCore       = 90
	ConfidenceSubset     = 85

	// AcceptanceFloor is the minimum tier confidence the matcher will accept.
	AcceptanceFloor = 90

	// minSubsetCoreLen guards the subset tier against trivially short cores.
	minSubsetCoreLen = 3
)

// Match runs the four-tier cascade over the posting titles. Duplicated
// posting titles are collapsed first; order of the input is irrelevant.
func Match(extractedTitle string, postings []string) *types.MatchResult {
	result := &types.MatchResult{MatchTier: types.TierNone}

	if strings.TrimSpace(extractedTitle) == "" || len(postings) == 0 {
		result.Errors = append(result.Errors, "extracted title and posting list are both required")
		return result
	}

	normalizedExtracted := normalize.Normalize(extractedTitle)
	coreExtracted := normalize.StripDecoration(normalizedExtracted)

	var exact, normalized, core, subset []string
	seen := make(map[string]bool, len(postings))

	for _, posting := range postings {
		if seen[posting] {
			continue
		}
		seen[posting] = true

		normalizedPosting := normalize.Normalize(posting)
		corePosting := normalize.StripDecoration(normalizedPosting)

		// A posting belongs to the first tier it satisfies only.
		switch {
		case posting == extractedTitle:
			exact = append(exact, posting)
		case normalizedPosting == normalizedExtracted:
			normalized = append(normalized, posting)
		case corePosting == coreExtracted:
			core = append(core, posting)
		case isStrictSubset(coreExtracted, corePosting):
			subset = append(subset, posting)
		}
	}

	// Safety rules, first match wins. Any tie at or across the three
	// high-confidence tiers is an ambiguity and stops the run.
	switch {
	case len(exact) > 1:
		return rejectAmbiguous(result, exact, "exact")
	case len(normalized) > 1:
		return rejectAmbiguous(result, normalized, "normalized")
	case len(core) > 1:
		return rejectAmbiguous(result, core, "core")
	case len(exact)+len(normalized)+len(core) > 1:
		union := append(append(append([]string{}, exact...), normalized...), core...)
		return rejectAmbiguous(result, union, "multiple tiers")
	}

	switch {
	case len(exact) == 1:
		return accept(result, exact[0], types.TierExact, ConfidenceExact)
	case len(normalized) == 1:
		return accept(result, normalized[0], types.TierNormalized, ConfidenceNormalized)
	case len(core) == 1:
		return accept(result, core[0], types.TierCore, ConfidenceCore)
	}

	if len(subset) > 0 {
		// Subset matches are always rejected: 85 is below the floor. The
		// first candidate and the count are surfaced for the audit trail.
		result.MatchedTitle = subset[0]
		result.MatchTier = types.TierSubset
		result.Confidence = ConfidenceSubset
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("subset match %q rejected: confidence %d below floor %d",
				subset[0], ConfidenceSubset, AcceptanceFloor))
		if len(subset) > 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%d subset candidates existed; all rejected", len(subset)))
			result.Alternatives = subset
		}
		result.Errors = append(result.Errors, "subset-tier match rejected for safety")
		return result
	}

	result.Errors = append(result.Errors, "no posting matched under the strict cascade")
	return result
}

// isStrictSubset reports whether the posting's core form is a proper
// substring of the extracted core, with every rune of the posting core
// present in the extracted core. Callers only reach this for non-equal cores.
func isStrictSubset(coreExtracted, corePosting string) bool {
	if len([]rune(corePosting)) < minSubsetCoreLen {
		return false
	}
	if !strings.Contains(coreExtracted, corePosting) {
		return false
	}
	for _, r := range corePosting {
		if !strings.ContainsRune(coreExtracted, r) {
			return false
		}
	}
	return true
}

func rejectAmbiguous(result *types.MatchResult, tied []string, level string) *types.MatchResult {
	result.Alternatives = tied
	result.Errors = append(result.Errors,
		fmt.Sprintf("%d postings matched at the %s level; refusing to choose", len(tied), level))
	return result
}

func accept(result *types.MatchResult, title string, tier types.MatchTier, confidence int) *types.MatchResult {
	result.Success = true
	result.MatchedTitle = title
	result.MatchTier = tier
	result.Confidence = confidence
	return result
}
