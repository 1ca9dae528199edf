package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Classifier assigns relevance tiers to tier-eligible canonical items
// (papers). Tier1 comes from a citation cross-reference over a
// trailing window; Tier2 and Tier3 from keyword matching against the
// primary and secondary keyword sets. The numerically lowest
// qualifying tier always wins.
type Classifier struct {
	tier2Keywords []string
	tier3Keywords []string
	windowDays    int
}

// NewClassifier creates a classifier with the configured keyword sets
// and citation lookup window.
func NewClassifier(tier2, tier3 []string, windowDays int) *Classifier {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Classifier{
		tier2Keywords: tier2,
		tier3Keywords: tier3,
		windowDays:    windowDays,
	}
}

// Classify returns a tier per tier-eligible canonical item, keyed by
// canonical ID. Items matching no signal are absent from the result;
// absence of a tier is a valid state, not a fourth tier.
//
// When the citation index is unreachable, classification degrades to
// keyword-only (Tier1 unreachable) and the degradation is returned as
// a warning, never as an error.
func (c *Classifier) Classify(
	ctx context.Context,
	items []domain.CanonicalItem,
	citations driven.CitationIndex,
) (map[string]domain.TierResult, []string) {
	results := make(map[string]domain.TierResult)
	var warnings []string
	degraded := citations == nil

	for _, item := range items {
		if item.Kind != domain.KindPaper {
			continue
		}

		if !degraded {
			citers, err := citations.Lookup(ctx, NormalizePaperID(item.Representative.IdentityKey), c.windowDays)
			if err != nil {
				// Degrade once for the whole run; items already
				// qualified for Tier1 keep their tier.
				degraded = true
				warnings = append(warnings, fmt.Sprintf("citation lookup unavailable, falling back to keyword tiers: %v", err))
				logger.Warn("Classification degraded: %v", err)
			} else if len(citers) > 0 {
				results[item.CanonicalID] = domain.TierResult{Tier: domain.Tier1, Rationale: citers}
				continue
			}
		}

		text := strings.ToLower(item.Representative.Title + " " + item.Representative.Abstract)
		if matched := matchKeywords(text, c.tier2Keywords); len(matched) > 0 {
			results[item.CanonicalID] = domain.TierResult{Tier: domain.Tier2, Rationale: matched}
			continue
		}
		if matched := matchKeywords(text, c.tier3Keywords); len(matched) > 0 {
			results[item.CanonicalID] = domain.TierResult{Tier: domain.Tier3, Rationale: matched}
		}
	}

	return results, warnings
}

// matchKeywords returns the keywords found in text, case-insensitive,
// preserving the configured keyword order.
func matchKeywords(text string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
