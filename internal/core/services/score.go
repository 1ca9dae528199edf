package services

import (
	"sort"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// Scorer computes a weighted priority score per actionable item and
// buckets items into priority classes. Scoring is deterministic:
// shuffling the input never changes the bucketed, sorted output.
type Scorer struct {
	weights domain.WeightTable
}

// NewScorer creates a scorer with the given weight table. A nil table
// falls back to the default weights.
func NewScorer(weights domain.WeightTable) *Scorer {
	if weights == nil {
		weights = domain.DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// MergeWeights overlays per-factor overrides on the default weight
// table. Unknown factor names are carried through so configs can weight
// connector-specific signals.
func MergeWeights(overrides map[string]int) domain.WeightTable {
	weights := domain.DefaultWeights()
	for name, points := range overrides {
		weights[name] = points
	}
	return weights
}

// Score accrues points from every applicable factor on each item and
// returns the scored items sorted by bucket, then score descending,
// then factor class (calendar before ticket before messaging before
// notification), then timestamp ascending, then canonical ID. Items
// scoring zero are excluded entirely.
func (s *Scorer) Score(items []domain.CanonicalItem) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	for _, item := range items {
		factors := s.factorsFor(item)
		total := 0
		for _, f := range factors {
			total += f.Points
		}
		if total == 0 {
			continue
		}
		scored = append(scored, domain.ScoredItem{
			Item:    item,
			Factors: factors,
			Total:   total,
			Bucket:  domain.BucketFor(total),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return lessScored(&scored[i], &scored[j])
	})
	return scored
}

// factorsFor resolves an item's signals against the weight table.
// Signals arrive sorted from canonicalization; the factor sequence is
// ordered by class rank, then name, so rationale output is stable.
func (s *Scorer) factorsFor(item domain.CanonicalItem) []domain.Factor {
	var factors []domain.Factor
	for _, sig := range item.Signals {
		points, ok := s.weights[sig]
		if !ok || points == 0 {
			continue
		}
		factors = append(factors, domain.Factor{Name: sig, Points: points})
	}
	sort.SliceStable(factors, func(i, j int) bool {
		ci, cj := domain.FactorClass(factors[i].Name), domain.FactorClass(factors[j].Name)
		if ci != cj {
			return ci < cj
		}
		return factors[i].Name < factors[j].Name
	})
	return factors
}

var bucketRank = map[domain.Bucket]int{
	domain.BucketUrgent:   0,
	domain.BucketToday:    1,
	domain.BucketThisWeek: 2,
}

// lessScored is the total order over scored items: bucket, score
// descending, strongest factor class, timestamp ascending, and finally
// canonical ID as the stable fallback for otherwise identical items.
func lessScored(a, b *domain.ScoredItem) bool {
	if bucketRank[a.Bucket] != bucketRank[b.Bucket] {
		return bucketRank[a.Bucket] < bucketRank[b.Bucket]
	}
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if ac, bc := a.BestFactorClass(), b.BestFactorClass(); ac != bc {
		return ac < bc
	}
	at, bt := a.Item.Representative.Timestamp, b.Item.Representative.Timestamp
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.Item.CanonicalID < b.Item.CanonicalID
}
