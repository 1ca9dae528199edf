package services

import (
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// Canonicalizer merges raw items that represent the same real-world
// entity into canonical items. Grouping keys are kind-specific:
//
//   - papers merge on their normalized external identifier, so a
//     cross-listed paper appearing in several categories (or sources)
//     collapses to one item;
//   - events merge on (normalized title, start time), so the same
//     occurrence on two calendars collapses to one item;
//   - everything else keys on (source, identity key) and is never
//     merged across sources.
//
// Merging is symmetric, transitive and idempotent: canonicalizing
// already-canonical output is a no-op.
type Canonicalizer struct{}

// NewCanonicalizer creates a canonicalizer.
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{}
}

// Canonicalize groups raw items by canonical key. Group order follows
// the first appearance of each key in the input; the representative of
// a group is the member with the richest optional fields, ties broken
// by earliest-seen input order.
func (c *Canonicalizer) Canonicalize(items []domain.RawItem) []domain.CanonicalItem {
	groups := make(map[string][]domain.RawItem)
	var order []string

	for _, it := range items {
		key := CanonicalKey(it)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], it)
	}

	out := make([]domain.CanonicalItem, 0, len(order))
	for _, key := range order {
		out = append(out, mergeGroup(key, groups[key]))
	}
	return out
}

// CanonicalKey computes the deterministic grouping key for a raw item.
func CanonicalKey(it domain.RawItem) string {
	switch it.Kind {
	case domain.KindPaper:
		return "paper:" + NormalizePaperID(it.IdentityKey)
	case domain.KindEvent:
		return "event:" + normalizeTitle(it.Title) + "|" + it.Timestamp.UTC().Format(time.RFC3339)
	default:
		return string(it.Kind) + ":" + it.SourceID + ":" + it.IdentityKey
	}
}

// NormalizePaperID strips the arXiv version suffix and lowercases the
// identifier, so 2401.12345v2 and 2401.12345 are the same paper.
func NormalizePaperID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.TrimPrefix(id, "arxiv:")
	if i := strings.LastIndex(id, "v"); i > 0 {
		version := id[i+1:]
		if version != "" && isDigits(version) {
			id = id[:i]
		}
	}
	return id
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

func mergeGroup(key string, members []domain.RawItem) domain.CanonicalItem {
	rep := members[0]
	for _, m := range members[1:] {
		if richness(m) > richness(rep) {
			rep = m
		}
	}

	keySet := make(map[string]struct{}, len(members))
	signalSet := make(map[string]struct{})
	sourceSet := make(map[string]struct{})
	for _, m := range members {
		keySet[m.IdentityKey] = struct{}{}
		sourceSet[m.SourceID] = struct{}{}
		for _, s := range m.Signals {
			signalSet[s] = struct{}{}
		}
	}

	return domain.CanonicalItem{
		CanonicalID:    key,
		MemberKeys:     sortedKeys(keySet),
		Representative: rep,
		Kind:           rep.Kind,
		Signals:        sortedKeys(signalSet),
		Sources:        sortedKeys(sourceSet),
	}
}

// richness counts the optional fields an item carries. An item with a
// location or note beats one without, per the representative rule.
func richness(it domain.RawItem) int {
	n := 0
	for _, s := range []string{it.Abstract, it.Location, it.Note, it.URL, it.PrimaryCategory, it.Sender} {
		if s != "" {
			n++
		}
	}
	if len(it.Authors) > 0 {
		n++
	}
	return n
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
