package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockCitationIndex implements driven.CitationIndex for testing.
type mockCitationIndex struct {
	citers map[string][]string
	errs   []error

	mu    sync.Mutex
	calls int
}

func (m *mockCitationIndex) Lookup(_ context.Context, identifier string, _ int) ([]string, error) {
	m.mu.Lock()
	call := m.calls
	m.calls++
	m.mu.Unlock()

	if call < len(m.errs) && m.errs[call] != nil {
		return nil, m.errs[call]
	}
	return m.citers[identifier], nil
}

func paperItem(id, title, abstract string) domain.CanonicalItem {
	return domain.CanonicalItem{
		CanonicalID: "paper:" + id,
		Kind:        domain.KindPaper,
		Representative: domain.RawItem{
			SourceID:    "arxiv",
			IdentityKey: id,
			Kind:        domain.KindPaper,
			Title:       title,
			Abstract:    abstract,
		},
	}
}

func TestClassifyTier1FromCitations(t *testing.T) {
	citations := &mockCitationIndex{
		citers: map[string][]string{"2401.12345": {"2026apj...950l...1x"}},
	}
	classifier := NewClassifier([]string{"star formation"}, nil, 7)

	items := []domain.CanonicalItem{paperItem("2401.12345", "Star formation at high z", "")}
	results, warnings := classifier.Classify(context.Background(), items, citations)

	require.Empty(t, warnings)
	require.Contains(t, results, "paper:2401.12345")
	// Citation match outranks the keyword match.
	assert.Equal(t, domain.Tier1, results["paper:2401.12345"].Tier)
	assert.Equal(t, []string{"2026apj...950l...1x"}, results["paper:2401.12345"].Rationale)
}

func TestClassifyTier2Keywords(t *testing.T) {
	classifier := NewClassifier([]string{"star formation", "galactic winds"}, []string{"galaxy"}, 7)

	items := []domain.CanonicalItem{
		paperItem("2401.1", "A survey", "We study star formation histories in nearby galaxies."),
	}
	results, warnings := classifier.Classify(context.Background(), items, &mockCitationIndex{})

	require.Empty(t, warnings)
	require.Contains(t, results, "paper:2401.1")
	assert.Equal(t, domain.Tier2, results["paper:2401.1"].Tier)
	assert.Equal(t, []string{"star formation"}, results["paper:2401.1"].Rationale)
}

func TestClassifyTier3OnlyWhenTier2Misses(t *testing.T) {
	classifier := NewClassifier([]string{"star formation"}, []string{"galaxy", "quenching"}, 7)

	items := []domain.CanonicalItem{
		paperItem("2401.2", "Quenching in cluster galaxy populations", ""),
	}
	results, _ := classifier.Classify(context.Background(), items, &mockCitationIndex{})

	require.Contains(t, results, "paper:2401.2")
	assert.Equal(t, domain.Tier3, results["paper:2401.2"].Tier)
	assert.Equal(t, []string{"galaxy", "quenching"}, results["paper:2401.2"].Rationale)
}

func TestClassifyNoMatchAbsent(t *testing.T) {
	classifier := NewClassifier([]string{"star formation"}, []string{"galaxy"}, 7)

	items := []domain.CanonicalItem{paperItem("2401.3", "Neutron star mergers", "")}
	results, _ := classifier.Classify(context.Background(), items, &mockCitationIndex{})

	assert.NotContains(t, results, "paper:2401.3")
}

func TestClassifySkipsNonPapers(t *testing.T) {
	classifier := NewClassifier([]string{"galaxy"}, nil, 7)

	items := []domain.CanonicalItem{{
		CanonicalID: "mail:gmail:m1",
		Kind:        domain.KindMail,
		Representative: domain.RawItem{
			Kind: domain.KindMail, Title: "galaxy brain idea",
		},
	}}
	results, _ := classifier.Classify(context.Background(), items, &mockCitationIndex{})

	assert.Empty(t, results)
}

func TestClassifyDegradesToKeywordsOnLookupFailure(t *testing.T) {
	citations := &mockCitationIndex{
		citers: map[string][]string{"2401.1": {"citer"}},
		errs:   []error{nil, fmt.Errorf("%w: 503", domain.ErrCitationUnavailable)},
	}
	classifier := NewClassifier([]string{"star formation"}, nil, 7)

	items := []domain.CanonicalItem{
		paperItem("2401.1", "First paper", ""),
		paperItem("2401.2", "Star formation redux", ""),
		paperItem("2401.3", "Unrelated", ""),
	}
	results, warnings := classifier.Classify(context.Background(), items, citations)

	// The failure is a warning, never an error, and the item already
	// classified Tier1 keeps its tier.
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "citation lookup unavailable")
	assert.Equal(t, domain.Tier1, results["paper:2401.1"].Tier)
	assert.Equal(t, domain.Tier2, results["paper:2401.2"].Tier)
	assert.NotContains(t, results, "paper:2401.3")

	// After degrading, no further lookups are attempted.
	assert.Equal(t, 2, citations.calls)
}

func TestClassifyNilCitationIndexKeywordOnly(t *testing.T) {
	classifier := NewClassifier([]string{"star formation"}, nil, 7)

	items := []domain.CanonicalItem{paperItem("2401.1", "Star formation", "")}
	results, warnings := classifier.Classify(context.Background(), items, nil)

	assert.Empty(t, warnings)
	assert.Equal(t, domain.Tier2, results["paper:2401.1"].Tier)
}
