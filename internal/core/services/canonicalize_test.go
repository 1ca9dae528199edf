package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

func TestCanonicalizePaperVersionsMerge(t *testing.T) {
	items := []domain.RawItem{
		{SourceID: "arxiv", IdentityKey: "2401.12345v2", Kind: domain.KindPaper, Title: "Galactic winds"},
		{SourceID: "ads", IdentityKey: "arXiv:2401.12345", Kind: domain.KindPaper, Title: "Galactic winds"},
	}

	out := NewCanonicalizer().Canonicalize(items)

	require.Len(t, out, 1)
	assert.Equal(t, "paper:2401.12345", out[0].CanonicalID)
	assert.Equal(t, []string{"2401.12345v2", "arXiv:2401.12345"}, out[0].MemberKeys)
	assert.Equal(t, []string{"ads", "arxiv"}, out[0].Sources)
}

func TestCanonicalizeEventAcrossCalendars(t *testing.T) {
	start := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	items := []domain.RawItem{
		{SourceID: "calendar", IdentityKey: "evt-a", Kind: domain.KindEvent, Title: "ARI Seminar", Timestamp: start},
		{SourceID: "calendar", IdentityKey: "evt-b", Kind: domain.KindEvent, Title: "  ari  seminar ", Timestamp: start, Location: "Room 2"},
	}

	out := NewCanonicalizer().Canonicalize(items)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"evt-a", "evt-b"}, out[0].MemberKeys)
	// The member carrying a location is richer and becomes the
	// representative.
	assert.Equal(t, "evt-b", out[0].Representative.IdentityKey)
	assert.Equal(t, "Room 2", out[0].Representative.Location)
}

func TestCanonicalizeEventDifferentStartNotMerged(t *testing.T) {
	items := []domain.RawItem{
		{SourceID: "calendar", IdentityKey: "a", Kind: domain.KindEvent, Title: "Standup",
			Timestamp: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)},
		{SourceID: "calendar", IdentityKey: "b", Kind: domain.KindEvent, Title: "Standup",
			Timestamp: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)},
	}

	out := NewCanonicalizer().Canonicalize(items)
	assert.Len(t, out, 2)
}

func TestCanonicalizeDefaultKindNeverMergesAcrossSources(t *testing.T) {
	items := []domain.RawItem{
		{SourceID: "gmail", IdentityKey: "abc", Kind: domain.KindMail, Title: "Hello"},
		{SourceID: "github", IdentityKey: "abc", Kind: domain.KindNotification, Title: "Hello"},
	}

	out := NewCanonicalizer().Canonicalize(items)
	assert.Len(t, out, 2)
}

func TestCanonicalizeRepresentativeTieFirstSeen(t *testing.T) {
	items := []domain.RawItem{
		{SourceID: "arxiv", IdentityKey: "2401.1", Kind: domain.KindPaper, Title: "First", URL: "u1"},
		{SourceID: "ads", IdentityKey: "2401.1", Kind: domain.KindPaper, Title: "Second", URL: "u2"},
	}

	out := NewCanonicalizer().Canonicalize(items)

	require.Len(t, out, 1)
	assert.Equal(t, "First", out[0].Representative.Title)
}

func TestCanonicalizeSignalsUnionSorted(t *testing.T) {
	start := time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC)
	items := []domain.RawItem{
		{SourceID: "calendar", IdentityKey: "a", Kind: domain.KindEvent, Title: "Review", Timestamp: start,
			Signals: []string{domain.FactorSameDayEvent}},
		{SourceID: "calendar", IdentityKey: "b", Kind: domain.KindEvent, Title: "Review", Timestamp: start,
			Signals: []string{domain.FactorMeetingImminent, domain.FactorSameDayEvent}},
	}

	out := NewCanonicalizer().Canonicalize(items)

	require.Len(t, out, 1)
	assert.Equal(t, []string{domain.FactorMeetingImminent, domain.FactorSameDayEvent}, out[0].Signals)
}

func TestCanonicalizeOrderFollowsFirstAppearance(t *testing.T) {
	items := []domain.RawItem{
		{SourceID: "arxiv", IdentityKey: "b-paper", Kind: domain.KindPaper},
		{SourceID: "arxiv", IdentityKey: "a-paper", Kind: domain.KindPaper},
		{SourceID: "arxiv", IdentityKey: "b-paper", Kind: domain.KindPaper},
	}

	out := NewCanonicalizer().Canonicalize(items)

	require.Len(t, out, 2)
	assert.Equal(t, "paper:b-paper", out[0].CanonicalID)
	assert.Equal(t, "paper:a-paper", out[1].CanonicalID)
}

func TestCanonicalizeIdempotent(t *testing.T) {
	items := []domain.RawItem{
		{SourceID: "arxiv", IdentityKey: "2401.12345v2", Kind: domain.KindPaper, Title: "Winds"},
		{SourceID: "ads", IdentityKey: "2401.12345", Kind: domain.KindPaper, Title: "Winds"},
		{SourceID: "gmail", IdentityKey: "m1", Kind: domain.KindMail, Title: "Hi"},
	}

	c := NewCanonicalizer()
	first := c.Canonicalize(items)

	reps := make([]domain.RawItem, 0, len(first))
	for _, item := range first {
		reps = append(reps, item.Representative)
	}
	second := c.Canonicalize(reps)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].CanonicalID, second[i].CanonicalID)
	}
}

func TestNormalizePaperID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "2401.12345", "2401.12345"},
		{"version stripped", "2401.12345v3", "2401.12345"},
		{"prefix stripped", "arXiv:2401.12345", "2401.12345"},
		{"prefix and version", "arXiv:2401.12345v2", "2401.12345"},
		{"lowercased", "2023ApJ...945L..10A", "2023apj...945l..10a"},
		{"v not followed by digits kept", "astro-ph/0601v1x", "astro-ph/0601v1x"},
		{"whitespace trimmed", "  2401.12345 ", "2401.12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePaperID(tt.in))
		})
	}
}
