package domain

import "time"

// Stage names the synthesis pipeline stages. Stages run strictly in
// order and are never re-entered.
type Stage string

const (
	StageCollected     Stage = "collected"
	StageCanonicalized Stage = "canonicalized"
	StageClassified    Stage = "classified"
	StageDelta         Stage = "delta"
	StageScored        Stage = "scored"
	StageBucketed      Stage = "bucketed"
)

// SourceManifest records what one source contributed to a run.
type SourceManifest struct {
	SourceID string
	Status   SourceStatus
	Detail   string
	Items    int
}

// Section is the per-source slice of the briefing handed to the
// renderer. A section whose source failed is present with Unavailable
// set rather than omitted.
type Section struct {
	SourceID    string
	Status      SourceStatus
	Unavailable bool
	Items       []CanonicalItem
}

// ClassifiedItem pairs a canonical item with its tier result for the
// render structure.
type ClassifiedItem struct {
	Item      CanonicalItem
	Tier      Tier
	Rationale []string
}

// Briefing is the normalized output of one synthesis run: everything
// the renderer needs, already bucketed, tiered and delta-annotated.
// Formatting and layout belong to the renderer, not here.
type Briefing struct {
	// RunID uniquely identifies this synthesis run.
	RunID string

	// Date is the ISO date the briefing covers.
	Date string

	// GeneratedAt is when synthesis finished.
	GeneratedAt time.Time

	// Degraded is true when any source was skipped, errored or timed
	// out, when classification lost its citation lookup, or when the
	// snapshot baseline was unreadable.
	Degraded bool

	// FailedStage names the stage that aborted the pipeline, if any.
	// Empty for a run that reached Bucketed. A partial briefing keeps
	// everything computed before the failure.
	FailedStage Stage

	// Warnings carries non-fatal degradations (classifier fallback,
	// corrupt snapshot baseline).
	Warnings []string

	// Manifest records per-source outcomes.
	Manifest []SourceManifest

	// Sections holds the canonical items grouped by source.
	Sections []Section

	// Buckets holds the scored items per priority class, ordered.
	Buckets map[Bucket][]ScoredItem

	// Tiers holds the classified research items per tier.
	Tiers map[Tier][]ClassifiedItem

	// Deltas holds day-over-day metric changes against the most
	// recent earlier snapshot. Empty means no history, not no change.
	Deltas []DeltaRecord
}
