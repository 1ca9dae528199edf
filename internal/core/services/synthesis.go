package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driven"
	"github.com/custodia-labs/briefing-cli/internal/core/ports/driving"
	"github.com/custodia-labs/briefing-cli/internal/logger"
)

// Ensure Synthesis implements the driving port.
var _ driving.Synthesizer = (*Synthesis)(nil)

// Synthesis runs the briefing pipeline:
// Collected → Canonicalized → Classified → Delta → Scored → Bucketed.
// Stages are strictly sequential and never re-entered. Source and
// classification failures degrade the run; only cancellation aborts
// it, and even then the partial briefing is returned annotated with
// the failed stage.
type Synthesis struct {
	connectors    []driven.Connector
	gatherer      *Gatherer
	canonicalizer *Canonicalizer
	classifier    *Classifier
	tracker       *DeltaTracker
	scorer        *Scorer
	citations     driven.CitationIndex
}

// NewSynthesis wires the pipeline. The citation index may be nil, in
// which case classification is keyword-only from the start.
func NewSynthesis(
	connectors []driven.Connector,
	gatherer *Gatherer,
	canonicalizer *Canonicalizer,
	classifier *Classifier,
	tracker *DeltaTracker,
	scorer *Scorer,
	citations driven.CitationIndex,
) *Synthesis {
	return &Synthesis{
		connectors:    connectors,
		gatherer:      gatherer,
		canonicalizer: canonicalizer,
		classifier:    classifier,
		tracker:       tracker,
		scorer:        scorer,
		citations:     citations,
	}
}

// Gather runs only the orchestrated fetch. An empty only slice runs
// every connector; unknown names are ignored by the caller's choice of
// connector set, so a name matching nothing yields an error.
func (s *Synthesis) Gather(ctx context.Context, only []string) (map[string]domain.SourceResult, error) {
	connectors := s.connectors
	if len(only) > 0 {
		byName := make(map[string]driven.Connector, len(s.connectors))
		for _, c := range s.connectors {
			byName[c.Name()] = c
		}
		connectors = connectors[:0:0]
		for _, name := range only {
			c, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, name)
			}
			connectors = append(connectors, c)
		}
	}
	return s.gatherer.Run(ctx, connectors), nil
}

// Run executes the full pipeline for one date.
//
//nolint:gocyclo // Pipeline orchestration with necessary sequential stages
func (s *Synthesis) Run(ctx context.Context, date string) (*domain.Briefing, error) {
	briefing := &domain.Briefing{
		RunID:   uuid.NewString(),
		Date:    date,
		Buckets: make(map[domain.Bucket][]domain.ScoredItem),
		Tiers:   make(map[domain.Tier][]domain.ClassifiedItem),
	}

	// Stage 1: Collected.
	logger.Section("gather")
	results := s.gatherer.Run(ctx, s.connectors)
	sourceIDs := sortedResultIDs(results)

	metrics := make(map[string]float64)
	var rawItems []domain.RawItem
	for _, id := range sourceIDs {
		res := results[id]
		briefing.Manifest = append(briefing.Manifest, domain.SourceManifest{
			SourceID: id,
			Status:   res.Status,
			Detail:   res.Detail,
			Items:    len(res.Items),
		})
		if res.Status != domain.StatusOK {
			briefing.Degraded = true
		}
		rawItems = append(rawItems, res.Items...)
		for name, v := range res.Metrics {
			metrics[name] = v
		}
	}
	if err := s.checkStage(ctx, briefing, domain.StageCollected); err != nil {
		return briefing, err
	}

	// Stage 2: Canonicalized.
	logger.Section("canonicalize")
	canonical := s.canonicalizer.Canonicalize(rawItems)
	briefing.Sections = buildSections(sourceIDs, results, canonical)
	if err := s.checkStage(ctx, briefing, domain.StageCanonicalized); err != nil {
		return briefing, err
	}

	// Stage 3: Classified.
	logger.Section("classify")
	tiers, warnings := s.classifier.Classify(ctx, canonical, s.citations)
	if len(warnings) > 0 {
		briefing.Degraded = true
		briefing.Warnings = append(briefing.Warnings, warnings...)
	}
	for _, item := range canonical {
		if tr, ok := tiers[item.CanonicalID]; ok {
			briefing.Tiers[tr.Tier] = append(briefing.Tiers[tr.Tier], domain.ClassifiedItem{
				Item:      item,
				Tier:      tr.Tier,
				Rationale: tr.Rationale,
			})
		}
	}
	if err := s.checkStage(ctx, briefing, domain.StageClassified); err != nil {
		return briefing, err
	}

	// Stage 4: Delta. Snapshot problems degrade, never abort.
	logger.Section("delta")
	deltas, err := s.tracker.Delta(ctx, date, metrics)
	switch {
	case err == nil:
		briefing.Deltas = deltas
	case errors.Is(err, domain.ErrSnapshotCorrupt):
		briefing.Degraded = true
		briefing.Warnings = append(briefing.Warnings, fmt.Sprintf("snapshot baseline unreadable, proceeding without deltas: %v", err))
	default:
		briefing.Degraded = true
		briefing.Warnings = append(briefing.Warnings, fmt.Sprintf("delta computation failed: %v", err))
	}
	if err := s.tracker.Record(ctx, date, metrics); err != nil {
		briefing.Degraded = true
		briefing.Warnings = append(briefing.Warnings, fmt.Sprintf("snapshot not recorded: %v", err))
	}
	if err := s.checkStage(ctx, briefing, domain.StageDelta); err != nil {
		return briefing, err
	}

	// Stage 5: Scored.
	logger.Section("score")
	scored := s.scorer.Score(canonical)
	if err := s.checkStage(ctx, briefing, domain.StageScored); err != nil {
		return briefing, err
	}

	// Stage 6: Bucketed. Output order inside each bucket is the
	// scorer's deterministic order.
	for _, item := range scored {
		briefing.Buckets[item.Bucket] = append(briefing.Buckets[item.Bucket], item)
	}

	briefing.GeneratedAt = time.Now()
	logger.Info("Run %s complete: %d sources, %d items, degraded=%v",
		briefing.RunID, len(sourceIDs), len(canonical), briefing.Degraded)
	return briefing, nil
}

// checkStage aborts between stages on cancellation, annotating the
// briefing with the stage that did not complete. The partial briefing
// is still returned to the caller.
func (s *Synthesis) checkStage(ctx context.Context, b *domain.Briefing, completed domain.Stage) error {
	if err := ctx.Err(); err != nil {
		b.FailedStage = nextStage(completed)
		b.Degraded = true
		b.GeneratedAt = time.Now()
		return fmt.Errorf("synthesis aborted after %s: %w", completed, err)
	}
	return nil
}

func nextStage(completed domain.Stage) domain.Stage {
	order := []domain.Stage{
		domain.StageCollected,
		domain.StageCanonicalized,
		domain.StageClassified,
		domain.StageDelta,
		domain.StageScored,
		domain.StageBucketed,
	}
	for i, st := range order {
		if st == completed && i+1 < len(order) {
			return order[i+1]
		}
	}
	return domain.StageBucketed
}

// buildSections groups canonical items back under every source that
// contributed a member. Failed sources keep an explicit, empty,
// unavailable section rather than disappearing from the output.
func buildSections(sourceIDs []string, results map[string]domain.SourceResult, canonical []domain.CanonicalItem) []domain.Section {
	bySource := make(map[string][]domain.CanonicalItem)
	for _, item := range canonical {
		for _, src := range item.Sources {
			bySource[src] = append(bySource[src], item)
		}
	}

	sections := make([]domain.Section, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		res := results[id]
		sections = append(sections, domain.Section{
			SourceID:    id,
			Status:      res.Status,
			Unavailable: res.Status != domain.StatusOK,
			Items:       bySource[id],
		})
	}
	return sections
}

func sortedResultIDs(results map[string]domain.SourceResult) []string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
