// Package driving defines the inbound ports of the briefing core: the
// contracts the CLI (and any other driving adapter) calls.
package driving

import (
	"context"

	"github.com/custodia-labs/briefing-cli/internal/core/domain"
)

// Synthesizer runs the full briefing pipeline for one date:
// gather → canonicalize → classify → delta → score → bucket.
//
// Run never fails outright for source-level problems; it returns
// whatever could be computed, with the briefing's Degraded flag,
// Warnings and Manifest describing what went wrong. The returned
// error is reserved for failures of the pipeline itself, in which
// case the briefing is still returned, annotated with FailedStage.
type Synthesizer interface {
	Run(ctx context.Context, date string) (*domain.Briefing, error)

	// Gather runs only the orchestrated fetch, without the downstream
	// stages. Used by the gather command for source debugging.
	Gather(ctx context.Context, only []string) (map[string]domain.SourceResult, error)
}
