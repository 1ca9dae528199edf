package driven

import "context"

// CitationIndex cross-references an item identifier against a tracked
// body of prior work. Implementations must be safe for concurrent use.
//
// Lookup queries a trailing window of windowDays days, not just the
// current day, to absorb the indexing lag of external citation
// databases. It returns the identifiers of matching citing works, or
// an error wrapping domain.ErrCitationUnavailable when the service is
// unreachable, in which case the classifier degrades to keyword-only
// tiers.
type CitationIndex interface {
	Lookup(ctx context.Context, identifier string, windowDays int) ([]string, error)
}
