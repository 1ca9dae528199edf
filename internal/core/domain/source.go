package domain

import "time"

// SourceStatus describes the outcome of one connector fetch.
type SourceStatus string

const (
	// StatusOK means the fetch completed, possibly with an empty payload.
	StatusOK SourceStatus = "ok"

	// StatusError means the fetch failed unexpectedly (after one retry
	// for transient failures).
	StatusError SourceStatus = "error"

	// StatusTimeout means the fetch exceeded the per-source deadline.
	StatusTimeout SourceStatus = "timeout"

	// StatusSkipped means the connector declined to run (missing
	// credentials, wrong platform). Expected, not an error.
	StatusSkipped SourceStatus = "skipped"
)

// ItemKind identifies the real-world entity type a raw item represents.
// The canonicalizer and classifier key their behaviour on it.
type ItemKind string

const (
	// KindPaper is a research paper (tier-eligible).
	KindPaper ItemKind = "paper"

	// KindEvent is a calendar event.
	KindEvent ItemKind = "event"

	// KindMail is an unread mail message.
	KindMail ItemKind = "mail"

	// KindIssue is an assigned issue or ticket.
	KindIssue ItemKind = "issue"

	// KindPullRequest is a pull request awaiting review.
	KindPullRequest ItemKind = "pull_request"

	// KindNotification is a code-hosting notification.
	KindNotification ItemKind = "notification"

	// KindArticle is a news or feed article.
	KindArticle ItemKind = "article"

	// KindQuote is a daily reading or meditation entry.
	KindQuote ItemKind = "quote"

	// KindWeather is a weather observation.
	KindWeather ItemKind = "weather"
)

// RawItem is a single record as produced by a connector, before
// canonicalization. IdentityKey is source-defined: a stable external ID
// where the source has one, or a composite the source judges stable.
type RawItem struct {
	// SourceID names the connector that produced this item.
	SourceID string

	// IdentityKey is the source-defined identity of the item.
	IdentityKey string

	// Kind classifies the real-world entity type.
	Kind ItemKind

	// Title is the human-readable headline (subject, summary, paper title).
	Title string

	// Timestamp is the source-provided time (published, received, starts).
	Timestamp time.Time

	// Optional enrichments. Presence decides the canonical representative.

	// Abstract is the paper abstract or article summary.
	Abstract string

	// Authors holds up to the first five authors.
	Authors []string

	// AuthorCount is the full author count before capping.
	AuthorCount int

	// PrimaryCategory is the primary subject category for papers.
	PrimaryCategory string

	// URL links back to the item.
	URL string

	// Location is the event location, if any.
	Location string

	// Note is free-form detail (event description, mail snippet).
	Note string

	// Sender is the originating address for mail items.
	Sender string

	// Signals are source-declared scoring factor names. The priority
	// scorer resolves them against its weight table; unknown signals
	// score zero.
	Signals []string
}

// SourceResult is the immutable outcome of one connector invocation.
type SourceResult struct {
	// SourceID names the connector.
	SourceID string

	// Status is the fetch outcome.
	Status SourceStatus

	// Items is the raw payload. Empty on timeout/skip/error.
	Items []RawItem

	// Detail carries the error text or skip reason for non-ok statuses.
	Detail string

	// Metrics is an optional flat metric stream consumed by the delta
	// tracker (e.g. citation counts, market prices).
	Metrics map[string]float64

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time
}

// Failed reports whether the source contributed nothing usable this run.
func (r *SourceResult) Failed() bool {
	return r.Status == StatusError || r.Status == StatusTimeout
}
