package domain

// CanonicalItem is the deduplicated representation of one or more raw
// items judged to be the same real-world entity. Every raw item belongs
// to exactly one canonical item.
type CanonicalItem struct {
	// CanonicalID is the deterministic grouping key. It is stable for
	// the same entity across runs and across sources.
	CanonicalID string

	// MemberKeys are the identity keys of all merged raw items, sorted.
	MemberKeys []string

	// Representative is the raw item chosen to stand for the group:
	// the one carrying the richest optional fields, ties broken by
	// earliest-seen input order.
	Representative RawItem

	// Kind is the shared kind of all members.
	Kind ItemKind

	// Signals is the deduplicated, sorted union of member signals.
	Signals []string

	// Sources lists the distinct source IDs that contributed members.
	Sources []string
}
