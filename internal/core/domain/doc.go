// Package domain contains the core business entities for the briefing
// synthesis engine: raw and canonical items, relevance tiers, metric
// snapshots, priority scores and the assembled briefing itself.
//
// Domain types are plain data with no dependencies on adapters or
// infrastructure. They flow one way through the pipeline:
// gather → canonicalize → classify → score → bucket.
package domain
