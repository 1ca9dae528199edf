// Package services implements the briefing core: the gatherer
// orchestrator, canonicalizer, relevance classifier, delta tracker,
// priority scorer and the synthesis pipeline tying them together.
//
// The gatherer is the only concurrent component. Everything downstream
// is a pure, single-threaded transformation over its output.
package services
