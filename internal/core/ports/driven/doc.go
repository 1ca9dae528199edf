// Package driven defines the outbound ports of the briefing core: the
// contracts the core consumes. Adapters (connectors, storage, the
// citation index) implement these interfaces; the core never imports
// an adapter.
package driven
