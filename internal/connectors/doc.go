// Package connectors groups the per-source fetch implementations.
// Each source lives in its own subpackage and implements the
// driven.Connector capability interface; there is no shared base
// beyond that interface.
package connectors
