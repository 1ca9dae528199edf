// Package migrations embeds the snapshot schema migrations for the
// SQLite store.
package migrations

import "embed"

// FS holds the numbered .up.sql files, applied in lexical order on
// first open of the snapshot database.
//
//go:embed *.sql
var FS embed.FS
