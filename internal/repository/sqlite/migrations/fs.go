// Package migrations embeds and applies the SQLite schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
