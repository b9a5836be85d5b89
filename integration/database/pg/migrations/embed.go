// Package migrations embeds the SQL schema migrations for the
// authentication tables.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
