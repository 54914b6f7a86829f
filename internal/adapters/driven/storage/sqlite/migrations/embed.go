// Package migrations embeds the SQL schema for the case database.
package migrations

import "embed"

// FS holds the numbered NNN_name.up.sql and .down.sql files.
//
//go:embed *.sql
var FS embed.FS
