// Package migrations ships the SQL schema of the Postgres backend.
package migrations

import "embed"

// FS holds the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
