// Package sqlite embeds SQL migration files for SQLite databases.
package sqlite

import "embed"

// FS contains the users schema migrations.
//
//go:embed users/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "users"
