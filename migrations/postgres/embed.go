// Package postgres embeds SQL migration files for PostgreSQL databases.
package postgres

import "embed"

// FS contains the users schema migrations.
//
//go:embed users/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "users"
