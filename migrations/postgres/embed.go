// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the schema migrations, applied in lexical order.
//
//go:embed sql/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "sql"
