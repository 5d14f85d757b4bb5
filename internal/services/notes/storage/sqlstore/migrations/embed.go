package migrations

import "embed"

// FS contains embedded note migrations, one directory per SQL dialect.
//
//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
