package migrations

import "embed"

// FS holds the SQL migrations shipped with the binary
//
//go:embed sqlite/*.sql
var FS embed.FS
