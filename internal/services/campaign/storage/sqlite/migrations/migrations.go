// Package migrations embeds the campaign schema migration files.
package migrations

import "embed"

//go:embed *.sql
var files embed.FS

// Files returns the embedded migration files.
func Files() embed.FS {
	return files
}
