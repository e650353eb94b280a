// Package migrations embeds the goose migrations of the local SQLite book.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
