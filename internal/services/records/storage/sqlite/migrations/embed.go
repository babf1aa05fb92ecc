// Package migrations embeds the records service SQL schema.
package migrations

import "embed"

// FS holds every migration file, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
