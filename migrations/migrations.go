// Package migrations embeds the SQL schema of the pending-booking ledger.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
