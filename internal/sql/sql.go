// Package sql embeds the DDL and queries of the run ledger, one variant per
// store dialect.
package sql

import (
	"embed"
)

// Migrations holds one directory per dialect (postgres, sqlite); files are
// applied in name order.
//
//go:embed migrations
var Migrations embed.FS

//go:embed queries/insert_run_postgres.sql
var InsertRunPostgres string

//go:embed queries/insert_run_sqlite.sql
var InsertRunSQLite string
