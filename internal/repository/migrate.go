package repository

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
)

// Dates are stored as ISO-8601 text and amounts as decimal text so both
// backends share one schema and one scan path.
func invoiceTableDDL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
	id          TEXT PRIMARY KEY,
	tanggal     TEXT NOT NULL,
	keterangan  TEXT NOT NULL DEFAULT '',
	npwp        TEXT NOT NULL DEFAULT '',
	nama        TEXT NOT NULL DEFAULT '',
	no_faktur   TEXT NOT NULL UNIQUE,
	dpp         TEXT NOT NULL,
	ppn         TEXT NOT NULL,
	created_at  TEXT NOT NULL
)`
}

var migrations = []string{
	invoiceTableDDL(constants.Inbound.Table()),
	invoiceTableDDL(constants.Outbound.Table()),
	`CREATE TABLE IF NOT EXISTS bukti_setor (
	id          TEXT PRIMARY KEY,
	kode_setor  TEXT NOT NULL,
	jenis_kode  TEXT NOT NULL DEFAULT '',
	tanggal     TEXT NOT NULL,
	jumlah      TEXT NOT NULL,
	preview_key TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS extract_jobs (
	id            TEXT PRIMARY KEY,
	source_path   TEXT NOT NULL,
	kind          TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	error_message TEXT,
	page_count    INTEGER NOT NULL DEFAULT 0,
	failed_pages  INTEGER NOT NULL DEFAULT 0,
	result_json   TEXT,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
)`,
}

// Migrate creates missing tables. It is safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.exec(ctx, stmt); err != nil {
			db.logger.Error("migration failed", "step", i, "error", err)
			return fmt.Errorf("%w: migrate step %d: %v", common.ErrDatabase, i, err)
		}
	}
	db.logger.Info("database migrated", "steps", len(migrations))
	return nil
}
