package store

import "database/sql"

// Schema is the decisions table: one row per captured document, keyed by
// process number so re-running a query that revisits a case overwrites
// instead of duplicating.
const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    source_url      TEXT NOT NULL DEFAULT '',
    process_number  TEXT NOT NULL UNIQUE,
    judge_name      TEXT NOT NULL DEFAULT '',
    classe          TEXT NOT NULL DEFAULT '',
    assunto         TEXT NOT NULL DEFAULT '',
    court_unit      TEXT NOT NULL DEFAULT '',
    decision_date   TEXT NOT NULL DEFAULT '',
    requerente      TEXT NOT NULL DEFAULT '',
    requerido       TEXT NOT NULL DEFAULT '',
    outcome_label   TEXT NOT NULL DEFAULT 'OUTRO',
    outcome_excerpt TEXT NOT NULL DEFAULT '',
    pdf_path        TEXT NOT NULL DEFAULT '',
    text_len        INTEGER NOT NULL DEFAULT 0,
    has_text        INTEGER NOT NULL DEFAULT 0,
    fetched_at      TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_decisions_fetched ON decisions(fetched_at DESC);
`

// ApplySchema creates the decisions table and indexes. Idempotent.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
