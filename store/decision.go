package store

import (
	"context"
	"database/sql"

	"github.com/rfcoelho/cjpgscan/docpipe"
)

// Decision is one stored row, as returned by the listing queries.
type Decision struct {
	ProcessNumber  string `json:"processNumber"`
	JudgeName      string `json:"judgeName"`
	OutcomeLabel   string `json:"outcomeLabel"`
	OutcomeExcerpt string `json:"outcomeExcerpt"`
	Classe         string `json:"classe"`
	Assunto        string `json:"assunto"`
	CourtUnit      string `json:"courtUnit"`
	DecisionDate   string `json:"decisionDate"`
	Requerente     string `json:"requerente"`
	Requerido      string `json:"requerido"`
	TextLen        int    `json:"textLen"`
	HasText        bool   `json:"hasText"`
	FetchedAt      string `json:"fetchedAt"`
}

// Upsert inserts or overwrites the row for rec's process number.
// Re-processing the same case updates it in place and refreshes fetched_at.
func (s *Store) Upsert(ctx context.Context, rec *docpipe.Record) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO decisions (
			source_url, process_number, judge_name, classe, assunto,
			court_unit, decision_date, requerente, requerido,
			outcome_label, outcome_excerpt, pdf_path, text_len, has_text
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(process_number) DO UPDATE SET
			source_url      = excluded.source_url,
			judge_name      = excluded.judge_name,
			classe          = excluded.classe,
			assunto         = excluded.assunto,
			court_unit      = excluded.court_unit,
			decision_date   = excluded.decision_date,
			requerente      = excluded.requerente,
			requerido       = excluded.requerido,
			outcome_label   = excluded.outcome_label,
			outcome_excerpt = excluded.outcome_excerpt,
			pdf_path        = excluded.pdf_path,
			text_len        = excluded.text_len,
			has_text        = excluded.has_text,
			fetched_at      = datetime('now')`,
		rec.SourceURL, rec.ProcessNumber, rec.JudgeName, rec.Classe, rec.Assunto,
		rec.CourtUnit, rec.DecisionDate, rec.Requerente, rec.Requerido,
		string(rec.OutcomeLabel), rec.OutcomeExcerpt,
		rec.PDFPath, rec.TextLen, rec.HasText,
	)
	return err
}

// Count returns the total number of stored decisions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM decisions`).Scan(&n)
	return n, err
}

// ListRecent returns the most recently fetched decisions, newest first,
// bounded to limit rows.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Decision, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT process_number, judge_name, outcome_label, outcome_excerpt,
			classe, assunto, court_unit, decision_date, requerente,
			requerido, text_len, has_text, fetched_at
		FROM decisions
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDecision(rows *sql.Rows) (*Decision, error) {
	var d Decision
	err := rows.Scan(
		&d.ProcessNumber, &d.JudgeName, &d.OutcomeLabel, &d.OutcomeExcerpt,
		&d.Classe, &d.Assunto, &d.CourtUnit, &d.DecisionDate,
		&d.Requerente, &d.Requerido, &d.TextLen, &d.HasText, &d.FetchedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
