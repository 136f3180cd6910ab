package store

import (
	"context"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rfcoelho/cjpgscan/dbopen"
	"github.com/rfcoelho/cjpgscan/docpipe"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	return NewStore(db)
}

func testRecord(n int) *docpipe.Record {
	return &docpipe.Record{
		ProcessNumber:  fmt.Sprintf("100%d-56.2024.8.26.0100", n),
		JudgeName:      "Dr. Fulano",
		OutcomeLabel:   "PROCEDENTE",
		OutcomeExcerpt: "Ante o exposto, julgo procedente.",
		SourceURL:      "https://esaj.test/getPDF.do",
		PDFPath:        fmt.Sprintf("runs/raw/doc_%d.pdf", n),
		TextLen:        1200,
		HasText:        true,
		Classe:         "Procedimento Comum Cível",
		Assunto:        "Cobrança",
		DecisionDate:   "15/03/2024",
	}
}

func TestUpsertAndList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.Upsert(ctx, testRecord(1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	list, err := st.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d rows, want 1", len(list))
	}

	d := list[0]
	if d.ProcessNumber != "1001-56.2024.8.26.0100" {
		t.Errorf("ProcessNumber = %q", d.ProcessNumber)
	}
	if d.OutcomeLabel != "PROCEDENTE" {
		t.Errorf("OutcomeLabel = %q", d.OutcomeLabel)
	}
	if d.Classe != "Procedimento Comum Cível" || d.Assunto != "Cobrança" {
		t.Errorf("Classe/Assunto = %q / %q", d.Classe, d.Assunto)
	}
	if !d.HasText || d.TextLen != 1200 {
		t.Errorf("HasText/TextLen = %v / %d", d.HasText, d.TextLen)
	}
	if d.FetchedAt == "" {
		t.Error("FetchedAt should be populated by the schema default")
	}
}

func TestUpsertSameProcessOverwrites(t *testing.T) {
	// Re-running a query that revisits a case must update the row in
	// place, never duplicate it.
	st := newTestStore(t)
	ctx := context.Background()

	rec := testRecord(1)
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	rec.OutcomeLabel = "IMPROCEDENTE"
	rec.OutcomeExcerpt = "Ante o exposto, julgo improcedente."
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	n, err := st.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}

	list, err := st.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if list[0].OutcomeLabel != "IMPROCEDENTE" {
		t.Errorf("OutcomeLabel after overwrite = %q", list[0].OutcomeLabel)
	}
}

func TestListRecentOrderAndLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := st.Upsert(ctx, testRecord(i)); err != nil {
			t.Fatalf("Upsert %d: %v", i, err)
		}
	}

	list, err := st.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d rows, want 3", len(list))
	}
	// fetched_at ties within a second resolve by insertion id, newest first.
	if list[0].ProcessNumber != "1005-56.2024.8.26.0100" {
		t.Errorf("first row = %q, want the most recent insert", list[0].ProcessNumber)
	}
}

func TestApplySchemaIdempotent(t *testing.T) {
	db := dbopen.OpenMemory(t)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("first ApplySchema: %v", err)
	}
	if err := ApplySchema(db); err != nil {
		t.Fatalf("second ApplySchema: %v", err)
	}
}
