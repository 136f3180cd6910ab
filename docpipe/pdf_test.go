package docpipe

import "testing"

func TestDecodeContentStream(t *testing.T) {
	stream := []byte(`BT
/F1 12 Tf
(Primeira parte ) Tj
(do texto) Tj
T*
[(Julgo ) (procedente)] TJ
ET`)

	got := decodeContentStream(stream)
	want := "Primeira parte do texto\nJulgo procedente"
	if got != want {
		t.Errorf("decodeContentStream = %q, want %q", got, want)
	}
}

func TestDecodeContentStreamQuoteOperator(t *testing.T) {
	// The ' operator shows text on the next line.
	stream := []byte(`(linha um) Tj
(linha dois) '`)

	got := decodeContentStream(stream)
	want := "linha um\nlinha dois"
	if got != want {
		t.Errorf("decodeContentStream = %q, want %q", got, want)
	}
}

func TestDecodeLiteralEscapes(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`texto simples`, "texto simples"},
		{`par\(ente\)ses`, "par(ente)ses"},
		{`barra \\ dupla`, `barra \ dupla`},
		{`a\303\247\303\243o`, "ação"}, // octal-escaped UTF-8
		{`quebra\nde linha`, "quebra\nde linha"},
	}
	for _, tt := range tests {
		if got := decodeLiteral([]byte(tt.raw)); got != tt.want {
			t.Errorf("decodeLiteral(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLiteralEndHonoursEscapes(t *testing.T) {
	line := []byte(`(com \) escapado) Tj`)
	end := literalEnd(line, 1)
	if end < 0 {
		t.Fatal("literal end not found")
	}
	if got := decodeLiteral(line[1:end]); got != "com ) escapado" {
		t.Errorf("literal = %q", got)
	}
}

func TestTidyPageTextPreservesNewlines(t *testing.T) {
	got := tidyPageText("São  Paulo,   12 de março de 2024.\n\tJuiz   de Direito")
	want := "São Paulo, 12 de março de 2024.\nJuiz de Direito"
	if got != want {
		t.Errorf("tidyPageText = %q, want %q", got, want)
	}
}

func TestExtractPDFTextRejectsCorruptInput(t *testing.T) {
	if _, err := ExtractPDFText([]byte("not a pdf at all")); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
}
