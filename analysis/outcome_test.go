package analysis

import (
	"strings"
	"testing"
)

func TestClassifyOutcomeLabels(t *testing.T) {
	tests := []struct {
		name   string
		window string
		want   Label
	}{
		{
			name:   "improcedente",
			window: "Ante o exposto, JULGO IMPROCEDENTE o pedido formulado na inicial.",
			want:   LabelImprocedente,
		},
		{
			name:   "procedente",
			window: "Diante do exposto, julgo procedente o pedido.",
			want:   LabelProcedente,
		},
		{
			name:   "procedente o pedido variant",
			window: "Assim, declaro PROCEDENTE o pedido do autor.",
			want:   LabelProcedente,
		},
		{
			name:   "parcial em parte",
			window: "Isso posto, julgo PROCEDENTE EM PARTE o pedido inicial.",
			want:   LabelParcial,
		},
		{
			name:   "parcial parcialmente",
			window: "Julgo procedente, parcialmente, os pedidos.",
			want:   LabelParcial,
		},
		{
			name:   "extincao sem merito",
			window: "Extingo o processo sem resolução de mérito, nos termos do art. 485.",
			want:   LabelExtincao,
		},
		{
			name:   "homologacao de acordo",
			window: "HOMOLOGO o acordo celebrado entre as partes.",
			want:   LabelHomologacao,
		},
		{
			name:   "homologo sem objeto nao basta",
			window: "Homologo os cálculos apresentados pelo perito.",
			want:   LabelOutro,
		},
		{
			name:   "sem regra",
			window: "Intimem-se as partes. Cumpra-se.",
			want:   LabelOutro,
		},
		{
			name:   "vazio",
			window: "",
			want:   LabelOutro,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ClassifyOutcome(tt.window)
			if got != tt.want {
				t.Errorf("ClassifyOutcome(%q) = %s, want %s", tt.window, got, tt.want)
			}
		})
	}
}

func TestClassifyOutcomeRuleOrder(t *testing.T) {
	// WHAT: phrases for several rules co-occur; the first rule in the
	// table must win, not the strongest or longest match.
	window := "Julgo IMPROCEDENTE o pedido principal e julgo procedente em parte o contraposto."
	got, _ := ClassifyOutcome(window)
	if got != LabelImprocedente {
		t.Errorf("improcedente rule must fire before parcial, got %s", got)
	}

	window = "Julgo procedente em parte o pedido, extinguindo sem resolução do mérito o restante."
	got, _ = ClassifyOutcome(window)
	if got != LabelParcial {
		t.Errorf("parcial rule must fire before extinção, got %s", got)
	}
}

func TestClassifyOutcomeIsPureOnNormalizedText(t *testing.T) {
	// Same text modulo case, diacritics and whitespace spacing must
	// classify identically.
	a, _ := ClassifyOutcome("ante o exposto, julgo improcedente o pedido")
	b, _ := ClassifyOutcome("ANTE  O   EXPOSTO, JULGO IMPROCEDENTE o pedido")
	if a != b {
		t.Errorf("labels diverge on equivalent input: %s vs %s", a, b)
	}
}

func TestClassifyOutcomeExcerpt(t *testing.T) {
	ruling := "Ante o exposto, JULGO IMPROCEDENTE o pedido. " + strings.Repeat("Detalhes. ", 200)
	window := "Preâmbulo irrelevante da decisão. " + ruling

	label, excerpt := ClassifyOutcome(window)
	if label != LabelImprocedente {
		t.Fatalf("label = %s", label)
	}
	if len(excerpt) > maxExcerptLen {
		t.Errorf("excerpt length %d exceeds %d", len(excerpt), maxExcerptLen)
	}
	if !strings.Contains(excerpt, "Ante o exposto") {
		t.Errorf("excerpt should start near the ruling marker: %q", excerpt[:60])
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  Resolução   de MÉRITO\nArt. 485  ")
	want := "resolucao de merito art. 485"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}
