package analysis

import "strings"

// Label is the closed classification of a decision's result.
type Label string

const (
	LabelProcedente   Label = "PROCEDENTE"
	LabelImprocedente Label = "IMPROCEDENTE"
	LabelParcial      Label = "PARCIAL"
	LabelExtincao     Label = "EXTINCAO_SEM_MERITO"
	LabelHomologacao  Label = "HOMOLOGACAO"
	LabelOutro        Label = "OUTRO"
)

const (
	maxExcerptLen  = 800
	defaultSlice   = 2000
	markerSliceLen = 2500
)

// outcomeRule pairs a predicate over normalized text with the label it
// assigns. Rules are evaluated strictly in order; the first match wins.
// Order matters: a partial grant contains "julgo procedente" too, and
// IMPROCEDENTE must be tested before any PROCEDENTE variant because the
// latter is a substring of the former.
type outcomeRule struct {
	match func(t string) bool
	label Label
}

func containsAny(t string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

var outcomeRules = []outcomeRule{
	{
		label: LabelImprocedente,
		match: func(t string) bool {
			return containsAny(t, "julgo improcedente", "improcedente o pedido")
		},
	},
	{
		label: LabelParcial,
		match: func(t string) bool {
			return strings.Contains(t, "julgo procedente") &&
				containsAny(t, "em parte", "parcialmente")
		},
	},
	{
		label: LabelProcedente,
		match: func(t string) bool {
			return containsAny(t, "julgo procedente", "procedente o pedido")
		},
	},
	{
		label: LabelExtincao,
		match: func(t string) bool {
			return containsAny(t,
				"extingo o processo sem resolucao de merito",
				"sem resolucao do merito",
				"art. 485")
		},
	},
	{
		label: LabelHomologacao,
		match: func(t string) bool {
			return strings.Contains(t, "homologo") &&
				containsAny(t, "acordo", "desistencia", "transacao")
		},
	},
}

// ClassifyOutcome assigns one outcome label to a dispositivo window and
// returns the supporting excerpt (≤800 chars of the original text, taken
// from the first ruling marker when one is present). Classification is a
// pure function of the normalized text; unmatched text yields OUTRO.
func ClassifyOutcome(window string) (Label, string) {
	t := Normalize(window)

	// Refine the excerpt start: the marker index in the normalized text is
	// only an approximation of its position in the raw window, but the two
	// track closely enough for a supporting quote.
	excerpt := window[:clampEnd(window, defaultSlice)]
	for _, marker := range rulingMarkers {
		idx := strings.Index(t, marker)
		if idx < 0 {
			continue
		}
		start := clampStart(window, min(idx, len(window)))
		end := clampEnd(window, start+markerSliceLen)
		excerpt = window[start:end]
		break
	}
	excerpt = excerpt[:clampEnd(excerpt, maxExcerptLen)]

	for _, rule := range outcomeRules {
		if rule.match(t) {
			return rule.label, excerpt
		}
	}
	return LabelOutro, excerpt
}
