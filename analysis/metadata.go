package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// Metadata holds the header facts extracted from a decision. Every field
// is independently optional; absence is the empty string.
type Metadata struct {
	Classe       string
	Assunto      string
	CourtUnit    string
	DecisionDate string // normalized DD/MM/YYYY
	Requerente   string
	Requerido    string
}

// headerLen is how much of the document counts as the header. The cover
// block with class, subject, parties and court unit sits in the first
// page or two.
const headerLen = 2500

var ptMonths = map[string]string{
	"janeiro": "01", "fevereiro": "02", "março": "03", "marco": "03",
	"abril": "04", "maio": "05", "junho": "06", "julho": "07",
	"agosto": "08", "setembro": "09", "outubro": "10", "novembro": "11",
	"dezembro": "12",
}

const monthAlt = `janeiro|fevereiro|março|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro`

var (
	// "Classe - Assunto: Procedimento Comum Cível - Cobrança". The value runs
	// until the first party label or the end of the header.
	reClasseAssunto = regexp.MustCompile(
		`(?i)classe\s*[-–]\s*assunto\s*:?\s*(.+?)\s*(?:requerente:|autor(?:a)?:|exequente:|executado:|requerido:|$)`)

	// Court unit lines look like "3ª VARA CÍVEL" or "5ª VARA DAS EXECUÇÕES
	// CRIMINAIS", often followed on the same line by an address or schedule.
	reCourtUnit = regexp.MustCompile(
		`(?i)(\dª?\s*vara\s+[a-zà-ú\s]+?)\s*(?:rua|avenida|hor[áa]rio|processo|$)`)

	reDateSentenca = regexp.MustCompile(
		`(?i)data\s+(?:da\s+)?senten[çc]a\s*:?\s*(\d{2}/\d{2}/\d{4})`)
	reDateJulgamento = regexp.MustCompile(
		`(?i)data\s+(?:do\s+)?julgamento\s*:?\s*(\d{2}/\d{2}/\d{4})`)

	// Trailing "São Paulo, 12 de março de 2024." clause, anchored to a line
	// ending. Runs over text with original newlines preserved.
	reDateLongForm = regexp.MustCompile(
		`(?i)[a-zà-ú\s]+,\s*(\d{1,2}\s+de\s+(?:` + monthAlt + `)\s+de\s+\d{4})\.?\s*(?:\n|$)`)
	reLongFormParts = regexp.MustCompile(
		`(?i)(\d{1,2})\s+de\s+(` + monthAlt + `)\s+de\s+(\d{4})`)

	reDateBeforeSentenca = regexp.MustCompile(
		`(?i)(\d{2}/\d{2}/\d{4})\s*(?:[-–]\s*)?senten[çc]a`)

	// Requerente/Autor and Requerido/Executado values run until the next
	// labeled field. "Juiz" has no colon in the e-SAJ cover block.
	reRequerente = regexp.MustCompile(
		`(?i)requerente\s*:?\s*(.+?)\s*(?:requerido:|executado:|juiz|$)`)
	reAutor = regexp.MustCompile(
		`(?i)autor(?:a)?\s*:?\s*(.+?)\s*(?:requerido:|executado:|juiz|$)`)
	reRequerido = regexp.MustCompile(
		`(?i)requerido\s*:?\s*(.+?)\s*(?:juiz|$)`)
	reExecutado = regexp.MustCompile(
		`(?i)executado\s*:?\s*(.+?)\s*(?:juiz|$)`)
)

// firstGroup returns the first capture group of the first pattern that
// matches, trimmed, or "".
func firstGroup(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractMetadata derives the header facts from full document text.
// Header fields match against a whitespace-folded slice of the first
// ~2500 characters; the long-form date clause needs original newlines,
// since it anchors on line endings near the signature block.
func ExtractMetadata(text string) Metadata {
	header := foldSpace(text[:clampEnd(text, headerLen)])
	full := strings.ReplaceAll(text, "\r\n", "\n")

	var md Metadata

	if v := firstGroup(header, reClasseAssunto); v != "" {
		classe, assunto, found := strings.Cut(v, " - ")
		if found {
			md.Classe = strings.TrimSpace(classe)
			md.Assunto = strings.TrimSpace(assunto)
		} else {
			md.Assunto = v
		}
	}

	md.CourtUnit = firstGroup(header, reCourtUnit)
	md.DecisionDate = extractDecisionDate(full)
	md.Requerente = firstGroup(header, reRequerente, reAutor)
	md.Requerido = firstGroup(header, reRequerido, reExecutado)

	return md
}

// extractDecisionDate tries three strategies in order: an explicit labeled
// date, the long-form closing clause, then a date adjoining "SENTENÇA".
func extractDecisionDate(full string) string {
	folded := foldSpace(full)
	if d := firstGroup(folded, reDateSentenca, reDateJulgamento); d != "" {
		return d
	}
	if m := reDateLongForm.FindStringSubmatch(full); m != nil {
		if d := parseLongFormDate(m[1]); d != "" {
			return d
		}
	}
	return firstGroup(folded, reDateBeforeSentenca)
}

// parseLongFormDate converts "12 de março de 2024" to "12/03/2024".
func parseLongFormDate(s string) string {
	m := reLongFormParts.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	day := m[1]
	if len(day) == 1 {
		day = "0" + day
	}
	month := ptMonths[strings.ToLower(m[2])]
	if month == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", day, month, m[3])
}
