package docpipe

import "github.com/rfcoelho/cjpgscan/analysis"

// Source is what the session captured for one result item. Exactly one of
// Bytes or Text is populated: Bytes when the document's PDF response was
// caught on the wire, Text when the rendered page was read as a fallback.
type Source struct {
	URL   string // direct document URL, "" when capture fell back
	Path  string // local path of the stored artifact, "" if none
	Bytes []byte
	Text  string
}

// Record is the unit handed to the persistence sink, one per document.
type Record struct {
	ProcessNumber  string
	JudgeName      string
	OutcomeLabel   analysis.Label
	OutcomeExcerpt string
	SourceURL      string
	PDFPath        string
	TextLen        int
	HasText        bool

	Classe       string
	Assunto      string
	CourtUnit    string
	DecisionDate string
	Requerente   string
	Requerido    string
}
