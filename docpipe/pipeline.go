// Package docpipe turns one captured document into one decision record:
// text extraction, dispositivo location, outcome classification, and
// header metadata, assembled in a single pass.
package docpipe

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rfcoelho/cjpgscan/analysis"
)

// Config configures a Pipeline.
type Config struct {
	// HasTextThreshold is the minimum extracted-text length for a document
	// to count as having a usable text layer. Default: 500.
	HasTextThreshold int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.HasTextThreshold <= 0 {
		c.HasTextThreshold = 500
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline produces DecisionRecords from captured document sources.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// Process turns one document source into a Record. When the source holds
// raw PDF bytes the text layer is extracted first; when it holds page text
// the extractor is skipped entirely. A document with no legible text is
// still recorded (HasText=false, OUTRO): the absence of a text layer is
// itself a fact worth keeping. Only a cancelled context or a corrupt PDF
// returns an error.
func (p *Pipeline) Process(ctx context.Context, src Source, processNumber, judgeName string) (*Record, error) {
	// Extraction is CPU-bound and uninterruptible once started; honour
	// cancellation before committing to it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := src.Text
	if src.Bytes != nil {
		extracted, err := ExtractPDFText(src.Bytes)
		if err != nil {
			return nil, err
		}
		text = extracted
	}
	text = strings.TrimSpace(text)

	window := analysis.DispositivoWindow(text)
	label, excerpt := analysis.ClassifyOutcome(window)
	md := analysis.ExtractMetadata(text)

	rec := &Record{
		ProcessNumber:  processNumber,
		JudgeName:      judgeName,
		OutcomeLabel:   label,
		OutcomeExcerpt: excerpt,
		SourceURL:      src.URL,
		PDFPath:        src.Path,
		TextLen:        len(text),
		HasText:        len(text) > p.cfg.HasTextThreshold,
		Classe:         md.Classe,
		Assunto:        md.Assunto,
		CourtUnit:      md.CourtUnit,
		DecisionDate:   md.DecisionDate,
		Requerente:     md.Requerente,
		Requerido:      md.Requerido,
	}

	p.logger.Debug("document processed",
		"process", processNumber, "label", label,
		"text_len", rec.TextLen, "has_text", rec.HasText)

	return rec, nil
}
