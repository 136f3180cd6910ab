// Package cjpg drives the TJSP e-SAJ CJPG search flow through a real
// browser: fill the query form, detect results, and for each result item
// race the document's network response against a timeout, falling back to
// the rendered page text. Items are handled strictly sequentially: the
// portal's navigation state is shared, so only one interaction at a time
// is safe within one browsing session.
package cjpg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/rfcoelho/cjpgscan/docpipe"
)

// e-SAJ selectors. The portal's markup is not guaranteed stable, which is
// why result detection goes through resultSelectors below.
const (
	selDateFrom    = `#iddadosConsulta\.dtInicio`
	selDateTo      = `#iddadosConsulta\.dtFim`
	selJudge       = `#nmAgente`
	selSubmit      = `#pbSubmit`
	selInteiroTeor = `a[title="Visualizar Inteiro Teor"]`
)

// resultSelectors are probed in order after submission, each with a short
// timeout, before concluding that the query returned nothing.
var resultSelectors = []string{
	"#divDadosResultado",
	selInteiroTeor,
	"table.listaResultado",
	`[id*="Resultado"]`,
}

// noRecordsPattern matches the portal's empty-result notice.
const noRecordsPattern = `(?i)não foi encontrado|não foram encontrados|nenhum resultado`

// Config configures a Session.
type Config struct {
	// QueryURL is the CJPG search form address. Required.
	QueryURL string

	// Headless controls Chrome's headless mode.
	Headless bool

	// SlowMotion inserts a delay between browser actions.
	SlowMotion time.Duration

	// SettleDelay is the pause after blurring the judge field. Default: 2s.
	SettleDelay time.Duration

	// SubmitTimeout bounds the wait for the query response. Default: 45s.
	SubmitTimeout time.Duration

	// SelectorTimeout bounds each individual selector probe. Default: 5s.
	SelectorTimeout time.Duration

	// CaptureTimeout bounds the per-item network race. Default: 25s.
	CaptureTimeout time.Duration

	// MinFallbackText is the minimum rendered-text length for the fallback
	// path to record a document. Default: 100.
	MinFallbackText int

	// RawDir receives captured PDFs, fallback texts, and diagnostic
	// screenshots. Default: "runs/raw".
	RawDir string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 45 * time.Second
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = 5 * time.Second
	}
	if c.CaptureTimeout <= 0 {
		c.CaptureTimeout = 25 * time.Second
	}
	if c.MinFallbackText <= 0 {
		c.MinFallbackText = 100
	}
	if c.RawDir == "" {
		c.RawDir = filepath.Join("runs", "raw")
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Sink receives one record per processed document.
type Sink interface {
	Upsert(ctx context.Context, rec *docpipe.Record) error
}

// Session runs one search→capture→classify flow. It owns the browser and
// the sink exclusively for the duration of a run; it is not safe for
// concurrent use.
type Session struct {
	cfg    Config
	pipe   *docpipe.Pipeline
	sink   Sink
	logger *slog.Logger
}

// NewSession creates a Session.
func NewSession(cfg Config, pipe *docpipe.Pipeline, sink Sink) *Session {
	cfg.defaults()
	return &Session{cfg: cfg, pipe: pipe, sink: sink, logger: cfg.Logger}
}

// Run executes one session: validate criteria, drive the search form,
// process up to crit.MaxDocuments result items, and return aggregate
// counts. A query matching zero cases is a successful empty result, not
// an error; only validation problems and unrecoverable automation
// failures propagate.
func (s *Session) Run(ctx context.Context, crit Criteria) (*Result, error) {
	if err := crit.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.QueryURL == "" {
		return nil, fmt.Errorf("%w: query URL is not configured", ErrSubmit)
	}

	browser, cleanup, err := s.launch(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("cjpg: create page: %w", err)
	}
	page = page.Context(ctx)

	if err := page.Timeout(s.cfg.SubmitTimeout).Navigate(s.cfg.QueryURL); err != nil {
		return nil, fmt.Errorf("cjpg: navigate %s: %w", s.cfg.QueryURL, err)
	}
	if err := page.Timeout(s.cfg.SubmitTimeout).WaitLoad(); err != nil {
		s.logger.Warn("search page load timeout", "error", err)
	}

	if err := s.fillForm(ctx, page, crit); err != nil {
		s.snapshot(page, "form_failure.png")
		return nil, err
	}
	if err := s.submit(page); err != nil {
		s.snapshot(page, "submit_failure.png")
		return nil, err
	}

	items := s.probeResults(page)
	if len(items) == 0 {
		s.snapshot(page, "no_results.png")
		s.logger.Info("no results for query", "judge", crit.Judge,
			"from", crit.DateFrom, "to", crit.DateTo)
		return &Result{Decisions: []DecisionSummary{}}, nil
	}

	total := min(len(items), crit.MaxDocuments)
	s.logger.Info("results detected", "found", len(items), "processing", total)

	res := &Result{Decisions: []DecisionSummary{}}
	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		s.processItem(ctx, page, i, crit, res)
	}

	s.logger.Info("session closed",
		"downloaded", res.Downloaded, "processed", res.Processed)
	return res, nil
}

// launch starts Chrome and connects. The cleanup function releases both
// the browser connection and the launched process.
func (s *Session) launch(ctx context.Context) (*rod.Browser, func(), error) {
	l := launcher.New().
		Headless(s.cfg.Headless).
		Set("disable-blink-features", "AutomationControlled")

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("cjpg: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if s.cfg.SlowMotion > 0 {
		browser = browser.SlowMotion(s.cfg.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("cjpg: connect browser: %w", err)
	}

	cleanup := func() {
		browser.Close()
		l.Cleanup()
	}
	return browser, cleanup, nil
}

// fillForm writes the criteria into the query form. The Tab after the
// judge field blurs it so the portal's own validation and autocomplete
// run; the settle delay gives them time to finish before submission.
func (s *Session) fillForm(ctx context.Context, page *rod.Page, crit Criteria) error {
	fields := []struct {
		sel, value string
	}{
		{selDateFrom, crit.DateFrom},
		{selDateTo, crit.DateTo},
		{selJudge, crit.Judge},
	}
	for _, f := range fields {
		el, err := page.Timeout(s.cfg.SelectorTimeout).Element(f.sel)
		if err != nil {
			return fmt.Errorf("%w: field %s not found: %v", ErrSubmit, f.sel, err)
		}
		if err := el.SelectAllText(); err != nil {
			return fmt.Errorf("%w: clear %s: %v", ErrSubmit, f.sel, err)
		}
		if err := el.Input(f.value); err != nil {
			return fmt.Errorf("%w: fill %s: %v", ErrSubmit, f.sel, err)
		}
	}

	judge, err := page.Timeout(s.cfg.SelectorTimeout).Element(selJudge)
	if err != nil {
		return fmt.Errorf("%w: judge field: %v", ErrSubmit, err)
	}
	if err := judge.Type(input.Tab); err != nil {
		return fmt.Errorf("%w: blur judge field: %v", ErrSubmit, err)
	}

	select {
	case <-time.After(s.cfg.SettleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// submit activates the query and waits, bounded, for either the result
// links or the no-records notice. The wait outcome is not inspected here:
// probeResults decides whether results exist either way, so a slow page
// only costs the bounded wait.
func (s *Session) submit(page *rod.Page) error {
	btn, err := page.Timeout(s.cfg.SelectorTimeout).Element(selSubmit)
	if err != nil {
		btn, err = page.Timeout(s.cfg.SelectorTimeout).
			ElementR(`input[type="submit"], button`, `(?i)consultar`)
	}
	if err != nil {
		return fmt.Errorf("%w: submit control not found: %v", ErrSubmit, err)
	}
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: click submit: %v", ErrSubmit, err)
	}

	_, err = page.Timeout(s.cfg.SubmitTimeout).Race().
		Element(selInteiroTeor).
		ElementR("body", noRecordsPattern).
		Do()
	if err != nil {
		s.logger.Warn("no result signal before timeout", "error", err)
	}
	return nil
}

// probeResults tries each fallback selector in order with a short timeout
// and returns the result links when any strategy finds them. An empty
// return means the query matched nothing, a valid business outcome.
func (s *Session) probeResults(page *rod.Page) rod.Elements {
	for _, sel := range resultSelectors {
		if _, err := page.Timeout(s.cfg.SelectorTimeout).Element(sel); err != nil {
			continue
		}
		items, err := page.Elements(selInteiroTeor)
		if err == nil && len(items) > 0 {
			return items
		}
	}
	return nil
}

// processItem handles one result row end to end: open, race the document
// capture, run the pipeline on whichever content was obtained, persist,
// and always close the document's page. Failures are item-local; the
// session moves on.
func (s *Session) processItem(ctx context.Context, page *rod.Page, idx int, crit Criteria, res *Result) {
	log := s.logger.With("item", idx+1)

	// Re-query: the handle list can go stale after the previous item's
	// tab activity.
	items, err := page.Elements(selInteiroTeor)
	if err != nil || idx >= len(items) {
		log.Warn("result link no longer present")
		return
	}

	wait := page.WaitOpen()
	if err := items[idx].Click(proto.InputMouseButtonLeft, 1); err != nil {
		log.Warn("open result failed", "error", err)
		return
	}
	doc, err := wait()
	if err != nil {
		log.Warn("document page did not open", "error", err)
		return
	}
	defer doc.Close()
	doc = doc.Context(ctx)

	// Subscribe to network responses before waiting for load: the portal
	// often serves the document during the page's initial load, and a
	// listener attached afterwards would miss it and always fall back.
	capture := s.startCapture(ctx, doc)
	defer capture.stop()

	if err := doc.Timeout(s.cfg.SelectorTimeout).WaitLoad(); err != nil {
		log.Debug("document page load timeout", "error", err)
	}

	rec := s.captureAndProcess(ctx, doc, capture, idx, crit, res, log)
	if rec == nil {
		return
	}
	s.record(ctx, rec, res, log)
}

// record persists one decision and, only on success, adds it to the run's
// aggregate counts: processed and decisions reflect what the store holds.
func (s *Session) record(ctx context.Context, rec *docpipe.Record, res *Result, log *slog.Logger) {
	if err := s.sink.Upsert(ctx, rec); err != nil {
		log.Warn("persist decision failed", "process", rec.ProcessNumber, "error", err)
		return
	}
	res.Processed++
	res.Decisions = append(res.Decisions, DecisionSummary{
		ProcessNumber:  rec.ProcessNumber,
		JudgeName:      rec.JudgeName,
		OutcomeLabel:   string(rec.OutcomeLabel),
		OutcomeExcerpt: rec.OutcomeExcerpt,
	})
	log.Info("decision recorded", "process", rec.ProcessNumber, "label", rec.OutcomeLabel)
}

// captureAndProcess runs the capture race and the document pipeline,
// returning nil when the item yielded nothing worth recording.
func (s *Session) captureAndProcess(ctx context.Context, doc *rod.Page, capture *captureRace, idx int, crit Criteria, res *Result, log *slog.Logger) *docpipe.Record {
	if pdfURL := capture.wait(ctx, s.cfg.CaptureTimeout); pdfURL != "" {
		log.Debug("document response captured", "url", truncate(pdfURL, 120))
		data, err := s.fetchDocument(ctx, doc, pdfURL)
		if err != nil {
			log.Warn("document fetch failed, falling back to page text", "error", err)
		} else {
			processNumber, token := processToken(pdfURL, idx)
			path := s.writeArtifact(token+".pdf", data, log)
			rec, err := s.pipe.Process(ctx, docpipe.Source{
				URL: pdfURL, Path: path, Bytes: data,
			}, processNumber, crit.Judge)
			if err != nil {
				log.Warn("pipeline failed", "process", processNumber, "error", err)
				return nil
			}
			res.Downloaded++
			return rec
		}
	}

	// No binary response before the deadline: the rendered page text is
	// the document, if there is enough of it.
	text := s.pageText(doc)
	if len(text) < s.cfg.MinFallbackText {
		log.Warn("no document captured", "text_len", len(text))
		return nil
	}
	token := fmt.Sprintf("documento_%d", idx+1)
	path := s.writeArtifact(token+".txt", []byte(text), log)
	rec, err := s.pipe.Process(ctx, docpipe.Source{Path: path, Text: text}, token, crit.Judge)
	if err != nil {
		log.Warn("pipeline failed on page text", "error", err)
		return nil
	}
	return rec
}

// pageText reads the document page's visible text: the rendered body,
// or the parsed HTML when that yields more (frames and viewers sometimes
// render a near-empty body).
func (s *Session) pageText(doc *rod.Page) string {
	var text string
	if el, err := doc.Timeout(s.cfg.SelectorTimeout).Element("body"); err == nil {
		if t, err := el.Text(); err == nil {
			text = t
		}
	}
	if src, err := doc.HTML(); err == nil {
		if t := docpipe.CollectHTMLText([]byte(src)); len(t) > len(text) {
			text = t
		}
	}
	return strings.TrimSpace(text)
}

// writeArtifact stores a captured document under the raw directory and
// returns its path, or "" when the write failed. The record is still
// produced; losing the artifact copy is not losing the document.
func (s *Session) writeArtifact(name string, data []byte, log *slog.Logger) string {
	if err := os.MkdirAll(s.cfg.RawDir, 0o755); err != nil {
		log.Warn("create raw dir", "error", err)
		return ""
	}
	path := filepath.Join(s.cfg.RawDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn("write artifact", "path", path, "error", err)
		return ""
	}
	return path
}

// snapshot captures a diagnostic screenshot into the raw directory.
func (s *Session) snapshot(page *rod.Page, name string) {
	data, err := page.Screenshot(false, nil)
	if err != nil {
		s.logger.Debug("screenshot failed", "error", err)
		return
	}
	if err := os.MkdirAll(s.cfg.RawDir, 0o755); err != nil {
		return
	}
	path := filepath.Join(s.cfg.RawDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Debug("write screenshot", "path", path, "error", err)
		return
	}
	s.logger.Info("diagnostic screenshot saved", "path", path)
}
