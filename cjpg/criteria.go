package cjpg

import (
	"fmt"
	"time"
)

// Criteria is the immutable input to one session run.
type Criteria struct {
	DateFrom     string // DD/MM/YYYY
	DateTo       string // DD/MM/YYYY
	Judge        string
	MaxDocuments int
}

// Validate rejects empty required fields, malformed dates, and a
// non-positive document cap. It runs before the browser is launched.
func (c Criteria) Validate() error {
	if c.DateFrom == "" {
		return fmt.Errorf("%w: dateFrom is required", ErrInvalidCriteria)
	}
	if c.DateTo == "" {
		return fmt.Errorf("%w: dateTo is required", ErrInvalidCriteria)
	}
	if c.Judge == "" {
		return fmt.Errorf("%w: judge is required", ErrInvalidCriteria)
	}
	if c.MaxDocuments < 1 {
		return fmt.Errorf("%w: maxDocuments must be at least 1", ErrInvalidCriteria)
	}
	for _, d := range []string{c.DateFrom, c.DateTo} {
		if _, err := time.Parse("02/01/2006", d); err != nil {
			return fmt.Errorf("%w: %q is not a DD/MM/YYYY date", ErrInvalidCriteria, d)
		}
	}
	return nil
}

// DecisionSummary is the per-document slice of the run result returned to
// the caller; the full record goes to the persistence sink.
type DecisionSummary struct {
	ProcessNumber  string `json:"processNumber"`
	JudgeName      string `json:"judgeName"`
	OutcomeLabel   string `json:"outcomeLabel"`
	OutcomeExcerpt string `json:"outcomeExcerpt"`
}

// Result aggregates one session run.
type Result struct {
	Downloaded int               `json:"downloaded"`
	Processed  int               `json:"processed"`
	Decisions  []DecisionSummary `json:"decisions"`
}
