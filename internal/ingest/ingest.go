// Package ingest reads statement and ledger exports into canonical transactions.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/conciliar/reconcile/internal/importer"
	"github.com/conciliar/reconcile/internal/model"
)

// ErrIngest matches IngestError via errors.Is.
var ErrIngest = errors.New("ingest failed")

// IngestError is a file-level failure: the file could not be read or has no sheets.
type IngestError struct {
	File     string
	Selector model.Selector
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingesting %s as %s: %v", e.File, e.Selector, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIngest) hold.
func (e *IngestError) Is(target error) bool { return target == ErrIngest }

// Result is the outcome of one ingest call.
type Result struct {
	File         string
	Selector     model.Selector
	Transactions []model.Transaction
	Issues       []importer.RowIssue
}

// Skipped returns the number of rows that produced no transaction.
func (r *Result) Skipped() int {
	n := 0
	for _, i := range r.Issues {
		if i.Skipped {
			n++
		}
	}
	return n
}

// Ingestor selects a layout parser and feeds it the first sheet of a file.
type Ingestor struct {
	registry *importer.Registry
	log      zerolog.Logger
}

// New creates an Ingestor over registry.
func New(registry *importer.Registry, log zerolog.Logger) *Ingestor {
	return &Ingestor{registry: registry, log: log}
}

// Ingest reads path with the parser registered for sel.
func (in *Ingestor) Ingest(path string, sel model.Selector) (*Result, error) {
	parser, err := in.registry.Lookup(sel)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &IngestError{File: path, Selector: parser.Selector(), Err: err}
	}
	defer f.Close()

	return in.ingest(path, f, parser)
}

// IngestReader is Ingest for content that is not on disk. name supplies the file
// type through its extension.
func (in *Ingestor) IngestReader(name string, r io.ReadSeeker, sel model.Selector) (*Result, error) {
	parser, err := in.registry.Lookup(sel)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", name, err)
	}
	return in.ingest(name, r, parser)
}

func (in *Ingestor) ingest(name string, r io.ReadSeeker, parser importer.Parser) (*Result, error) {
	sel := parser.Selector()
	ws, err := readFirstSheet(name, r)
	if err != nil {
		return nil, &IngestError{File: name, Selector: sel, Err: err}
	}

	txns, issues := parser.Parse(buildRows(ws, parser.HeaderRow()))
	res := &Result{File: name, Selector: sel, Transactions: txns, Issues: issues}

	log := in.log.With().Str("file", filepath.Base(name)).Str("layout", sel.String()).Logger()
	for _, issue := range issues {
		log.Warn().Int("row", issue.Row).Bool("skipped", issue.Skipped).Msg(issue.Reason)
	}
	log.Info().
		Int("transactions", len(txns)).
		Int("skipped", res.Skipped()).
		Int("issues", len(issues)).
		Msg("statement ingested")
	return res, nil
}
