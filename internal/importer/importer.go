package importer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/conciliar/reconcile/internal/model"
)

// ErrUnsupportedLayout matches UnsupportedLayoutError via errors.Is.
var ErrUnsupportedLayout = errors.New("unsupported layout")

// UnsupportedLayoutError reports a selector with no registered parser.
type UnsupportedLayoutError struct {
	Selector model.Selector
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("unsupported layout %s", e.Selector)
}

// Is makes errors.Is(err, ErrUnsupportedLayout) hold.
func (e *UnsupportedLayoutError) Is(target error) bool {
	return target == ErrUnsupportedLayout
}

// RowIssue is a non-fatal anomaly found while parsing one row.
type RowIssue struct {
	Row     int
	Reason  string
	Skipped bool // the row produced no transaction
}

func (i RowIssue) String() string {
	if i.Skipped {
		return fmt.Sprintf("row %d skipped: %s", i.Row, i.Reason)
	}
	return fmt.Sprintf("row %d: %s", i.Row, i.Reason)
}

// Parser converts raw sheet rows of one institution layout into Transactions.
// Parse performs no I/O and never fails as a whole; per-row anomalies are returned as issues.
type Parser interface {
	Selector() model.Selector
	// HeaderRow is the 1-based sheet row holding the column headers.
	HeaderRow() int
	Parse(rows []model.RawRow) ([]model.Transaction, []RowIssue)
}

// Registry maps selectors to parsers.
type Registry struct {
	parsers map[model.Selector]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[model.Selector]Parser)}
}

// Register adds a parser. Panics on duplicate selector.
func (r *Registry) Register(p Parser) {
	key := p.Selector()
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser selector: " + key.String())
	}
	r.parsers[key] = p
}

// Lookup returns the parser for sel, or an *UnsupportedLayoutError.
func (r *Registry) Lookup(sel model.Selector) (Parser, error) {
	sel = model.NewSelector(sel.Institution, string(sel.Layout))
	p, ok := r.parsers[sel]
	if !ok {
		return nil, &UnsupportedLayoutError{Selector: sel}
	}
	return p, nil
}

// Selectors returns the registered selectors sorted by institution then layout.
func (r *Registry) Selectors() []model.Selector {
	out := make([]model.Selector, 0, len(r.parsers))
	for s := range r.parsers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Institution != out[j].Institution {
			return out[i].Institution < out[j].Institution
		}
		return out[i].Layout < out[j].Layout
	})
	return out
}

// RegistryFromSpecs builds a parser for every spec. Duplicate selectors are an error.
func RegistryFromSpecs(specs []Spec) (*Registry, error) {
	r := NewRegistry()
	for _, s := range specs {
		p, err := NewParser(s)
		if err != nil {
			return nil, err
		}
		if _, dup := r.parsers[p.Selector()]; dup {
			return nil, fmt.Errorf("duplicate layout %s", p.Selector())
		}
		r.Register(p)
	}
	return r, nil
}

// DefaultRegistry returns a registry with all built-in layouts.
func DefaultRegistry() *Registry {
	r, err := RegistryFromSpecs(BuiltinSpecs())
	if err != nil {
		panic("invalid built-in layout: " + err.Error())
	}
	return r
}
