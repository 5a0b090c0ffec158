package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical layout of Transaction.Date when the source date was understood.
const DateFormat = "2006-01-02"

// Transaction is the canonical shape every statement layout converges to.
type Transaction struct {
	Row         int                 // 1-based line in the source sheet
	Date        string              // DateFormat when parsable, raw source text otherwise
	Description string
	Debit       decimal.Decimal     // zero if not a debit
	Credit      decimal.Decimal     // zero if not a credit
	Balance     decimal.NullDecimal // invalid when the layout reports no running balance
}

// Net returns credit minus debit.
func (t Transaction) Net() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// Time parses Date in DateFormat. ok is false when Date kept its raw form.
func (t Transaction) Time() (time.Time, bool) {
	d, err := time.Parse(DateFormat, t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Cell is one named value in a RawRow.
type Cell struct {
	Header  string
	Value   string
	Numeric bool // stored as a number by a workbook; Value is then machine formatted
}

// RawRow is a sheet row keyed by header, in column order. Headers are unique within a row.
type RawRow struct {
	Number int // 1-based line in the source sheet
	Cells  []Cell
}

// Get returns the value stored under header (exact match).
func (r RawRow) Get(header string) (string, bool) {
	for _, c := range r.Cells {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

// Headers returns the row's headers in column order.
func (r RawRow) Headers() []string {
	hs := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		hs[i] = c.Header
	}
	return hs
}

// IsBlank reports whether every cell is empty or whitespace.
func (r RawRow) IsBlank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}

// Layout is the structural convention of a statement export.
type Layout string

const (
	// LayoutRow is one signed amount column plus a movement type column.
	LayoutRow Layout = "row"
	// LayoutColumn is separate debit and credit columns.
	LayoutColumn Layout = "column"
)

// ParseLayout accepts "row"/"column" and the Portuguese "linha"/"coluna".
func ParseLayout(s string) (Layout, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "row", "linha", "row-wise":
		return LayoutRow, true
	case "column", "coluna", "column-wise":
		return LayoutColumn, true
	}
	return "", false
}

// Selector picks the parser for an institution's export layout.
type Selector struct {
	Institution string
	Layout      Layout
}

// NewSelector normalizes institution case and layout spelling.
// Unknown layout names are kept verbatim so lookups fail as unsupported.
func NewSelector(institution, layout string) Selector {
	l, ok := ParseLayout(layout)
	if !ok {
		l = Layout(strings.ToLower(strings.TrimSpace(layout)))
	}
	return Selector{
		Institution: strings.ToLower(strings.TrimSpace(institution)),
		Layout:      l,
	}
}

func (s Selector) String() string {
	return s.Institution + "/" + string(s.Layout)
}
