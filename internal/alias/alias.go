// Package alias resolves logical statement fields to whichever header spelling
// a given export uses.
package alias

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/conciliar/reconcile/internal/model"
)

// Field is a logical column of the canonical transaction schema.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
	FieldBalance     Field = "balance"
	FieldAmount      Field = "amount"
	FieldType        Field = "type"
)

// Fields lists every known field in a stable order.
func Fields() []Field {
	return []Field{FieldDate, FieldDescription, FieldDebit, FieldCredit, FieldBalance, FieldAmount, FieldType}
}

// Table maps a field to its accepted header spellings, most preferred first.
type Table map[Field][]string

// Resolver looks fields up in raw rows using a Table.
type Resolver struct {
	folded map[Field][]string
	table  Table
}

// NewResolver folds the aliases of t once so lookups compare folded headers.
func NewResolver(t Table) *Resolver {
	r := &Resolver{folded: make(map[Field][]string, len(t)), table: t}
	for f, names := range t {
		for _, n := range names {
			if k := Fold(n); k != "" {
				r.folded[f] = append(r.folded[f], k)
			}
		}
	}
	return r
}

// Aliases returns the configured spellings for f.
func (r *Resolver) Aliases(f Field) []string {
	return r.table[f]
}

// Has reports whether any alias is configured for f.
func (r *Resolver) Has(f Field) bool {
	return len(r.folded[f]) > 0
}

// Resolve returns the value of the first alias of f that is present in row with a
// non-blank value. ok is false when none is; callers decide whether that is fatal.
// Header comparison ignores case, accents and surrounding or repeated whitespace.
func (r *Resolver) Resolve(row model.RawRow, f Field) (value string, ok bool) {
	c, ok := r.ResolveCell(row, f)
	return c.Value, ok
}

// ResolveCell is Resolve returning the whole cell, with its value trimmed.
func (r *Resolver) ResolveCell(row model.RawRow, f Field) (model.Cell, bool) {
	aliases := r.folded[f]
	if len(aliases) == 0 || len(row.Cells) == 0 {
		return model.Cell{}, false
	}
	headers := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		headers[i] = Fold(c.Header)
	}
	for _, a := range aliases {
		for i, h := range headers {
			if h != a {
				continue
			}
			c := row.Cells[i]
			if c.Value = strings.TrimSpace(c.Value); c.Value != "" {
				return c, true
			}
		}
	}
	return model.Cell{}, false
}

// Fold lowercases s, strips diacritics and collapses whitespace, so "DÉBITO " and
// "debito" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
