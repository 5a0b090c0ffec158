// Package report renders reconciliation results for display and export.
package report

import "strings"

// DefaultExclude lists the header substrings dropped from every rendering: pandas-style
// placeholder columns and derived "normalized" helper columns.
var DefaultExclude = []string{"unnamed", "normalizado"}

// ColumnFilter decides which columns appear in display pages and exports. Every
// renderer uses the same filter so the formats never disagree on columns.
type ColumnFilter struct {
	exclude []string
}

// NewColumnFilter excludes headers containing any of the given substrings,
// case-insensitively. Blank substrings are ignored.
func NewColumnFilter(exclude []string) ColumnFilter {
	var f ColumnFilter
	for _, s := range exclude {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			f.exclude = append(f.exclude, s)
		}
	}
	return f
}

// DefaultFilter excludes DefaultExclude.
func DefaultFilter() ColumnFilter {
	return NewColumnFilter(DefaultExclude)
}

// Keep reports whether header survives the filter.
func (f ColumnFilter) Keep(header string) bool {
	h := strings.ToLower(header)
	for _, s := range f.exclude {
		if strings.Contains(h, s) {
			return false
		}
	}
	return true
}

// Extras returns a copy of extra without the filtered columns.
func (f ColumnFilter) Extras(extra map[string]string) map[string]string {
	if extra == nil {
		return nil
	}
	out := make(map[string]string, len(extra))
	for k, v := range extra {
		if f.Keep(k) {
			out[k] = v
		}
	}
	return out
}

// Exclusions returns the normalized substrings the filter drops.
func (f ColumnFilter) Exclusions() []string {
	return append([]string(nil), f.exclude...)
}
