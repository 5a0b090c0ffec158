package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/conciliar/reconcile/internal/model"
)

// Table is one bucket flattened into filtered columns. Every export format renders
// Tables, which keeps their columns and ordering identical.
type Table struct {
	Bucket  model.Bucket
	Headers []string
	Rows    [][]string
}

var recordColumns = []string{"ID", "Date", "Description", "Debit", "Credit", "Balance"}

// BuildTable flattens bucket b of r. Paired buckets get one statement and one ledger
// column group plus Status; solo buckets get the record columns plus Net. Extra
// columns follow in sorted order.
func BuildTable(r *model.Result, b model.Bucket, f ColumnFilter) Table {
	var (
		headers []string
		rows    [][]string
	)
	if b.IsPaired() {
		pairs := r.Pairs(b)
		stmtExtra := extraKeys(pairs, func(m model.Match) model.Record { return m.Statement })
		ledgerExtra := extraKeys(pairs, func(m model.Match) model.Record { return m.Ledger })

		headers = append(headers, prefixed("Statement", recordColumns)...)
		headers = append(headers, prefixed("Ledger", recordColumns)...)
		headers = append(headers, "Status")
		headers = append(headers, prefixed("Statement", stmtExtra)...)
		headers = append(headers, prefixed("Ledger", ledgerExtra)...)

		for _, m := range pairs {
			row := recordCells(m.Statement)
			row = append(row, recordCells(m.Ledger)...)
			row = append(row, m.Status)
			row = append(row, extraCells(m.Statement, stmtExtra)...)
			row = append(row, extraCells(m.Ledger, ledgerExtra)...)
			rows = append(rows, row)
		}
	} else {
		solos := r.Solos(b)
		extra := extraKeys(solos, func(rec model.Record) model.Record { return rec })

		headers = append(headers, recordColumns...)
		headers = append(headers, "Net")
		headers = append(headers, extra...)

		for _, rec := range solos {
			row := recordCells(rec)
			row = append(row, money(rec.Net()))
			row = append(row, extraCells(rec, extra)...)
			rows = append(rows, row)
		}
	}
	return project(Table{Bucket: b, Headers: headers, Rows: rows}, f)
}

// Tables returns the non-empty buckets of r in canonical order.
func Tables(r *model.Result, f ColumnFilter) []Table {
	var out []Table
	for _, b := range model.Buckets() {
		if r.Len(b) == 0 {
			continue
		}
		out = append(out, BuildTable(r, b, f))
	}
	return out
}

func project(t Table, f ColumnFilter) Table {
	var keep []int
	for i, h := range t.Headers {
		if f.Keep(h) {
			keep = append(keep, i)
		}
	}
	out := Table{Bucket: t.Bucket, Headers: make([]string, len(keep)), Rows: make([][]string, len(t.Rows))}
	for j, i := range keep {
		out.Headers[j] = t.Headers[i]
	}
	for r, row := range t.Rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = row[i]
		}
		out.Rows[r] = cells
	}
	return out
}

func recordCells(rec model.Record) []string {
	balance := ""
	if rec.Balance.Valid {
		balance = money(rec.Balance.Decimal)
	}
	return []string{rec.ID, rec.Date, rec.Description, money(rec.Debit), money(rec.Credit), balance}
}

func extraKeys[T any](items []T, pick func(T) model.Record) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, it := range items {
		for k := range pick(it).Extra {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func extraCells(rec model.Record, keys []string) []string {
	cells := make([]string, len(keys))
	for i, k := range keys {
		cells[i] = rec.Extra[k]
	}
	return cells
}

func prefixed(prefix string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = prefix + " " + c
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
