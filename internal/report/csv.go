package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/conciliar/reconcile/internal/model"
)

// SummaryHeader is the header of the delimited summary export.
var SummaryHeader = []string{"Category", "Count"}

// WriteSummaryCSV writes the two-column count summary: the header and one row per
// bucket in canonical order, zero counts included.
func WriteSummaryCSV(w io.Writer, r *model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	sum := r.Summarize()
	for _, b := range model.Buckets() {
		if err := cw.Write([]string{b.Label(), strconv.Itoa(sum.Counts[b])}); err != nil {
			return fmt.Errorf("writing %s row: %w", b, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableCSV writes one filtered bucket table, header first.
func WriteTableCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
