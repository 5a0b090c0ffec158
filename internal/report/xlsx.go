package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/conciliar/reconcile/internal/model"
)

// SummarySheet is the first sheet of every exported workbook.
const SummarySheet = "Summary"

var sheetFills = [model.NumBuckets]string{
	model.BucketMatched:        "C6EFCE",
	model.BucketAmountMismatch: "FFEB9C",
	model.BucketStatementOnly:  "BDD7EE",
	model.BucketLedgerOnly:     "FFC7CE",
}

// WriteXLSX renders r as a workbook: a Summary sheet with per-bucket counts, then
// one sheet per non-empty bucket named by its label. Amount columns are numeric.
func WriteXLSX(w io.Writer, r *model.Result, f ColumnFilter) error {
	if r == nil {
		r = &model.Result{}
	}
	wb := excelize.NewFile()
	defer wb.Close()

	stamp := r.CreatedAt
	if stamp.IsZero() {
		stamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if err := wb.SetDocProps(&excelize.DocProperties{
		Creator:        "reconcile",
		LastModifiedBy: "reconcile",
		Title:          "Reconciliation report",
		Identifier:     r.RunID,
		Created:        stamp.UTC().Format(time.RFC3339),
		Modified:       stamp.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("setting workbook properties: %w", err)
	}

	if err := wb.SetSheetName(wb.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	if err := writeSummarySheet(wb, r, bold); err != nil {
		return err
	}

	for _, t := range Tables(r, f) {
		if err := writeBucketSheet(wb, t); err != nil {
			return fmt.Errorf("writing %s sheet: %w", t.Bucket.Label(), err)
		}
	}
	wb.SetActiveSheet(0)

	if err := wb.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(wb *excelize.File, r *model.Result, bold int) error {
	rows := [][]any{{"Category", "Count"}}
	sum := r.Summarize()
	for _, b := range model.Buckets() {
		rows = append(rows, []any{b.Label(), sum.Counts[b]})
	}
	rows = append(rows,
		[]any{"Statement records", sum.Statements},
		[]any{"Ledger records", sum.Ledger},
	)
	if r.RunID != "" {
		rows = append(rows, []any{"Run", r.RunID})
	}
	for i, row := range rows {
		if err := setRow(wb, SummarySheet, i+1, row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if err := wb.SetCellStyle(SummarySheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("styling summary: %w", err)
	}
	return wb.SetColWidth(SummarySheet, "A", "A", 22)
}

func writeBucketSheet(wb *excelize.File, t Table) error {
	name := t.Bucket.Label()
	if _, err := wb.NewSheet(name); err != nil {
		return err
	}
	if len(t.Headers) == 0 {
		return nil
	}

	header := make([]any, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := setRow(wb, name, 1, header); err != nil {
		return err
	}
	numeric := make([]bool, len(t.Headers))
	for i, h := range t.Headers {
		numeric[i] = amountColumn(h)
	}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
			if numeric[j] && v != "" {
				if d, err := decimal.NewFromString(v); err == nil {
					cells[j] = d.InexactFloat64()
				}
			}
		}
		if err := setRow(wb, name, i+2, cells); err != nil {
			return err
		}
	}

	style, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{sheetFills[t.Bucket]}},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
	if err != nil {
		return err
	}
	if err := wb.SetCellStyle(name, "A1", last, style); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return err
	}
	if err := wb.SetColWidth(name, "A", lastCol, 16); err != nil {
		return err
	}
	return wb.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(wb *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(sheet, cell, &cells)
}

func amountColumn(header string) bool {
	for _, suffix := range []string{"Debit", "Credit", "Balance", "Net"} {
		if strings.HasSuffix(header, suffix) {
			return true
		}
	}
	return false
}
