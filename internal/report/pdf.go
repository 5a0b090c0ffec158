package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/conciliar/reconcile/internal/model"
)

type rgb struct{ r, g, b int }

var sectionColors = [model.NumBuckets]rgb{
	model.BucketMatched:        {198, 239, 206},
	model.BucketAmountMismatch: {255, 235, 156},
	model.BucketStatementOnly:  {189, 215, 238},
	model.BucketLedgerOnly:     {255, 199, 206},
}

const (
	pdfMargin   = 10.0
	pdfRowH     = 5.0
	pdfFontSize = 7.0
)

// WritePDF renders r as a landscape A4 document: a title block with per-bucket
// counts followed by one colored section per non-empty bucket in canonical order.
// The same result and filter always produce the same bytes.
func WritePDF(w io.Writer, r *model.Result, f ColumnFilter) error {
	return writePDF(w, r, f, true)
}

func writePDF(w io.Writer, r *model.Result, f ColumnFilter, compress bool) error {
	if r == nil {
		r = &model.Result{}
	}
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCatalogSort(true)
	stamp := r.CreatedAt
	if stamp.IsZero() {
		stamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetTitle("Reconciliation report", true)
	pdf.SetCreator("reconcile", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin - 2)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Reconciliation report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if r.RunID != "" {
		pdf.CellFormat(0, 5, tr("Run: "+r.RunID), "", 1, "L", false, 0, "")
	}
	if !r.CreatedAt.IsZero() {
		pdf.CellFormat(0, 5, "Created: "+r.CreatedAt.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	}
	sum := r.Summarize()
	for _, b := range model.Buckets() {
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: %d", b.Label(), sum.Counts[b]), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Statement records: %d, ledger records: %d", sum.Statements, sum.Ledger), "", 1, "L", false, 0, "")

	for _, t := range Tables(r, f) {
		pdfSection(pdf, t, tr)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func pdfSection(pdf *fpdf.Fpdf, t Table, tr func(string) string) {
	c := sectionColors[t.Bucket]
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(c.r, c.g, c.b)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, t.Bucket.Label(), "", 1, "L", true, 0, "")

	if len(t.Headers) == 0 {
		return
	}
	pageW, _ := pdf.GetPageSize()
	colW := (pageW - 2*pdfMargin) / float64(len(t.Headers))

	header := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(235, 235, 235)
		for _, h := range t.Headers {
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(h), colW), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
	}
	header()

	_, pageH := pdf.GetPageSize()
	for _, row := range t.Rows {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin-5 {
			pdf.AddPage()
			header()
		}
		for _, cell := range row {
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(cell), colW), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit truncates s so it renders inside width with a small inner padding.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	const ellipsis = "..."
	for len(s) > 0 && pdf.GetStringWidth(s+ellipsis) > limit {
		s = s[:len(s)-1]
	}
	return s + ellipsis
}
