package report

import (
	"github.com/shopspring/decimal"

	"github.com/conciliar/reconcile/internal/model"
	"github.com/conciliar/reconcile/internal/recon"
)

// Item is one display entry. Paired buckets fill both descriptions and Status;
// solo buckets fill Record, whose Extra holds only filtered columns, and Net.
type Item struct {
	StatementDescription string
	LedgerDescription    string
	Status               string
	Record               model.Record
	Net                  decimal.Decimal
}

// Page is the display rendering of one bucket window.
type Page struct {
	Window recon.Window
	Items  []Item
	Table  Table // filtered columns for the items on this page
}

// DisplayPage moves the store's cursor for bucket b to page and returns its items.
func DisplayPage(s *recon.Store, b model.Bucket, page, size int, f ColumnFilter) (Page, error) {
	w, err := s.Page(b, page, size)
	if err != nil {
		return Page{}, err
	}
	return render(s.Result(), w, f), nil
}

// CurrentPage renders the page at bucket b's cursor.
func CurrentPage(s *recon.Store, b model.Bucket, f ColumnFilter) (Page, error) {
	w, err := s.Current(b)
	if err != nil {
		return Page{}, err
	}
	return render(s.Result(), w, f), nil
}

func render(r *model.Result, w recon.Window, f ColumnFilter) Page {
	p := Page{Window: w}
	if w.Bucket.IsPaired() {
		for _, m := range r.Pairs(w.Bucket)[w.Offset:w.End] {
			p.Items = append(p.Items, Item{
				StatementDescription: m.Statement.Description,
				LedgerDescription:    m.Ledger.Description,
				Status:               m.Status,
			})
		}
	} else {
		for _, rec := range r.Solos(w.Bucket)[w.Offset:w.End] {
			rec.Extra = f.Extras(rec.Extra)
			p.Items = append(p.Items, Item{Record: rec, Net: rec.Net()})
		}
	}

	t := BuildTable(r, w.Bucket, f)
	t.Rows = t.Rows[w.Offset:w.End]
	p.Table = t
	return p
}
