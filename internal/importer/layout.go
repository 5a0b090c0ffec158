package importer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/conciliar/reconcile/internal/alias"
	"github.com/conciliar/reconcile/internal/model"
)

var recognizedFields = []alias.Field{
	alias.FieldDate,
	alias.FieldDescription,
	alias.FieldDebit,
	alias.FieldCredit,
	alias.FieldBalance,
	alias.FieldAmount,
	alias.FieldType,
}

// ColumnParser reads layouts with separate debit and credit columns.
type ColumnParser struct {
	spec   Spec
	res    *alias.Resolver
	ignore []string
}

// Selector returns the institution layout handled by p.
func (p *ColumnParser) Selector() model.Selector { return p.spec.Selector }

// HeaderRow returns the 1-based header row.
func (p *ColumnParser) HeaderRow() int { return p.spec.HeaderRow }

// Parse converts rows. Missing or malformed debit and credit cells become zero.
func (p *ColumnParser) Parse(rows []model.RawRow) ([]model.Transaction, []RowIssue) {
	var txns []model.Transaction
	var issues []RowIssue
	for _, row := range rows {
		if issue, skip := unusable(p.res, p.ignore, row); skip {
			issues = append(issues, issue)
			continue
		}
		txn := baseTransaction(p.res, row)
		txn.Debit = resolveAmount(p.res, row, alias.FieldDebit).Abs()
		txn.Credit = resolveAmount(p.res, row, alias.FieldCredit).Abs()
		txns = append(txns, txn)
	}
	return txns, issues
}

// RowParser reads layouts with one amount column and a movement type column.
// A type token outside both vocabularies zeroes the row's amount; the row is kept
// and reported as an issue.
type RowParser struct {
	spec    Spec
	res     *alias.Resolver
	ignore  []string
	outflow map[string]bool
	inflow  map[string]bool
}

func newRowParser(spec Spec, res *alias.Resolver) *RowParser {
	p := &RowParser{
		spec:    spec,
		res:     res,
		ignore:  foldAll(spec.IgnoreDescriptions),
		outflow: make(map[string]bool, len(spec.OutflowTokens)),
		inflow:  make(map[string]bool, len(spec.InflowTokens)),
	}
	for _, t := range spec.OutflowTokens {
		p.outflow[alias.Fold(t)] = true
	}
	for _, t := range spec.InflowTokens {
		p.inflow[alias.Fold(t)] = true
	}
	return p
}

// Selector returns the institution layout handled by p.
func (p *RowParser) Selector() model.Selector { return p.spec.Selector }

// HeaderRow returns the 1-based header row.
func (p *RowParser) HeaderRow() int { return p.spec.HeaderRow }

// Parse converts rows, splitting the amount into debit or credit by movement type.
func (p *RowParser) Parse(rows []model.RawRow) ([]model.Transaction, []RowIssue) {
	var txns []model.Transaction
	var issues []RowIssue
	for _, row := range rows {
		if issue, skip := unusable(p.res, p.ignore, row); skip {
			issues = append(issues, issue)
			continue
		}
		txn := baseTransaction(p.res, row)
		amount := resolveAmount(p.res, row, alias.FieldAmount).Abs()
		token, _ := p.res.Resolve(row, alias.FieldType)

		switch key := alias.Fold(token); {
		case p.outflow[key]:
			txn.Debit = amount
		case p.inflow[key]:
			txn.Credit = amount
		default:
			issues = append(issues, RowIssue{
				Row:    row.Number,
				Reason: fmt.Sprintf("unrecognized movement type %q, amount %s dropped", token, amount.String()),
			})
		}
		txns = append(txns, txn)
	}
	return txns, issues
}

// unusable reports rows that carry none of the layout's fields, and balance lines
// whose description contains an ignored token.
func unusable(res *alias.Resolver, ignore []string, row model.RawRow) (RowIssue, bool) {
	if row.IsBlank() {
		return RowIssue{Row: row.Number, Reason: "blank row", Skipped: true}, true
	}
	if desc, ok := res.Resolve(row, alias.FieldDescription); ok {
		folded := alias.Fold(desc)
		for _, tok := range ignore {
			if strings.Contains(folded, tok) {
				return RowIssue{Row: row.Number, Reason: fmt.Sprintf("ignored description %q", desc), Skipped: true}, true
			}
		}
	}
	for _, f := range recognizedFields {
		if _, ok := res.Resolve(row, f); ok {
			return RowIssue{}, false
		}
	}
	return RowIssue{Row: row.Number, Reason: "no recognizable fields", Skipped: true}, true
}

func baseTransaction(res *alias.Resolver, row model.RawRow) model.Transaction {
	date, _ := res.Resolve(row, alias.FieldDate)
	desc, _ := res.Resolve(row, alias.FieldDescription)
	txn := model.Transaction{
		Row:         row.Number,
		Date:        NormalizeDate(date),
		Description: desc,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
	}
	if c, ok := res.ResolveCell(row, alias.FieldBalance); ok {
		txn.Balance = decimal.NewNullDecimal(CellAmount(c))
	}
	return txn
}

func resolveAmount(res *alias.Resolver, row model.RawRow, f alias.Field) decimal.Decimal {
	c, ok := res.ResolveCell(row, f)
	if !ok {
		return decimal.Zero
	}
	return CellAmount(c)
}
