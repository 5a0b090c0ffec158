package importer

import (
	"fmt"

	"github.com/conciliar/reconcile/internal/alias"
	"github.com/conciliar/reconcile/internal/model"
)

// DefaultIgnoredDescriptions mark opening, closing and carried-forward balance lines.
var DefaultIgnoredDescriptions = []string{"SALDO INICIAL", "SALDO FINAL", "TRANSPORTE", "A TRANSPORTAR"}

// Spec describes one institution layout: where its header sits, how its fields are
// spelled and, for row layouts, which movement-type tokens mean outflow and inflow.
// Rows whose description contains any of IgnoreDescriptions are skipped.
type Spec struct {
	Selector           model.Selector
	HeaderRow          int // 1-based; 0 means 1
	Aliases            alias.Table
	OutflowTokens      []string
	InflowTokens       []string
	IgnoreDescriptions []string
}

// NewParser builds the parser family matching spec.Selector.Layout.
func NewParser(spec Spec) (Parser, error) {
	spec.Selector = model.NewSelector(spec.Selector.Institution, string(spec.Selector.Layout))
	if spec.Selector.Institution == "" {
		return nil, fmt.Errorf("layout %s: institution is required", spec.Selector)
	}
	if spec.HeaderRow < 0 {
		return nil, fmt.Errorf("layout %s: header row %d must be positive", spec.Selector, spec.HeaderRow)
	}
	if spec.HeaderRow == 0 {
		spec.HeaderRow = 1
	}
	res := alias.NewResolver(spec.Aliases)

	switch spec.Selector.Layout {
	case model.LayoutColumn:
		if !res.Has(alias.FieldDebit) && !res.Has(alias.FieldCredit) {
			return nil, fmt.Errorf("layout %s: needs debit or credit aliases", spec.Selector)
		}
		return &ColumnParser{spec: spec, res: res, ignore: foldAll(spec.IgnoreDescriptions)}, nil
	case model.LayoutRow:
		if !res.Has(alias.FieldAmount) || !res.Has(alias.FieldType) {
			return nil, fmt.Errorf("layout %s: needs amount and type aliases", spec.Selector)
		}
		if len(spec.OutflowTokens) == 0 || len(spec.InflowTokens) == 0 {
			return nil, fmt.Errorf("layout %s: needs outflow and inflow tokens", spec.Selector)
		}
		return newRowParser(spec, res), nil
	}
	return nil, &UnsupportedLayoutError{Selector: spec.Selector}
}

func foldAll(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if f := alias.Fold(t); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// BuiltinSpecs returns the layouts supported out of the box: the bfa and bai banks in
// both layouts, and the accounting ledger export.
func BuiltinSpecs() []Spec {
	return []Spec{
		{
			Selector:           model.Selector{Institution: "bfa", Layout: model.LayoutColumn},
			IgnoreDescriptions: DefaultIgnoredDescriptions,
			Aliases: alias.Table{
				alias.FieldDate:        {"Data", "DATA"},
				alias.FieldDescription: {"Descrição", "DESCRIÇÃO"},
				alias.FieldDebit:       {"Débito", "DÉBITO"},
				alias.FieldCredit:      {"Crédito", "CRÉDITO"},
				alias.FieldBalance:     {"Saldo", "SALDO"},
			},
		},
		{
			Selector:           model.Selector{Institution: "bfa", Layout: model.LayoutRow},
			IgnoreDescriptions: DefaultIgnoredDescriptions,
			Aliases: alias.Table{
				alias.FieldDate:        {"Data", "DATA"},
				alias.FieldDescription: {"Descrição", "DESCRIÇÃO"},
				alias.FieldAmount:      {"Valor", "VALOR"},
				alias.FieldType:        {"Tipo", "TIPO"},
			},
			OutflowTokens: []string{"D"},
			InflowTokens:  []string{"C"},
		},
		{
			Selector:           model.Selector{Institution: "bai", Layout: model.LayoutColumn},
			IgnoreDescriptions: DefaultIgnoredDescriptions,
			Aliases: alias.Table{
				alias.FieldDate:        {"Data Valor", "DATA VALOR", "Data Mov.", "Data Movimento"},
				alias.FieldDescription: {"Descrição", "DESCRIÇÃO", "Descritivo"},
				alias.FieldDebit:       {"Saídas", "SAÍDAS", "Débito"},
				alias.FieldCredit:      {"Entradas", "ENTRADAS", "Crédito"},
				alias.FieldBalance:     {"Saldo", "SALDO", "Movimento"},
			},
		},
		{
			Selector:           model.Selector{Institution: "bai", Layout: model.LayoutRow},
			IgnoreDescriptions: DefaultIgnoredDescriptions,
			Aliases: alias.Table{
				alias.FieldDate:        {"Data", "DATA"},
				alias.FieldDescription: {"Descrição", "DESCRIÇÃO"},
				alias.FieldAmount:      {"Valor", "VALOR"},
				alias.FieldType:        {"Movimento", "MOVIMENTO"},
			},
			OutflowTokens: []string{"SAÍDA"},
			InflowTokens:  []string{"ENTRADA"},
		},
		{
			Selector:           model.Selector{Institution: "ledger", Layout: model.LayoutColumn},
			HeaderRow:          6,
			IgnoreDescriptions: DefaultIgnoredDescriptions,
			Aliases: alias.Table{
				alias.FieldDate:        {"DATA MOVIMENTO", "Data Mov", "data_movimento"},
				alias.FieldDescription: {"DESCRITIVO", "Descrição"},
				alias.FieldDebit:       {"DEBITO Kz", "Débito", "debito_kz"},
				alias.FieldCredit:      {"CREDITO Kz", "Crédito", "credito_kz"},
				alias.FieldBalance:     {"SALDO DISPONIVEL Kz", "Saldo Disponivel", "Saldo"},
			},
		},
	}
}
