// Package statement reads and writes canonical transaction CSV, the hand-off
// format between ingestion and the external classifier.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/conciliar/reconcile/internal/model"
)

// Header is the canonical CSV header.
const Header = "row,date,description,debit,credit,balance"

const (
	numFields = 6
	colRow    = 0
	colDate   = 1
	colDesc   = 2
	colDebit  = 3
	colCredit = 4
	colBal    = 5
)

// Read reads canonical transactions. The header row is required.
func Read(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("unexpected header %q", got)
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		t, err := Unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// Write writes txns with the header.
func Write(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(Marshal(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads the canonical CSV file at path.
func Load(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Save writes txns to path.
func Save(path string, txns []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating transactions file: %w", err)
	}
	if err := Write(f, txns); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Marshal converts a Transaction to a CSV row. Amounts keep two decimals; an
// unknown balance is an empty cell.
func Marshal(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colRow] = strconv.Itoa(t.Row)
	row[colDate] = t.Date
	row[colDesc] = t.Description
	row[colDebit] = t.Debit.StringFixed(2)
	row[colCredit] = t.Credit.StringFixed(2)
	if t.Balance.Valid {
		row[colBal] = t.Balance.Decimal.StringFixed(2)
	}
	return row
}

// Unmarshal converts a CSV row to a Transaction.
func Unmarshal(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	row, err := strconv.Atoi(record[colRow])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing row %q: %w", record[colRow], err)
	}

	var debit, credit decimal.Decimal
	if record[colDebit] != "" {
		if debit, err = decimal.NewFromString(record[colDebit]); err != nil {
			return model.Transaction{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}
	if record[colCredit] != "" {
		if credit, err = decimal.NewFromString(record[colCredit]); err != nil {
			return model.Transaction{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	var balance decimal.NullDecimal
	if record[colBal] != "" {
		d, err := decimal.NewFromString(record[colBal])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing balance %q: %w", record[colBal], err)
		}
		balance = decimal.NewNullDecimal(d)
	}

	return model.Transaction{
		Row:         row,
		Date:        record[colDate],
		Description: record[colDesc],
		Debit:       debit,
		Credit:      credit,
		Balance:     balance,
	}, nil
}

// IDs returns the record IDs a classifier result uses for txns: the source row
// number of each transaction.
func IDs(txns []model.Transaction) []string {
	ids := make([]string, len(txns))
	for i, t := range txns {
		ids[i] = strconv.Itoa(t.Row)
	}
	return ids
}
