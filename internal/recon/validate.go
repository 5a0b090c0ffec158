package recon

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/conciliar/reconcile/internal/model"
)

// Side names one of the two reconciled sources.
type Side string

const (
	SideStatement Side = "statement"
	SideLedger    Side = "ledger"
)

// ErrPartition matches PartitionError via errors.Is.
var ErrPartition = errors.New("result is not a partition of its inputs")

// PartitionError reports the record IDs of one side that break the partition
// contract: every input record must appear in exactly one bucket.
type PartitionError struct {
	Side       Side
	Missing    []string // inputs found in no bucket
	Duplicated []string // IDs found in more than one place
	Unknown    []string // bucket IDs that are not inputs
}

func (e *PartitionError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("%d missing (%s)", len(e.Missing), preview(e.Missing)))
	}
	if len(e.Duplicated) > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicated (%s)", len(e.Duplicated), preview(e.Duplicated)))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown (%s)", len(e.Unknown), preview(e.Unknown)))
	}
	return fmt.Sprintf("%s records: %s", e.Side, strings.Join(parts, ", "))
}

// Is makes errors.Is(err, ErrPartition) hold.
func (e *PartitionError) Is(target error) bool { return target == ErrPartition }

func preview(ids []string) string {
	const n = 5
	if len(ids) <= n {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:n], ", ") + ", ..."
}

// Validate checks that r partitions the given statement and ledger record IDs:
// each statement ID appears exactly once across matched, amount_mismatch and
// statement_only, and each ledger ID exactly once across matched, amount_mismatch
// and ledger_only. It returns one error per side that fails.
func Validate(r *model.Result, statementIDs, ledgerIDs []string) []*PartitionError {
	var stmt, ledger []string
	for _, b := range []model.Bucket{model.BucketMatched, model.BucketAmountMismatch} {
		for _, m := range r.Pairs(b) {
			stmt = append(stmt, m.Statement.ID)
			ledger = append(ledger, m.Ledger.ID)
		}
	}
	for _, rec := range r.Solos(model.BucketStatementOnly) {
		stmt = append(stmt, rec.ID)
	}
	for _, rec := range r.Solos(model.BucketLedgerOnly) {
		ledger = append(ledger, rec.ID)
	}

	var errs []*PartitionError
	if e := checkSide(SideStatement, statementIDs, stmt); e != nil {
		errs = append(errs, e)
	}
	if e := checkSide(SideLedger, ledgerIDs, ledger); e != nil {
		errs = append(errs, e)
	}
	return errs
}

// Check is Validate folded into a single error, or nil.
func Check(r *model.Result, statementIDs, ledgerIDs []string) error {
	var errs []error
	for _, e := range Validate(r, statementIDs, ledgerIDs) {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

func checkSide(side Side, inputs, placed []string) *PartitionError {
	want := make(map[string]int, len(inputs))
	for _, id := range inputs {
		want[id]++
	}
	got := make(map[string]int, len(placed))
	for _, id := range placed {
		got[id]++
	}

	e := &PartitionError{Side: side}
	for id, n := range want {
		switch {
		case n > 1:
			e.Duplicated = append(e.Duplicated, id)
		case got[id] == 0:
			e.Missing = append(e.Missing, id)
		case got[id] > 1:
			e.Duplicated = append(e.Duplicated, id)
		}
	}
	for id := range got {
		if want[id] == 0 {
			e.Unknown = append(e.Unknown, id)
		}
	}
	if len(e.Missing)+len(e.Duplicated)+len(e.Unknown) == 0 {
		return nil
	}
	sort.Strings(e.Missing)
	sort.Strings(e.Duplicated)
	sort.Strings(e.Unknown)
	return e
}
