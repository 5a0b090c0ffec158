package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Bucket is one of the four outcome classes of a reconciliation run.
type Bucket int

const (
	BucketMatched Bucket = iota
	BucketAmountMismatch
	BucketStatementOnly
	BucketLedgerOnly
)

// NumBuckets is the number of outcome classes.
const NumBuckets = 4

// Buckets returns every bucket in canonical report order.
func Buckets() []Bucket {
	return []Bucket{BucketMatched, BucketAmountMismatch, BucketStatementOnly, BucketLedgerOnly}
}

var bucketNames = [NumBuckets]string{"matched", "amount_mismatch", "statement_only", "ledger_only"}

var bucketLabels = [NumBuckets]string{"Matched", "Amount mismatch", "Statement only", "Ledger only"}

func (b Bucket) String() string {
	if b < 0 || int(b) >= NumBuckets {
		return fmt.Sprintf("bucket(%d)", int(b))
	}
	return bucketNames[b]
}

// Label is the human-readable name used for report sections and sheet names.
func (b Bucket) Label() string {
	if b < 0 || int(b) >= NumBuckets {
		return b.String()
	}
	return bucketLabels[b]
}

// Valid reports whether b is one of the four outcome classes.
func (b Bucket) Valid() bool {
	return b >= 0 && int(b) < NumBuckets
}

// ParseBucket accepts snake_case names, hyphenated names and labels, case-insensitively.
func ParseBucket(s string) (Bucket, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for i, name := range bucketNames {
		if key == name {
			return Bucket(i), nil
		}
	}
	return 0, fmt.Errorf("unknown bucket %q", s)
}

// Record is one transaction as it appears in a reconciliation result.
type Record struct {
	ID          string              `json:"id"`
	Date        string              `json:"date"`
	Description string              `json:"description"`
	Debit       decimal.Decimal     `json:"debit"`
	Credit      decimal.Decimal     `json:"credit"`
	Balance     decimal.NullDecimal `json:"balance"`
	Extra       map[string]string   `json:"extra,omitempty"` // classifier-supplied columns
}

// Net returns credit minus debit.
func (r Record) Net() decimal.Decimal {
	return r.Credit.Sub(r.Debit)
}

// Match pairs a statement record with the ledger record the classifier linked it to.
type Match struct {
	Statement Record `json:"statement"`
	Ledger    Record `json:"ledger"`
	Status    string `json:"status"`
}

// Result is the partition produced by one reconciliation run. It is never mutated
// after construction; a new run produces a new Result.
type Result struct {
	RunID          string    `json:"run_id"`
	CreatedAt      time.Time `json:"created_at"`
	Matched        []Match   `json:"matched"`
	AmountMismatch []Match   `json:"amount_mismatch"`
	StatementOnly  []Record  `json:"statement_only"`
	LedgerOnly     []Record  `json:"ledger_only"`
}

// Len returns the number of entries in bucket b.
func (r *Result) Len(b Bucket) int {
	if r == nil {
		return 0
	}
	switch b {
	case BucketMatched:
		return len(r.Matched)
	case BucketAmountMismatch:
		return len(r.AmountMismatch)
	case BucketStatementOnly:
		return len(r.StatementOnly)
	case BucketLedgerOnly:
		return len(r.LedgerOnly)
	}
	return 0
}

// Pairs returns the matches of a paired bucket, or nil for solo buckets.
func (r *Result) Pairs(b Bucket) []Match {
	if r == nil {
		return nil
	}
	switch b {
	case BucketMatched:
		return r.Matched
	case BucketAmountMismatch:
		return r.AmountMismatch
	}
	return nil
}

// Solos returns the records of a solo bucket, or nil for paired buckets.
func (r *Result) Solos(b Bucket) []Record {
	if r == nil {
		return nil
	}
	switch b {
	case BucketStatementOnly:
		return r.StatementOnly
	case BucketLedgerOnly:
		return r.LedgerOnly
	}
	return nil
}

// IsPaired reports whether b holds statement/ledger pairs.
func (b Bucket) IsPaired() bool {
	return b == BucketMatched || b == BucketAmountMismatch
}

// Summary counts a Result per bucket and per side.
type Summary struct {
	Counts     [NumBuckets]int
	Statements int // matched + amount_mismatch + statement_only
	Ledger     int // matched + amount_mismatch + ledger_only
}

// Summarize counts r.
func (r *Result) Summarize() Summary {
	var s Summary
	for _, b := range Buckets() {
		s.Counts[b] = r.Len(b)
	}
	paired := s.Counts[BucketMatched] + s.Counts[BucketAmountMismatch]
	s.Statements = paired + s.Counts[BucketStatementOnly]
	s.Ledger = paired + s.Counts[BucketLedgerOnly]
	return s
}

// Empty reports whether every bucket is empty.
func (r *Result) Empty() bool {
	for _, b := range Buckets() {
		if r.Len(b) > 0 {
			return false
		}
	}
	return true
}
