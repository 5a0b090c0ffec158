package recon

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conciliar/reconcile/internal/model"
)

func records(prefix string, n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = model.Record{ID: fmt.Sprintf("%s%d", prefix, i+1), Debit: decimal.NewFromInt(int64(i + 1))}
	}
	return out
}

func matches(n int) []model.Match {
	out := make([]model.Match, n)
	for i := range out {
		out[i] = model.Match{
			Statement: model.Record{ID: fmt.Sprintf("s%d", i+1)},
			Ledger:    model.Record{ID: fmt.Sprintf("l%d", i+1)},
			Status:    "ok",
		}
	}
	return out
}

func TestNewWindow(t *testing.T) {
	tests := []struct {
		name                          string
		total, page, size             int
		wantPage, wantPages, off, end int
	}{
		{"first page", 25, 1, 10, 1, 3, 0, 10},
		{"last partial page", 25, 3, 10, 3, 3, 20, 25},
		{"beyond last clamps", 25, 8, 10, 3, 3, 20, 25},
		{"zero clamps to one", 25, 0, 10, 1, 3, 0, 10},
		{"negative clamps to one", 25, -4, 10, 1, 3, 0, 10},
		{"exact multiple", 20, 2, 10, 2, 2, 10, 20},
		{"empty bucket", 0, 5, 10, 1, 0, 0, 0},
		{"default size", 11, 2, 0, 2, 2, 10, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(model.BucketMatched, tt.total, tt.page, tt.size)
			assert.Equal(t, tt.wantPage, w.Page)
			assert.Equal(t, tt.wantPages, w.TotalPages)
			assert.Equal(t, tt.off, w.Offset)
			assert.Equal(t, tt.end, w.End)
			assert.Equal(t, tt.total, w.Total)
		})
	}
}

func TestNewWindow_BeyondLastEqualsLast(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for _, size := range []int{1, 3, 10} {
			last := NewWindow(model.BucketLedgerOnly, total, (total+size-1)/size, size)
			far := NewWindow(model.BucketLedgerOnly, total, last.TotalPages+5, size)
			assert.Equal(t, last, far, "total=%d size=%d", total, size)
		}
	}
}

func TestWindow_Navigation(t *testing.T) {
	w := NewWindow(model.BucketMatched, 25, 2, 10)
	assert.True(t, w.HasNext())
	assert.True(t, w.HasPrev())
	assert.Equal(t, 10, w.Len())
	assert.Equal(t, "matched page 2/3 (25 entries)", w.String())

	empty := NewWindow(model.BucketStatementOnly, 0, 1, 10)
	assert.False(t, empty.HasNext())
	assert.False(t, empty.HasPrev())
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, "statement_only page 1/1 (0 entries)", empty.String())
}

func TestStore_EmptyByDefault(t *testing.T) {
	s := NewStore(0)
	require.NotNil(t, s.Result())
	assert.True(t, s.Result().Empty())

	for _, b := range model.Buckets() {
		w, err := s.Page(b, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, w.Page)
		assert.Equal(t, 0, w.TotalPages)
		assert.Equal(t, DefaultPageSize, w.PageSize)
	}
}

func TestStore_CursorsAreIndependent(t *testing.T) {
	s := NewStore(10)
	s.Replace(&model.Result{
		Matched:       matches(35),
		StatementOnly: records("s", 12),
	})

	w, err := s.Page(model.BucketMatched, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Page)

	solo, err := s.Current(model.BucketStatementOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, solo.Page)

	solo, err = s.Next(model.BucketStatementOnly)
	require.NoError(t, err)
	assert.Equal(t, 2, solo.Page)

	w, err = s.Current(model.BucketMatched)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Page)
}

func TestStore_NextPrevClamp(t *testing.T) {
	s := NewStore(5)
	s.Replace(&model.Result{LedgerOnly: records("l", 7)})

	w, err := s.Next(model.BucketLedgerOnly)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Page)
	assert.Equal(t, 5, w.Offset)
	assert.Equal(t, 7, w.End)

	w, err = s.Next(model.BucketLedgerOnly)
	require.NoError(t, err)
	assert.Equal(t, 2, w.Page, "stays on last page")

	_, _ = s.Prev(model.BucketLedgerOnly)
	w, err = s.Prev(model.BucketLedgerOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Page)
}

func TestStore_PageSizeSticksPerBucket(t *testing.T) {
	s := NewStore(10)
	s.Replace(&model.Result{Matched: matches(30), LedgerOnly: records("l", 30)})

	w, err := s.Page(model.BucketMatched, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, w.Offset)

	w, err = s.Next(model.BucketMatched)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Page)
	assert.Equal(t, 4, w.PageSize)

	other, err := s.Current(model.BucketLedgerOnly)
	require.NoError(t, err)
	assert.Equal(t, 10, other.PageSize)
}

func TestStore_ReplaceResetsCursors(t *testing.T) {
	s := NewStore(10)
	s.Replace(&model.Result{Matched: matches(50), AmountMismatch: matches(30)})

	_, err := s.Page(model.BucketMatched, 5, 0)
	require.NoError(t, err)
	_, err = s.Page(model.BucketAmountMismatch, 3, 0)
	require.NoError(t, err)

	next := &model.Result{Matched: matches(50)}
	s.Replace(next)
	assert.Same(t, next, s.Result())

	for _, b := range model.Buckets() {
		w, err := s.Current(b)
		require.NoError(t, err)
		assert.Equal(t, 1, w.Page, b.String())
	}

	s.Replace(nil)
	assert.True(t, s.Result().Empty())
}

func TestStore_UnknownBucket(t *testing.T) {
	s := NewStore(10)
	_, err := s.Page(model.Bucket(9), 1, 10)
	assert.Error(t, err)
	_, err = s.Current(model.Bucket(-1))
	assert.Error(t, err)
	_, err = s.Next(model.Bucket(4))
	assert.Error(t, err)
}

func TestValidate_Partition(t *testing.T) {
	r := &model.Result{
		Matched:        []model.Match{{Statement: model.Record{ID: "s1"}, Ledger: model.Record{ID: "l1"}}},
		AmountMismatch: []model.Match{{Statement: model.Record{ID: "s2"}, Ledger: model.Record{ID: "l2"}}},
		StatementOnly:  []model.Record{{ID: "s3"}},
		LedgerOnly:     []model.Record{{ID: "l3"}, {ID: "l4"}},
	}
	assert.Empty(t, Validate(r, []string{"s1", "s2", "s3"}, []string{"l1", "l2", "l3", "l4"}))
	assert.NoError(t, Check(r, []string{"s3", "s2", "s1"}, []string{"l4", "l3", "l2", "l1"}))

	s := r.Summarize()
	assert.Equal(t, 3, s.Statements)
	assert.Equal(t, 4, s.Ledger)
}

func TestValidate_Violations(t *testing.T) {
	r := &model.Result{
		Matched:       []model.Match{{Statement: model.Record{ID: "s1"}, Ledger: model.Record{ID: "l1"}}},
		StatementOnly: []model.Record{{ID: "s1"}, {ID: "s9"}},
	}
	errs := Validate(r, []string{"s1", "s2"}, []string{"l1", "l2"})
	require.Len(t, errs, 2)

	stmt := errs[0]
	assert.Equal(t, SideStatement, stmt.Side)
	assert.Equal(t, []string{"s2"}, stmt.Missing)
	assert.Equal(t, []string{"s1"}, stmt.Duplicated)
	assert.Equal(t, []string{"s9"}, stmt.Unknown)
	assert.Equal(t, "statement records: 1 missing (s2), 1 duplicated (s1), 1 unknown (s9)", stmt.Error())

	ledger := errs[1]
	assert.Equal(t, SideLedger, ledger.Side)
	assert.Equal(t, []string{"l2"}, ledger.Missing)

	err := Check(r, []string{"s1", "s2"}, []string{"l1", "l2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartition)
	var pe *PartitionError
	require.True(t, errors.As(err, &pe))
}

func TestValidate_DuplicateInputs(t *testing.T) {
	r := &model.Result{StatementOnly: []model.Record{{ID: "a"}}}
	errs := Validate(r, []string{"a", "a"}, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"a"}, errs[0].Duplicated)
}

func TestPartitionError_PreviewTruncates(t *testing.T) {
	e := &PartitionError{Side: SideLedger, Missing: []string{"1", "2", "3", "4", "5", "6", "7"}}
	assert.Equal(t, "ledger records: 7 missing (1, 2, 3, 4, 5, ...)", e.Error())
}

func TestLoad_Fixture(t *testing.T) {
	r, err := Load("../../testdata/result.json")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-run", r.RunID)
	assert.Equal(t, 2025, r.CreatedAt.Year())
	require.Len(t, r.Matched, 1)
	assert.Equal(t, "Conciliado", r.Matched[0].Status)
	assert.Equal(t, "100", r.Matched[0].Statement.Debit.String())
	assert.Equal(t, "900", r.Matched[0].Statement.Balance.Decimal.String())
	require.Len(t, r.AmountMismatch, 1)
	assert.Equal(t, "250.00", r.AmountMismatch[0].Statement.Extra["Valor normalizado"])
	require.Len(t, r.StatementOnly, 1)
	assert.Empty(t, r.LedgerOnly)

	assert.Empty(t, Validate(r, []string{"2", "3", "5"}, []string{"7", "8"}))
}

func TestDecode_DerivesRunID(t *testing.T) {
	const doc = `{"statement_only":[{"id":"1","date":"2025-01-01","description":"x","debit":"1","credit":0,"balance":null}]}`

	a, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	b, err := Decode(strings.NewReader(doc + "\n"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.RunID)
	assert.Equal(t, a.RunID, b.RunID)
	assert.False(t, a.StatementOnly[0].Balance.Valid)
	assert.True(t, a.StatementOnly[0].Credit.IsZero())

	c, err := Decode(strings.NewReader(`{"ledger_only":[]}`))
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, c.RunID)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"matched": 3}`))
	assert.ErrorContains(t, err, "decoding result")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "opening result")
}

func TestEncode_RoundTrip(t *testing.T) {
	r, err := Load("../../testdata/result.json")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Save(path, r))
	back, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, r.RunID, back.RunID)
	assert.True(t, r.CreatedAt.Equal(back.CreatedAt))
	assert.Equal(t, r.Summarize(), back.Summarize())
	assert.True(t, r.AmountMismatch[0].Ledger.Debit.Equal(back.AmountMismatch[0].Ledger.Debit))
}

func TestEncode_EmptyBucketsAsArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &model.Result{RunID: "r"}))
	out := buf.String()
	assert.Contains(t, out, `"matched": []`)
	assert.Contains(t, out, `"ledger_only": []`)
}
