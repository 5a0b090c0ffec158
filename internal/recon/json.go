package recon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/conciliar/reconcile/internal/model"
)

// runNamespace seeds run IDs derived from result content.
var runNamespace = uuid.MustParse("6f1d3c4e-2b7a-5e0f-9c1d-8a4b3e2f1a60")

// Decode reads a classifier result. A result without a run_id gets one derived
// from its content, so decoding the same bytes twice yields the same ID.
func Decode(r io.Reader) (*model.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading result: %w", err)
	}
	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	if res.RunID == "" {
		res.RunID = uuid.NewSHA1(runNamespace, bytes.TrimSpace(data)).String()
	}
	return &res, nil
}

// Load decodes the result file at path.
func Load(path string) (*model.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes r as indented JSON. Nil buckets are written as empty arrays.
func Encode(w io.Writer, r *model.Result) error {
	out := *r
	if out.Matched == nil {
		out.Matched = []model.Match{}
	}
	if out.AmountMismatch == nil {
		out.AmountMismatch = []model.Match{}
	}
	if out.StatementOnly == nil {
		out.StatementOnly = []model.Record{}
	}
	if out.LedgerOnly == nil {
		out.LedgerOnly = []model.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// Save writes r to path.
func Save(path string, r *model.Result) error {
	var buf bytes.Buffer
	if err := Encode(&buf, r); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	return nil
}
