package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conciliar/reconcile/internal/runlog"
	"github.com/conciliar/reconcile/internal/statement"
)

const resultFixture = "../../testdata/result.json"

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

// ingestFixtures converts the bank statement and ledger fixtures into dir and
// returns the canonical CSV paths.
func ingestFixtures(t *testing.T, dir string) (stmt, ledger string) {
	t.Helper()
	stmt = filepath.Join(dir, "statements", "bfa.csv")
	ledger = filepath.Join(dir, "statements", "ledger.csv")

	out, err := runReconcile(t, "ingest", fixture("bfa_coluna.csv"), "--bank", "bfa", "--layout", "coluna", "--dir", dir, "--out", stmt)
	require.NoError(t, err, out)
	out, err = runReconcile(t, "ingest", fixture("ledger_contabilidade.csv"), "--bank", "ledger", "--dir", dir, "--out", ledger)
	require.NoError(t, err, out)
	return stmt, ledger
}

func TestIngest_WritesCanonicalCSV(t *testing.T) {
	dir := t.TempDir()
	out, err := runReconcile(t, "ingest", fixture("bfa_coluna.csv"), "--bank", "BFA", "--layout", "column", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bfa/column: 3 transactions, 1 skipped")
	assert.Contains(t, out, "row 4 skipped: blank row")

	txns, err := statement.Load(filepath.Join(dir, "statements", "bfa_coluna.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "Pagamento", txns[0].Description)
	assert.Equal(t, "2025-01-06", txns[1].Date)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ingest", entries[0].Command)
	assert.Equal(t, runlog.StatusOK, entries[0].Status)
}

func TestIngest_RowLayoutReportsUnknownTokens(t *testing.T) {
	dir := t.TempDir()
	out, err := runReconcile(t, "ingest", fixture("bai_linha.csv"), "--bank", "bai", "--layout", "linha", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bai/row: 3 transactions, 0 skipped")
	assert.Contains(t, out, "Pendente")
}

func TestIngest_Directory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "incoming")
	require.NoError(t, os.MkdirAll(in, 0o755))
	data, err := os.ReadFile(fixture("bfa_coluna.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(in, "janeiro.csv"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "fevereiro.csv"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notas.md"), []byte("x"), 0o644))

	out, err := runReconcile(t, "ingest", in, "--bank", "bfa", "--dir", dir)
	require.NoError(t, err, out)

	for _, name := range []string{"janeiro.csv", "fevereiro.csv"} {
		_, err := os.Stat(filepath.Join(dir, "statements", name))
		assert.NoError(t, err, name)
	}
	assert.Less(t, strings.Index(out, "fevereiro.csv"), strings.Index(out, "janeiro.csv"))
}

func TestIngest_UnsupportedLayout(t *testing.T) {
	dir := t.TempDir()
	out, err := runReconcile(t, "ingest", fixture("bfa_coluna.csv"), "--bank", "bpc", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "unsupported layout bpc/column")
}

func TestIngest_ConfiguredLayout(t *testing.T) {
	dir := t.TempDir()
	_, err := runReconcile(t, "init", dir)
	require.NoError(t, err)

	cfg := `layouts:
  - institution: bpc
    layout: linha
    fields:
      date: [Data]
      description: [Descrição]
      amount: [Valor]
      type: [Movimento]
    outflow_tokens: [Saída]
    inflow_tokens: [Entrada]
`
	f, err := os.OpenFile(filepath.Join(dir, "reconcile.yaml"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(cfg)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err := runReconcile(t, "ingest", fixture("bai_linha.csv"), "--bank", "bpc", "--layout", "row", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "bpc/row: 3 transactions")
}

func TestIngest_MissingFile(t *testing.T) {
	out, err := runReconcile(t, "ingest", filepath.Join(t.TempDir(), "nope.xlsx"), "--bank", "bfa", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "reading input")
}

func TestValidate_Partition(t *testing.T) {
	dir := t.TempDir()
	stmt, ledger := ingestFixtures(t, dir)

	out, err := runReconcile(t, "validate", "--result", resultFixture, "--statement", stmt, "--ledger", ledger, "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "OK: 3 statement and 2 ledger records")
	assert.Contains(t, out, "Amount mismatch")
}

func TestValidate_Failure(t *testing.T) {
	dir := t.TempDir()
	_, ledger := ingestFixtures(t, dir)

	other := filepath.Join(dir, "statements", "bai.csv")
	out, err := runReconcile(t, "ingest", fixture("bai_linha.csv"), "--bank", "bai", "--layout", "row", "--dir", dir, "--out", other)
	require.NoError(t, err, out)

	out, err = runReconcile(t, "validate", "--result", resultFixture, "--statement", other, "--ledger", ledger, "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "statement records: 1 missing (4), 1 unknown (5)")

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, "validate", last.Command)
	assert.Equal(t, runlog.StatusFailed, last.Status)
}

func TestPage_Paired(t *testing.T) {
	out, err := runReconcile(t, "page", "--result", resultFixture, "--bucket", "matched", "--dir", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Matched: page 1 of 1 (1 entries)")
	assert.Contains(t, out, "PAGAMENTO FORNECEDOR")
	assert.Contains(t, out, "Conciliado")
}

func TestPage_ClampsAndShowsNet(t *testing.T) {
	out, err := runReconcile(t, "page", "--result", resultFixture, "--bucket", "statement-only", "--page", "9", "--dir", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Statement only: page 1 of 1")
	assert.Contains(t, out, "Taxa de manutenção")
	assert.Contains(t, out, "0.00")
}

func TestPage_EmptyBucket(t *testing.T) {
	out, err := runReconcile(t, "page", "--result", resultFixture, "--bucket", "ledger_only", "--page", "0", "--dir", t.TempDir())
	require.NoError(t, err, out)
	assert.Contains(t, out, "Ledger only: page 1 of 1 (0 entries)")
	assert.Contains(t, out, "No entries.")
}

func TestPage_CSVIsFiltered(t *testing.T) {
	out, err := runReconcile(t, "page", "--result", resultFixture, "--bucket", "amount_mismatch", "--format", "csv", "--dir", t.TempDir())
	require.NoError(t, err, out)
	assert.True(t, strings.HasPrefix(out, "Statement ID,Statement Date"))
	assert.NotContains(t, out, "normalizado")
	assert.NotContains(t, out, "Unnamed")
}

func TestPage_UnknownBucket(t *testing.T) {
	out, err := runReconcile(t, "page", "--result", resultFixture, "--bucket", "pending")
	require.Error(t, err)
	assert.Contains(t, out, `unknown bucket "pending"`)
}

func TestReport_AllFormats(t *testing.T) {
	dir := t.TempDir()
	_, err := runReconcile(t, "init", dir)
	require.NoError(t, err)

	out, err := runReconcile(t, "report", "--result", resultFixture, "--dir", dir)
	require.NoError(t, err, out)

	for _, name := range []string{
		"reconciliation_2025-01-run.pdf",
		"reconciliation_2025-01-run.xlsx",
		"reconciliation_summary_2025-01-run.csv",
	} {
		path := filepath.Join(dir, "exports", name)
		_, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.Contains(t, out, path)
	}

	summary, err := os.ReadFile(filepath.Join(dir, "exports", "reconciliation_summary_2025-01-run.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Category,Count\nMatched,1\nAmount mismatch,1\nStatement only,1\nLedger only,0\n", string(summary))

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "report", entries[len(entries)-1].Command)
	assert.Equal(t, "2025-01-run", entries[len(entries)-1].RunID)
}

func TestReport_SingleFormatIsIdempotent(t *testing.T) {
	out := t.TempDir()
	_, err := runReconcile(t, "report", "--result", resultFixture, "--format", "pdf", "--out", out, "--dir", t.TempDir())
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(out, "reconciliation_2025-01-run.pdf"))
	require.NoError(t, err)

	_, err = runReconcile(t, "report", "--result", resultFixture, "--format", "pdf", "--out", out, "--dir", t.TempDir())
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(out, "reconciliation_2025-01-run.pdf"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReport_BadFormat(t *testing.T) {
	out, err := runReconcile(t, "report", "--result", resultFixture, "--format", "docx")
	require.Error(t, err)
	assert.Contains(t, out, `unknown export format "docx"`)
}
