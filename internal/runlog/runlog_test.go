package runlog

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Command:   "ingest",
		Target:    "extratos/bfa_janeiro.xlsx",
		Details:   "bfa/column: 42 transactions, 2 skipped",
		Status:    StatusOK,
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ingest", entries[0].Command)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Command = "report"
	e2.RunID = "2025-01-run"
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ingest", entries[0].Command)
	assert.Equal(t, "report", entries[1].Command)

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	original.Details = "2 missing, \"quoted\""
	require.NoError(t, Append(dir, original))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, original.Timestamp.Equal(entries[0].Timestamp))
	assert.Equal(t, original.Details, entries[0].Details)
	assert.Equal(t, original.Target, entries[0].Target)
	assert.Equal(t, StatusOK, entries[0].Status)
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"a"})
	assert.ErrorContains(t, err, "expected 6 fields")

	_, err = UnmarshalEntry([]string{"yesterday", "ingest", "", "", "", "ok"})
	assert.ErrorContains(t, err, "parsing timestamp")
}
