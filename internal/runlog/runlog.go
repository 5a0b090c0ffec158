// Package runlog keeps an append-only CSV audit trail of ingest, validate and
// report runs under <project>/logs/run-log.csv.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp time.Time
	Command   string
	Target    string // file, directory or result the command acted on
	Details   string
	RunID     string
	Status    string
}

// Header is the CSV header for run-log.csv.
const Header = "timestamp,command,target,details,run_id,status"

const (
	numFields    = 6
	logDir       = "logs"
	logName      = "run-log.csv"
	colTimestamp = 0
	colCommand   = 1
	colTarget    = 2
	colDetails   = 3
	colRunID     = 4
	colStatus    = 5
)

// Path returns the run log location for project dir.
func Path(dir string) string {
	return filepath.Join(dir, logDir, logName)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colCommand] = e.Command
	row[colTarget] = e.Target
	row[colDetails] = e.Details
	row[colRunID] = e.RunID
	row[colStatus] = e.Status
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	return Entry{
		Timestamp: ts,
		Command:   record[colCommand],
		Target:    record[colTarget],
		Details:   record[colDetails],
		RunID:     record[colRunID],
		Status:    record[colStatus],
	}, nil
}

// Append writes entries to the run log of project dir, creating the file and
// header if needed.
func Append(dir string, entries ...Entry) error {
	if err := os.MkdirAll(filepath.Join(dir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dir)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries of the run log of project dir. A missing log has no entries.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
