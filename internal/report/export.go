package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/conciliar/reconcile/internal/model"
)

// Format is an export artifact type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Formats returns every export format in the order they are written.
func Formats() []Format {
	return []Format{FormatPDF, FormatXLSX, FormatCSV}
}

// ParseFormats accepts a format name, "excel" for xlsx, or "all".
func ParseFormats(s string) ([]Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return Formats(), nil
	case "pdf":
		return []Format{FormatPDF}, nil
	case "xlsx", "excel":
		return []Format{FormatXLSX}, nil
	case "csv":
		return []Format{FormatCSV}, nil
	}
	return nil, fmt.Errorf("unknown export format %q", s)
}

// FileName returns the artifact name for format f of run. The run suffix is
// omitted when run is empty.
func FileName(f Format, run string) string {
	base := "reconciliation"
	if f == FormatCSV {
		base = "reconciliation_summary"
	}
	if run = sanitize(run); run != "" {
		base += "_" + run
	}
	return base + "." + string(f)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// Exporter writes artifacts for a result using one shared column filter.
type Exporter struct {
	filter ColumnFilter
	log    zerolog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(filter ColumnFilter, log zerolog.Logger) *Exporter {
	return &Exporter{filter: filter, log: log}
}

// Filter returns the exporter's column filter.
func (e *Exporter) Filter() ColumnFilter { return e.filter }

// Write renders r in format f to w.
func (e *Exporter) Write(w io.Writer, f Format, r *model.Result) error {
	switch f {
	case FormatPDF:
		return WritePDF(w, r, e.filter)
	case FormatXLSX:
		return WriteXLSX(w, r, e.filter)
	case FormatCSV:
		return WriteSummaryCSV(w, r)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// Artifact is one exported file.
type Artifact struct {
	Format Format
	Path   string
	Size   int
}

// Export writes one file per format into dir and returns them in order. Every
// format is rendered in memory before any file is created, so a render failure
// leaves no file behind.
func (e *Exporter) Export(dir string, r *model.Result, formats ...Format) ([]Artifact, error) {
	if len(formats) == 0 {
		formats = Formats()
	}
	if r == nil {
		r = &model.Result{}
	}

	rendered := make([]bytes.Buffer, len(formats))
	for i, f := range formats {
		if err := e.Write(&rendered[i], f, r); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", f, err)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	var out []Artifact
	for i, f := range formats {
		buf := &rendered[i]
		path := filepath.Join(dir, FileName(f, r.RunID))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return out, fmt.Errorf("writing %s: %w", f, err)
		}
		e.log.Info().
			Str("format", string(f)).
			Str("path", path).
			Int("bytes", buf.Len()).
			Str("run", r.RunID).
			Msg("report exported")
		out = append(out, Artifact{Format: f, Path: path, Size: buf.Len()})
	}
	return out, nil
}
