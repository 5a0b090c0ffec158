package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/conciliar/reconcile/internal/model"
)

var errNoSheets = errors.New("workbook has no sheets")

// Supported reports whether name has an extension the ingestor can read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// sheet is the cell text of one worksheet. numeric holds the 0-based row and column
// of cells the workbook stores as numbers.
type sheet struct {
	rows    [][]string
	numeric map[[2]int]bool
}

// readFirstSheet returns the first sheet. Delimited text counts as a single sheet.
func readFirstSheet(name string, r io.ReadSeeker) (sheet, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		rows, err := readDelimited(r)
		return sheet{rows: rows}, err
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".xls":
		return readXLS(r)
	default:
		return sheet{}, fmt.Errorf("unsupported file type %q", ext)
	}
}

// readXLSX reads raw cell values. Cells without a type, or typed "n", are numbers.
func readXLSX(r io.Reader) (sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return sheet{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return sheet{}, errNoSheets
	}
	name := sheets[0]
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return sheet{}, fmt.Errorf("reading sheet %q: %w", name, err)
	}

	numeric := make(map[[2]int]bool)
	for i, row := range rows {
		for j, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return sheet{}, err
			}
			typ, err := f.GetCellType(name, axis)
			if err != nil {
				return sheet{}, fmt.Errorf("reading cell %s: %w", axis, err)
			}
			if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
				numeric[[2]int{i, j}] = true
			}
		}
	}
	return sheet{rows: rows, numeric: numeric}, nil
}

// readXLS reads the first sheet of a legacy workbook. The xls reader hides cell
// types, so a value counts as numeric when it is exactly the shortest decimal
// rendering of a float, which is how the reader prints number cells.
func readXLS(r io.ReadSeeker) (sheet, error) {
	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return sheet{}, fmt.Errorf("opening xls workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return sheet{}, errNoSheets
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return sheet{}, errNoSheets
	}

	var rows [][]string
	numeric := make(map[[2]int]bool)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
			if machineNumber(cells[c]) {
				numeric[[2]int{i, c}] = true
			}
		}
		rows = append(rows, cells)
	}
	return sheet{rows: trimTrailingEmpty(rows), numeric: numeric}, nil
}

func machineNumber(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s
}

// readDelimited decodes UTF-8 (with or without BOM) or Windows-1252 text and
// sniffs the delimiter from the first non-empty line.
func readDelimited(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		data, err = charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decoding windows-1252: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading delimited text: %w", err)
	}
	return records, nil
}

func sniffDelimiter(data []byte) rune {
	var line string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}
	best, bestCount := ',', strings.Count(line, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// buildRows turns a sheet into RawRows using the 1-based headerRow. Blank headers
// become "Unnamed: N" (N is the 0-based column) and repeated headers get ".1", ".2"
// suffixes, so headers are unique within a row. A sheet shorter than headerRow has no rows.
func buildRows(s sheet, headerRow int) []model.RawRow {
	if headerRow < 1 {
		headerRow = 1
	}
	grid := s.rows
	if len(grid) < headerRow {
		return nil
	}
	data := grid[headerRow:]

	width := len(grid[headerRow-1])
	for _, rec := range data {
		width = max(width, len(rec))
	}
	headers := uniqueHeaders(grid[headerRow-1], width)

	rows := make([]model.RawRow, 0, len(data))
	for i, rec := range data {
		row := model.RawRow{Number: headerRow + 1 + i, Cells: make([]model.Cell, width)}
		for j, h := range headers {
			var v string
			if j < len(rec) {
				v = rec[j]
			}
			row.Cells[j] = model.Cell{Header: h, Value: v, Numeric: s.numeric[[2]int{headerRow + i, j}]}
		}
		rows = append(rows, row)
	}
	return rows
}

func uniqueHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	seen := make(map[string]int, width)
	for j := range headers {
		h := ""
		if j < len(raw) {
			h = strings.Join(strings.Fields(raw[j]), " ")
		}
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(j)
		}
		base := h
		if n := seen[base]; n > 0 {
			for ; ; n++ {
				h = base + "." + strconv.Itoa(n)
				if seen[h] == 0 {
					break
				}
			}
		}
		seen[base]++
		if h != base {
			seen[h]++
		}
		headers[j] = h
	}
	return headers
}
