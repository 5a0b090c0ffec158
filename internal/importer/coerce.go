package importer

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/conciliar/reconcile/internal/model"
)

// ParseAmount reads a monetary cell. It accepts plain decimals ("100.50") and
// Portuguese-style grouping ("2.507,55", "2 507,55"), currency words ("Kz 1 000,00")
// and accounting negatives ("(100,00)"). Anything it cannot read becomes zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' || r == '−':
			neg = true
		case unicode.IsSpace(r), unicode.IsLetter(r), unicode.IsSymbol(r), r == '+', r == '\'':
			// grouping spaces, currency codes and signs
		default:
			return decimal.Zero
		}
	}

	digits := normalizeSeparators(b.String())
	if digits == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

// CellAmount reads a monetary cell. Numeric workbook cells are already machine
// formatted and are read as-is; text cells go through ParseAmount.
func CellAmount(c model.Cell) decimal.Decimal {
	if c.Numeric {
		if d, err := decimal.NewFromString(strings.TrimSpace(c.Value)); err == nil {
			return d
		}
	}
	return ParseAmount(c.Value)
}

// normalizeSeparators rewrites s so that '.' is the only, decimal, separator.
// When both separators appear the last one is decimal. A lone comma is decimal.
// A lone dot followed by exactly three digits is grouping ("1.500").
func normalizeSeparators(s string) string {
	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case dot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
		intPart, frac := s[:dot], s[dot+1:]
		if len(frac) == 3 && intPart != "" && strings.TrimLeft(intPart, "0") != "" {
			return intPart + frac
		}
	}
	return s
}

var dateLayouts = []string{
	model.DateFormat,
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"20060102",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// NormalizeDate rewrites a recognized date, including an Excel serial day number,
// to model.DateFormat. Unrecognized text is returned trimmed but otherwise unchanged.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateFormat)
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(model.DateFormat)
		}
	}
	return s
}
