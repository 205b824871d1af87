package core

// convert.go provides cell value coercion for data imported from workbooks.
//
// These functions handle the messy reality of spreadsheet data:
//   - Numbers arriving as text with thousands separators ("1,200.50")
//   - Currency symbols and placeholder markers ("-", "")
//   - NaN/Inf sentinels leaking out of spreadsheet formulas
//   - Merged-cell and title artifacts producing blank or "nan" ids
//
// All coercion is total: bad input degrades to 0 or nil, never an error.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses numeric-looking text into a float64.
// Handles currency symbols, thousands separators, and accounting format
// (parentheses for negative). Returns false for anything else.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, "₹", "") // Rupee
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CellNumber extracts a numeric value from a cell.
// Returns false for nil, NaN/Inf, and text that does not parse as a number.
func CellNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case int:
		return float64(val), true
	case string:
		return ParseNumber(val)
	default:
		return 0, false
	}
}

// CellString renders a cell value for identity comparisons.
// Numbers print without a trailing ".0" so that a numeric id matches its
// text spelling. Nil renders as the empty string.
func CellString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	default:
		return ""
	}
}

// MissingID reports whether an id cell is absent for matching purposes:
// nil, blank, or the literal "nan" text a spreadsheet export leaves behind.
func MissingID(v any) bool {
	s := CellString(v)
	return s == "" || strings.EqualFold(s, "nan")
}

// cloneRow returns an independent copy of a row.
func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// cloneRows returns an independent copy of a table.
// The result is always non-nil so callers can range and marshal it safely.
func cloneRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneRow(row))
	}
	return out
}
