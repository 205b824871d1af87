package core

// normalize.go cleans raw rows as decoded from the backing workbook into
// the canonical in-memory form. Normalization is deterministic and total:
// malformed input is never an error, worst case a cell degrades to 0/nil or
// a row is dropped. Running it twice yields the same result, so already
// normalized data passes through unchanged.

import (
	"math"
	"sort"
	"strings"
)

// NormalizeTable cleans a raw row collection according to a table schema:
//
//   - column headers are trimmed and aliases resolved to canonical names
//   - numeric columns are coerced (grouping punctuation parsed, "-"/"" to 0,
//     NaN/Inf sentinels to nil)
//   - text cells are trimmed; blank cells become nil
//   - rows that are nil across all columns are dropped
//   - for tables with RequireKey, rows whose primary id is missing are
//     dropped (defends against sheet title and merged-cell artifacts)
func NormalizeTable(def TableDefinition, raw []Row) []Row {
	out := make([]Row, 0, len(raw))
	for _, rawRow := range raw {
		if row := normalizeRow(def, rawRow); row != nil {
			out = append(out, row)
		}
	}
	return out
}

// normalizeRow cleans a single row. Returns nil when the row is dropped.
func normalizeRow(def TableDefinition, raw Row) Row {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := make(Row, len(raw))
	allNull := true

	// Two passes so a canonical header wins over an alias when a source
	// sheet carries both spellings.
	for pass := 0; pass < 2; pass++ {
		for _, k := range keys {
			header := strings.TrimSpace(k)
			canon := def.Canonical(header)
			isAlias := canon != header
			if (pass == 0) == isAlias {
				continue
			}
			if isAlias {
				if _, taken := row[canon]; taken {
					continue
				}
			}
			v := normalizeCell(def, canon, raw[k])
			row[canon] = v
			if v != nil {
				allNull = false
			}
		}
	}

	if len(row) == 0 || allNull {
		return nil
	}
	if def.Info.RequireKey && len(def.Info.KeyColumns) > 0 {
		if MissingID(row[def.Info.KeyColumns[0]]) {
			return nil
		}
	}
	return row
}

// normalizeCell cleans one cell based on the column's declared type.
// Columns without a FieldSpec get the generic text treatment.
func normalizeCell(def TableDefinition, canon string, v any) any {
	if spec, ok := def.Spec(canon); ok && spec.Type == FieldNumeric {
		return normalizeNumeric(v)
	}
	return normalizeText(v)
}

// normalizeNumeric coerces a numeric column cell:
// placeholder markers ("-", empty) become 0, NaN/Inf sentinels become nil,
// parsable text becomes a number, anything else degrades to 0.
func normalizeNumeric(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case int:
		return float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" || s == "-" {
			return float64(0)
		}
		switch strings.ToLower(s) {
		case "nan", "inf", "+inf", "-inf", "#num!":
			return nil
		}
		if f, ok := ParseNumber(s); ok {
			return f
		}
		return float64(0)
	default:
		return nil
	}
}

// normalizeText trims text cells, turning blanks into nil. Numeric-looking
// text with grouping punctuation is parsed to a number; plain digit strings
// are left alone so ids keep their spelling.
func normalizeText(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case int:
		return float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		if strings.Contains(s, ",") {
			if f, ok := ParseNumber(s); ok {
				return f
			}
		}
		return s
	default:
		return v
	}
}
