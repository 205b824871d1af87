// Package source implements the persistence backends behind the inventory
// mirror. Both speak the same multi-sheet workbook format via excelize:
//
//   - Workbook reads and writes a local .xlsx file in place, using the
//     file's modification time as the staleness marker.
//   - Remote mirrors a workbook held in a remote document store over HTTP:
//     full download on fetch, full re-upload on every persist, with no
//     cheap staleness signal.
//
// Sheet-level decode problems degrade the affected table to empty rather
// than failing a whole load cycle; source-level failures surface as
// core.ErrSourceUnavailable or core.ErrParseError.
package source

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/vendbees/ventory/internal/core"
	"github.com/xuri/excelize/v2"
)

// readTables decodes every registered table's sheet from an open workbook.
// The first sheet row is the header; missing sheets yield empty tables.
func readTables(f *excelize.File) map[string][]core.Row {
	out := make(map[string][]core.Row, core.TableCount())
	for _, def := range core.All() {
		out[def.Info.Key] = readSheet(f, def)
	}
	return out
}

// readSheet decodes one sheet into raw rows. Cell values stay as the
// strings excelize reports; normalization handles typing.
func readSheet(f *excelize.File, def core.TableDefinition) []core.Row {
	idx, err := f.GetSheetIndex(def.Info.Sheet)
	if err != nil || idx < 0 {
		slog.Warn("sheet not found in workbook", "sheet", def.Info.Sheet, "table", def.Info.Key)
		return []core.Row{}
	}

	cells, err := f.GetRows(def.Info.Sheet)
	if err != nil {
		slog.Warn("sheet unreadable, treating table as empty",
			"sheet", def.Info.Sheet,
			"error", fmt.Errorf("%w: %v", core.ErrParseError, err),
		)
		return []core.Row{}
	}
	if len(cells) < 2 {
		return []core.Row{}
	}

	header := cells[0]
	rows := make([]core.Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(core.Row, len(header))
		for i, h := range header {
			if strings.TrimSpace(h) == "" {
				continue
			}
			var v string
			if i < len(line) {
				v = line[i]
			}
			row[h] = v
		}
		rows = append(rows, row)
	}
	return rows
}

// replaceSheet rewrites one table's sheet wholesale, preserving all other
// sheets in the workbook. Canonical columns come first in their declared
// order; any extra columns present in the data follow, sorted.
func replaceSheet(f *excelize.File, def core.TableDefinition, rows []core.Row) error {
	sheet := def.Info.Sheet
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("delete sheet %s: %w", sheet, err)
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	columns := sheetColumns(def, rows)
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for n, row := range rows {
		line := make([]any, len(columns))
		for i, col := range columns {
			line[i] = exportCell(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", n, err)
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return fmt.Errorf("write row %d: %w", n, err)
		}
	}
	return nil
}

// sheetColumns returns the header order for a sheet write: canonical
// columns first, then any extra columns seen in the data.
func sheetColumns(def core.TableDefinition, rows []core.Row) []string {
	columns := append([]string(nil), def.Info.Columns...)
	known := make(map[string]bool, len(columns))
	for _, col := range columns {
		known[col] = true
	}

	var extras []string
	for _, row := range rows {
		for col := range row {
			if !known[col] {
				known[col] = true
				extras = append(extras, col)
			}
		}
	}
	sort.Strings(extras)
	return append(columns, extras...)
}

// exportCell converts an in-memory cell value to what excelize writes.
func exportCell(v any) any {
	switch val := v.(type) {
	case nil:
		return ""
	case string, float64, int:
		return val
	default:
		return fmt.Sprint(val)
	}
}
