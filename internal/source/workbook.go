package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/vendbees/ventory/internal/core"
	"github.com/xuri/excelize/v2"
)

// Workbook is a persistence backend over a local .xlsx file. Reads load
// every mapped sheet; writes rewrite a single sheet in place, preserving
// everything else in the file so externally maintained sheets survive.
type Workbook struct {
	path string
}

// NewWorkbook creates a backend for the workbook at path.
// The file does not need to exist yet; fetches fail with
// core.ErrSourceUnavailable until it does.
func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

// FetchAll reads every registered table's sheet from the workbook.
func (w *Workbook) FetchAll(ctx context.Context) (map[string][]core.Row, error) {
	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readTables(f), nil
}

// VersionMarker returns the workbook's modification time. External edits
// bump it; the sync controller compares it against the last synced value.
func (w *Workbook) VersionMarker(ctx context.Context) (string, error) {
	fi, err := os.Stat(w.path)
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", core.ErrSourceUnavailable, w.path, err)
	}
	return fi.ModTime().UTC().Format(time.RFC3339Nano), nil
}

// Persist rewrites one table's sheet and saves the workbook in place.
func (w *Workbook) Persist(ctx context.Context, table string, rows []core.Row) error {
	def, ok := core.Get(table)
	if !ok {
		return fmt.Errorf("%w: unknown table %q", core.ErrPersistenceFailure, table)
	}
	if def.Info.ReadOnly {
		return fmt.Errorf("%w: table %q is read-only", core.ErrPersistenceFailure, table)
	}

	f, err := w.open()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistenceFailure, err)
	}
	defer f.Close()

	if err := replaceSheet(f, def, rows); err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistenceFailure, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save %s: %v", core.ErrPersistenceFailure, w.path, err)
	}
	return nil
}

// open opens the workbook, classifying a missing file as source
// unavailability and a corrupt one as a parse error.
func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrSourceUnavailable, w.path, err)
		}
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrParseError, w.path, err)
	}
	return f, nil
}
