package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vendbees/ventory/internal/core"
	"github.com/xuri/excelize/v2"
)

// xlsxContentType is the MIME type for .xlsx workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Remote is a persistence backend over a workbook held in a remote document
// store: GET downloads the whole workbook, PUT replaces it. There is no
// partial update and no cheap staleness signal, so every sync cycle
// re-fetches and every persist re-uploads all tables.
type Remote struct {
	url    string
	token  string
	client *http.Client
}

// NewRemote creates a backend for the document at url. An optional bearer
// token is sent on every request when non-empty.
func NewRemote(url, token string) *Remote {
	return &Remote{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchAll downloads the workbook and reads every registered table's sheet.
func (r *Remote) FetchAll(ctx context.Context) (map[string][]core.Row, error) {
	f, err := r.download(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readTables(f), nil
}

// VersionMarker returns an empty marker: the store cannot report staleness
// cheaply, so the sync controller re-fetches on every cycle.
func (r *Remote) VersionMarker(ctx context.Context) (string, error) {
	return "", nil
}

// Persist downloads the current workbook, replaces the one sheet, and
// re-uploads the whole document.
func (r *Remote) Persist(ctx context.Context, table string, rows []core.Row) error {
	def, ok := core.Get(table)
	if !ok {
		return fmt.Errorf("%w: unknown table %q", core.ErrPersistenceFailure, table)
	}
	if def.Info.ReadOnly {
		return fmt.Errorf("%w: table %q is read-only", core.ErrPersistenceFailure, table)
	}

	f, err := r.download(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistenceFailure, err)
	}
	defer f.Close()

	if err := replaceSheet(f, def, rows); err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistenceFailure, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("%w: encode workbook: %v", core.ErrPersistenceFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.url, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrPersistenceFailure, err)
	}
	req.Header.Set("Content-Type", xlsxContentType)
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: upload: %v", core.ErrPersistenceFailure, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: upload: unexpected status %s", core.ErrPersistenceFailure, resp.Status)
	}
	return nil
}

// download fetches and parses the remote workbook.
func (r *Remote) download(ctx context.Context) (*excelize.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", xlsxContentType)
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download: %v", core.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: download: unexpected status %s", core.ErrSourceUnavailable, resp.Status)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode workbook: %v", core.ErrParseError, err)
	}
	return f, nil
}

func (r *Remote) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}
