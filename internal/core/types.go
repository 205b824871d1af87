// Package core provides the business logic for the inventory mirror:
// the in-memory table store, normalization of raw workbook data, stock
// derivation from transaction logs, source synchronization, and the
// sell/refill mutation engine. This package has no HTTP dependencies and
// can be driven by any frontend.
package core

import "context"

// Row is a single record mapping column names to cell values.
// Values are string, float64, or nil (missing/null).
type Row map[string]any

// FieldType represents the expected data type for a table column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldDate
)

// FieldSpec defines the schema for a single table column.
type FieldSpec struct {
	Name    string    // Canonical column header as written to the workbook
	Type    FieldType // Expected data type
	Aliases []string  // Alternate headers resolved to Name during normalization
}

// TableInfo contains identifying information about a logical table.
type TableInfo struct {
	Key        string   // Unique identifier: "stock"
	Sheet      string   // Workbook sheet name: "Current_Stock"
	Columns    []string // Canonical header column names
	KeyColumns []string // Column(s) that identify a row; empty for append-only logs
	AppendOnly bool     // Log tables: rows are only ever appended
	RequireKey bool     // Drop rows whose first key column is missing (sheet artifacts)
	ReadOnly   bool     // Reference tables never written back
}

// TableDefinition contains everything needed to load and clean a table.
type TableDefinition struct {
	Info       TableInfo
	FieldSpecs []FieldSpec
}

// Spec returns the FieldSpec for a canonical column name.
func (d TableDefinition) Spec(name string) (FieldSpec, bool) {
	for _, spec := range d.FieldSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Canonical resolves a (trimmed) header name to its canonical column name.
// Unknown headers are returned unchanged.
func (d TableDefinition) Canonical(header string) string {
	for _, spec := range d.FieldSpecs {
		if spec.Name == header {
			return spec.Name
		}
		for _, alias := range spec.Aliases {
			if alias == header {
				return spec.Name
			}
		}
	}
	return header
}

// Logical table keys. Table definitions are registered under these keys
// by the tables package.
const (
	TableProducts  = "products"
	TableMachines  = "machines"
	TableStock     = "stock"
	TableSales     = "sales"
	TablePurchases = "purchases"
	TableRefills   = "refills"
	TableVendors   = "vendors"
)

// Canonical column names shared between the table definitions, the
// derivation engine, and the mutation engine.
const (
	ColMachineID    = "Machine_ID"
	ColProductID    = "Product_ID"
	ColCurrentStock = "Current_Stock"
	ColUnitCost     = "Unit_Cost"
	ColStatus       = "Status"
	ColDate         = "Date"
	ColQtySold      = "Qty Sold"
	ColQty          = "Qty"
	ColSellingPrice = "Selling_Price"
	ColRefillerID   = "Refiller_ID"
)

// Backend is the persistence collaborator behind the table store.
// Implementations mirror a multi-sheet workbook: a local file or a remote
// document store (full download, full re-upload).
type Backend interface {
	// FetchAll returns the raw rows for every table, keyed by table key.
	// Missing sheets yield an empty (or absent) entry rather than an error;
	// a whole-source failure wraps ErrSourceUnavailable.
	FetchAll(ctx context.Context) (map[string][]Row, error)

	// VersionMarker returns a comparable staleness marker for the source.
	// An empty marker means the source has no cheap staleness signal and
	// must be re-fetched on every sync cycle.
	VersionMarker(ctx context.Context) (string, error)

	// Persist writes one table back to the source. Failures wrap
	// ErrPersistenceFailure.
	Persist(ctx context.Context, table string, rows []Row) error
}
