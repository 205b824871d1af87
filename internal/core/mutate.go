package core

// mutate.go implements the sell/refill mutation engine. Each operation is a
// read-modify-write against the table store plus an append to its audit log,
// committed as one critical section under the store lock, followed by a
// persistence request to the backend.
//
// Persistence runs outside the lock on a snapshot taken inside it, so slow
// backend I/O never blocks readers or the sync loop. A sync-triggered
// overwrite can therefore race an in-flight persist; the sync side refreshes
// its marker after every successful persist to keep that window to the I/O
// gap only.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dateLayout matches the date format used by the workbook's log sheets.
const dateLayout = "2006-01-02"

// Sell decrements stock for a (machine, product) key and appends a sales
// log row. Returns the new stock level.
//
// Fails with ErrInvalidArgument for blank ids or a non-positive quantity,
// ErrNotFound when no stock row exists, and ErrInsufficientStock when the
// current level is below the requested quantity; stock and logs are
// untouched on failure. A persistence failure keeps the in-memory change
// and is returned alongside the new level.
func (s *Service) Sell(ctx context.Context, machineID, productID string, qty int, price float64) (int, error) {
	machineID = strings.TrimSpace(machineID)
	productID = strings.TrimSpace(productID)
	if machineID == "" || productID == "" {
		return 0, fmt.Errorf("%w: machine and product ids are required", ErrInvalidArgument)
	}
	if qty <= 0 {
		return 0, fmt.Errorf("%w: sell quantity must be a positive integer, got %d", ErrInvalidArgument, qty)
	}

	opID := uuid.New().String()
	var newStock float64
	var snap map[string][]Row

	err := s.store.Update(func(tx *Tx) error {
		row := findStockRow(tx.Rows(TableStock), machineID, productID)
		if row == nil {
			return fmt.Errorf("%w: no stock row for machine %q product %q", ErrNotFound, machineID, productID)
		}
		current, _ := CellNumber(row[ColCurrentStock])
		if current < float64(qty) {
			return fmt.Errorf("%w: have %v, requested %d", ErrInsufficientStock, current, qty)
		}

		newStock = current - float64(qty)
		row[ColCurrentStock] = newStock
		tx.AppendRow(TableSales, Row{
			ColDate:         time.Now().Format(dateLayout),
			ColMachineID:    machineID,
			ColProductID:    productID,
			ColQtySold:      float64(qty),
			ColSellingPrice: price,
		})
		snap = tx.Snapshot(TableStock, TableSales)
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("sale recorded",
		"op_id", opID,
		"machine_id", machineID,
		"product_id", productID,
		"qty", qty,
		"new_stock", newStock,
	)

	if err := s.persistTables(ctx, snap, TableStock, TableSales); err != nil {
		slog.Error("sale persisted in memory only", "op_id", opID, "error", err)
		return int(newStock), err
	}
	return int(newStock), nil
}

// Refill increments stock for a (machine, product) key, creating the row
// when absent, and appends a refill log row. Returns the new stock level.
//
// Quantity must be a non-negative integer. A blank refiller id falls back
// to the configured default.
func (s *Service) Refill(ctx context.Context, machineID, productID string, qty int, refillerID string) (int, error) {
	machineID = strings.TrimSpace(machineID)
	productID = strings.TrimSpace(productID)
	if machineID == "" || productID == "" {
		return 0, fmt.Errorf("%w: machine and product ids are required", ErrInvalidArgument)
	}
	if qty < 0 {
		return 0, fmt.Errorf("%w: refill quantity must be non-negative, got %d", ErrInvalidArgument, qty)
	}
	refillerID = strings.TrimSpace(refillerID)
	if refillerID == "" {
		refillerID = s.opts.DefaultRefillerID
	}

	opID := uuid.New().String()
	var newStock float64
	var snap map[string][]Row

	err := s.store.Update(func(tx *Tx) error {
		if row := findStockRow(tx.Rows(TableStock), machineID, productID); row != nil {
			current, _ := CellNumber(row[ColCurrentStock])
			newStock = current + float64(qty)
			row[ColCurrentStock] = newStock
		} else {
			newStock = float64(qty)
			tx.AppendRow(TableStock, Row{
				ColMachineID:    machineID,
				ColProductID:    productID,
				ColCurrentStock: newStock,
			})
		}
		tx.AppendRow(TableRefills, Row{
			ColDate:       time.Now().Format(dateLayout),
			ColRefillerID: refillerID,
			ColMachineID:  machineID,
			ColProductID:  productID,
			ColQty:        float64(qty),
		})
		snap = tx.Snapshot(TableStock, TableRefills)
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("refill recorded",
		"op_id", opID,
		"machine_id", machineID,
		"product_id", productID,
		"qty", qty,
		"refiller_id", refillerID,
		"new_stock", newStock,
	)

	if err := s.persistTables(ctx, snap, TableStock, TableRefills); err != nil {
		slog.Error("refill persisted in memory only", "op_id", opID, "error", err)
		return int(newStock), err
	}
	return int(newStock), nil
}

// findStockRow returns the first stock row matching the key, or nil.
// Duplicate keys are a pre-existing anomaly; only the first row is used.
func findStockRow(rows []Row, machineID, productID string) Row {
	for _, row := range rows {
		if CellString(row[ColMachineID]) == machineID && CellString(row[ColProductID]) == productID {
			return row
		}
	}
	return nil
}

// persistTables writes the snapshotted tables back to the backend and then
// refreshes the sync marker so the write is not seen as an external edit.
func (s *Service) persistTables(ctx context.Context, snap map[string][]Row, tables ...string) error {
	for _, table := range tables {
		if err := s.backend.Persist(ctx, table, snap[table]); err != nil {
			return err
		}
	}
	s.sync.RefreshMarker(ctx)
	return nil
}
