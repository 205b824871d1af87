package core

// derive.go reconstructs the stock table from historical transaction logs.
// It runs when a load cycle finds no authoritative stock snapshot, and its
// result is treated as authoritative until the next external data refresh
// supplies a non-empty one. This is a full rebuild, never incremental.

import "sort"

type stockKey struct {
	machine string
	product string
}

// DeriveStock rebuilds current stock levels by replaying the refill and
// sales logs in stored order: refills add, sales subtract, and every final
// quantity is clamped to a minimum of 0. Rows missing a machine id, product
// id, or a numeric quantity are skipped. Output rows are sorted by
// (machine, product) so the rebuild is deterministic.
func DeriveStock(refills, sales []Row) []Row {
	totals := make(map[stockKey]float64)

	for _, row := range refills {
		key, qty, ok := logEntry(row, ColQty)
		if !ok {
			continue
		}
		totals[key] += qty
	}

	for _, row := range sales {
		key, qty, ok := logEntry(row, ColQtySold)
		if !ok {
			continue
		}
		totals[key] -= qty
	}

	keys := make([]stockKey, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].machine != keys[j].machine {
			return keys[i].machine < keys[j].machine
		}
		return keys[i].product < keys[j].product
	})

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		qty := totals[key]
		if qty < 0 {
			qty = 0
		}
		rows = append(rows, Row{
			ColMachineID:    key.machine,
			ColProductID:    key.product,
			ColCurrentStock: qty,
		})
	}
	return rows
}

// logEntry extracts the (machine, product) key and quantity from a log row.
// Returns false when the ids are missing/"nan" or the quantity is not a
// number. Quantity field aliases are already resolved by normalization.
func logEntry(row Row, qtyCol string) (stockKey, float64, bool) {
	machine := row[ColMachineID]
	product := row[ColProductID]
	if MissingID(machine) || MissingID(product) {
		return stockKey{}, 0, false
	}
	qty, ok := CellNumber(row[qtyCol])
	if !ok {
		return stockKey{}, 0, false
	}
	return stockKey{machine: CellString(machine), product: CellString(product)}, qty, true
}
