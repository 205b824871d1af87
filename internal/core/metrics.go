package core

// metrics.go computes the dashboard summary figures from the current
// table state. Metrics degrade to zero on bad data, they never fail.

import "strings"

// Metrics summarizes the inventory position across all machines.
type Metrics struct {
	TotalStockValue float64 `json:"totalStockValue"`
	TotalUnits      int     `json:"totalUnits"`
	ActiveMachines  int     `json:"activeMachines"`
	OutOfStock      int     `json:"outOfStock"`
}

// ComputeMetrics derives dashboard metrics from normalized tables:
//
//	TotalStockValue - sum of quantity x unit cost over stock rows, unit cost
//	                  looked up in the product catalog (0 when missing)
//	TotalUnits      - sum of stock quantities
//	ActiveMachines  - machines whose Status is "Active" (trimmed,
//	                  case-insensitive)
//	OutOfStock      - stock rows with a known quantity <= 0
func ComputeMetrics(products, machines, stock []Row) Metrics {
	var m Metrics
	costs := CostMap(products)

	var units float64
	for _, row := range stock {
		qty, ok := CellNumber(row[ColCurrentStock])
		if ok && qty <= 0 {
			m.OutOfStock++
		}
		if !ok {
			qty = 0
		}
		units += qty
		m.TotalStockValue += qty * costs[CellString(row[ColProductID])]
	}
	m.TotalUnits = int(units)

	for _, row := range machines {
		if status, ok := row[ColStatus].(string); ok {
			if strings.EqualFold(strings.TrimSpace(status), "Active") {
				m.ActiveMachines++
			}
		}
	}
	return m
}

// CostMap builds a product id -> unit cost lookup from the product catalog.
// Products without a parsable cost map to 0.
func CostMap(products []Row) map[string]float64 {
	costs := make(map[string]float64, len(products))
	for _, row := range products {
		id := CellString(row[ColProductID])
		if id == "" {
			continue
		}
		cost, ok := CellNumber(row[ColUnitCost])
		if !ok {
			cost = 0
		}
		costs[id] = cost
	}
	return costs
}
