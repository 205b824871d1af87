package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// stubBackend is an in-memory Backend for service and sync tests.
type stubBackend struct {
	mu         sync.Mutex
	data       map[string][]Row
	marker     string
	fetchErr   error
	markerErr  error
	persistErr error
	fetchCount int
	persisted  map[string][]Row
}

func (b *stubBackend) FetchAll(ctx context.Context) (map[string][]Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchCount++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return b.data, nil
}

func (b *stubBackend) VersionMarker(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.marker, b.markerErr
}

func (b *stubBackend) Persist(ctx context.Context, table string, rows []Row) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.persistErr != nil {
		return b.persistErr
	}
	if b.persisted == nil {
		b.persisted = make(map[string][]Row)
	}
	b.persisted[table] = rows
	return nil
}

func (b *stubBackend) persistedRows(table string) []Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.persisted[table]
}

func newTestService(backend *stubBackend) *Service {
	return NewService(backend, Options{})
}

func seedStock(s *Service, rows ...Row) {
	s.Store().Swap(map[string][]Row{TableStock: rows})
}

func TestSellDecrementsStockAndLogs(t *testing.T) {
	backend := &stubBackend{}
	svc := newTestService(backend)
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(10)})

	newStock, err := svc.Sell(context.Background(), "M1", "P1", 3, 25.0)
	if err != nil {
		t.Fatalf("Sell() error = %v", err)
	}
	if newStock != 7 {
		t.Errorf("Sell() newStock = %d, want 7", newStock)
	}

	stock := svc.Store().Get(TableStock)
	if stock[0][ColCurrentStock] != float64(7) {
		t.Errorf("stock row = %v, want 7", stock[0][ColCurrentStock])
	}

	sales := svc.Store().Get(TableSales)
	if len(sales) != 1 {
		t.Fatalf("sales log has %d rows, want 1", len(sales))
	}
	if sales[0][ColQtySold] != float64(3) || sales[0][ColSellingPrice] != 25.0 {
		t.Errorf("sales row = %v, want qty 3 at price 25", sales[0])
	}
	if sales[0][ColDate] == nil {
		t.Error("sales row has no date")
	}

	if got := backend.persistedRows(TableStock); len(got) != 1 {
		t.Errorf("persisted stock has %d rows, want 1", len(got))
	}
	if got := backend.persistedRows(TableSales); len(got) != 1 {
		t.Errorf("persisted sales has %d rows, want 1", len(got))
	}
}

func TestSellUnknownItem(t *testing.T) {
	svc := newTestService(&stubBackend{})
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(10)})

	_, err := svc.Sell(context.Background(), "M1", "P9", 1, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Sell() error = %v, want ErrNotFound", err)
	}
	if sales := svc.Store().Get(TableSales); len(sales) != 0 {
		t.Errorf("sales log has %d rows after failed sell, want 0", len(sales))
	}
}

func TestSellInsufficientStockLeavesStateUnchanged(t *testing.T) {
	backend := &stubBackend{}
	svc := newTestService(backend)
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(2)})

	_, err := svc.Sell(context.Background(), "M1", "P1", 5, 0)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Sell() error = %v, want ErrInsufficientStock", err)
	}

	stock := svc.Store().Get(TableStock)
	if stock[0][ColCurrentStock] != float64(2) {
		t.Errorf("stock = %v after failed sell, want 2", stock[0][ColCurrentStock])
	}
	if sales := svc.Store().Get(TableSales); len(sales) != 0 {
		t.Errorf("sales log has %d rows after failed sell, want 0", len(sales))
	}
	if backend.persistedRows(TableStock) != nil {
		t.Error("failed sell must not persist anything")
	}
}

func TestSellInvalidArguments(t *testing.T) {
	svc := newTestService(&stubBackend{})
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(10)})

	tests := []struct {
		name      string
		machineID string
		productID string
		qty       int
	}{
		{name: "blank machine id", machineID: "  ", productID: "P1", qty: 1},
		{name: "blank product id", machineID: "M1", productID: "", qty: 1},
		{name: "zero quantity", machineID: "M1", productID: "P1", qty: 0},
		{name: "negative quantity", machineID: "M1", productID: "P1", qty: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Sell(context.Background(), tt.machineID, tt.productID, tt.qty, 0)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Sell() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestSellMatchesNumericIDSpelling(t *testing.T) {
	svc := newTestService(&stubBackend{})
	// A stock sheet can hold ids as numbers; a request sends them as text.
	seedStock(svc, Row{ColMachineID: float64(101), ColProductID: "P1", ColCurrentStock: float64(4)})

	newStock, err := svc.Sell(context.Background(), "101", "P1", 1, 0)
	if err != nil {
		t.Fatalf("Sell() error = %v", err)
	}
	if newStock != 3 {
		t.Errorf("Sell() newStock = %d, want 3", newStock)
	}
}

func TestRefillExistingRow(t *testing.T) {
	svc := newTestService(&stubBackend{})
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(2)})

	newStock, err := svc.Refill(context.Background(), "M1", "P1", 5, "REF-007")
	if err != nil {
		t.Fatalf("Refill() error = %v", err)
	}
	if newStock != 7 {
		t.Errorf("Refill() newStock = %d, want 7", newStock)
	}

	refills := svc.Store().Get(TableRefills)
	if len(refills) != 1 {
		t.Fatalf("refill log has %d rows, want 1", len(refills))
	}
	if refills[0][ColRefillerID] != "REF-007" {
		t.Errorf("refiller = %v, want REF-007", refills[0][ColRefillerID])
	}
}

func TestRefillCreatesMissingRowThenSellWorks(t *testing.T) {
	svc := newTestService(&stubBackend{})

	newStock, err := svc.Refill(context.Background(), "M1", "P9", 5, "")
	if err != nil {
		t.Fatalf("Refill() error = %v", err)
	}
	if newStock != 5 {
		t.Errorf("Refill() newStock = %d, want 5", newStock)
	}

	stock := svc.Store().Get(TableStock)
	if len(stock) != 1 {
		t.Fatalf("stock has %d rows, want 1", len(stock))
	}

	refills := svc.Store().Get(TableRefills)
	if len(refills) != 1 {
		t.Fatalf("refill log has %d rows, want 1", len(refills))
	}
	if refills[0][ColRefillerID] != DefaultRefillerID {
		t.Errorf("blank refiller = %v, want default %q", refills[0][ColRefillerID], DefaultRefillerID)
	}

	got, err := svc.Sell(context.Background(), "M1", "P9", 3, 10)
	if err != nil {
		t.Fatalf("Sell() after refill error = %v", err)
	}
	if got != 2 {
		t.Errorf("Sell() after refill newStock = %d, want 2", got)
	}
	if sales := svc.Store().Get(TableSales); len(sales) != 1 {
		t.Errorf("sales log has %d rows, want exactly 1", len(sales))
	}
}

func TestRefillNegativeQuantity(t *testing.T) {
	svc := newTestService(&stubBackend{})
	_, err := svc.Refill(context.Background(), "M1", "P1", -1, "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Refill() error = %v, want ErrInvalidArgument", err)
	}
}

func TestSellPersistenceFailureKeepsMemoryChange(t *testing.T) {
	backend := &stubBackend{
		persistErr: fmt.Errorf("%w: disk full", ErrPersistenceFailure),
	}
	svc := newTestService(backend)
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(10)})

	newStock, err := svc.Sell(context.Background(), "M1", "P1", 4, 0)
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("Sell() error = %v, want ErrPersistenceFailure", err)
	}
	if newStock != 6 {
		t.Errorf("Sell() newStock = %d, want 6 alongside the error", newStock)
	}

	stock := svc.Store().Get(TableStock)
	if stock[0][ColCurrentStock] != float64(6) {
		t.Errorf("in-memory stock = %v, want 6 after failed persist", stock[0][ColCurrentStock])
	}
	if sales := svc.Store().Get(TableSales); len(sales) != 1 {
		t.Errorf("sales log has %d rows, want 1 after failed persist", len(sales))
	}
}

func TestConcurrentSellsNeverOversell(t *testing.T) {
	svc := newTestService(&stubBackend{})
	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(5)})

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Sell(context.Background(), "M1", "P1", 1, 0); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientStock) {
				t.Errorf("Sell() error = %v, want ErrInsufficientStock", err)
			}
		}()
	}
	wg.Wait()

	if successes != 5 {
		t.Errorf("successes = %d, want exactly 5", successes)
	}
	stock := svc.Store().Get(TableStock)
	if stock[0][ColCurrentStock] != float64(0) {
		t.Errorf("final stock = %v, want 0", stock[0][ColCurrentStock])
	}
	if sales := svc.Store().Get(TableSales); len(sales) != 5 {
		t.Errorf("sales log has %d rows, want 5", len(sales))
	}
}

func TestDashboardNeverFails(t *testing.T) {
	svc := newTestService(&stubBackend{})

	data := svc.Dashboard()
	if data.Products == nil || data.Stock == nil || data.Sales == nil {
		t.Error("Dashboard() tables must be empty slices, not nil")
	}
	if data.Metrics != (Metrics{}) {
		t.Errorf("Dashboard() metrics = %+v, want zero on empty store", data.Metrics)
	}

	seedStock(svc, Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(3)})
	data = svc.Dashboard()
	if data.Metrics.TotalUnits != 3 {
		t.Errorf("Dashboard() TotalUnits = %d, want 3", data.Metrics.TotalUnits)
	}
}
