package core

import (
	"reflect"
	"testing"
)

func TestDeriveStockReplaysLogs(t *testing.T) {
	refills := []Row{
		{ColMachineID: "M1", ColProductID: "P1", ColQty: float64(10)},
		{ColMachineID: "M1", ColProductID: "P2", ColQty: float64(3)},
	}
	sales := []Row{
		{ColMachineID: "M1", ColProductID: "P1", ColQtySold: float64(4)},
	}

	got := DeriveStock(refills, sales)
	want := []Row{
		{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: float64(6)},
		{ColMachineID: "M1", ColProductID: "P2", ColCurrentStock: float64(3)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DeriveStock() = %v, want %v", got, want)
	}
}

func TestDeriveStockClampsNegative(t *testing.T) {
	sales := []Row{
		{ColMachineID: "M1", ColProductID: "P1", ColQtySold: float64(5)},
	}

	got := DeriveStock(nil, sales)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0][ColCurrentStock] != float64(0) {
		t.Errorf("oversold quantity = %v, want clamped to 0", got[0][ColCurrentStock])
	}
}

func TestDeriveStockSkipsBadLogRows(t *testing.T) {
	refills := []Row{
		{ColMachineID: "M1", ColProductID: "P1", ColQty: float64(10)},
		{ColMachineID: nil, ColProductID: "P1", ColQty: float64(99)},
		{ColMachineID: "M1", ColProductID: "nan", ColQty: float64(99)},
		{ColMachineID: "M1", ColProductID: "P1", ColQty: "not a number"},
	}
	sales := []Row{
		{ColMachineID: "M1", ColProductID: "P1", ColQtySold: nil},
	}

	got := DeriveStock(refills, sales)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0][ColCurrentStock] != float64(10) {
		t.Errorf("stock = %v, want 10 (bad rows skipped)", got[0][ColCurrentStock])
	}
}

func TestDeriveStockDeterministic(t *testing.T) {
	refills := []Row{
		{ColMachineID: "M2", ColProductID: "P1", ColQty: float64(1)},
		{ColMachineID: "M1", ColProductID: "P2", ColQty: float64(2)},
		{ColMachineID: "M1", ColProductID: "P1", ColQty: float64(3)},
	}

	first := DeriveStock(refills, nil)
	for i := 0; i < 10; i++ {
		if got := DeriveStock(refills, nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v, want %v", i, got, first)
		}
	}

	// Sorted by (machine, product).
	if first[0][ColMachineID] != "M1" || first[0][ColProductID] != "P1" {
		t.Errorf("first row = (%v, %v), want (M1, P1)", first[0][ColMachineID], first[0][ColProductID])
	}
	if first[2][ColMachineID] != "M2" {
		t.Errorf("last row machine = %v, want M2", first[2][ColMachineID])
	}
}

func TestDeriveStockEmptyLogs(t *testing.T) {
	got := DeriveStock(nil, nil)
	if got == nil {
		t.Fatal("DeriveStock(nil, nil) = nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
}
