package core

import (
	"math"
	"reflect"
	"testing"
)

// stockDef mirrors the Current_Stock schema for normalization tests.
func stockDef() TableDefinition {
	return TableDefinition{
		Info: TableInfo{
			Key:        "stock",
			Sheet:      "Current_Stock",
			KeyColumns: []string{ColMachineID, ColProductID},
		},
		FieldSpecs: []FieldSpec{
			{Name: ColMachineID, Type: FieldText},
			{Name: ColProductID, Type: FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: ColCurrentStock, Type: FieldNumeric, Aliases: []string{"Stock", "Quantity"}},
		},
	}
}

func productsDef() TableDefinition {
	return TableDefinition{
		Info: TableInfo{
			Key:        "products",
			Sheet:      "Product_Master",
			KeyColumns: []string{ColProductID},
			RequireKey: true,
		},
		FieldSpecs: []FieldSpec{
			{Name: ColProductID, Type: FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: "Product_Name", Type: FieldText},
			{Name: ColUnitCost, Type: FieldNumeric, Aliases: []string{"PO"}},
		},
	}
}

func TestNormalizeTableAliasesAndCoercion(t *testing.T) {
	raw := []Row{
		{" Machine_ID ": " M1 ", "PRODUCT_ID": "P1", "Stock": "1,200.50"},
		{"Machine_ID": "M2", "Product_ID": "P2", "Quantity": "-"},
	}

	got := NormalizeTable(stockDef(), raw)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}

	want0 := Row{ColMachineID: "M1", ColProductID: "P1", ColCurrentStock: 1200.5}
	if !reflect.DeepEqual(got[0], want0) {
		t.Errorf("row 0 = %v, want %v", got[0], want0)
	}
	if got[1][ColCurrentStock] != float64(0) {
		t.Errorf("dash placeholder = %v, want 0", got[1][ColCurrentStock])
	}
}

func TestNormalizeTableCanonicalWinsOverAlias(t *testing.T) {
	raw := []Row{
		{"Product_ID": "canonical", "PRODUCT_ID": "alias", "Machine_ID": "M1", "Stock": "3"},
	}

	got := NormalizeTable(stockDef(), raw)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0][ColProductID] != "canonical" {
		t.Errorf("Product_ID = %v, want the canonical header's value", got[0][ColProductID])
	}
}

func TestNormalizeTableNumericSentinels(t *testing.T) {
	tests := []struct {
		name string
		cell any
		want any
	}{
		{name: "nan text", cell: "nan", want: nil},
		{name: "inf text", cell: "inf", want: nil},
		{name: "excel num error", cell: "#NUM!", want: nil},
		{name: "nan float", cell: math.NaN(), want: nil},
		{name: "empty string", cell: "", want: float64(0)},
		{name: "unparsable text", cell: "oops", want: float64(0)},
		{name: "plain number", cell: "7", want: float64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []Row{{"Machine_ID": "M1", "Product_ID": "P1", "Current_Stock": tt.cell}}
			got := NormalizeTable(stockDef(), raw)
			if len(got) != 1 {
				t.Fatalf("got %d rows, want 1", len(got))
			}
			if got[0][ColCurrentStock] != tt.want {
				t.Errorf("Current_Stock = %v, want %v", got[0][ColCurrentStock], tt.want)
			}
		})
	}
}

func TestNormalizeTableDropsEmptyRows(t *testing.T) {
	raw := []Row{
		{"Machine_ID": "", "Product_ID": "  ", "Current_Stock": nil},
		{"Machine_ID": "M1", "Product_ID": "P1", "Current_Stock": "5"},
	}

	got := NormalizeTable(stockDef(), raw)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 (all-blank row dropped)", len(got))
	}
	if got[0][ColMachineID] != "M1" {
		t.Errorf("surviving row machine = %v, want M1", got[0][ColMachineID])
	}
}

func TestNormalizeTableRequireKeyDropsArtifacts(t *testing.T) {
	raw := []Row{
		{"Product_ID": "P1", "Product_Name": "Cola", "Unit_Cost": "10"},
		{"Product_ID": "", "Product_Name": "Sheet Title Artifact"},
		{"Product_ID": "nan", "Product_Name": "Merged Cell Artifact"},
	}

	got := NormalizeTable(productsDef(), raw)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 (keyless rows dropped)", len(got))
	}
	if got[0][ColProductID] != "P1" {
		t.Errorf("surviving row product = %v, want P1", got[0][ColProductID])
	}
}

func TestNormalizeTableIdempotent(t *testing.T) {
	raw := []Row{
		{" Machine_ID ": " M1 ", "PRODUCT_ID": "P1", "Stock": "1,200.50"},
		{"Machine_ID": "M2", "Product_ID": "P2", "Current_Stock": "nan"},
		{"Machine_ID": "M3", "Product_ID": "P3", "Quantity": ""},
	}

	once := NormalizeTable(stockDef(), raw)
	twice := NormalizeTable(stockDef(), once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization is not idempotent:\nonce:  %v\ntwice: %v", once, twice)
	}
}

func TestNormalizeTableUnknownColumnsKept(t *testing.T) {
	raw := []Row{
		{"Machine_ID": "M1", "Product_ID": "P1", "Current_Stock": "2", "Notes": " keep me "},
	}

	got := NormalizeTable(stockDef(), raw)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	if got[0]["Notes"] != "keep me" {
		t.Errorf("unknown column = %v, want trimmed text preserved", got[0]["Notes"])
	}
}
