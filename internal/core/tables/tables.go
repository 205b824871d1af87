// Package tables registers the workbook table definitions with the core
// registry. Import this package for its side effects to ensure all tables
// are registered before the first load cycle.
//
// Column aliases capture the header variability seen across workbook
// revisions (PRODUCT_ID vs Product_ID, PO vs Unit_Cost, Qty vs Qty Sold);
// they are resolved to the canonical names once, during normalization.
package tables

import "github.com/vendbees/ventory/internal/core"

func init() {
	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        core.TableProducts,
			Sheet:      "Product_Master",
			KeyColumns: []string{core.ColProductID},
			RequireKey: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: core.ColProductID, Type: core.FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: "Product_Name", Type: core.FieldText},
			{Name: "Category", Type: core.FieldText},
			{Name: core.ColUnitCost, Type: core.FieldNumeric, Aliases: []string{"PO"}},
			{Name: "GST", Type: core.FieldNumeric},
		},
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        core.TableMachines,
			Sheet:      "Machine_Master",
			KeyColumns: []string{core.ColMachineID},
		},
		FieldSpecs: []core.FieldSpec{
			{Name: core.ColMachineID, Type: core.FieldText},
			{Name: "Location", Type: core.FieldText},
			{Name: core.ColStatus, Type: core.FieldText},
		},
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        core.TableStock,
			Sheet:      "Current_Stock",
			KeyColumns: []string{core.ColMachineID, core.ColProductID},
		},
		FieldSpecs: []core.FieldSpec{
			{Name: core.ColMachineID, Type: core.FieldText},
			{Name: core.ColProductID, Type: core.FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: core.ColCurrentStock, Type: core.FieldNumeric, Aliases: []string{"Stock", "Quantity"}},
		},
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        core.TableSales,
			Sheet:      "Sales_Log",
			AppendOnly: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: core.ColDate, Type: core.FieldDate},
			{Name: core.ColMachineID, Type: core.FieldText},
			{Name: core.ColProductID, Type: core.FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: core.ColQtySold, Type: core.FieldNumeric, Aliases: []string{"Qty", "Quantity"}},
			{Name: core.ColSellingPrice, Type: core.FieldNumeric, Aliases: []string{"Price"}},
		},
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        core.TablePurchases,
			Sheet:      "Vendor_Purchase",
			AppendOnly: true,
			ReadOnly:   true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: core.ColDate, Type: core.FieldDate},
			{Name: "Vendor_ID", Type: core.FieldText},
			{Name: core.ColProductID, Type: core.FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: core.ColQty, Type: core.FieldNumeric, Aliases: []string{"Quantity"}},
			{Name: "Purchase_Price", Type: core.FieldNumeric},
		},
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:        core.TableRefills,
			Sheet:      "Machine_Refill_Log",
			AppendOnly: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: core.ColDate, Type: core.FieldDate},
			{Name: core.ColRefillerID, Type: core.FieldText},
			{Name: core.ColMachineID, Type: core.FieldText},
			{Name: core.ColProductID, Type: core.FieldText, Aliases: []string{"PRODUCT_ID"}},
			{Name: core.ColQty, Type: core.FieldNumeric, Aliases: []string{"Quantity"}},
		},
	})

	core.Register(core.TableDefinition{
		Info: core.TableInfo{
			Key:      core.TableVendors,
			Sheet:    "Vendor_Master",
			ReadOnly: true,
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "Vendor_ID", Type: core.FieldText},
			{Name: "Vendor_Name", Type: core.FieldText},
			{Name: "Contact", Type: core.FieldText},
		},
	})
}
