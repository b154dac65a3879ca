package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"confhub/internal/domain/stores/item"
)

// ItemsSheet is the worksheet name of the items workbook.
const ItemsSheet = "Items"

var itemHeader = []any{
	"Code", "Description", "Unit of Issue", "Current Stock", "Min Stock", "Max Stock", "Unit Cost", "Below Min",
}

// ItemsXLSX writes the stores items with their stock levels.
func ItemsXLSX(w io.Writer, items []*item.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return err
	}
	if err := setRow(f, ItemsSheet, 1, itemHeader); err != nil {
		return err
	}
	for i, it := range items {
		below := ""
		if it.CurrentStock < it.MinStock {
			below = "yes"
		}
		if err := setRow(f, ItemsSheet, i+2, []any{
			it.Code,
			it.Description,
			it.UnitOfIssue,
			it.CurrentStock.Float64(),
			it.MinStock.Float64(),
			it.MaxStock.Float64(),
			it.UnitCost.InexactFloat64(),
			below,
		}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ItemsSheet, "A", "H", 16); err != nil {
		return err
	}
	return f.Write(w)
}
