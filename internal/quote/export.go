package quote

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"line_no", "menora_id", "supplier_code", "description_hebrew", "description_english",
	"quantity", "unit_price", "total_price", "currency", "notes",
}

// ExportXLSX writes the list and its totals to a single-sheet workbook.
func ExportXLSX(l *List, totals Totals, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if l.Name != "" {
		if err := f.SetSheetName(sheet, sheetTitle(l.Name)); err == nil {
			sheet = f.GetSheetName(0)
		}
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	r := 2
	set := func(col int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, r)
		_ = f.SetCellValue(sheet, cell, value)
	}
	for i, it := range l.Items {
		set(1, i+1)
		set(2, it.MenoraID)
		set(3, it.SupplierCode)
		set(4, it.Descriptions.Hebrew)
		set(5, it.Descriptions.English)
		set(6, it.Quantity)
		set(7, it.UnitPrice.InexactFloat64())
		set(8, it.Total().InexactFloat64())
		set(9, it.Currency)
		set(10, it.Notes)
		r++
	}

	r++
	for _, line := range []struct {
		label string
		value float64
	}{
		{"subtotal", totals.Subtotal.InexactFloat64()},
		{"vat", totals.TaxAmount.InexactFloat64()},
		{"total", totals.Total.InexactFloat64()},
	} {
		set(7, line.label)
		set(8, line.value)
		set(9, totals.Currency)
		r++
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// sheetTitle trims a list name to a legal worksheet name.
func sheetTitle(name string) string {
	runes := []rune(name)
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return "Sheet1"
	}
	return string(out)
}
