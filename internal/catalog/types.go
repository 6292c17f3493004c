package catalog

import (
	"fmt"
	"log/slog"

	"menora/internal"
	"menora/internal/sheets"
)

// TypeCatalog is the output of BuildTypeCatalog.
type TypeCatalog struct {
	Products []*internal.Product
	Skipped  int
}

// BuildTypeCatalog turns the lookup table into one unpriced base product per
// usable row, in sheet order. Rows without a type code or without any
// description are skipped.
func BuildTypeCatalog(table *sheets.Table, file, supplier string, logger *slog.Logger) TypeCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	if supplier == "" {
		supplier = internal.DefaultSupplierName
	}
	out := TypeCatalog{Skipped: table.Skipped}

	for _, row := range table.Rows {
		code := sheets.GetString(row, colLookupType, "")
		hebrew := sheets.GetString(row, colLookupHebrew, "")
		english := sheets.GetString(row, colLookupEnglish, "")
		if code == "" || (hebrew == "" && english == "") {
			logger.Warn("skipping lookup row", "row", row.Number, "type", code)
			out.Skipped++
			continue
		}

		p, err := internal.NewProduct(internal.ProductParams{
			MenoraID:     fmt.Sprintf("MEN-%s-%03d", code, row.Index),
			SupplierCode: fmt.Sprintf("%s-%s-%03d", internal.DefaultSupplierName, code, row.Index),
			TypeCode:     code,
			Descriptions: internal.Descriptions{Hebrew: hebrew, English: english},
			Category:     DetermineCategory(english),
			Specifications: &internal.Specifications{
				Type: TypeName(code),
			},
			SupplierName: supplier,
			Origin:       internal.Origin{File: file, Sheet: table.Sheet, Row: row.Number},
		})
		if err != nil {
			logger.Warn("skipping lookup row", "row", row.Number, "error", err)
			out.Skipped++
			continue
		}
		out.Products = append(out.Products, p)
	}

	logger.Debug("type catalog built", "products", len(out.Products), "skipped", out.Skipped)
	return out
}

// MakeGenericType fabricates a base product for a type code missing from the
// lookup sheet. The result is marked synthetic and never enters the catalog.
func MakeGenericType(code string) *internal.Product {
	p, err := internal.NewProduct(internal.ProductParams{
		MenoraID:     fmt.Sprintf("MEN-%s-000", code),
		SupplierCode: fmt.Sprintf("%s-%s-000", internal.DefaultSupplierName, code),
		TypeCode:     code,
		Descriptions: internal.Descriptions{Hebrew: code, English: code},
		Category:     internal.CategoryCableTray,
		Specifications: &internal.Specifications{
			Type: TypeName(code),
		},
		SupplierName: internal.DefaultSupplierName,
		Synthetic:    true,
	})
	if err != nil {
		// only reachable with a blank code, which callers filter out
		panic(err)
	}
	return p
}
