package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"menora/internal"
	"menora/internal/sheets"
	"menora/internal/util"
)

var errUnexpectedLayout = errors.New("unexpected sheet layout")

// PriceCatalog is the output of BuildPriceCatalog.
type PriceCatalog struct {
	Variants []*internal.Product
	// Prices maps supplier code to unit price.
	Prices       map[string]decimal.Decimal
	SheetsLoaded []string
	SheetsFailed []string
	Skipped      int
	Warnings     []string
	// GenericTypes lists type codes priced without a lookup entry.
	GenericTypes []string
}

type priceBuild struct {
	file     string
	currency string
	logger   *slog.Logger

	bases   map[string]*internal.Product
	generic map[string]*internal.Product
	used    map[string]struct{}
	out     *PriceCatalog
}

// BuildPriceCatalog reads every sheet of the price workbook: sheets named by a
// height come first in workbook order, then the accessory sheets. A sheet that
// cannot be read is recorded as failed and the rest carry on.
func BuildPriceCatalog(wb *sheets.Workbook, bases []*internal.Product, currency string, logger *slog.Logger) PriceCatalog {
	if logger == nil {
		logger = slog.Default()
	}
	out := PriceCatalog{Prices: map[string]decimal.Decimal{}}
	b := &priceBuild{
		file:     wb.Path(),
		currency: currency,
		logger:   logger,
		bases:    map[string]*internal.Product{},
		generic:  map[string]*internal.Product{},
		used:     map[string]struct{}{},
		out:      &out,
	}
	for _, p := range bases {
		b.used[p.MenoraID] = struct{}{}
		if p.TypeCode != "" {
			b.bases[p.TypeCode] = p
		}
	}

	var heights, accessories []string
	for _, name := range wb.SheetNames() {
		if util.IsDigits(name) {
			heights = append(heights, name)
		} else {
			accessories = append(accessories, name)
		}
	}

	for _, name := range heights {
		h, _ := strconv.Atoi(name)
		height := float64(h)
		b.sheet(wb, name, &height)
	}
	for _, name := range accessories {
		b.sheet(wb, name, nil)
	}

	logger.Info("price catalog built",
		"variants", len(out.Variants),
		"sheets", len(out.SheetsLoaded),
		"failed", len(out.SheetsFailed),
		"skipped", out.Skipped,
	)
	return out
}

func (b *priceBuild) sheet(wb *sheets.Workbook, name string, sheetHeight *float64) {
	table, err := wb.ReadSheet(name, priceHeaderRow)
	if err == nil && len(table.Rows) > 0 && !(table.HasColumn(colPriceType...) && table.HasColumn(colPrice...)) {
		err = fmt.Errorf("%w: missing type or price column", errUnexpectedLayout)
	}
	if err != nil {
		b.logger.Error("price sheet failed", "sheet", name, "error", err)
		b.out.SheetsFailed = append(b.out.SheetsFailed, name)
		b.out.Warnings = append(b.out.Warnings, fmt.Sprintf("price sheet %s: %v", name, err))
		return
	}
	if len(table.Rows) == 0 {
		b.logger.Warn("price sheet is empty", "sheet", name)
	}

	b.out.Skipped += table.Skipped
	created := 0
	for _, row := range table.Rows {
		p := b.row(table, row, sheetHeight)
		if p == nil {
			b.out.Skipped++
			continue
		}
		b.out.Variants = append(b.out.Variants, p)
		b.out.Prices[p.SupplierCode] = p.Pricing.Price
		created++
	}
	b.out.SheetsLoaded = append(b.out.SheetsLoaded, name)
	b.logger.Debug("price sheet loaded", "sheet", name, "variants", created)
}

func (b *priceBuild) row(table *sheets.Table, row sheets.Row, sheetHeight *float64) *internal.Product {
	code := sheets.GetString(row, colPriceType, "")
	galv := sheets.GetString(row, colGalvanization, "")
	height := sheets.GetNumeric(row, colHeight)
	if height == nil || *height == 0 {
		height = sheetHeight
	}
	width := sheets.GetNumeric(row, colWidth)
	thickness := sheets.GetNumeric(row, colThickness)
	price := sheets.GetNumeric(row, colPrice)

	if code == "" || price == nil || *price <= 0 {
		b.logger.Debug("skipping price row", "sheet", table.Sheet, "row", row.Number, "type", code)
		return nil
	}

	base := b.base(code)
	dims := dimensions(height, width, thickness)

	spec := &internal.Specifications{
		Type:          TypeName(code),
		Height:        intValue(height),
		Width:         intValue(width),
		Galvanization: Galvanization(galv),
	}
	if base.Specifications != nil && base.Specifications.Type != "" {
		spec.Type = base.Specifications.Type
	}
	if thickness != nil && *thickness != 0 {
		spec.Thickness = util.FloatPtr(*thickness)
	}

	p, err := internal.NewProduct(internal.ProductParams{
		MenoraID:       b.uniqueID(fmt.Sprintf("MEN-%s-%s", code, dims), galv),
		SupplierCode:   fmt.Sprintf("%s-%s-%s", code, dims, galv),
		TypeCode:       code,
		Descriptions:   base.Descriptions,
		Category:       base.Category,
		Specifications: spec,
		Pricing:        internal.NewPricing(decimal.NewFromFloat(*price), b.currency),
		SupplierName:   base.SupplierName,
		Origin:         internal.Origin{File: b.file, Sheet: table.Sheet, Row: row.Number},
	})
	if err != nil {
		b.logger.Warn("skipping price row", "sheet", table.Sheet, "row", row.Number, "error", err)
		return nil
	}
	return p
}

func (b *priceBuild) base(code string) *internal.Product {
	if p, ok := b.bases[code]; ok {
		return p
	}
	if p, ok := b.generic[code]; ok {
		return p
	}
	p := MakeGenericType(code)
	b.generic[code] = p
	b.out.GenericTypes = append(b.out.GenericTypes, code)
	b.out.Warnings = append(b.out.Warnings, fmt.Sprintf("type %s is priced but missing from the lookup sheet", code))
	b.logger.Warn("unknown type code in price sheet", "type", code)
	return p
}

// uniqueID reserves id, falling back to id-{galv} and then numbered suffixes
// when the same dimensions appear more than once.
func (b *priceBuild) uniqueID(id, galv string) string {
	candidates := []string{id}
	if galv != "" {
		candidates = append(candidates, id+"-"+galv)
	}
	for _, c := range candidates {
		if _, taken := b.used[c]; !taken {
			b.used[c] = struct{}{}
			return c
		}
	}
	for n := 2; ; n++ {
		c := fmt.Sprintf("%s-%d", candidates[len(candidates)-1], n)
		if _, taken := b.used[c]; !taken {
			b.used[c] = struct{}{}
			return c
		}
	}
}

func dimensions(height, width, thickness *float64) string {
	h, w, t := "XX", "XX", "X"
	if height != nil && *height != 0 {
		h = strconv.Itoa(int(*height))
	}
	if width != nil && *width != 0 {
		w = strconv.Itoa(int(*width))
	}
	if thickness != nil && *thickness != 0 {
		t = internal.FormatDecimal(*thickness)
	}
	return h + "-" + w + "-" + t
}

func intValue(v *float64) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return util.IntPtr(int(*v))
}
