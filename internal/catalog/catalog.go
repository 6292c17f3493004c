package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"menora/internal"
)

// Catalog is one published load. It is read-only once built; the only
// mutation allowed afterwards is Product.SetImage.
type Catalog struct {
	products []*internal.Product
	index    *Index
	facets   internal.Facets
	prices   map[string]decimal.Decimal
	report   internal.LoadReport
}

// NewCatalog indexes products and computes their facets. Prices may be nil, in
// which case it is rebuilt from the priced products.
func NewCatalog(products []*internal.Product, prices map[string]decimal.Decimal, report internal.LoadReport) *Catalog {
	if prices == nil {
		prices = make(map[string]decimal.Decimal)
		for _, p := range products {
			if p.IsPriced() {
				prices[p.SupplierCode] = p.Pricing.Price
			}
		}
	}
	return &Catalog{
		products: products,
		index:    BuildIndex(products),
		facets:   internal.ComputeFacets(products),
		prices:   prices,
		report:   report,
	}
}

// Products returns the catalog in load order. Callers must not modify the slice.
func (c *Catalog) Products() []*internal.Product { return c.products }

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) Facets() internal.Facets { return c.facets }

func (c *Catalog) Report() internal.LoadReport { return c.report }

func (c *Catalog) ProductByID(menoraID string) (*internal.Product, bool) {
	p, ok := c.index.ByID[strings.TrimSpace(menoraID)]
	return p, ok
}

// ProductsByType returns base and priced entries sharing a type code.
func (c *Catalog) ProductsByType(code string) []*internal.Product {
	return c.index.ByTypeCode[code]
}

// BaseFor returns the lookup entry a variant was derived from.
func (c *Catalog) BaseFor(p *internal.Product) (*internal.Product, bool) {
	base, ok := c.index.BaseByTypeCode[p.TypeCode]
	return base, ok
}

// PriceOf looks up a unit price by supplier code.
func (c *Catalog) PriceOf(supplierCode string) (decimal.Decimal, bool) {
	if v, ok := c.prices[supplierCode]; ok {
		return v, true
	}
	if p, ok := c.index.BySupplierCode[strings.ToUpper(supplierCode)]; ok && p.IsPriced() {
		return p.Pricing.Price, true
	}
	return decimal.Zero, false
}

// Prices returns a copy of the supplier code to price table.
func (c *Catalog) Prices() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.prices))
	for k, v := range c.prices {
		out[k] = v
	}
	return out
}

type HeightRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type Stats struct {
	TotalProducts int          `json:"total_products"`
	WithPricing   int          `json:"with_pricing"`
	WithImages    int          `json:"with_images"`
	Categories    []string     `json:"categories"`
	Types         []string     `json:"types"`
	HeightRange   *HeightRange `json:"height_range"`
}

func (c *Catalog) Stats() Stats {
	st := Stats{TotalProducts: len(c.products), Types: c.facets.Types}
	categories := map[string]struct{}{}
	for _, p := range c.products {
		if p.IsPriced() {
			st.WithPricing++
		}
		if _, ok := p.Image(); ok {
			st.WithImages++
		}
		if p.Category != "" {
			categories[string(p.Category)] = struct{}{}
		}
	}
	for cat := range categories {
		st.Categories = append(st.Categories, cat)
	}
	sort.Strings(st.Categories)
	if h := c.facets.Heights; len(h) > 0 {
		st.HeightRange = &HeightRange{Min: h[0], Max: h[len(h)-1]}
	}
	return st
}
