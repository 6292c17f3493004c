package catalog

import (
	"strings"

	"menora/internal"
)

type Index struct {
	ByID           map[string]*internal.Product
	ByTypeCode     map[string][]*internal.Product
	BySupplierCode map[string]*internal.Product
	// BaseByTypeCode holds the last unpriced entry seen for each type code.
	BaseByTypeCode map[string]*internal.Product
}

func BuildIndex(products []*internal.Product) *Index {
	idx := &Index{
		ByID:           make(map[string]*internal.Product, len(products)),
		ByTypeCode:     map[string][]*internal.Product{},
		BySupplierCode: make(map[string]*internal.Product, len(products)),
		BaseByTypeCode: map[string]*internal.Product{},
	}

	for _, p := range products {
		if _, dup := idx.ByID[p.MenoraID]; !dup {
			idx.ByID[p.MenoraID] = p
		}
		if p.SupplierCode != "" {
			idx.BySupplierCode[strings.ToUpper(p.SupplierCode)] = p
		}
		code := p.TypeCode
		if code == "" {
			continue
		}
		idx.ByTypeCode[code] = append(idx.ByTypeCode[code], p)
		if !p.IsPriced() {
			idx.BaseByTypeCode[code] = p
		}
	}

	return idx
}
