package search

import (
	"encoding/json"
	"sort"

	"menora/internal"
)

const (
	TypeText     = "text"
	TypeFilter   = "filter"
	TypeCombined = "combined"
)

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type Info struct {
	Query         string   `json:"query"`
	ExecutionTime float64  `json:"executionTime"`
	Language      string   `json:"language,omitempty"`
	Filters       Criteria `json:"filters,omitempty"`
	SearchType    string   `json:"searchType"`
}

// ResultFilters are the facets of one result set, including category.
type ResultFilters struct {
	internal.Facets
	Categories []string `json:"category"`
}

type Result struct {
	Results          []*internal.Product `json:"results"`
	Pagination       Pagination          `json:"pagination"`
	Info             Info                `json:"searchInfo"`
	AvailableFilters *ResultFilters      `json:"availableFilters,omitempty"`
}

// Paginate cuts a window out of the full match list. The total always counts
// every match.
func Paginate(matches []*internal.Product, limit, offset int) ([]*internal.Product, Pagination) {
	if offset < 0 {
		offset = 0
	}
	total := len(matches)
	page := Pagination{Total: total, Limit: limit, Offset: offset}
	if offset >= total {
		return []*internal.Product{}, page
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page.HasMore = offset+limit < total
	return matches[offset:end], page
}

func filtersFor(products []*internal.Product) *ResultFilters {
	if len(products) == 0 {
		return nil
	}
	out := &ResultFilters{Facets: internal.ComputeFacets(products)}
	seen := map[internal.Category]struct{}{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out.Categories = append(out.Categories, string(p.Category))
	}
	sort.Strings(out.Categories)
	return out
}

// TypeOption is a type facet value with its display label.
type TypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AvailableFilters is the catalog-wide facet set. In Hebrew mode Types holds
// labelled options and TypeNames is empty.
type AvailableFilters struct {
	TypeNames      []string     `json:"-"`
	Types          []TypeOption `json:"-"`
	Heights        []int        `json:"height"`
	Widths         []int        `json:"width"`
	Thicknesses    []float64    `json:"thickness"`
	Galvanizations []string     `json:"galvanization"`
}

// TypeValues returns the type facet in whichever form was requested.
func (a AvailableFilters) TypeValues() any {
	if a.Types != nil {
		return a.Types
	}
	return a.TypeNames
}

func (a AvailableFilters) MarshalJSON() ([]byte, error) {
	type plain AvailableFilters
	return json.Marshal(struct {
		Type any `json:"type"`
		plain
	}{Type: a.TypeValues(), plain: plain(a)})
}

// NewAvailableFilters adapts catalog facets for display in lang.
func NewAvailableFilters(f internal.Facets, lang internal.Language) AvailableFilters {
	out := AvailableFilters{
		TypeNames:      f.Types,
		Heights:        f.Heights,
		Widths:         f.Widths,
		Thicknesses:    f.Thicknesses,
		Galvanizations: f.Galvanizations,
	}
	if lang == internal.LanguageHebrew {
		out.Types = make([]TypeOption, 0, len(f.Types))
		for _, t := range f.Types {
			out.Types = append(out.Types, TypeOption{Value: t, Label: HebrewTypeLabel(t)})
		}
		out.TypeNames = nil
	}
	return out
}
