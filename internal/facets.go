package internal

import "sort"

// ComputeFacets collects the distinct, sorted specification values observed in products.
func ComputeFacets(products []*Product) Facets {
	types := map[string]struct{}{}
	heights := map[int]struct{}{}
	widths := map[int]struct{}{}
	thicknesses := map[float64]struct{}{}
	galvs := map[string]struct{}{}

	for _, p := range products {
		spec := p.Specifications
		if spec == nil {
			continue
		}
		if spec.Type != "" {
			types[spec.Type] = struct{}{}
		}
		if spec.Height != nil && *spec.Height != 0 {
			heights[*spec.Height] = struct{}{}
		}
		if spec.Width != nil && *spec.Width != 0 {
			widths[*spec.Width] = struct{}{}
		}
		if spec.Thickness != nil && *spec.Thickness != 0 {
			thicknesses[*spec.Thickness] = struct{}{}
		}
		if spec.Galvanization != nil && *spec.Galvanization != "" {
			galvs[*spec.Galvanization] = struct{}{}
		}
	}

	return Facets{
		Types:          sortedStrings(types),
		Heights:        sortedInts(heights),
		Widths:         sortedInts(widths),
		Thicknesses:    sortedFloats(thicknesses),
		Galvanizations: sortedStrings(galvs),
	}
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedFloats(set map[float64]struct{}) []float64 {
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}
