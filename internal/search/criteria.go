package search

import (
	"encoding/json"
	"reflect"
	"strings"

	"menora/internal"
	"menora/internal/util"
)

// Criteria maps specification keys (height, width, type, ...) to the wanted
// value. A value may be a scalar or a list of acceptable scalars.
type Criteria map[string]any

// Compact drops nil, blank and empty-list values.
func (c Criteria) Compact() Criteria {
	out := Criteria{}
	for k, v := range c {
		if isEmptyValue(v) {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len() == 0
	}
	return false
}

// MatchesFilters reports whether every criterion equals the matching
// specification field. Empty criteria match every product; a product without
// specifications matches nothing else.
func MatchesFilters(p *internal.Product, criteria Criteria) bool {
	criteria = criteria.Compact()
	if len(criteria) == 0 {
		return true
	}
	if p.Specifications == nil {
		return false
	}
	for key, want := range criteria {
		have, ok := p.Specifications.Field(key)
		if !ok {
			return false
		}
		if !matchValue(have, want) {
			return false
		}
	}
	return true
}

func matchValue(have, want any) bool {
	rv := reflect.ValueOf(want)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			if matchScalar(have, rv.Index(i).Interface()) {
				return true
			}
		}
		return false
	}
	return matchScalar(have, want)
}

// matchScalar compares a specification value (string or float64) with one
// criterion value. Strings compare case-insensitively; numbers numerically,
// parsing textual criteria where needed.
func matchScalar(have, want any) bool {
	if w, ok := want.(string); ok {
		w = strings.TrimSpace(w)
		switch h := have.(type) {
		case string:
			return strings.EqualFold(h, w)
		case float64:
			n, ok := util.ParseNumber(w)
			return ok && n == h
		}
		return false
	}
	n, ok := toFloat(want)
	if !ok {
		return false
	}
	h, ok := have.(float64)
	return ok && h == n
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
