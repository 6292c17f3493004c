package search

import (
	"strings"
	"unicode/utf8"

	"menora/internal"
)

// Matcher answers queries against one catalog snapshot. Results keep catalog
// order; nothing is ranked.
type Matcher struct {
	products []*internal.Product
}

func NewMatcher(products []*internal.Product) *Matcher {
	return &Matcher{products: products}
}

// Search returns every product whose terms contain query. A blank query
// matches nothing.
func (m *Matcher) Search(query string, lang internal.Language) []*internal.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var out []*internal.Product
	for _, p := range m.products {
		if MatchesText(p, query, lang) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Matcher) Filter(criteria Criteria) []*internal.Product {
	criteria = criteria.Compact()
	var out []*internal.Product
	for _, p := range m.products {
		if MatchesFilters(p, criteria) {
			out = append(out, p)
		}
	}
	return out
}

// Combined ANDs the text and filter matches. A blank query or empty criteria
// matches everything on that side.
func (m *Matcher) Combined(query string, criteria Criteria, lang internal.Language) []*internal.Product {
	query = strings.TrimSpace(query)
	criteria = criteria.Compact()
	var out []*internal.Product
	for _, p := range m.products {
		if query != "" && !MatchesText(p, query, lang) {
			continue
		}
		if !MatchesFilters(p, criteria) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MatchesText reports whether p matches query in the given language.
func MatchesText(p *internal.Product, query string, lang internal.Language) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	lower := strings.ToLower(query)
	combined := strings.ToLower(p.SearchTerms.Combined)
	if strings.Contains(combined, lower) {
		return true
	}

	switch lang {
	case internal.LanguageHebrew:
		for _, mapped := range hebrewBridge[query] {
			for _, term := range p.SearchTerms.English {
				if strings.ToLower(term) == mapped {
					return true
				}
			}
			if strings.Contains(combined, mapped) {
				return true
			}
		}
		if anyContains(p.SearchTerms.Hebrew, lower) {
			return true
		}
		return strings.Contains(strings.ToLower(p.Descriptions.Hebrew), lower)
	case internal.LanguageEnglish:
		return anyContains(p.SearchTerms.English, lower)
	default:
		if anyContains(p.SearchTerms.Hebrew, lower) || anyContains(p.SearchTerms.English, lower) {
			return true
		}
		return strings.Contains(strings.ToLower(p.Descriptions.Hebrew), lower) ||
			strings.Contains(strings.ToLower(p.Descriptions.English), lower)
	}
}

func anyContains(terms []string, lower string) bool {
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t), lower) {
			return true
		}
	}
	return false
}

// Suggest returns terms containing partial. Terms that start with it come
// first; each group gets half of limit before the list is cut to limit.
func (m *Matcher) Suggest(partial string, lang internal.Language, limit int) []string {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if utf8.RuneCountInString(partial) < 2 || limit <= 0 {
		return []string{}
	}

	seen := map[string]struct{}{}
	var starts, contains []string
	for _, p := range m.products {
		var terms []string
		switch lang {
		case internal.LanguageHebrew:
			terms = p.SearchTerms.Hebrew
		case internal.LanguageEnglish:
			terms = p.SearchTerms.English
		default:
			terms = append(append([]string(nil), p.SearchTerms.Hebrew...), p.SearchTerms.English...)
		}
		for _, term := range terms {
			if utf8.RuneCountInString(term) <= 2 {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			lower := strings.ToLower(term)
			switch {
			case strings.HasPrefix(lower, partial):
				starts = append(starts, term)
			case strings.Contains(lower, partial):
				contains = append(contains, term)
			default:
				continue
			}
			seen[term] = struct{}{}
		}
	}

	startBudget := (limit + 1) / 2
	containBudget := limit / 2
	if len(starts) > startBudget {
		starts = starts[:startBudget]
	}
	if len(contains) > containBudget {
		contains = contains[:containBudget]
	}
	out := make([]string, 0, len(starts)+len(contains))
	out = append(append(out, starts...), contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
