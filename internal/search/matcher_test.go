package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menora/internal"
	"menora/internal/util"
)

func product(t *testing.T, params internal.ProductParams) *internal.Product {
	t.Helper()
	p, err := internal.NewProduct(params)
	require.NoError(t, err)
	return p
}

func channelVariant(t *testing.T, id string, height, width int) *internal.Product {
	return product(t, internal.ProductParams{
		MenoraID:     id,
		SupplierCode: "TCS-x",
		TypeCode:     "TCS",
		Descriptions: internal.Descriptions{Hebrew: "תעלה", English: "Channel Tray"},
		Category:     internal.CategoryCableTray,
		Specifications: &internal.Specifications{
			Type:          "Channel Cable Tray",
			Height:        util.IntPtr(height),
			Width:         util.IntPtr(width),
			Thickness:     util.FloatPtr(1.5),
			Galvanization: util.StringPtr("Pre-Galvanized"),
		},
	})
}

func sample(t *testing.T) []*internal.Product {
	return []*internal.Product{
		product(t, internal.ProductParams{
			MenoraID:       "MEN-TCS-000",
			SupplierCode:   "HOLDEE-TCS-000",
			TypeCode:       "TCS",
			Descriptions:   internal.Descriptions{Hebrew: "תעלה", English: "Channel Tray"},
			Category:       internal.CategoryCableTray,
			Specifications: &internal.Specifications{Type: "Channel Cable Tray"},
		}),
		channelVariant(t, "MEN-TCS-100-200-1.5", 100, 200),
		channelVariant(t, "MEN-TCS-200-300-1.5", 200, 300),
		product(t, internal.ProductParams{
			MenoraID:     "MEN-CTC-004",
			Descriptions: internal.Descriptions{Hebrew: "מכסה לתעלה"},
			Category:     internal.CategoryCover,
		}),
	}
}

func TestSearchContainment(t *testing.T) {
	products := sample(t)
	m := NewMatcher(products)
	p := products[1]

	runes := []rune(p.SearchTerms.Combined)
	for i := 0; i < len(runes); i += 3 {
		for j := i + 1; j <= len(runes) && j <= i+12; j++ {
			sub := string(runes[i:j])
			if len([]rune(sub)) == 0 {
				continue
			}
			got := m.Search(sub, internal.LanguageAny)
			if sub == " " {
				assert.Empty(t, got)
				continue
			}
			assert.Contains(t, got, p, "substring %q", sub)
		}
	}
}

func TestSearchIgnoresCase(t *testing.T) {
	m := NewMatcher(sample(t))
	upper := m.Search("CHANNEL", internal.LanguageAny)
	lower := m.Search("channel", internal.LanguageAny)
	assert.Len(t, lower, 3)
	assert.Equal(t, lower, upper)
	assert.Equal(t, m.Search("pre-galvanized", internal.LanguageEnglish), m.Search("PRE-GALVANIZED", internal.LanguageEnglish))
}

func TestSearchBlankQuery(t *testing.T) {
	m := NewMatcher(sample(t))
	assert.Empty(t, m.Search("", internal.LanguageAny))
	assert.Empty(t, m.Search("   ", internal.LanguageHebrew))
}

func TestSearchHebrewBridge(t *testing.T) {
	m := NewMatcher(sample(t))

	got := m.Search("מגש", internal.LanguageHebrew)
	require.Len(t, got, 3)
	assert.Equal(t, "MEN-TCS-000", got[0].MenoraID)

	assert.Empty(t, m.Search("מגש", internal.LanguageAny))
	assert.Empty(t, m.Search("מגש", internal.LanguageEnglish))

	covers := m.Search("מכסה", internal.LanguageHebrew)
	require.Len(t, covers, 1)
	assert.Equal(t, "MEN-CTC-004", covers[0].MenoraID)
}

func TestSearchByLanguage(t *testing.T) {
	m := NewMatcher(sample(t))
	assert.Len(t, m.Search("tray", internal.LanguageEnglish), 3)
	assert.Len(t, m.Search("תעלה", internal.LanguageHebrew), 4)
	assert.Len(t, m.Search("holdee", internal.LanguageAny), 4)
}

func TestFilterExactness(t *testing.T) {
	products := sample(t)
	m := NewMatcher(products)

	byHeight := m.Filter(Criteria{"height": 100})
	require.Len(t, byHeight, 1)
	assert.Equal(t, "MEN-TCS-100-200-1.5", byHeight[0].MenoraID)

	assert.Equal(t, byHeight, m.Filter(Criteria{"height": "100"}))
	assert.Equal(t, byHeight, m.Filter(Criteria{"height": 100.0, "galvanization": "pre-galvanized"}))
	assert.Len(t, m.Filter(Criteria{"type": "CHANNEL CABLE TRAY"}), 3)
	assert.Len(t, m.Filter(Criteria{"width": []any{200.0, 300.0}}), 2)
	assert.Len(t, m.Filter(Criteria{"thickness": 1.5}), 2)
	assert.Empty(t, m.Filter(Criteria{"height": 150}))
	assert.Empty(t, m.Filter(Criteria{"colour": "red"}))
	assert.Empty(t, m.Filter(Criteria{"height": "tall"}))

	assert.Len(t, m.Filter(Criteria{}), 4)
	assert.Len(t, m.Filter(Criteria{"height": "", "width": nil, "type": []any{}}), 4)
}

func TestCombined(t *testing.T) {
	m := NewMatcher(sample(t))
	got := m.Combined("channel", Criteria{"width": 300}, internal.LanguageAny)
	require.Len(t, got, 1)
	assert.Equal(t, "MEN-TCS-200-300-1.5", got[0].MenoraID)

	assert.Len(t, m.Combined("", nil, internal.LanguageAny), 4)
	assert.Len(t, m.Combined("  ", Criteria{"height": 200}, internal.LanguageAny), 1)
}

func TestSuggestOrdering(t *testing.T) {
	m := NewMatcher([]*internal.Product{
		product(t, internal.ProductParams{
			MenoraID:     "MEN-X-000",
			Descriptions: internal.Descriptions{English: "metal data table"},
			Category:     internal.CategoryCover,
		}),
	})

	assert.Equal(t, []string{"table", "metal", "data"}, m.Suggest("ta", internal.LanguageEnglish, 5))
	assert.Equal(t, []string{"table", "metal"}, m.Suggest("TA ", internal.LanguageAny, 3))
	assert.Equal(t, []string{"table"}, m.Suggest("ta", internal.LanguageEnglish, 1))
	assert.Empty(t, m.Suggest("t", internal.LanguageEnglish, 5))
	assert.Empty(t, m.Suggest("ta", internal.LanguageHebrew, 5))
}

func TestSuggestHebrew(t *testing.T) {
	m := NewMatcher(sample(t))
	got := m.Suggest("תע", internal.LanguageHebrew, 4)
	assert.Equal(t, []string{"תעלה", "מכסה לתעלה", "לתעלה"}, got)
}
