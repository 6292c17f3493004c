package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menora/internal"
	"menora/internal/catalog"
)

type staticSource struct {
	cat *catalog.Catalog
}

func (s staticSource) Catalog() (*catalog.Catalog, error) {
	if s.cat == nil {
		return nil, catalog.ErrNotLoaded
	}
	return s.cat, nil
}

func newService(t *testing.T) *Service {
	cat := catalog.NewCatalog(sample(t), nil, internal.LoadReport{RunID: "run-1"})
	return NewService(staticSource{cat: cat}, Options{DefaultLimit: 2, MaxLimit: 3}, nil)
}

func TestServiceText(t *testing.T) {
	svc := newService(t)

	res, err := svc.Text(context.Background(), Query{Text: " channel ", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, Pagination{Total: 3, Limit: 2, Offset: 0, HasMore: true}, res.Pagination)
	assert.Equal(t, "channel", res.Info.Query)
	assert.Equal(t, TypeText, res.Info.SearchType)
	require.NotNil(t, res.AvailableFilters)
	assert.Equal(t, []string{"cable_tray"}, res.AvailableFilters.Categories)
	assert.Equal(t, []int{100, 200}, res.AvailableFilters.Heights)

	next, err := svc.Text(context.Background(), Query{Text: "channel", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, next.Results, 1)
	assert.False(t, next.Pagination.HasMore)
	assert.Equal(t, 3, next.Pagination.Total)

	empty, err := svc.Text(context.Background(), Query{Text: "  "})
	require.NoError(t, err)
	assert.Empty(t, empty.Results)
	assert.Zero(t, empty.Pagination.Total)
	assert.Nil(t, empty.AvailableFilters)
}

func TestServiceLimitClamp(t *testing.T) {
	svc := newService(t)

	res, err := svc.Filter(context.Background(), Query{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pagination.Limit)
	assert.Len(t, res.Results, 3)
	assert.Equal(t, 4, res.Pagination.Total)

	res, err = svc.Filter(context.Background(), Query{Filters: Criteria{"height": 200}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Limit)
	assert.Equal(t, TypeFilter, res.Info.SearchType)
	assert.Equal(t, 1, res.Pagination.Total)
}

func TestServiceCombinedAndSuggest(t *testing.T) {
	svc := newService(t)

	res, err := svc.Combined(context.Background(), Query{Text: "channel", Filters: Criteria{"width": 300}, Language: internal.LanguageEnglish})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "MEN-TCS-200-300-1.5", res.Results[0].MenoraID)
	assert.Equal(t, "english", res.Info.Language)

	got, err := svc.Suggest(context.Background(), "cha", internal.LanguageEnglish, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Channel", "channel cable tray"}, got)
}

func TestServiceNotLoaded(t *testing.T) {
	svc := NewService(staticSource{}, Options{}, nil)
	_, err := svc.Text(context.Background(), Query{Text: "x"})
	assert.ErrorIs(t, err, catalog.ErrNotLoaded)
	_, err = svc.AvailableFilters(internal.LanguageAny)
	assert.ErrorIs(t, err, catalog.ErrNotLoaded)
}

func TestAvailableFiltersHebrewLabels(t *testing.T) {
	svc := newService(t)

	he, err := svc.AvailableFilters(internal.LanguageHebrew)
	require.NoError(t, err)
	assert.Equal(t, []TypeOption{{Value: "Channel Cable Tray", Label: "תעלה מלאה"}}, he.Types)

	blob, err := json.Marshal(he)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": [{"value": "Channel Cable Tray", "label": "תעלה מלאה"}],
		"height": [100, 200],
		"width": [200, 300],
		"thickness": [1.5],
		"galvanization": ["Pre-Galvanized"]
	}`, string(blob))

	en, err := svc.AvailableFilters(internal.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, []string{"Channel Cable Tray"}, en.TypeValues())
}

func TestPopularSearches(t *testing.T) {
	assert.Len(t, PopularSearches(0), 10)
	assert.Equal(t, []string{"תעלה מחורצת", "cable tray", "TCS"}, PopularSearches(3))
	assert.Equal(t, "Cable Tray (XYZ)", HebrewTypeLabel("Cable Tray (XYZ)"))
}
