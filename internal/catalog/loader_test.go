package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menora/internal"
	"menora/internal/sheets"
	"menora/internal/sheets/sheetstest"
)

func lookupBook(t *testing.T, dir string, rows ...[]any) string {
	t.Helper()
	all := append([][]any{{"Type", "Hebrew Term", "English term"}}, rows...)
	return sheetstest.Write(t, dir, "lookup.xlsx", sheetstest.Sheet{Name: LookupSheet, Rows: all})
}

func priceSheet(name string, rows ...[]any) sheetstest.Sheet {
	all := append([][]any{{"מחירון"}, {"HOLDEE"}, {"TYPE", "גילוון", "גובה", "רוחב", "עובי", "מחיר"}}, rows...)
	return sheetstest.Sheet{Name: name, Rows: all}
}

func load(t *testing.T, lookup, prices string) *Catalog {
	t.Helper()
	cat, err := NewLoader(Sources{LookupPath: lookup, PricePath: prices}, nil).Load(context.Background(), nil)
	require.NoError(t, err)
	return cat
}

func ids(products []*internal.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.MenoraID)
	}
	return out
}

func TestLoadBaseAndVariant(t *testing.T) {
	dir := t.TempDir()
	lookup := lookupBook(t, dir, []any{"TCS", "תעלה", "Channel Tray"})
	prices := sheetstest.Write(t, dir, "prices.xlsx",
		priceSheet("100", []any{"TCS", "PGL", nil, 200, 1.5, 120}),
	)

	var stages []Stage
	cat, err := NewLoader(Sources{LookupPath: lookup, PricePath: prices}, nil).Load(context.Background(), func(s Stage) {
		stages = append(stages, s)
	})
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageConnecting, StageTypeCatalog, StagePriceCatalog, StageFacets}, stages)

	require.Equal(t, []string{"MEN-TCS-000", "MEN-TCS-100-200-1.5"}, ids(cat.Products()))

	base := cat.Products()[0]
	assert.Nil(t, base.Pricing)
	assert.Equal(t, "HOLDEE-TCS-000", base.SupplierCode)
	assert.Equal(t, "Channel Cable Tray", base.Specifications.Type)
	assert.Equal(t, internal.CategoryCableTray, base.Category)
	assert.Nil(t, base.Specifications.Material)

	v := cat.Products()[1]
	require.NotNil(t, v.Pricing)
	assert.Equal(t, "120", v.Pricing.Price.String())
	assert.Equal(t, "ILS", v.Pricing.Currency)
	assert.Equal(t, "TCS-100-200-1.5-PGL", v.SupplierCode)
	assert.Equal(t, base.Descriptions, v.Descriptions)
	assert.Equal(t, base.Category, v.Category)
	assert.Equal(t, "Channel Cable Tray", v.Specifications.Type)
	assert.Equal(t, 100, *v.Specifications.Height)
	assert.Equal(t, 200, *v.Specifications.Width)
	assert.Equal(t, 1.5, *v.Specifications.Thickness)
	assert.Equal(t, "Pre-Galvanized", *v.Specifications.Galvanization)
	assert.Nil(t, v.Specifications.Material)
	assert.Contains(t, v.SearchTerms.Combined, "channel")

	price, ok := cat.PriceOf("TCS-100-200-1.5-PGL")
	require.True(t, ok)
	assert.Equal(t, "120", price.String())

	f := cat.Facets()
	assert.Equal(t, []string{"Channel Cable Tray"}, f.Types)
	assert.Equal(t, []int{100}, f.Heights)
	assert.Equal(t, []string{"Pre-Galvanized"}, f.Galvanizations)

	r := cat.Report()
	assert.Equal(t, 1, r.BaseProducts)
	assert.Equal(t, 1, r.Variants)
	assert.NotEmpty(t, r.RunID)
	assert.NotEmpty(t, r.SourceVersion)
	assert.False(t, r.LoadedAt.IsZero())
}

func TestLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	lookup := lookupBook(t, dir,
		[]any{"TCS", "תעלה", "Channel Tray"},
		[]any{"PCS", "תעלה מחורצת", "Perforated Tray"},
	)
	prices := sheetstest.Write(t, dir, "prices.xlsx",
		priceSheet("50", []any{"PCS", "HDG", nil, 100, 1, 80}),
		priceSheet("100", []any{"TCS", "PGL", nil, 200, 1.5, 120}),
	)

	first := load(t, lookup, prices)
	second := load(t, lookup, prices)
	assert.Equal(t, ids(first.Products()), ids(second.Products()))
	for i, p := range first.Products() {
		assert.Equal(t, p.SupplierCode, second.Products()[i].SupplierCode)
	}
	assert.NotEqual(t, first.Report().RunID, second.Report().RunID)
	assert.Equal(t, first.Report().SourceVersion, second.Report().SourceVersion)
}

func TestLoadWithoutPriceWorkbook(t *testing.T) {
	dir := t.TempDir()
	lookup := lookupBook(t, dir, []any{"TCS", "תעלה", "Channel Tray"})

	cat := load(t, lookup, filepath.Join(dir, "missing.xlsx"))
	assert.Equal(t, []string{"MEN-TCS-000"}, ids(cat.Products()))
	assert.NotEmpty(t, cat.Report().Warnings)
	assert.Empty(t, cat.Prices())
}

func TestLoadFailsWithoutLookup(t *testing.T) {
	dir := t.TempDir()
	_, err := NewLoader(Sources{
		LookupPath: filepath.Join(dir, "lookup.xlsx"),
		PricePath:  filepath.Join(dir, "prices.xlsx"),
	}, nil).Load(context.Background(), nil)
	require.ErrorIs(t, err, ErrLookupUnavailable)
	require.ErrorIs(t, err, sheets.ErrFileNotFound)

	wrong := sheetstest.Write(t, dir, "wrong.xlsx", sheetstest.Sheet{Name: "Types", Rows: [][]any{{"Type"}}})
	_, err = NewLoader(Sources{LookupPath: wrong}, nil).Load(context.Background(), nil)
	require.ErrorIs(t, err, ErrLookupUnavailable)
	require.ErrorIs(t, err, sheets.ErrSheetNotFound)
}

func TestLoadSkipsBadPriceRows(t *testing.T) {
	dir := t.TempDir()
	lookup := lookupBook(t, dir, []any{"TCS", "תעלה", "Channel Tray"})
	prices := sheetstest.Write(t, dir, "prices.xlsx", priceSheet("100",
		[]any{"TCS", "PGL", nil, 100, 1, 90},
		[]any{"TCS", "PGL", nil, 200, 1, "call us"},
		[]any{"TCS", "PGL", nil, 300, 1, 150},
		[]any{"", "PGL", nil, 400, 1, 150},
		[]any{"TCS", "PGL", nil, 500, 1, 0},
	))

	cat := load(t, lookup, prices)
	assert.Equal(t, []string{"MEN-TCS-000", "MEN-TCS-100-100-1.0", "MEN-TCS-100-300-1.0"}, ids(cat.Products()))
	assert.Equal(t, 3, cat.Report().SkippedRows)
}

func TestLoadUnknownTypeUsesGenericBase(t *testing.T) {
	dir := t.TempDir()
	lookup := lookupBook(t, dir, []any{"TCS", "תעלה", "Channel Tray"})
	prices := sheetstest.Write(t, dir, "prices.xlsx", priceSheet("75",
		[]any{"ZZZ", "XYZ", nil, 100, 2, 55},
		[]any{"ZZZ", "XYZ", nil, 150, 2, 60},
	))

	cat := load(t, lookup, prices)
	require.Equal(t, []string{"MEN-TCS-000", "MEN-ZZZ-75-100-2.0", "MEN-ZZZ-75-150-2.0"}, ids(cat.Products()))

	v := cat.Products()[1]
	assert.Equal(t, internal.Descriptions{Hebrew: "ZZZ", English: "ZZZ"}, v.Descriptions)
	assert.Equal(t, internal.CategoryCableTray, v.Category)
	assert.Equal(t, "Cable Tray (ZZZ)", v.Specifications.Type)
	assert.Equal(t, "XYZ", *v.Specifications.Galvanization)
	assert.False(t, v.IsSynthetic())
	assert.Len(t, cat.Report().Warnings, 1)

	_, ok := cat.ProductByID("MEN-ZZZ-000")
	assert.False(t, ok)

	generic := MakeGenericType("ZZZ")
	assert.True(t, generic.IsSynthetic())
	assert.Equal(t, "MEN-ZZZ-000", generic.MenoraID)
}

func TestLoadSheetOrderAndDimensions(t *testing.T) {
	dir := t.TempDir()
	lookup := lookupBook(t, dir,
		[]any{"", "ריק", "blank type"},
		[]any{"HTCT", "טי", "Half tee"},
		[]any{"TCS", "", ""},
		[]any{"TCS", "תעלה", "Channel Tray"},
	)
	prices := sheetstest.Write(t, dir, "prices.xlsx",
		priceSheet("Accessories", []any{"HTCT", "", nil, 100, nil, 15}),
		priceSheet("50",
			[]any{"TCS", "PGL", 60, 200, 1.5, 70},
			[]any{"TCS", "HDG", nil, 200, 1.5, 90},
			[]any{"TCS", "SS", nil, 200, 1.5, 190},
		),
		sheetstest.Sheet{Name: "Notes", Rows: [][]any{{}, {}, {"remark"}, {"see catalog"}}},
	)

	cat := load(t, lookup, prices)
	assert.Equal(t, []string{
		"MEN-HTCT-001",
		"MEN-TCS-003",
		"MEN-TCS-60-200-1.5",
		"MEN-TCS-50-200-1.5",
		"MEN-TCS-50-200-1.5-SS",
		"MEN-HTCT-XX-100-X",
	}, ids(cat.Products()))

	acc, _ := cat.ProductByID("MEN-HTCT-XX-100-X")
	assert.Equal(t, "HTCT-XX-100-X-", acc.SupplierCode)
	assert.Nil(t, acc.Specifications.Galvanization)
	assert.Nil(t, acc.Specifications.Height)
	assert.Equal(t, internal.CategoryConnector, acc.Category)

	hdg, _ := cat.ProductByID("MEN-TCS-50-200-1.5")
	assert.Equal(t, "Hot Dip Galvanized", *hdg.Specifications.Galvanization)

	r := cat.Report()
	assert.Equal(t, 2, r.SkippedRows)
	assert.Equal(t, []string{"Notes"}, r.SheetsFailed)
	assert.Equal(t, []string{LookupSheet, "50", "Accessories"}, r.SheetsLoaded)
}

func TestDetermineCategory(t *testing.T) {
	cases := map[string]internal.Category{
		"Ladder Cable Tray Cover": internal.CategoryCover,
		"Tray lid":                internal.CategoryCover,
		"Cross connector":         internal.CategoryConnector,
		"Wall bracket":            internal.CategorySupport,
		"Cable trunking":          internal.CategoryTrunking,
		"Wire mesh tray":          internal.CategoryCableTray,
		"Channel Tray":            internal.CategoryCableTray,
		"Threaded rod":            internal.CategoryAccessory,
		"":                        internal.CategoryAccessory,
	}
	for desc, want := range cases {
		assert.Equal(t, want, DetermineCategory(desc), desc)
	}
}

func TestTables(t *testing.T) {
	assert.Equal(t, "Ladder Cable Tray", TypeName("HEL"))
	assert.Equal(t, "Cable Tray (HMW)", TypeName("HMW"))
	assert.Equal(t, "Stainless Steel", *Galvanization("SS"))
	assert.Equal(t, "ZN", *Galvanization("ZN"))
	assert.Nil(t, Galvanization(" "))
}
