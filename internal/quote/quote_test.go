package quote

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"menora/internal"
	"menora/internal/catalog"
)

func priced(t *testing.T, id, price string, tiers ...internal.BulkTier) *internal.Product {
	t.Helper()
	pricing := internal.NewPricing(decimal.RequireFromString(price), "ILS")
	pricing.BulkPricing = tiers
	p, err := internal.NewProduct(internal.ProductParams{
		MenoraID:     id,
		SupplierCode: id + "-S",
		Descriptions: internal.Descriptions{Hebrew: "תעלה " + id, English: "Tray " + id},
		Category:     internal.CategoryCableTray,
		Pricing:      pricing,
	})
	require.NoError(t, err)
	return p
}

func unpriced(t *testing.T, id string) *internal.Product {
	t.Helper()
	p, err := internal.NewProduct(internal.ProductParams{
		MenoraID:     id,
		Descriptions: internal.Descriptions{English: "Base " + id},
	})
	require.NoError(t, err)
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestListAddMergesSameProduct(t *testing.T) {
	p := priced(t, "MEN-A", "10.00")
	l := NewList("U1", "  ")
	assert.Equal(t, "רשימת קניות", l.Name)

	first, err := l.Add(p, 2, "")
	require.NoError(t, err)
	second, err := l.Add(p, 3, "note")
	require.NoError(t, err)

	require.Len(t, l.Items, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, l.Items[0].Quantity)
	assert.Equal(t, "note", l.Items[0].Notes)
	assert.Equal(t, 5, l.TotalQuantity())

	_, err = l.Add(p, 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = l.Add(unpriced(t, "MEN-B"), 1, "")
	assert.ErrorIs(t, err, ErrNoPricing)

	assert.ErrorIs(t, l.SetQuantity("nope", 1), ErrItemNotFound)
	assert.ErrorIs(t, l.SetQuantity(first.ID, -1), ErrInvalidQuantity)
	require.NoError(t, l.Remove(first.ID))
	assert.Empty(t, l.Items)
}

func TestCalculatorItemPrice(t *testing.T) {
	calc := NewCalculator("ILS", DefaultVATRate)
	p := priced(t, "MEN-A", "10.00",
		internal.BulkTier{MinQty: 10, Price: dec("9.00")},
		internal.BulkTier{MinQty: 50, Price: dec("8.125")},
	)

	one, err := calc.ItemPrice(p, 1)
	require.NoError(t, err)
	assert.False(t, one.BulkApplied)
	assert.True(t, one.TotalPrice.Equal(dec("10")))
	assert.True(t, one.Savings.IsZero())

	bulk, err := calc.ItemPrice(p, 10)
	require.NoError(t, err)
	assert.True(t, bulk.BulkApplied)
	assert.True(t, bulk.UnitPrice.Equal(dec("9")))
	assert.True(t, bulk.TotalPrice.Equal(dec("90")))
	assert.True(t, bulk.Savings.Equal(dec("10")))

	top, err := calc.ItemPrice(p, 60)
	require.NoError(t, err)
	assert.True(t, top.UnitPrice.Equal(dec("8.13")), top.UnitPrice.String())
	assert.True(t, top.TotalPrice.Equal(dec("487.5")))

	_, err = calc.ItemPrice(p, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = calc.ItemPrice(unpriced(t, "MEN-B"), 1)
	assert.ErrorIs(t, err, ErrNoPricing)

	table := calc.BulkTable(p, nil)
	require.Len(t, table, 5)
	assert.Equal(t, []bool{false, true, true, true, true}, []bool{
		table[0].BulkApplied, table[1].BulkApplied, table[2].BulkApplied, table[3].BulkApplied, table[4].BulkApplied,
	})
	assert.Nil(t, calc.BulkTable(unpriced(t, "MEN-B"), nil))
}

func TestCalculatorTotals(t *testing.T) {
	calc := NewCalculator("ILS", DefaultVATRate)
	l := NewList("U1", "x")
	_, err := l.Add(priced(t, "MEN-A", "10.005"), 1, "")
	require.NoError(t, err)
	_, err = l.Add(priced(t, "MEN-B", "99.99"), 3, "")
	require.NoError(t, err)

	tot := calc.Totals(l, true)
	// 10.01 + 299.97
	assert.True(t, tot.Subtotal.Equal(dec("309.98")), tot.Subtotal.String())
	assert.True(t, tot.TaxAmount.Equal(dec("52.70")), tot.TaxAmount.String())
	assert.True(t, tot.Total.Equal(dec("362.68")), tot.Total.String())
	assert.Equal(t, 2, tot.TotalItems)
	assert.Equal(t, 4, tot.TotalQuantity)
	assert.Len(t, tot.Breakdown, 2)
	assert.Equal(t, "ILS", tot.Currency)

	noTax := calc.Totals(l, false)
	assert.True(t, noTax.TaxAmount.IsZero())
	assert.True(t, noTax.Total.Equal(noTax.Subtotal))

	empty := calc.Totals(NewList("U1", "e"), true)
	assert.True(t, empty.Total.IsZero())
	assert.Empty(t, empty.Breakdown)
}

func TestFormat(t *testing.T) {
	calc := NewCalculator("", DefaultVATRate)
	assert.Equal(t, "1,234.50 ₪", calc.Format(dec("1234.5"), ""))
	assert.Equal(t, "$1,234,567.01", calc.Format(dec("1234567.005"), "USD"))
	assert.Equal(t, "12.00 €", calc.Format(dec("12"), "EUR"))
	assert.Equal(t, "0.10 GBP", calc.Format(dec("0.1"), "GBP"))
	assert.Equal(t, "-1,000.00 ₪", calc.Format(dec("-1000"), "ILS"))
}

func TestExportXLSX(t *testing.T) {
	calc := NewCalculator("ILS", DefaultVATRate)
	l := NewList("U1", "Site: A/B")
	_, err := l.Add(priced(t, "MEN-A", "10"), 2, "n1")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out", "list.xlsx")
	require.NoError(t, ExportXLSX(l, calc.Totals(l, true), out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)
	assert.Equal(t, "Site AB", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "MEN-A", rows[1][1])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "20", rows[1][7])
	assert.Equal(t, "total", rows[5][6])
	assert.Equal(t, "23.4", rows[5][7])
}

func TestRenderHTML(t *testing.T) {
	calc := NewCalculator("ILS", DefaultVATRate)
	l := NewList("U1", "<script>")
	_, err := l.Add(priced(t, "MEN-A", "1000"), 2, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, calc, l, calc.Totals(l, true), time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "<script>", doc.Find("h1.list-name").Text())
	assert.Equal(t, 1, doc.Find("tr.item").Length())
	id, _ := doc.Find("tr.item").Attr("data-menora-id")
	assert.Equal(t, "MEN-A", id)
	assert.Equal(t, "2,000.00 ₪", doc.Find("td.line-total").Text())
	assert.Equal(t, "340.00 ₪", doc.Find("td.vat").Text())
	assert.Equal(t, "2,340.00 ₪", doc.Find("td.total").Text())
	assert.True(t, strings.Contains(doc.Find("p.meta").Text(), "02/01/2026"))
}

type memStore struct {
	mu    sync.Mutex
	lists map[string]*List
}

func (m *memStore) SaveList(_ context.Context, l *List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	cp.Items = append([]Item(nil), l.Items...)
	m.lists[l.ID] = &cp
	return nil
}

func (m *memStore) GetList(_ context.Context, id string) (*List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return nil, fmt.Errorf("list %s missing", id)
	}
	cp := *l
	cp.Items = append([]Item(nil), l.Items...)
	return &cp, nil
}

func (m *memStore) ListsByUser(_ context.Context, user string) ([]*List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*List
	for _, l := range m.lists {
		if l.UserCode == user {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) DeleteList(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, id)
	return nil
}

type fixedCatalog struct{ cat *catalog.Catalog }

func (f fixedCatalog) Catalog() (*catalog.Catalog, error) { return f.cat, nil }

func TestServiceFlow(t *testing.T) {
	ctx := context.Background()
	cat := catalog.NewCatalog([]*internal.Product{
		unpriced(t, "MEN-TCS-000"),
		priced(t, "MEN-TCS-100-200-1.5", "55.5"),
	}, nil, internal.LoadReport{})
	store := &memStore{lists: map[string]*List{}}
	svc := NewService(store, fixedCatalog{cat: cat}, NewCalculator("ILS", 0.17), t.TempDir(), nil)

	l, err := svc.Create(ctx, "U1", "Project")
	require.NoError(t, err)

	_, _, err = svc.AddItem(ctx, l.ID, "MEN-NOPE", 1, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, _, err = svc.AddItem(ctx, l.ID, "MEN-TCS-000", 1, "")
	assert.ErrorIs(t, err, ErrNoPricing)

	l, it, err := svc.AddItem(ctx, l.ID, "MEN-TCS-100-200-1.5", 2, "")
	require.NoError(t, err)
	assert.Len(t, l.Items, 1)

	tot, err := svc.Totals(ctx, l.ID, false)
	require.NoError(t, err)
	assert.True(t, tot.Total.Equal(dec("111")))

	l, err = svc.SetQuantity(ctx, l.ID, it.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Items[0].Quantity)

	path, err := svc.ExportXLSX(ctx, l.ID)
	require.NoError(t, err)
	assert.FileExists(t, path)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderHTML(ctx, l.ID, &buf))
	assert.Contains(t, buf.String(), "MEN-TCS-100-200-1.5")

	rows, err := svc.BulkTable("MEN-TCS-100-200-1.5", []int{1, 5})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	_, err = svc.BulkTable("MEN-TCS-000", nil)
	assert.ErrorIs(t, err, ErrNoPricing)
}
