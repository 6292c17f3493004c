package quote

import (
	"strings"

	"github.com/shopspring/decimal"

	"menora/internal"
)

const DefaultVATRate = 0.17

var DefaultBulkQuantities = []int{1, 10, 25, 50, 100}

// RoundCurrency rounds half away from zero to two places.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

type Calculator struct {
	currency string
	vat      decimal.Decimal
}

func NewCalculator(currency string, vatRate float64) Calculator {
	if strings.TrimSpace(currency) == "" {
		currency = internal.DefaultCurrency
	}
	if vatRate < 0 {
		vatRate = DefaultVATRate
	}
	return Calculator{currency: currency, vat: decimal.NewFromFloat(vatRate)}
}

type ItemPrice struct {
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Savings     decimal.Decimal `json:"savings"`
	Currency    string          `json:"currency"`
	BulkApplied bool            `json:"bulk_discount_applied"`
}

func (c Calculator) ItemPrice(p *internal.Product, qty int) (ItemPrice, error) {
	if qty <= 0 {
		return ItemPrice{}, ErrInvalidQuantity
	}
	unit, bulk, ok := p.PriceFor(qty)
	if !ok {
		return ItemPrice{}, ErrNoPricing
	}
	q := decimal.NewFromInt(int64(qty))
	base := p.Pricing.Price
	out := ItemPrice{
		UnitPrice:   RoundCurrency(unit),
		TotalPrice:  RoundCurrency(unit.Mul(q)),
		BasePrice:   RoundCurrency(base),
		Savings:     decimal.Zero,
		Currency:    p.Pricing.Currency,
		BulkApplied: bulk,
	}
	if bulk {
		out.Savings = RoundCurrency(base.Sub(unit).Mul(q))
	}
	return out, nil
}

type BulkRow struct {
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	BulkApplied bool            `json:"bulk_discount_applied"`
	Currency    string          `json:"currency"`
}

// BulkTable prices p at each quantity. Unpriced products yield nil.
func (c Calculator) BulkTable(p *internal.Product, qtys []int) []BulkRow {
	if !p.IsPriced() {
		return nil
	}
	if len(qtys) == 0 {
		qtys = DefaultBulkQuantities
	}
	out := make([]BulkRow, 0, len(qtys))
	for _, q := range qtys {
		ip, err := c.ItemPrice(p, q)
		if err != nil {
			continue
		}
		out = append(out, BulkRow{
			Quantity:    q,
			UnitPrice:   ip.UnitPrice,
			TotalPrice:  ip.TotalPrice,
			BulkApplied: ip.BulkApplied,
			Currency:    ip.Currency,
		})
	}
	return out
}

type Line struct {
	ItemID      string          `json:"item_id"`
	MenoraID    string          `json:"menora_id"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	Breakdown     []Line          `json:"breakdown"`
}

func (c Calculator) Totals(l *List, includeTax bool) Totals {
	out := Totals{
		Subtotal:  decimal.Zero,
		TaxRate:   decimal.Zero,
		TaxAmount: decimal.Zero,
		Total:     decimal.Zero,
		Currency:  c.currency,
		Breakdown: []Line{},
	}
	if l == nil || len(l.Items) == 0 {
		return out
	}
	for _, it := range l.Items {
		total := it.Total()
		out.Subtotal = out.Subtotal.Add(total)
		out.TotalQuantity += it.Quantity
		out.Breakdown = append(out.Breakdown, Line{
			ItemID:      it.ID,
			MenoraID:    it.MenoraID,
			Description: it.Description(),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  total,
		})
	}
	if cur := l.Items[0].Currency; cur != "" {
		out.Currency = cur
	}
	out.TotalItems = len(l.Items)
	out.Subtotal = RoundCurrency(out.Subtotal)
	if includeTax {
		out.TaxRate = c.vat
		out.TaxAmount = RoundCurrency(out.Subtotal.Mul(c.vat))
	}
	out.Total = RoundCurrency(out.Subtotal.Add(out.TaxAmount))
	return out
}

// Format renders an amount for display: "1,234.50 ₪", "$1,234.50", "1,234.50 €".
// Unknown currencies are suffixed with their code.
func (c Calculator) Format(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = c.currency
	}
	n := groupThousands(RoundCurrency(amount).StringFixed(2))
	switch currency {
	case "ILS":
		return n + " ₪"
	case "USD":
		return "$" + n
	case "EUR":
		return n + " €"
	default:
		return n + " " + currency
	}
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}
