package quote

import (
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

const quoteHTML = `<!DOCTYPE html>
<html lang="he" dir="rtl">
<head>
<meta charset="utf-8">
<title>{{.List.Name}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 4px 8px; }
tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1 class="list-name">{{.List.Name}}</h1>
<p class="meta">{{.List.UserCode}} · {{.Generated}}</p>
<table class="items">
<thead>
<tr><th>#</th><th>מק"ט</th><th>תיאור</th><th>כמות</th><th>מחיר יחידה</th><th>סה"כ</th></tr>
</thead>
<tbody>
{{- range $i, $it := .List.Items}}
<tr class="item" data-menora-id="{{$it.MenoraID}}">
<td>{{inc $i}}</td><td>{{$it.MenoraID}}</td><td>{{$it.Description}}</td><td class="qty">{{$it.Quantity}}</td><td>{{money $it.UnitPrice $it.Currency}}</td><td class="line-total">{{money $it.Total $it.Currency}}</td>
</tr>
{{- end}}
</tbody>
<tfoot>
<tr><td colspan="5">סכום ביניים</td><td class="subtotal">{{money .Totals.Subtotal .Totals.Currency}}</td></tr>
<tr><td colspan="5">מע"מ</td><td class="vat">{{money .Totals.TaxAmount .Totals.Currency}}</td></tr>
<tr><td colspan="5">סה"כ לתשלום</td><td class="total">{{money .Totals.Total .Totals.Currency}}</td></tr>
</tfoot>
</table>
</body>
</html>
`

// RenderHTML writes a printable quote for the list.
func RenderHTML(w io.Writer, calc Calculator, l *List, totals Totals, now time.Time) error {
	tmpl, err := template.New("quote").Funcs(template.FuncMap{
		"inc":   func(i int) int { return i + 1 },
		"money": func(d decimal.Decimal, currency string) string { return calc.Format(d, currency) },
	}).Parse(quoteHTML)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, struct {
		List      *List
		Totals    Totals
		Generated string
	}{List: l, Totals: totals, Generated: now.Format("02/01/2006 15:04")})
}
