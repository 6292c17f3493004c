package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

type ProductParams struct {
	MenoraID       string
	SupplierCode   string
	TypeCode       string
	Descriptions   Descriptions
	Category       Category
	Subcategory    *string
	Specifications *Specifications
	Pricing        *Pricing
	Tags           []string
	SupplierName   string
	Origin         Origin
	Image          *ProductImage
	Synthetic      bool

	// InStock and LeadTimeDays default to true and DefaultLeadTimeDays when nil/zero.
	InStock      *bool
	LeadTimeDays int
}

// NewProduct validates params, applies defaults and derives the search terms.
func NewProduct(params ProductParams) (*Product, error) {
	params.MenoraID = strings.TrimSpace(params.MenoraID)
	if params.MenoraID == "" {
		return nil, fmt.Errorf("%w: empty menora id", ErrInvalidProduct)
	}
	params.Descriptions.Hebrew = strings.TrimSpace(params.Descriptions.Hebrew)
	params.Descriptions.English = strings.TrimSpace(params.Descriptions.English)
	if params.Descriptions.Hebrew == "" && params.Descriptions.English == "" {
		return nil, fmt.Errorf("%w: %s has no description", ErrInvalidProduct, params.MenoraID)
	}
	if params.Category == "" {
		params.Category = CategoryAccessory
	}
	if strings.TrimSpace(params.SupplierName) == "" {
		params.SupplierName = DefaultSupplierName
	}
	if params.Pricing != nil && params.Pricing.Currency == "" {
		params.Pricing.Currency = DefaultCurrency
	}

	p := &Product{
		MenoraID:       params.MenoraID,
		SupplierCode:   strings.TrimSpace(params.SupplierCode),
		TypeCode:       strings.TrimSpace(params.TypeCode),
		Descriptions:   params.Descriptions,
		Category:       params.Category,
		Subcategory:    params.Subcategory,
		Specifications: params.Specifications,
		Pricing:        params.Pricing,
		InStock:        true,
		LeadTimeDays:   params.LeadTimeDays,
		Tags:           params.Tags,
		SupplierName:   params.SupplierName,
		Origin:         params.Origin,
		synthetic:      params.Synthetic,
	}
	if params.InStock != nil {
		p.InStock = *params.InStock
	}
	if p.LeadTimeDays <= 0 {
		p.LeadTimeDays = DefaultLeadTimeDays
	}
	if params.Image != nil && params.Image.URL != "" {
		img := *params.Image
		p.image.Store(&img)
	}
	p.SearchTerms = buildSearchTerms(p)
	return p, nil
}

func buildSearchTerms(p *Product) SearchTerms {
	hebrew := make([]string, 0, 8)
	english := make([]string, 0, 16)

	if p.Descriptions.Hebrew != "" {
		hebrew = append(hebrew, p.Descriptions.Hebrew)
		hebrew = append(hebrew, strings.Fields(p.Descriptions.Hebrew)...)
	}
	if p.Descriptions.English != "" {
		english = append(english, strings.Fields(p.Descriptions.English)...)
	}
	english = append(english, p.Specifications.TermValues()...)
	if p.Category != "" {
		english = append(english, strings.ToLower(string(p.Category)))
	}
	english = append(english, strings.ToLower(p.SupplierCode), strings.ToLower(p.SupplierName))

	hebrew = dedupe(hebrew)
	english = dedupe(english)
	return SearchTerms{
		Hebrew:   hebrew,
		English:  english,
		Combined: strings.Join(english, " ") + " " + strings.Join(hebrew, " "),
	}
}

func dedupe(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// IsSynthetic reports whether the product was fabricated for an unknown type code.
func (p *Product) IsSynthetic() bool { return p.synthetic }

// IsPriced reports whether the product is a sellable variant.
func (p *Product) IsPriced() bool { return p.Pricing != nil }

func (p *Product) Image() (ProductImage, bool) {
	img := p.image.Load()
	if img == nil {
		return ProductImage{}, false
	}
	return *img, true
}

// SetImage publishes an image for the product. The swap is a single pointer store,
// so concurrent readers observe either the old or the new value.
func (p *Product) SetImage(url, path string) {
	p.PublishImage(ProductImage{URL: url, Path: path})
}

func (p *Product) PublishImage(img ProductImage) {
	p.image.Store(&img)
}

// PriceFor returns the unit price for qty, honouring the highest bulk tier whose
// minimum quantity is reached. ok is false for unpriced products.
func (p *Product) PriceFor(qty int) (price decimal.Decimal, bulk bool, ok bool) {
	if p.Pricing == nil {
		return decimal.Zero, false, false
	}
	price = p.Pricing.Price
	if qty <= 1 || len(p.Pricing.BulkPricing) == 0 {
		return price, false, true
	}
	tiers := append([]BulkTier(nil), p.Pricing.BulkPricing...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinQty > tiers[j].MinQty })
	for _, tier := range tiers {
		if qty >= tier.MinQty {
			return tier.Price, true, true
		}
	}
	return price, false, true
}

type pricingView struct {
	Price           float64    `json:"price"`
	Currency        string     `json:"currency"`
	BulkPricing     []tierView `json:"bulk_pricing,omitempty"`
	PriceType       string     `json:"price_type"`
	MinimumQuantity int        `json:"minimum_quantity"`
}

type tierView struct {
	MinQty int     `json:"minQty"`
	Price  float64 `json:"price"`
}

type productView struct {
	MenoraID       string          `json:"menora_id"`
	SupplierCode   string          `json:"supplier_code"`
	Descriptions   Descriptions    `json:"descriptions"`
	Category       Category        `json:"category"`
	Subcategory    *string         `json:"subcategory,omitempty"`
	Specifications *Specifications `json:"specifications,omitempty"`
	Pricing        *pricingView    `json:"pricing,omitempty"`
	SearchTerms    SearchTerms     `json:"search_terms"`
	InStock        bool            `json:"in_stock"`
	LeadTime       int             `json:"lead_time"`
	Tags           []string        `json:"tags,omitempty"`
	SupplierName   string          `json:"supplier_name"`
	ImageURL       string          `json:"image_url,omitempty"`
	ImagePath      string          `json:"image_path,omitempty"`
	ThumbnailURL   string          `json:"thumbnail_url,omitempty"`
	HasImage       bool            `json:"has_image"`
}

func (p *Product) MarshalJSON() ([]byte, error) {
	view := productView{
		MenoraID:       p.MenoraID,
		SupplierCode:   p.SupplierCode,
		Descriptions:   p.Descriptions,
		Category:       p.Category,
		Subcategory:    p.Subcategory,
		Specifications: p.Specifications,
		SearchTerms:    p.SearchTerms,
		InStock:        p.InStock,
		LeadTime:       p.LeadTimeDays,
		Tags:           p.Tags,
		SupplierName:   p.SupplierName,
	}
	if p.Pricing != nil {
		pv := &pricingView{
			Price:           p.Pricing.Price.InexactFloat64(),
			Currency:        p.Pricing.Currency,
			PriceType:       p.Pricing.PriceType,
			MinimumQuantity: p.Pricing.MinimumQuantity,
		}
		for _, t := range p.Pricing.BulkPricing {
			pv.BulkPricing = append(pv.BulkPricing, tierView{MinQty: t.MinQty, Price: t.Price.InexactFloat64()})
		}
		view.Pricing = pv
	}
	if img, ok := p.Image(); ok {
		view.ImageURL = img.URL
		view.ImagePath = img.Path
		view.ThumbnailURL = img.ThumbnailURL
		view.HasImage = true
	}
	return json.Marshal(view)
}
