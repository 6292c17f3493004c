package internal

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCableTray Category = "cable_tray"
	CategoryCover     Category = "cover"
	CategoryConnector Category = "connector"
	CategorySupport   Category = "support"
	CategoryTrunking  Category = "trunking"
	CategoryAccessory Category = "accessory"
)

type Language string

const (
	LanguageAny     Language = ""
	LanguageHebrew  Language = "hebrew"
	LanguageEnglish Language = "english"
)

// ParseLanguage maps free-form input to a Language. Unknown values mean "any".
func ParseLanguage(v string) Language {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "hebrew", "he", "heb":
		return LanguageHebrew
	case "english", "en", "eng":
		return LanguageEnglish
	default:
		return LanguageAny
	}
}

const (
	DefaultSupplierName = "HOLDEE"
	DefaultCurrency     = "ILS"
	DefaultLeadTimeDays = 7
)

type Descriptions struct {
	Hebrew  string `json:"hebrew"`
	English string `json:"english"`
}

type Specifications struct {
	Type          string   `json:"type"`
	Height        *int     `json:"height,omitempty"`
	Width         *int     `json:"width,omitempty"`
	Thickness     *float64 `json:"thickness,omitempty"`
	Galvanization *string  `json:"galvanization,omitempty"`
	Material      *string  `json:"material,omitempty"`
	Length        *int     `json:"length,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	LoadCapacity  *int     `json:"load_capacity,omitempty"`
	Finish        *string  `json:"finish,omitempty"`
}

// SpecFieldNames lists the specification keys in declaration order.
var SpecFieldNames = []string{
	"type", "height", "width", "thickness", "galvanization",
	"material", "length", "weight", "load_capacity", "finish",
}

// Field returns the value stored under a specification key. Integers and floats
// are returned as float64, text as string. ok is false for unknown keys and for
// fields that are not set.
func (s *Specifications) Field(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "type":
		if s.Type == "" {
			return nil, false
		}
		return s.Type, true
	case "height":
		return intField(s.Height)
	case "width":
		return intField(s.Width)
	case "thickness":
		return floatField(s.Thickness)
	case "galvanization":
		return stringField(s.Galvanization)
	case "material":
		return stringField(s.Material)
	case "length":
		return intField(s.Length)
	case "weight":
		return floatField(s.Weight)
	case "load_capacity", "loadcapacity":
		return intField(s.LoadCapacity)
	case "finish":
		return stringField(s.Finish)
	default:
		return nil, false
	}
}

// TermValues renders every set, non-zero field as a lowercase search term.
func (s *Specifications) TermValues() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(SpecFieldNames))
	for _, name := range SpecFieldNames {
		v, ok := s.Field(name)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				out = append(out, strings.ToLower(t))
			}
		case float64:
			if t == 0 {
				continue
			}
			if name == "thickness" || name == "weight" {
				out = append(out, FormatDecimal(t))
			} else {
				out = append(out, strconv.FormatInt(int64(t), 10))
			}
		}
	}
	return out
}

func intField(v *int) (any, bool) {
	if v == nil {
		return nil, false
	}
	return float64(*v), true
}

func floatField(v *float64) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

func stringField(v *string) (any, bool) {
	if v == nil || *v == "" {
		return nil, false
	}
	return *v, true
}

// FormatDecimal renders a float the way the supplier sheets print them: integral
// values keep one decimal place ("2.0"), others use the shortest exact form ("1.5").
func FormatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type BulkTier struct {
	MinQty int             `json:"minQty"`
	Price  decimal.Decimal `json:"price"`
}

type Pricing struct {
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	BulkPricing     []BulkTier      `json:"bulk_pricing,omitempty"`
	PriceType       string          `json:"price_type"`
	MinimumQuantity int             `json:"minimum_quantity"`
}

// NewPricing returns a single unit price with the schema defaults applied.
func NewPricing(price decimal.Decimal, currency string) *Pricing {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}
	return &Pricing{Price: price, Currency: currency, PriceType: "standard", MinimumQuantity: 1}
}

type SearchTerms struct {
	Hebrew   []string `json:"hebrew"`
	English  []string `json:"english"`
	Combined string   `json:"combined"`
}

// Origin records the worksheet row a product was built from. Row is 1-based.
type Origin struct {
	File  string `json:"file,omitempty"`
	Sheet string `json:"sheet,omitempty"`
	Row   int    `json:"row,omitempty"`
}

type ProductImage struct {
	URL          string `json:"image_url,omitempty"`
	Path         string `json:"image_path,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Product is immutable after NewProduct except for its image, which the
// background extractor publishes through an atomic pointer.
type Product struct {
	MenoraID       string
	SupplierCode   string
	TypeCode       string
	Descriptions   Descriptions
	Category       Category
	Subcategory    *string
	Specifications *Specifications
	Pricing        *Pricing
	SearchTerms    SearchTerms
	InStock        bool
	LeadTimeDays   int
	Tags           []string
	SupplierName   string
	Origin         Origin

	synthetic bool
	image     atomic.Pointer[ProductImage]
}

type Facets struct {
	Types          []string  `json:"type"`
	Heights        []int     `json:"height"`
	Widths         []int     `json:"width"`
	Thicknesses    []float64 `json:"thickness"`
	Galvanizations []string  `json:"galvanization"`
}

type LoadReport struct {
	RunID         string        `json:"runId"`
	BaseProducts  int           `json:"baseProducts"`
	Variants      int           `json:"variants"`
	SkippedRows   int           `json:"skippedRows"`
	SheetsLoaded  []string      `json:"sheetsLoaded"`
	SheetsFailed  []string      `json:"sheetsFailed"`
	Warnings      []string      `json:"warnings"`
	LoadDuration  time.Duration `json:"loadDuration"`
	LoadedAt      time.Time     `json:"loadedAt"`
	SourceVersion string        `json:"sourceVersion"`
}

// SnapshotMeta describes a persisted catalog.
type SnapshotMeta struct {
	RunID         string
	LoadedAt      time.Time
	SourceVersion string
	ProductCount  int
}
