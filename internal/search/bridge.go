package search

// hebrewBridge maps common Hebrew queries to English tokens found in product
// terms, so Hebrew shoppers reach products described only in English.
var hebrewBridge = map[string][]string{
	"כבל":        {"cable", "tray"},
	"כבלים":      {"cable", "tray"},
	"תעלת כבלים": {"cable tray", "tray"},
	"מגש":        {"tray", "cable tray"},
	"מגש כבלים":  {"cable tray", "tray"},
}

// Display labels for type facet values. Filtering always uses the English value.
var hebrewTypeLabels = map[string]string{
	"Cable Tray (HMW)":      "מוצר HMW",
	"Cable Trunking":        "תעלת תקשורת",
	"Channel Cable Tray":    "תעלה מלאה",
	"Decorated Cable Tray":  "תעלה מחורצת דקורטיבית",
	"Ladder Cable Tray":     "תעלה סולם",
	"Perforated Cable Tray": "תעלה מחורצת",
}

var popularSearches = []string{
	"תעלה מחורצת",
	"cable tray",
	"TCS",
	"PCS",
	"תעלת תקשורת",
	"מחברים",
	"connectors",
	"supports",
	"תומכים",
	"מכסים",
}

// HebrewTypeLabel returns the Hebrew display name of a type, or the type itself.
func HebrewTypeLabel(typeName string) string {
	if label, ok := hebrewTypeLabels[typeName]; ok {
		return label
	}
	return typeName
}

// PopularSearches returns up to limit suggested starting queries.
func PopularSearches(limit int) []string {
	if limit <= 0 || limit > len(popularSearches) {
		limit = len(popularSearches)
	}
	return append([]string(nil), popularSearches[:limit]...)
}
