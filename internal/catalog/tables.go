package catalog

import (
	"fmt"
	"strings"

	"menora/internal"
)

// Sheet and column names fixed by the supplier workbooks.
const (
	LookupSheet     = "Complete cable tray lookup"
	lookupHeaderRow = 0
	priceHeaderRow  = 2
)

var (
	colLookupType    = []string{"Type"}
	colLookupHebrew  = []string{"Hebrew Term"}
	colLookupEnglish = []string{"English term"}

	colPriceType     = []string{"TYPE", "Type"}
	colGalvanization = []string{"גילוון"}
	colHeight        = []string{"גובה"}
	colWidth         = []string{"רוחב"}
	colThickness     = []string{"עובי"}
	colPrice         = []string{"מחיר"}
)

var typeNames = map[string]string{
	"TCS":  "Channel Cable Tray",
	"PCS":  "Perforated Cable Tray",
	"HET":  "Cable Trunking",
	"HWM":  "Wire Mesh Cable Tray",
	"HEL":  "Ladder Cable Tray",
	"HEP":  "Decorated Cable Tray",
	"CTC":  "Cable Tray Cover",
	"HETC": "Cable Trunking Cover",
	"HELC": "Ladder Cable Tray Cover",
	"HTCT": "Half Tee for Cable Tray",
}

var galvanizations = map[string]string{
	"PGL": "Pre-Galvanized",
	"HDG": "Hot Dip Galvanized",
	"SS":  "Stainless Steel",
	"AL":  "Aluminum",
}

// TypeName maps a supplier type code to its display name.
func TypeName(code string) string {
	if name, ok := typeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Cable Tray (%s)", code)
}

// Galvanization maps a finish code to its name. Unknown codes pass through and
// a blank code yields nil.
func Galvanization(code string) *string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	if name, ok := galvanizations[code]; ok {
		return &name
	}
	return &code
}

var categoryRules = []struct {
	category internal.Category
	keywords []string
}{
	{internal.CategoryCover, []string{"cover", "lid"}},
	{internal.CategoryConnector, []string{"connector", "tee", "elbow", "cross"}},
	{internal.CategorySupport, []string{"support", "bracket", "hanger"}},
	{internal.CategoryTrunking, []string{"trunking"}},
	{internal.CategoryCableTray, []string{"ladder", "mesh", "perforated", "channel"}},
}

// DetermineCategory classifies by keywords in the English description. The
// first matching rule wins.
func DetermineCategory(english string) internal.Category {
	desc := strings.ToLower(english)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return internal.CategoryAccessory
}
