package sheets

import "menora/internal/util"

// Table is one parsed sheet.
type Table struct {
	Sheet   string
	Columns []string
	Rows    []Row
	Skipped int

	columns map[string]int
}

// Row is one data row. Index counts data rows from 0 directly below the header,
// including blank rows that were dropped; Number is the 1-based worksheet row.
type Row struct {
	Index  int
	Number int

	table *Table
	cells []string
}

// HasColumn reports whether any of the candidate names is a column of the table.
func (t *Table) HasColumn(candidates ...string) bool {
	for _, c := range candidates {
		if _, ok := t.columns[util.NormalizeColumn(c)]; ok {
			return true
		}
	}
	return false
}

func (r Row) lookup(candidates []string) (string, bool) {
	for _, c := range candidates {
		idx, ok := r.table.columns[util.NormalizeColumn(c)]
		if !ok || idx >= len(r.cells) {
			continue
		}
		if v := r.cells[idx]; v != "" {
			return v, true
		}
	}
	return "", false
}

// GetString returns the first non-blank value among the candidate columns, or fallback.
func GetString(r Row, candidates []string, fallback string) string {
	if v, ok := r.lookup(candidates); ok {
		return v
	}
	return fallback
}

// GetNumeric returns the first candidate column whose value parses as a number.
// Missing or non-numeric cells yield nil.
func GetNumeric(r Row, candidates []string) *float64 {
	for _, c := range candidates {
		v, ok := r.lookup([]string{c})
		if !ok {
			continue
		}
		if f, ok := util.ParseNumber(v); ok {
			return util.FloatPtr(f)
		}
	}
	return nil
}
