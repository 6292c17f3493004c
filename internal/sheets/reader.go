package sheets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"menora/internal/util"
)

var (
	ErrFileNotFound  = errors.New("workbook not found")
	ErrSheetNotFound = errors.New("sheet not found")
)

// Error literals Excel writes into cells whose formula failed.
var cellErrors = map[string]struct{}{
	"#N/A": {}, "#VALUE!": {}, "#REF!": {}, "#DIV/0!": {}, "#NUM!": {}, "#NAME?": {}, "#NULL!": {},
}

// Workbook is an open spreadsheet file. Close it when done.
type Workbook struct {
	path   string
	file   *excelize.File
	logger *slog.Logger
}

// Open opens the workbook at path. A missing file yields ErrFileNotFound.
func Open(path string, logger *slog.Logger) (*Workbook, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat workbook %s: %w", path, err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f, logger: logger}, nil
}

func (w *Workbook) Path() string { return w.path }

func (w *Workbook) Close() error { return w.file.Close() }

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string { return w.file.GetSheetList() }

func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// File exposes the underlying excelize handle for picture access.
func (w *Workbook) File() *excelize.File { return w.file }

// ReadSheet reads sheetName treating the 0-based headerRow as column names.
// Rows above the header are ignored. Blank rows are dropped, rows holding only
// formula errors are dropped with a warning; neither aborts the read.
func (w *Workbook) ReadSheet(sheetName string, headerRow int) (*Table, error) {
	if !w.HasSheet(sheetName) {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheetName, w.path)
	}
	rows, err := w.file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	table := &Table{Sheet: sheetName, columns: map[string]int{}}
	if headerRow < 0 || headerRow >= len(rows) {
		return table, nil
	}

	for i, header := range rows[headerRow] {
		name := util.NormalizeCell(header)
		if name == "" {
			continue
		}
		table.Columns = append(table.Columns, name)
		key := util.NormalizeColumn(name)
		if _, dup := table.columns[key]; !dup {
			table.columns[key] = i
		}
	}

	for i, raw := range rows[headerRow+1:] {
		row := Row{Index: i, Number: headerRow + i + 2, table: table, cells: make([]string, len(raw))}
		blank, malformed := true, true
		for c, v := range raw {
			v = util.NormalizeCell(v)
			if _, isErr := cellErrors[strings.ToUpper(v)]; isErr {
				v = ""
			} else if v != "" {
				malformed = false
			}
			if strings.TrimSpace(raw[c]) != "" {
				blank = false
			}
			row.cells[c] = v
		}
		if blank {
			continue
		}
		if malformed {
			w.logger.Warn("skipping malformed row", "sheet", sheetName, "row", row.Number)
			table.Skipped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ReadSheet opens path, reads one sheet and closes the file.
func ReadSheet(path, sheetName string, headerRow int, logger *slog.Logger) (*Table, error) {
	wb, err := Open(path, logger)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return wb.ReadSheet(sheetName, headerRow)
}
