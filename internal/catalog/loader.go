package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"menora/internal"
	"menora/internal/sheets"
)

var ErrLookupUnavailable = errors.New("lookup workbook unavailable")

// Stage is a load milestone reported to the status surface.
type Stage string

const (
	StageConnecting   Stage = "connecting"
	StageTypeCatalog  Stage = "type_catalog"
	StagePriceCatalog Stage = "price_catalog"
	StageFacets       Stage = "facets"
	StageReady        Stage = "ready"
)

// Progress is the percentage shown while the stage runs.
func (s Stage) Progress() int {
	switch s {
	case StageConnecting:
		return 5
	case StageTypeCatalog:
		return 20
	case StagePriceCatalog:
		return 60
	case StageFacets:
		return 90
	case StageReady:
		return 100
	default:
		return 0
	}
}

// Sources names the two supplier workbooks.
type Sources struct {
	LookupPath   string
	PricePath    string
	SupplierName string
	Currency     string
}

type Loader struct {
	src    Sources
	logger *slog.Logger
}

func NewLoader(src Sources, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if src.Currency == "" {
		src.Currency = internal.DefaultCurrency
	}
	return &Loader{src: src, logger: logger}
}

func (l *Loader) Sources() Sources { return l.src }

// Load builds a fresh catalog: base products from the lookup workbook, then
// priced variants from the price workbook, then facets. Only a missing or
// unreadable lookup workbook fails the load; everything below that is logged
// and recorded in the report.
func (l *Loader) Load(ctx context.Context, onStage func(Stage)) (*Catalog, error) {
	if onStage == nil {
		onStage = func(Stage) {}
	}
	start := time.Now()
	report := internal.LoadReport{RunID: uuid.NewString()}
	log := l.logger.With("run", report.RunID)

	onStage(StageConnecting)
	version, err := Fingerprint(l.src.LookupPath, l.src.PricePath)
	if err != nil {
		log.Warn("could not fingerprint sources", "error", err)
	}
	report.SourceVersion = version

	lookup, err := sheets.Open(l.src.LookupPath, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupUnavailable, err)
	}
	table, err := lookup.ReadSheet(LookupSheet, lookupHeaderRow)
	_ = lookup.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onStage(StageTypeCatalog)
	types := BuildTypeCatalog(table, l.src.LookupPath, l.src.SupplierName, log)
	report.BaseProducts = len(types.Products)
	report.SkippedRows = types.Skipped
	report.SheetsLoaded = append(report.SheetsLoaded, LookupSheet)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onStage(StagePriceCatalog)
	products := append([]*internal.Product(nil), types.Products...)
	var prices PriceCatalog
	priceBook, err := sheets.Open(l.src.PricePath, log)
	switch {
	case err == nil:
		prices = BuildPriceCatalog(priceBook, types.Products, l.src.Currency, log)
		_ = priceBook.Close()
	case errors.Is(err, sheets.ErrFileNotFound):
		log.Warn("price workbook not found, loading base products only", "path", l.src.PricePath)
		report.Warnings = append(report.Warnings, "price workbook not found: "+l.src.PricePath)
	default:
		log.Error("price workbook unreadable, loading base products only", "error", err)
		report.Warnings = append(report.Warnings, "price workbook unreadable: "+err.Error())
	}
	products = append(products, prices.Variants...)
	report.Variants = len(prices.Variants)
	report.SkippedRows += prices.Skipped
	report.SheetsLoaded = append(report.SheetsLoaded, prices.SheetsLoaded...)
	report.SheetsFailed = prices.SheetsFailed
	report.Warnings = append(report.Warnings, prices.Warnings...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	onStage(StageFacets)
	report.LoadedAt = time.Now().UTC()
	report.LoadDuration = time.Since(start)
	cat := NewCatalog(products, prices.Prices, report)

	log.Info("catalog loaded",
		"products", cat.Len(),
		"base", report.BaseProducts,
		"variants", report.Variants,
		"skipped", report.SkippedRows,
		"warnings", len(report.Warnings),
		"duration", report.LoadDuration,
	)
	return cat, nil
}
