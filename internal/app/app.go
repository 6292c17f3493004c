package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"menora/internal/catalog"
	"menora/internal/config"
	"menora/internal/httpapi"
	"menora/internal/quote"
	"menora/internal/search"
	"menora/internal/storage"
	"menora/internal/watcher"
)

// App wires the services for one process.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	DB      *storage.DB
	Catalog *catalog.Service
	Search  *search.Service
	Quotes  *quote.Service
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	loader := catalog.NewLoader(catalog.Sources{
		LookupPath:   cfg.LookupFile,
		PricePath:    cfg.PriceFile,
		SupplierName: cfg.SupplierName,
		Currency:     cfg.DefaultCurrency,
	}, logger)
	catSvc := catalog.NewService(loader,
		catalog.WithLogger(logger),
		catalog.WithStore(db),
		catalog.WithImages(catalog.NewImageExtractor(cfg.ImageDir, cfg.ImageURLPrefix, logger)),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		Catalog: catSvc,
		Search: search.NewService(catSvc, search.Options{
			DefaultLimit: cfg.ResultsPerPage,
			MaxLimit:     cfg.MaxResultsPerPage,
		}, logger),
		Quotes: quote.NewService(db, catSvc, quote.NewCalculator(cfg.DefaultCurrency, cfg.VATRate), cfg.OutputDir, logger),
	}, nil
}

func (a *App) Close() {
	a.Catalog.Close()
	a.Catalog.Wait()
	_ = a.DB.Close()
}

// LoadCatalog loads the workbooks synchronously. When the lookup workbook is
// unavailable it falls back to the persisted snapshot.
func (a *App) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := a.Catalog.Reload(ctx)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, catalog.ErrLookupUnavailable) {
		return nil, err
	}
	a.Logger.Warn("lookup workbook unavailable, using persisted snapshot", "error", err)
	restored, rerr := a.Catalog.Restore(ctx)
	if rerr != nil {
		return nil, errors.Join(err, rerr)
	}
	return restored, nil
}

// Serve publishes any persisted snapshot, starts the background load and the
// source watcher, and answers HTTP until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if _, err := a.Catalog.Restore(ctx); err == nil {
		a.Logger.Info("serving persisted catalog until the load completes")
	}
	if err := a.Catalog.StartLoad(ctx); err != nil {
		return err
	}

	if a.Config.CatalogWatchEnabled {
		w := watcher.NewService(a.Catalog, a.Config.CatalogWatchInterval, a.Logger, a.Config.LookupFile, a.Config.PriceFile)
		go func() { _ = w.Run(ctx) }()
	}

	api := httpapi.New(httpapi.Deps{
		Catalog:        a.Catalog,
		Search:         a.Search,
		Quotes:         a.Quotes,
		ImageDir:       a.Config.ImageDir,
		ImageURLPrefix: a.Config.ImageURLPrefix,
		Logger:         a.Logger,
	})
	srv := &http.Server{
		Addr:              a.Config.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", a.Config.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
