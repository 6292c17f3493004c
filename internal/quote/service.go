package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"menora/internal"
	"menora/internal/catalog"
)

var ErrProductNotFound = errors.New("product not found")

// Store persists shopping lists.
type Store interface {
	SaveList(ctx context.Context, l *List) error
	GetList(ctx context.Context, id string) (*List, error)
	ListsByUser(ctx context.Context, userCode string) ([]*List, error)
	DeleteList(ctx context.Context, id string) error
}

type CatalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

type Service struct {
	store     Store
	src       CatalogSource
	calc      Calculator
	outputDir string
	logger    *slog.Logger
}

func NewService(store Store, src CatalogSource, calc Calculator, outputDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, src: src, calc: calc, outputDir: outputDir, logger: logger}
}

func (s *Service) Calculator() Calculator { return s.calc }

func (s *Service) Create(ctx context.Context, userCode, name string) (*List, error) {
	l := NewList(userCode, name)
	if err := s.store.SaveList(ctx, l); err != nil {
		return nil, fmt.Errorf("save list: %w", err)
	}
	s.logger.Info("list created", "list", l.ID, "user", l.UserCode)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (*List, error) {
	return s.store.GetList(ctx, id)
}

func (s *Service) ListsByUser(ctx context.Context, userCode string) ([]*List, error) {
	return s.store.ListsByUser(ctx, userCode)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteList(ctx, id)
}

func (s *Service) product(menoraID string) (*internal.Product, error) {
	cat, err := s.src.Catalog()
	if err != nil {
		return nil, err
	}
	p, ok := cat.ProductByID(menoraID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, menoraID)
	}
	return p, nil
}

// AddItem adds qty of a catalog product to the list at its current price.
func (s *Service) AddItem(ctx context.Context, listID, menoraID string, qty int, notes string) (*List, Item, error) {
	p, err := s.product(menoraID)
	if err != nil {
		return nil, Item{}, err
	}
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, Item{}, err
	}
	it, err := l.Add(p, qty, notes)
	if err != nil {
		return nil, Item{}, err
	}
	if err := s.store.SaveList(ctx, l); err != nil {
		return nil, Item{}, fmt.Errorf("save list: %w", err)
	}
	return l, it, nil
}

func (s *Service) SetQuantity(ctx context.Context, listID, itemID string, qty int) (*List, error) {
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := l.SetQuantity(itemID, qty); err != nil {
		return nil, err
	}
	if err := s.store.SaveList(ctx, l); err != nil {
		return nil, fmt.Errorf("save list: %w", err)
	}
	return l, nil
}

func (s *Service) Totals(ctx context.Context, listID string, includeTax bool) (Totals, error) {
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return Totals{}, err
	}
	return s.calc.Totals(l, includeTax), nil
}

// BulkTable prices a catalog product at the given quantities.
func (s *Service) BulkTable(menoraID string, qtys []int) ([]BulkRow, error) {
	p, err := s.product(menoraID)
	if err != nil {
		return nil, err
	}
	if !p.IsPriced() {
		return nil, fmt.Errorf("%w: %s", ErrNoPricing, menoraID)
	}
	return s.calc.BulkTable(p, qtys), nil
}

// ExportXLSX writes the list into the output directory and returns the path.
func (s *Service) ExportXLSX(ctx context.Context, listID string) (string, error) {
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.outputDir, fmt.Sprintf("list_%s.xlsx", l.ID))
	if err := ExportXLSX(l, s.calc.Totals(l, true), path); err != nil {
		return "", fmt.Errorf("export list %s: %w", l.ID, err)
	}
	s.logger.Info("list exported", "list", l.ID, "path", path, "items", len(l.Items))
	return path, nil
}

func (s *Service) RenderHTML(ctx context.Context, listID string, w io.Writer) error {
	l, err := s.store.GetList(ctx, listID)
	if err != nil {
		return err
	}
	return RenderHTML(w, s.calc, l, s.calc.Totals(l, true), time.Now())
}
