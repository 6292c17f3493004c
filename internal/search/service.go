package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"menora/internal"
	"menora/internal/catalog"
	"menora/internal/observability"
)

// CatalogSource hands out the currently published catalog.
type CatalogSource interface {
	Catalog() (*catalog.Catalog, error)
}

type Options struct {
	DefaultLimit int
	MaxLimit     int
}

// Service runs queries against whatever catalog is published at call time.
type Service struct {
	src    CatalogSource
	opts   Options
	logger *slog.Logger
}

func NewService(src CatalogSource, opts Options, logger *slog.Logger) *Service {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, opts: opts, logger: logger}
}

type Query struct {
	Text     string
	Filters  Criteria
	Language internal.Language
	Limit    int
	Offset   int
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		return s.opts.MaxLimit
	}
	return limit
}

func (s *Service) matcher() (*catalog.Catalog, *Matcher, error) {
	cat, err := s.src.Catalog()
	if err != nil {
		return nil, nil, err
	}
	return cat, NewMatcher(cat.Products()), nil
}

// Text runs a text search. A blank query yields an empty result.
func (s *Service) Text(ctx context.Context, q Query) (Result, error) {
	q.Text = strings.TrimSpace(q.Text)
	return s.run(ctx, TypeText, q, func(m *Matcher) []*internal.Product {
		return m.Search(q.Text, q.Language)
	})
}

func (s *Service) Filter(ctx context.Context, q Query) (Result, error) {
	q.Filters = q.Filters.Compact()
	q.Text = ""
	return s.run(ctx, TypeFilter, q, func(m *Matcher) []*internal.Product {
		return m.Filter(q.Filters)
	})
}

func (s *Service) Combined(ctx context.Context, q Query) (Result, error) {
	q.Text = strings.TrimSpace(q.Text)
	q.Filters = q.Filters.Compact()
	return s.run(ctx, TypeCombined, q, func(m *Matcher) []*internal.Product {
		return m.Combined(q.Text, q.Filters, q.Language)
	})
}

func (s *Service) run(ctx context.Context, kind string, q Query, match func(*Matcher) []*internal.Product) (Result, error) {
	start := time.Now()
	limit := s.clampLimit(q.Limit)

	_, m, err := s.matcher()
	if err != nil {
		return Result{}, err
	}

	timing := observability.StartTiming(ctx, "match", kind)
	matches := match(m)
	timing.Stop()

	page, pagination := Paginate(matches, limit, q.Offset)
	label := q.Text
	if label == "" && len(q.Filters) > 0 {
		label = fmt.Sprint(map[string]any(q.Filters))
	}
	res := Result{
		Results:    page,
		Pagination: pagination,
		Info: Info{
			Query:         label,
			ExecutionTime: time.Since(start).Seconds(),
			Language:      string(q.Language),
			Filters:       q.Filters,
			SearchType:    kind,
		},
		AvailableFilters: filtersFor(matches),
	}
	s.logger.Debug("search", "type", kind, "query", label, "total", pagination.Total, "elapsed", time.Since(start))
	return res, nil
}

// Suggest proposes completions for a partial query.
func (s *Service) Suggest(ctx context.Context, partial string, lang internal.Language, limit int) ([]string, error) {
	_, m, err := s.matcher()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	timing := observability.StartTiming(ctx, "suggest", "")
	defer timing.Stop()
	return m.Suggest(partial, lang, limit), nil
}

func (s *Service) AvailableFilters(lang internal.Language) (AvailableFilters, error) {
	cat, err := s.src.Catalog()
	if err != nil {
		return AvailableFilters{}, err
	}
	return NewAvailableFilters(cat.Facets(), lang), nil
}

func (s *Service) Product(menoraID string) (*internal.Product, bool, error) {
	cat, err := s.src.Catalog()
	if err != nil {
		return nil, false, err
	}
	p, ok := cat.ProductByID(menoraID)
	return p, ok, nil
}

func (s *Service) Statistics() (catalog.Stats, error) {
	cat, err := s.src.Catalog()
	if err != nil {
		return catalog.Stats{}, err
	}
	return cat.Stats(), nil
}
