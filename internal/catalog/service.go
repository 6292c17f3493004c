package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"menora/internal"
)

var (
	ErrNotLoaded      = errors.New("catalog not loaded")
	ErrLoadInProgress = errors.New("catalog load already in progress")
)

// Status is what clients poll while the catalog loads.
type Status struct {
	Loading      bool       `json:"loading"`
	Loaded       bool       `json:"loaded"`
	Error        string     `json:"error,omitempty"`
	Progress     int        `json:"progress"`
	Stage        Stage      `json:"stage,omitempty"`
	ProductCount int        `json:"productCount"`
	ImagesReady  bool       `json:"imagesReady"`
	LoadedAt     *time.Time `json:"loadedAt,omitempty"`
	RunID        string     `json:"runId,omitempty"`
}

// SnapshotStore persists the last good catalog.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, meta internal.SnapshotMeta, products []*internal.Product) error
	LoadSnapshot(ctx context.Context) (internal.SnapshotMeta, []*internal.Product, error)
}

type Option func(*Service)

func WithImages(x *ImageExtractor) Option { return func(s *Service) { s.images = x } }

func WithStore(store SnapshotStore) Option { return func(s *Service) { s.store = store } }

func WithLogger(logger *slog.Logger) Option { return func(s *Service) { s.logger = logger } }

// Service owns the published catalog. Readers get the current *Catalog without
// locking; a reload builds a new one and swaps it in when complete.
type Service struct {
	loader *Loader
	images *ImageExtractor
	store  SnapshotStore
	logger *slog.Logger

	current     atomic.Pointer[Catalog]
	imagesReady atomic.Bool
	group       singleflight.Group
	wg          sync.WaitGroup

	mu           sync.Mutex
	status       Status
	cancelImages context.CancelFunc
}

func NewService(loader *Loader, opts ...Option) *Service {
	s := &Service{loader: loader, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the published catalog or ErrNotLoaded.
func (s *Service) Catalog() (*Catalog, error) {
	if c := s.current.Load(); c != nil {
		return c, nil
	}
	return nil, ErrNotLoaded
}

func (s *Service) Status() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()
	if c := s.current.Load(); c != nil {
		st.ProductCount = c.Len()
		st.RunID = c.Report().RunID
		loadedAt := c.Report().LoadedAt
		st.LoadedAt = &loadedAt
	}
	st.ImagesReady = s.imagesReady.Load()
	return st
}

func (s *Service) ImagesReady() bool { return s.imagesReady.Load() }

// StartLoad begins a load in the background and returns at once. It returns
// ErrLoadInProgress when a load is already running.
func (s *Service) StartLoad(ctx context.Context) error {
	s.mu.Lock()
	if s.status.Loading {
		s.mu.Unlock()
		return ErrLoadInProgress
	}
	s.status.Loading = true
	s.status.Progress = 0
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.Reload(ctx)
	}()
	return nil
}

// Reload runs a load and waits for it. Concurrent callers share one load.
func (s *Service) Reload(ctx context.Context) (*Catalog, error) {
	v, err, shared := s.group.Do("load", func() (any, error) {
		return s.load(ctx)
	})
	if shared {
		s.logger.Debug("joined in-flight catalog load")
	}
	if err != nil {
		return nil, err
	}
	return v.(*Catalog), nil
}

func (s *Service) load(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	s.status.Loading = true
	s.status.Error = ""
	s.mu.Unlock()

	cat, err := s.loader.Load(ctx, s.setStage)
	if err != nil {
		s.mu.Lock()
		s.status.Loading = false
		s.status.Error = err.Error()
		s.status.Progress = 0
		s.status.Stage = ""
		s.status.Loaded = s.current.Load() != nil
		s.mu.Unlock()
		s.logger.Error("catalog load failed", "error", err, "keeping_previous", s.current.Load() != nil)
		return nil, err
	}

	s.publish(ctx, cat, true)
	return cat, nil
}

func (s *Service) setStage(stage Stage) {
	s.mu.Lock()
	s.status.Stage = stage
	s.status.Progress = stage.Progress()
	s.mu.Unlock()
}

// Restore publishes the persisted snapshot when nothing is loaded yet.
func (s *Service) Restore(ctx context.Context) (*Catalog, error) {
	if s.store == nil {
		return nil, ErrNotLoaded
	}
	meta, products, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotLoaded
	}
	report := internal.LoadReport{
		RunID:         meta.RunID,
		LoadedAt:      meta.LoadedAt,
		SourceVersion: meta.SourceVersion,
	}
	for _, p := range products {
		if p.IsPriced() {
			report.Variants++
		} else {
			report.BaseProducts++
		}
	}
	cat := NewCatalog(products, nil, report)
	if !s.current.CompareAndSwap(nil, cat) {
		return s.current.Load(), nil
	}
	s.mu.Lock()
	s.status.Loaded = true
	s.status.Progress = StageReady.Progress()
	s.status.Stage = StageReady
	s.mu.Unlock()
	s.logger.Info("catalog restored from snapshot", "products", cat.Len(), "run", meta.RunID)
	return cat, nil
}

func (s *Service) publish(ctx context.Context, cat *Catalog, extract bool) {
	s.current.Store(cat)

	s.mu.Lock()
	s.status.Loading = false
	s.status.Loaded = true
	s.status.Error = ""
	s.status.Stage = StageReady
	s.status.Progress = StageReady.Progress()
	if s.cancelImages != nil {
		s.cancelImages()
		s.cancelImages = nil
	}
	s.imagesReady.Store(false)

	if !extract || s.images == nil {
		s.mu.Unlock()
		s.saveSnapshot(ctx, cat)
		return
	}
	imgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelImages = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		start := time.Now()
		n, err := s.images.Extract(imgCtx, cat, s.loader.Sources())
		if err != nil {
			if imgCtx.Err() == nil {
				s.logger.Warn("image extraction failed", "error", err)
			}
		} else if s.current.Load() == cat {
			s.imagesReady.Store(true)
			s.logger.Info("images attached", "products", n, "duration", time.Since(start))
		}
		if imgCtx.Err() == nil {
			s.saveSnapshot(imgCtx, cat)
		}
	}()
}

func (s *Service) saveSnapshot(ctx context.Context, cat *Catalog) {
	if s.store == nil {
		return
	}
	report := cat.Report()
	meta := internal.SnapshotMeta{
		RunID:         report.RunID,
		LoadedAt:      report.LoadedAt,
		SourceVersion: report.SourceVersion,
		ProductCount:  cat.Len(),
	}
	if err := s.store.SaveSnapshot(ctx, meta, cat.Products()); err != nil {
		s.logger.Warn("could not persist catalog snapshot", "error", err)
	}
}

// Close stops background image work and waits for it.
func (s *Service) Close() {
	s.mu.Lock()
	if s.cancelImages != nil {
		s.cancelImages()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until background loads and image extraction finish.
func (s *Service) Wait() { s.wg.Wait() }
