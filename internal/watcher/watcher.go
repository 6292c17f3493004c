package watcher

import (
	"context"
	"log/slog"
	"time"

	"menora/internal/catalog"
)

// Target is the catalog owner the watcher refreshes.
type Target interface {
	Catalog() (*catalog.Catalog, error)
	Reload(ctx context.Context) (*catalog.Catalog, error)
}

// Service polls the source workbooks and reloads the catalog when their
// contents change.
type Service struct {
	target   Target
	paths    []string
	interval time.Duration
	logger   *slog.Logger

	lastSeen string
}

func NewService(target Target, interval time.Duration, logger *slog.Logger, paths ...string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Service{target: target, paths: paths, interval: interval, logger: logger}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}

		if _, err := s.Check(ctx); err != nil {
			s.logger.Error("watch cycle failed", "err", err)
		}
	}
}

// Check fingerprints the sources once and reloads when they differ from the
// last version seen. It reports whether a reload was attempted.
func (s *Service) Check(ctx context.Context) (bool, error) {
	fp, err := catalog.Fingerprint(s.paths...)
	if err != nil {
		return false, err
	}

	if s.lastSeen == "" {
		if cat, err := s.target.Catalog(); err == nil && cat.Report().SourceVersion != "" {
			s.lastSeen = cat.Report().SourceVersion
		} else {
			s.lastSeen = fp
			return false, nil
		}
	}
	if fp == s.lastSeen {
		return false, nil
	}

	s.logger.Info("catalog sources changed", "from", s.lastSeen, "to", fp)
	s.lastSeen = fp
	cat, err := s.target.Reload(ctx)
	if err != nil {
		return true, err
	}
	s.logger.Info("watch cycle reloaded catalog", "products", cat.Len(), "run", cat.Report().RunID)
	return true, nil
}
