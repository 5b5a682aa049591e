// Package sweeper prunes old audio files from the download directory.
// Age is measured from last access, so a track that keeps being re-served
// from the cache stays alive.
package sweeper

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"spotibot/internal/metrics"
)

// Sweeper deletes files older than maxAge from one directory, on a fixed
// interval. Subdirectories are left alone.
type Sweeper struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

func New(dir string, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		dir:      dir,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Run sweeps immediately, then on every tick until the context is
// cancelled. Sweep errors are logged, never fatal.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("retention sweeper started",
		"dir", s.dir, "interval", s.interval, "max_age", s.maxAge)

	if err := s.Sweep(); err != nil {
		s.logger.Error("sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass over the directory and removes every regular file
// whose last access is older than maxAge. A missing directory means
// nothing has been downloaded yet and is not an error.
func (s *Sweeper) Sweep() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	now := time.Now()
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Likely removed between ReadDir and Info.
			continue
		}

		age := now.Sub(accessTime(info))
		if age <= s.maxAge {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("cannot remove stale file", "path", path, "error", err)
			continue
		}
		removed++
		metrics.FilesSwept.Inc()
		s.logger.Info("stale file removed", "path", path, "age", age.Round(time.Hour))
	}

	if removed > 0 {
		s.logger.Info("sweep complete", "removed", removed)
	}
	return nil
}
