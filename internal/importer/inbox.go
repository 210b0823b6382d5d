package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Inbox imports files dropped into a directory. A file still present after an
// attempt (failed import, or a removal that failed) is retried only after its
// modification time changes.
type Inbox struct {
	dir      string
	interval time.Duration
	pool     *Pool
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	handled map[string]time.Time
}

func NewInbox(dir string, interval time.Duration, pool *Pool, logger *slog.Logger) *Inbox {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Inbox{
		dir:      dir,
		interval: interval,
		pool:     pool,
		logger:   logger.With("inbox", dir),
		pending:  make(map[string]struct{}),
		handled:  make(map[string]time.Time),
	}
}

// Run scans the inbox until ctx is done.
func (i *Inbox) Run(ctx context.Context) error {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox directory: %w", err)
	}

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		if _, err := i.Scan(); err != nil {
			i.logger.Error("inbox scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Scan submits every new or changed file and reports how many were queued.
func (i *Inbox) Scan() (int, error) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read inbox: %w", err)
	}

	i.forgetMissing(entries)

	queued := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !SupportedExtension(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(i.dir, entry.Name())
		modTime := info.ModTime()
		if !i.claim(path, modTime) {
			continue
		}

		err = i.pool.Submit(ImportJob{
			Artifact: NewFileArtifact(path),
			Done: func(_ *ImportResult, err error) {
				i.release(path, modTime, err)
			},
		})
		if err != nil {
			i.unclaim(path)
			if errors.Is(err, ErrPoolClosed) {
				return queued, err
			}
			i.logger.Warn("inbox file deferred", "file", entry.Name(), "error", err)
			continue
		}
		queued++
	}
	return queued, nil
}

func (i *Inbox) claim(path string, modTime time.Time) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, busy := i.pending[path]; busy {
		return false
	}
	if handledAt, ok := i.handled[path]; ok && handledAt.Equal(modTime) {
		return false
	}
	i.pending[path] = struct{}{}
	return true
}

func (i *Inbox) unclaim(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.pending, path)
}

func (i *Inbox) release(path string, modTime time.Time, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.pending, path)
	i.handled[path] = modTime
	if err != nil {
		i.logger.Warn("inbox file kept after failed import", "file", filepath.Base(path))
	}
}

func (i *Inbox) forgetMissing(entries []os.DirEntry) {
	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[filepath.Join(i.dir, entry.Name())] = struct{}{}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for path := range i.handled {
		if _, ok := present[path]; !ok {
			delete(i.handled, path)
		}
	}
}
