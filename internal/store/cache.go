// Package store memoizes the normalized record set per source fingerprint.
// The cache publishes only fully-built immutable snapshots: concurrent
// callers observe either the previous complete snapshot or the new one,
// never a partial build.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fundingpulse/internal/dataset"
	apperrors "fundingpulse/internal/errors"
	"fundingpulse/pkg/contracts/domain"
)

// Fingerprint identifies one state of the source file. A changed size or
// modification time invalidates the cached snapshot.
type Fingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

func (fp Fingerprint) key() string {
	return fmt.Sprintf("%s|%d|%d", fp.Path, fp.Size, fp.ModTime.UnixNano())
}

// Snapshot is one published record set. Records must not be mutated by
// consumers; filtering and aggregation work on derived copies.
type Snapshot struct {
	Records     []domain.FundingRecord
	Fingerprint Fingerprint
	LoadedAt    time.Time
}

// Cache is a memoizing loader for the normalized record set.
type Cache struct {
	source     string
	opts       dataset.ReadOptions
	normalizer *dataset.Normalizer
	logger     *slog.Logger

	mu      sync.RWMutex
	current *Snapshot

	group singleflight.Group
}

// NewCache creates a cache over the given source file.
func NewCache(source string, opts dataset.ReadOptions, normalizer *dataset.Normalizer, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:     source,
		opts:       opts,
		normalizer: normalizer,
		logger:     logger.With(slog.String("component", "dataset_cache")),
	}
}

// Load returns the current snapshot, rebuilding it when the source file has
// changed since the last build. Rebuilds for the same fingerprint are
// coalesced; a missing or unreadable source is a configuration error.
func (c *Cache) Load(ctx context.Context) (*Snapshot, error) {
	fp, err := c.fingerprint()
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current != nil && current.Fingerprint == fp {
		return current, nil
	}

	v, err, _ := c.group.Do(fp.key(), func() (interface{}, error) {
		return c.rebuild(ctx, fp)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Invalidate drops the published snapshot so the next Load rebuilds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

func (c *Cache) rebuild(ctx context.Context, fp Fingerprint) (*Snapshot, error) {
	// Another coalesced caller may have published this fingerprint already.
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()
	if current != nil && current.Fingerprint == fp {
		return current, nil
	}

	start := time.Now()
	table, err := dataset.ReadTable(c.source, c.opts)
	if err != nil {
		return nil, err
	}
	records, err := c.normalizer.Normalize(ctx, table)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Records:     records,
		Fingerprint: fp,
		LoadedAt:    time.Now(),
	}

	c.mu.Lock()
	c.current = snap
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "dataset snapshot rebuilt",
		slog.String("source", c.source),
		slog.Int("records", len(records)),
		slog.String("duration", time.Since(start).String()))
	return snap, nil
}

func (c *Cache) fingerprint() (Fingerprint, error) {
	info, err := os.Stat(c.source)
	if err != nil {
		return Fingerprint{}, apperrors.NewConfigError("source file is not accessible", err)
	}
	return Fingerprint{Path: c.source, Size: info.Size(), ModTime: info.ModTime()}, nil
}
