package score

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/MTG/Jingju-Scores-Analysis/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LoadFunc parses one score file.
type LoadFunc func(path string) (*Score, error)

// Cache keeps parsed scores for the lifetime of a run. Concurrent requests
// for the same path share a single parse.
type Cache struct {
	load    LoadFunc
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger

	mu     sync.RWMutex
	scores map[string]*Score

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns a cache that parses with load, or ReadFile when load is
// nil. m may be nil.
func NewCache(load LoadFunc, m *metrics.Metrics) *Cache {
	if load == nil {
		load = ReadFile
	}
	return &Cache{
		load:    load,
		metrics: m,
		scores:  make(map[string]*Score),
		logger:  slog.Default().With("component", "score-cache"),
	}
}

func (c *Cache) get(path string) (*Score, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scores[path]
	return s, ok
}

// Load returns the parsed score at path, parsing it on first use.
func (c *Cache) Load(ctx context.Context, path string) (*Score, error) {
	if s, ok := c.get(path); ok {
		c.hits.Add(1)
		c.metrics.CacheHit()
		return s, nil
	}
	c.misses.Add(1)
	c.metrics.CacheMiss()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err, _ := c.group.Do(path, func() (any, error) {
		if s, ok := c.get(path); ok {
			return s, nil
		}
		s, err := c.load(path)
		c.metrics.ScoreParsed(err == nil)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.scores[path] = s
		c.mu.Unlock()
		c.logger.Debug("score parsed", "path", path, "parts", len(s.Parts))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(*Score), nil
}

// Preload parses paths with at most workers parsers at once; zero means
// GOMAXPROCS. The first error cancels the remaining work.
func (c *Cache) Preload(ctx context.Context, paths []string, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range paths {
		g.Go(func() error {
			if _, err := c.Load(ctx, p); err != nil {
				return fmt.Errorf("preloading scores: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	hits, misses := c.Stats()
	c.logger.Info("scores preloaded", "paths", len(paths), "hits", hits, "misses", misses)
	return nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.scores = make(map[string]*Score)
	c.mu.Unlock()
	c.logger.Info("cache invalidate")
}

func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
