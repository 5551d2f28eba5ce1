// Package tracing times the steps of a run as a tree of spans carried in
// the context. The tree is logged once the run ends.
package tracing

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

type contextKey struct{}

// Span is one timed step of a run.
type Span struct {
	Name     string
	RunID    string
	Started  time.Time
	Elapsed  time.Duration
	Children []*Span
	Attrs    map[string]any
	mu       sync.Mutex
}

func newSpan(name, runID string) *Span {
	return &Span{Name: name, RunID: runID, Started: time.Now(), Attrs: make(map[string]any)}
}

// Start opens the root span of a run.
func Start(ctx context.Context, name, runID string) (context.Context, *Span) {
	s := newSpan(name, runID)
	return context.WithValue(ctx, contextKey{}, s), s
}

// Child opens a span under the one in ctx. Without a parent the span is
// still returned but belongs to no tree.
func Child(ctx context.Context, name string) (context.Context, *Span) {
	parent := FromContext(ctx)
	runID := ""
	if parent != nil {
		runID = parent.RunID
	}
	s := newSpan(name, runID)
	if parent != nil {
		parent.mu.Lock()
		parent.Children = append(parent.Children, s)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, contextKey{}, s), s
}

func (s *Span) End() {
	s.mu.Lock()
	s.Elapsed = time.Since(s.Started)
	s.mu.Unlock()
}

func (s *Span) Set(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(contextKey{}).(*Span)
	return s
}

// Log writes the tree depth first at debug level, children in start
// order and attributes sorted by key.
func (s *Span) Log(log *slog.Logger) {
	s.log(log, 0)
}

func (s *Span) log(log *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"run_id", s.RunID,
		"span", s.Name,
		"depth", depth,
		"elapsed_ms", s.Elapsed.Milliseconds(),
	}
	for _, k := range slices.Sorted(maps.Keys(s.Attrs)) {
		attrs = append(attrs, k, s.Attrs[k])
	}
	children := slices.Clone(s.Children)
	s.mu.Unlock()

	slices.SortStableFunc(children, func(a, b *Span) int { return a.Started.Compare(b.Started) })
	log.Debug("span", attrs...)
	for _, c := range children {
		c.log(log, depth+1)
	}
}
