// Package metrics defines the Prometheus collectors recorded during an
// analysis run and writes them to a node-exporter textfile at the end.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for one run. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	ScoresParsedTotal     *prometheus.CounterVec
	ScoreCacheHitsTotal   prometheus.Counter
	ScoreCacheMissesTotal prometheus.Counter
	FiltersTotal          *prometheus.CounterVec
	LinesMatchedTotal     prometheus.Counter
	NotesAggregatedTotal  *prometheus.CounterVec
	StatisticDuration     *prometheus.HistogramVec
	FiguresWrittenTotal   *prometheus.CounterVec
}

// New creates all collectors and registers them on a fresh registry, so
// several runs (or tests) in one process never collide.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ScoresParsedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jingju_scores_parsed_total",
				Help: "Score files parsed, by status (ok, error).",
			},
			[]string{"status"},
		),
		ScoreCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jingju_score_cache_hits_total",
				Help: "Parsed-score cache hits.",
			},
		),
		ScoreCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jingju_score_cache_misses_total",
				Help: "Parsed-score cache misses.",
			},
		),
		FiltersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jingju_filters_total",
				Help: "Catalog filter runs by result (match, no_match).",
			},
			[]string{"result"},
		),
		LinesMatchedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jingju_lines_matched_total",
				Help: "Catalog lines matched across all filter runs.",
			},
		),
		NotesAggregatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jingju_notes_aggregated_total",
				Help: "Score elements consumed by each statistic.",
			},
			[]string{"statistic"},
		),
		StatisticDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jingju_statistic_duration_seconds",
				Help:    "Wall time spent computing one statistic.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"statistic"},
		),
		FiguresWrittenTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jingju_figures_written_total",
				Help: "Figures written by kind (ph, phlj, ihd, ihn, cn, mdn, mdd).",
			},
			[]string{"kind"},
		),
	}

	m.Registry.MustRegister(
		m.ScoresParsedTotal,
		m.ScoreCacheHitsTotal,
		m.ScoreCacheMissesTotal,
		m.FiltersTotal,
		m.LinesMatchedTotal,
		m.NotesAggregatedTotal,
		m.StatisticDuration,
		m.FiguresWrittenTotal,
	)

	return m
}

func (m *Metrics) ScoreParsed(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.ScoresParsedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.ScoreCacheHitsTotal.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.ScoreCacheMissesTotal.Inc()
}

func (m *Metrics) Filtered(lines int) {
	if m == nil {
		return
	}
	if lines == 0 {
		m.FiltersTotal.WithLabelValues("no_match").Inc()
		return
	}
	m.FiltersTotal.WithLabelValues("match").Inc()
	m.LinesMatchedTotal.Add(float64(lines))
}

func (m *Metrics) ObserveStatistic(statistic string, elapsed time.Duration, elements int) {
	if m == nil {
		return
	}
	m.StatisticDuration.WithLabelValues(statistic).Observe(elapsed.Seconds())
	m.NotesAggregatedTotal.WithLabelValues(statistic).Add(float64(elements))
}

func (m *Metrics) FigureWritten(kind string) {
	if m == nil {
		return
	}
	m.FiguresWrittenTotal.WithLabelValues(kind).Inc()
}
