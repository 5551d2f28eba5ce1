package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNilMetricsIsNoop checks that components can run without metrics.
func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit()
		m.CacheMiss()
		m.ScoreParsed(true)
		m.Filtered(3)
		m.ObserveStatistic("ph", time.Millisecond, 10)
		m.FigureWritten("ph")
		require.NoError(t, m.WriteTextfile("unused"))
	})
}

// TestCountersAndTextfile records a few events and checks the textfile.
func TestCountersAndTextfile(t *testing.T) {
	m := New()
	m.CacheMiss()
	m.CacheHit()
	m.CacheHit()
	m.Filtered(12)
	m.Filtered(0)
	m.ObserveStatistic("ih", 2*time.Millisecond, 40)
	m.FigureWritten("cn")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScoreCacheHitsTotal))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.LinesMatchedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FiltersTotal.WithLabelValues("no_match")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.NotesAggregatedTotal.WithLabelValues("ih")))

	path := filepath.Join(t.TempDir(), "jingju.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jingju_figures_written_total{kind="cn"} 1`)
	assert.Contains(t, string(data), "jingju_score_cache_misses_total 1")
}
