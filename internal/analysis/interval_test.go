package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalHistogramRests(t *testing.T) {
	cases := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"short rest is skipped", []string{"C4:1:一", "r:0.1", "D4:1"}, []string{"M2"}},
		{"rest at threshold is skipped", []string{"C4:1:一", "r:0.25", "D4:1"}, []string{"M2"}},
		{"long rest breaks the pair", []string{"C4:1:一", "r:0.5", "D4:1"}, []string{}},
		{"trailing grace note", []string{"C4:1:一", "E4:1", "G4:0"}, []string{"M3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := singlePart("a.xml", tc.tokens...)
			h, err := analyzer(src).IntervalHistogram(context.Background(), bundle(lines("a.xml", span("0", "10"))), false)
			require.NoError(t, err)
			assert.Equal(t, tc.want, h.Labels())
		})
	}
}

func TestIntervalHistogramGraceNotes(t *testing.T) {
	src := singlePart("a.xml", "E4:1:一", "D4:0", "C4:1", "G4:1")
	b := bundle(lines("a.xml", span("0", "3")))

	h, err := analyzer(src).IntervalHistogram(context.Background(), b, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"M2", "P5"}, h.Labels())
	assert.Equal(t, []float64{2, 1}, h.Values())

	ignore := analyzer(src, func(o *Options) { o.IgnoreGraceNotes = true })
	h, err = ignore.IntervalHistogram(context.Background(), b, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"M-3", "P5"}, h.Labels())
	assert.Equal(t, []int{-4, 7}, h.Ranks())
}

func TestIntervalHistogramOrdering(t *testing.T) {
	// A4 and d5 both span six semitones; they stay separate bins ordered
	// by name
	src := singlePart("a.xml", "C4:1:一", "F#4:1", "C4:1", "G-4:1", "C4:1", "D4:1")
	h, err := analyzer(src).IntervalHistogram(context.Background(), bundle(lines("a.xml", span("0", "6"))), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A-4", "d-5", "M2", "A4", "d5"}, h.Labels())
	assert.Equal(t, []int{-6, -6, 2, 6, 6}, h.Ranks())
}
