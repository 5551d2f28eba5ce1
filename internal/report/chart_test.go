package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func requireImage(t *testing.T, f *Figure, name string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.Save(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"ph-ls.png":  "png",
		"ph-ls.SVG":  "svg",
		"ph-xp-png":  "png",
		"figure.pdf": "pdf",
		"noext":      "png",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatOf(in), in)
	}
}

func TestPitchAxisSharesMIDI(t *testing.T) {
	st := Style{XMin: 60, XMax: 62}
	ax := newPitchAxis(st, []int{64, 68, 68}, []string{"E4", "G#4", "A-4"}, []float64{1, 2, 3})
	assert.Equal(t, 60, ax.lo)
	assert.Equal(t, 68, ax.hi)
	assert.Len(t, ax.values, 9)
	assert.Equal(t, 1.0, ax.values[4])
	assert.Equal(t, 5.0, ax.values[8])
	require.Len(t, ax.ticks, 2)
	assert.Equal(t, "G#4/A-4", ax.ticks[1].Label)

	guides, err := ax.guides(0, 1, true)
	require.NoError(t, err)
	// only E4 falls inside 60..68
	assert.Len(t, guides, 1)
}

func TestChartsSave(t *testing.T) {
	charts := NewCharts(6, 4)
	st := StyleFor(criteria.Criteria{RoleTypes: []string{"dan"}, Modes: []string{"xipi"}}, analysis.Sum)
	h := &analysis.Histogram{Bins: []analysis.Bin{
		{Label: "E4", Rank: 64, Value: 0.25},
		{Label: "B4", Rank: 71, Value: 0.75},
	}}

	f, err := charts.Pitch("ph-da", h, st, Limits{0, 0.35})
	require.NoError(t, err)
	requireImage(t, f, "ph-da.png")

	iv := &analysis.Histogram{Bins: []analysis.Bin{
		{Label: "m-3", Rank: -3, Value: 0.5},
		{Label: "M2", Rank: 2, Value: 0.5},
	}}
	f, err = charts.Intervals("ihd-da", iv, st, Limits{})
	require.NoError(t, err)
	requireImage(t, f, "ihd-da.svg")

	rows := []analysis.SectionRow{
		{Label: "E4", Rank: 64, Values: [3]float64{0.5, 0, 1}, Present: [3]bool{true, false, true}},
		{Label: "B4", Rank: 71, Values: [3]float64{0.5, 1, 0}, Present: [3]bool{true, true, false}},
	}
	f, err = charts.Sections("phlj-da", rows, st, analysis.Sum)
	require.NoError(t, err)
	require.Len(t, f.Plots[0], 3)
	requireImage(t, f, "phlj-da-png")
}

func TestCadenceChart(t *testing.T) {
	cad := &analysis.Cadences{
		Plan: criteria.CadencePlan{Mode: "xipi", LineTypes: []string{"s", "x"}, Titles: []string{"Op. line", "Cl. line"}},
		Rows: []analysis.CadenceRow{
			{Label: "E4", Values: [][3]float64{{50, 0, 100}, {0, 0, 0}}},
			{Label: "Bb4", Values: [][3]float64{{50, 100, 0}, {100, 100, 100}}},
		},
	}
	f, err := NewCharts(8, 4).Cadences("cn-xp", cad)
	require.NoError(t, err)
	require.Len(t, f.Plots[0], 2)
	assert.Equal(t, "Cl. line", f.Plots[0][1].Title.Text)
	requireImage(t, f, "cn-xp.png")
}

func TestDensityChart(t *testing.T) {
	values := []float64{1, 2, 2, 3, 20}
	stats := analysis.Boxplot(values)
	d := &analysis.Density{
		Mode: analysis.Duration,
		Series: []analysis.Series{
			{Label: "1", Score: "a.xml", Values: values, Stats: stats},
			{Label: "2", Score: "b.xml"},
			{Label: analysis.AverageLabel, Score: "average", Values: values, Stats: stats},
		},
	}
	f, err := NewCharts(6, 4).Density("mdd", d)
	require.NoError(t, err)
	requireImage(t, f, "mdd.png")
}

func TestApplyStats(t *testing.T) {
	values := []float64{1, 2, 2, 3, 20}
	stats := analysis.Boxplot(values)
	box, err := plotter.NewBoxPlot(10, 0, plotter.Values(values))
	require.NoError(t, err)
	applyStats(box, values, stats)
	assert.Equal(t, stats.Median, box.Median)
	assert.Equal(t, stats.UpperWhisker, box.AdjHigh)
	assert.Equal(t, []int{4}, box.Outside)
}
