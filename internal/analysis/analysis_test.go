package analysis

import (
	"context"
	"testing"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score/scoretest"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(start, end string) catalog.Span {
	return catalog.NewSpan(catalog.MustTime(start), catalog.MustTime(end))
}

// lines wraps whole-line spans of part 1 of path into a bundle.
func lines(path string, spans ...catalog.Span) criteria.ScoreMaterial {
	return criteria.ScoreMaterial{
		Name:  path,
		Path:  path,
		Parts: []criteria.PartMaterial{{Index: 1, Lines: spans}},
	}
}

func bundle(scores ...criteria.ScoreMaterial) *criteria.Bundle {
	b := &criteria.Bundle{Granularity: criteria.Lines, Scores: scores}
	for _, s := range scores {
		b.FoundLines += s.Segments()
	}
	return b
}

func analyzer(src scoretest.Source, mutate ...func(*Options)) *Analyzer {
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	return New(src, opts, nil)
}

func singlePart(path string, tokens ...string) scoretest.Source {
	return scoretest.Source{path: scoretest.Score(path, scoretest.Part(tokens...))}
}

func TestPitchHistogram(t *testing.T) {
	src := singlePart("a.xml", "E4:1:一", "D4:0", "E4:1/2", "G4:2", "r:1")
	b := bundle(lines("a.xml", span("0", "5")))

	h, err := analyzer(src).PitchHistogram(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []string{"D4", "E4", "G4"}, h.Labels())
	assert.InDeltaSlice(t, []float64{0.25, 1.5, 2}, h.Values(), 1e-9)
	assert.Equal(t, []int{62, 64, 67}, h.Ranks())

	noGrace := analyzer(src, func(o *Options) { o.CountGraceNotes = false })
	h, err = noGrace.PitchHistogram(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []string{"E4", "G4"}, h.Labels())
}

func TestPitchHistogramByNotes(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		grace  bool
		labels []string
		values []float64
	}{
		{
			name:   "grace note counts once",
			tokens: []string{"E4:1:一", "D4:0", "E4:1/2"},
			grace:  true,
			labels: []string{"D4", "E4"},
			values: []float64{1, 2},
		},
		{
			name:   "grace notes left out",
			tokens: []string{"E4:1:一", "D4:0", "E4:1/2"},
			labels: []string{"E4"},
			values: []float64{2},
		},
		{
			name:   "rests are not counted",
			tokens: []string{"E4:4:一", "r:1", "G4:1/4", "G4:3"},
			grace:  true,
			labels: []string{"E4", "G4"},
			values: []float64{1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := singlePart("a.xml", tt.tokens...)
			b := bundle(lines("a.xml", span("0", "10")))
			a := analyzer(src, func(o *Options) {
				o.CountBy = ByNotes
				o.CountGraceNotes = tt.grace
			})
			h, err := a.PitchHistogram(context.Background(), b)
			require.NoError(t, err)
			assert.Equal(t, tt.labels, h.Labels())
			assert.Equal(t, tt.values, h.Values())
		})
	}
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("notes")
	require.NoError(t, err)
	assert.Equal(t, ByNotes, u)

	_, err = ParseUnit("beats")
	assert.ErrorIs(t, err, apperrors.ErrAmbiguousAggregationMode)

	src := singlePart("a.xml", "E4:1:一")
	a := analyzer(src, func(o *Options) { o.CountBy = "beats" })
	_, err = a.PitchHistogram(context.Background(), bundle(lines("a.xml", span("0", "1"))))
	assert.ErrorIs(t, err, apperrors.ErrAmbiguousAggregationMode)
}

func TestPitchHistogramIdempotent(t *testing.T) {
	src := singlePart("a.xml", "E4:1:一", "D4:0", "E4:1/2", "G4:2", "r:1")
	b := bundle(lines("a.xml", span("0", "2"), span("1", "5")))
	a := analyzer(src)

	first, err := a.PitchHistogram(context.Background(), b)
	require.NoError(t, err)
	second, err := a.PitchHistogram(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPitchHistogramNeedsLines(t *testing.T) {
	b := bundle(lines("a.xml", span("0", "1")))
	b.Granularity = criteria.Sections
	_, err := analyzer(scoretest.Source{}).PitchHistogram(context.Background(), b)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMissingVoicePart(t *testing.T) {
	// no lyric on the first note: not a voice part
	src := singlePart("a.xml", "E4:1", "G4:1")
	_, err := analyzer(src).PitchHistogram(context.Background(), bundle(lines("a.xml", span("0", "2"))))
	assert.ErrorIs(t, err, apperrors.ErrMalformedScore)
}

func TestCanceledContext(t *testing.T) {
	src := singlePart("a.xml", "E4:1:一")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := analyzer(src).PitchHistogram(ctx, bundle(lines("a.xml", span("0", "1"))))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSectionPitchHistograms(t *testing.T) {
	src := singlePart("a.xml", "E4:1:一", "G4:1", "A4:1", "E4:1", "B4:2")
	secs := [3]*catalog.Span{}
	s1, s3 := span("0", "1"), span("3", "4")
	secs[0], secs[2] = &s1, &s3
	b := &criteria.Bundle{
		Granularity: criteria.Sections,
		FoundLines:  1,
		Scores: []criteria.ScoreMaterial{{
			Name: "a.xml", Path: "a.xml",
			Parts: []criteria.PartMaterial{{Index: 1, Sections: [][3]*catalog.Span{secs}}},
		}},
	}
	hs, err := analyzer(src).SectionPitchHistograms(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []string{"E4", "G4"}, hs[0].Labels())
	assert.Empty(t, hs[1].Bins)
	assert.Equal(t, []string{"E4", "B4"}, hs[2].Labels())

	rows, err := hs.Rows(Sum)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "E4", rows[0].Label)
	assert.Equal(t, [3]bool{true, false, true}, rows[0].Present)
	assert.InDelta(t, 0.5, rows[0].Values[0], 1e-9)
	assert.InDelta(t, 1.0/3, rows[0].Values[2], 1e-9)
	assert.Equal(t, "G4", rows[1].Label)
	assert.Equal(t, [3]bool{true, false, false}, rows[1].Present)
	assert.Equal(t, "B4", rows[2].Label)
	assert.InDelta(t, 2.0/3, rows[2].Values[2], 1e-9)
}

func TestAmbitus(t *testing.T) {
	src := singlePart("a.xml", "E4:1:一", "D4:0", "E4:1/2", "G4:2", "r:1", "C5:1")
	amb, err := analyzer(src).Ambitus(context.Background(), bundle(lines("a.xml", span("0", "4"))))
	require.NoError(t, err)
	assert.Equal(t, "D4", amb.Lowest.NameWithOctave())
	assert.Equal(t, "G4", amb.Highest.NameWithOctave())
	assert.Equal(t, "Perfect Fourth, from D4 to G4", amb.String())
}

func TestFind(t *testing.T) {
	src := scoretest.Source{
		"a.xml": scoretest.Score("a.xml", scoretest.Part("E4:1:一", "G#4:1", "B4:1", "E5:1")),
		"b.xml": scoretest.Score("b.xml", scoretest.Part("B4:1:二", "G#4:1", "E4:1")),
	}
	b := bundle(lines("a.xml", span("0", "4")), lines("b.xml", span("0", "3")))
	a := analyzer(src)
	ctx := context.Background()

	hits, err := a.FindByPitch(ctx, b, []score.Pitch{score.MustPitch("E5"), score.MustPitch("G#4")})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, []Count{{"G#4", 1}, {"E5", 1}}, hits[0].Counts)
	assert.Equal(t, []Count{{"G#4", 1}}, hits[1].Counts)

	hits, err = a.FindByPitchThreshold(ctx, b, score.MustPitch("C5"), Above)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.xml", hits[0].Name)

	hits, err = a.FindByInterval(ctx, b, []string{"M-3"}, true)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b.xml", hits[0].Path)
	assert.Equal(t, []Count{{"M-3", 1}}, hits[0].Counts)

	hits, err = a.FindByInterval(ctx, b, []string{"M3"}, false)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	_, err = a.FindByInterval(ctx, b, []string{"Q3"}, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// BenchmarkIntervalHistogram measures interval counting over one long line.
func BenchmarkIntervalHistogram(b *testing.B) {
	tokens := []string{"E4:1:一"}
	for i := 0; i < 500; i++ {
		tokens = append(tokens, "G4:1/2", "A4:1/4", "r:1/4", "B4:0", "E5:1")
	}
	src := singlePart("a.xml", tokens...)
	bd := bundle(lines("a.xml", span("0", "1000")))
	a := analyzer(src)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.IntervalHistogram(ctx, bd, true); err != nil {
			b.Fatal(err)
		}
	}
}
