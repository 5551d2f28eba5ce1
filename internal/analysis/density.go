package analysis

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// DensityMode selects what a syllable accumulates.
type DensityMode string

const (
	// Notes counts the notes sung on each syllable.
	Notes DensityMode = "notes"
	// Duration sums their quarter lengths.
	Duration DensityMode = "duration"
)

func ParseDensityMode(s string) (DensityMode, error) {
	switch m := DensityMode(s); m {
	case Notes, Duration:
		return m, nil
	}
	return "", apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "density %q, want notes or duration", s)
}

// YLabel is the axis label of a density plot.
func (m DensityMode) YLabel() string {
	if m == Notes {
		return "Number of notes"
	}
	return "Quarter length duration"
}

// AverageLabel names the series pooled over all scores.
const AverageLabel = "Avg"

// Series is the per-syllable values of one score, or of all scores for
// the average series.
type Series struct {
	Label  string
	Score  string
	Values []float64
	Stats  BoxStats
}

// Density is the melodic density of the matched lines.
type Density struct {
	Mode      DensityMode
	Series    []Series
	Syllables []string
}

// syllables accumulates the values of one score and, in step, of the
// pooled series.
type syllables struct {
	local  []float64
	pooled *[]float64
	texts  *[]string
}

func (s *syllables) open(v float64, text string) {
	s.local = append(s.local, v)
	*s.pooled = append(*s.pooled, v)
	*s.texts = append(*s.texts, text)
}

// add extends the current syllable, opening one if the score has none yet.
func (s *syllables) add(v float64, text string) {
	if len(s.local) == 0 {
		s.open(v, text)
		return
	}
	s.local[len(s.local)-1] += v
	(*s.pooled)[len(*s.pooled)-1] += v
}

// MelodicDensity splits every matched line into syllables from its lyrics
// and records, per syllable, the number of notes or their total duration.
// It returns one series per score plus the pooled "Avg" series, each with
// its boxplot statistics.
func (a *Analyzer) MelodicDensity(ctx context.Context, b *criteria.Bundle, mode DensityMode) (*Density, error) {
	if _, err := ParseDensityMode(string(mode)); err != nil {
		return nil, err
	}
	if err := requireGranularity(b, criteria.Lines); err != nil {
		return nil, err
	}
	start := time.Now()
	out := &Density{Mode: mode}
	var pooled []float64
	elements := 0

	for i, sm := range b.Scores {
		single := &criteria.Bundle{Granularity: b.Granularity, Scores: b.Scores[i : i+1]}
		s := &syllables{pooled: &pooled, texts: &out.Syllables}
		err := a.walk(ctx, single, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
			for _, span := range pm.Lines {
				seg := p.Segment(span, true)
				elements += len(seg)
				a.splitSyllables(seg, mode, s)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out.Series = append(out.Series, Series{
			Label:  strconv.Itoa(i + 1),
			Score:  sm.Path,
			Values: s.local,
		})
	}
	out.Series = append(out.Series, Series{Label: AverageLabel, Score: "average", Values: pooled})
	for i := range out.Series {
		out.Series[i].Stats = Boxplot(out.Series[i].Values)
	}
	a.observe("md"+string(mode[0]), start, elements)
	return out, nil
}

func (a *Analyzer) hasMarker(lyric string) (open, close bool) {
	return strings.Contains(lyric, a.opts.Markers.Open), strings.Contains(lyric, a.opts.Markers.Close)
}

// splitSyllables runs the syllable state machine over one line. A padding
// syllable, bracketed by the open and close markers, extends the syllable
// before it; a grace note joins the syllable of the next note.
func (a *Analyzer) splitSyllables(seg []score.Element, mode DensityMode, s *syllables) {
	bracket := false
	grace := false
	for i, n := range seg {
		if n.Rest {
			continue
		}
		v := 1.0
		if mode == Duration {
			v = n.QuarterLength()
		}
		if n.IsGrace() {
			if !a.opts.IncludeGraceNotes {
				continue
			}
			j := i + 1
			for j < len(seg) && seg[j].Duration.Sign() == 0 {
				j++
			}
			if j == len(seg) {
				continue
			}
			next := seg[j]
			if !next.HasLyric() {
				s.add(v, "")
				continue
			}
			o, c := a.hasMarker(next.Lyric)
			switch {
			case o || c || bracket || grace:
				s.add(v, next.Lyric)
			default:
				s.open(v, next.Lyric)
				grace = true
			}
			continue
		}
		if !n.HasLyric() {
			s.add(v, "")
			continue
		}
		o, c := a.hasMarker(n.Lyric)
		switch {
		case o && c:
			s.add(v, n.Lyric)
		case o:
			s.add(v, n.Lyric)
			bracket = true
		case c:
			s.add(v, n.Lyric)
			bracket = false
		case bracket:
			s.add(v, n.Lyric)
		case grace:
			s.add(v, n.Lyric)
			grace = false
		default:
			s.open(v, n.Lyric)
		}
	}
}
