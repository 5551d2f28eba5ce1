package analysis

import (
	"context"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
)

// IntervalHistogram counts the melodic intervals between adjacent notes of
// every matched line, keyed by name or, when directed, by directed name.
// Bins are ordered by size in semitones, then by name.
func (a *Analyzer) IntervalHistogram(ctx context.Context, b *criteria.Bundle, directed bool) (*Histogram, error) {
	if err := requireGranularity(b, criteria.Lines); err != nil {
		return nil, err
	}
	start := time.Now()
	acc := newAccumulator()
	err := a.walk(ctx, b, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
		for _, span := range pm.Lines {
			a.intervals(p.Segment(span, true), func(iv score.Interval) {
				label, rank := intervalKey(iv, directed)
				acc.add(label, rank, 1)
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h := acc.histogram()
	a.observe(intervalStatistic(directed), start, h.Elements)
	return h, nil
}

func intervalStatistic(directed bool) string {
	if directed {
		return "ihd"
	}
	return "ihn"
}

// intervalKey returns the bin label and the size its name spells, in
// semitones, negative only for descending directed names.
func intervalKey(iv score.Interval, directed bool) (string, int) {
	label := iv.Name()
	if directed {
		label = iv.DirectedName()
	}
	spelled, err := score.ParseInterval(label)
	if err != nil {
		return label, iv.Semitones
	}
	return label, spelled.Semitones
}

// intervals calls fn for every pair of adjacent notes in seg. Rests up to
// the silence threshold are stepped over; a longer rest ends the search
// for a second note. The last element with a duration never starts a pair.
func (a *Analyzer) intervals(seg []score.Element, fn func(score.Interval)) {
	last := -1
	for i := len(seg) - 1; i >= 0; i-- {
		if seg[i].Duration.Sign() != 0 {
			last = i
			break
		}
	}
	for i := 0; i < last; i++ {
		n1 := seg[i]
		if n1.Rest || (a.opts.IgnoreGraceNotes && n1.IsGrace()) {
			continue
		}
		for j := i + 1; j < len(seg); j++ {
			n2 := seg[j]
			if n2.Rest {
				if n2.QuarterLength() <= a.opts.SilenceThreshold {
					continue
				}
				break
			}
			if a.opts.IgnoreGraceNotes && n2.IsGrace() {
				continue
			}
			fn(score.NewInterval(n1.Pitch, n2.Pitch))
			break
		}
	}
}
