package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// Ambitus is the range of the matched lines.
type Ambitus struct {
	Lowest   score.Pitch
	Highest  score.Pitch
	Interval score.Interval
}

func (a Ambitus) String() string {
	return fmt.Sprintf("%s, from %s to %s", a.Interval.NiceName(), a.Lowest, a.Highest)
}

// Ambitus finds the lowest and highest pitch over every matched line.
// When two spellings share a MIDI number the first one met is kept.
func (a *Analyzer) Ambitus(ctx context.Context, b *criteria.Bundle) (Ambitus, error) {
	if err := requireGranularity(b, criteria.Lines); err != nil {
		return Ambitus{}, err
	}
	start := time.Now()
	var (
		out      Ambitus
		found    bool
		elements int
	)
	err := a.walk(ctx, b, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
		for _, span := range pm.Lines {
			for _, e := range p.Segment(span, false) {
				elements++
				if !found {
					out.Lowest, out.Highest = e.Pitch, e.Pitch
					found = true
					continue
				}
				if e.Pitch.MIDI() < out.Lowest.MIDI() {
					out.Lowest = e.Pitch
				}
				if e.Pitch.MIDI() > out.Highest.MIDI() {
					out.Highest = e.Pitch
				}
			}
		}
		return nil
	})
	if err != nil {
		return Ambitus{}, err
	}
	if !found {
		return Ambitus{}, apperrors.New(apperrors.ErrNoMatch, "matched lines contain no notes")
	}
	out.Interval = score.NewInterval(out.Lowest, out.Highest)
	a.observe("ambitus", start, elements)
	return out, nil
}
