package analysis

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// Direction selects which side of a threshold pitch a search looks at.
type Direction string

const (
	Below Direction = "low"
	Above Direction = "high"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Below, Above:
		return d, nil
	}
	return "", apperrors.Newf(apperrors.ErrInvalidInput, "direction %q, want low or high", s)
}

// Count is the number of samples of one searched item.
type Count struct {
	Label string
	N     int
}

// Hit is a score whose matched lines contain a searched item.
type Hit struct {
	Name   string
	Path   string
	Counts []Count
}

// FindByPitchThreshold returns, in catalog order, the scores whose matched
// lines go below (or above) threshold.
func (a *Analyzer) FindByPitchThreshold(ctx context.Context, b *criteria.Bundle, threshold score.Pitch, d Direction) ([]Hit, error) {
	if _, err := ParseDirection(string(d)); err != nil {
		return nil, err
	}
	limit := threshold.MIDI()
	return a.find(ctx, b, "find_threshold", func(seg []score.Element, acc *accumulator) {
		for _, e := range seg {
			if e.Rest {
				continue
			}
			m := e.Pitch.MIDI()
			if (d == Below && m < limit) || (d == Above && m > limit) {
				acc.add(e.Pitch.NameWithOctave(), m, 1)
			}
		}
	})
}

// FindByPitch returns the scores whose matched lines contain any of
// pitches, with the number of samples of each.
func (a *Analyzer) FindByPitch(ctx context.Context, b *criteria.Bundle, pitches []score.Pitch) ([]Hit, error) {
	names := make([]string, len(pitches))
	for i, p := range pitches {
		names[i] = p.NameWithOctave()
	}
	return a.find(ctx, b, "find_pitch", func(seg []score.Element, acc *accumulator) {
		for _, e := range seg {
			if e.Rest {
				continue
			}
			if name := e.Pitch.NameWithOctave(); slices.Contains(names, name) {
				acc.add(name, e.Pitch.MIDI(), 1)
			}
		}
	})
}

// FindByInterval returns the scores whose matched lines contain any of
// intervals between adjacent notes, compared by name or directed name.
func (a *Analyzer) FindByInterval(ctx context.Context, b *criteria.Bundle, intervals []string, directed bool) ([]Hit, error) {
	for _, name := range intervals {
		if _, err := score.ParseInterval(name); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "%v", err)
		}
	}
	return a.find(ctx, b, "find_interval", func(seg []score.Element, acc *accumulator) {
		a.intervals(seg, func(iv score.Interval) {
			label, rank := intervalKey(iv, directed)
			if slices.Contains(intervals, label) {
				acc.add(label, rank, 1)
			}
		})
	})
}

// find runs match over the matched lines of every score, rests included,
// and keeps the scores where it counted anything.
func (a *Analyzer) find(ctx context.Context, b *criteria.Bundle, statistic string, match func([]score.Element, *accumulator)) ([]Hit, error) {
	if err := requireGranularity(b, criteria.Lines); err != nil {
		return nil, err
	}
	start := time.Now()
	var hits []Hit
	elements := 0
	for i, sm := range b.Scores {
		single := &criteria.Bundle{Granularity: b.Granularity, Scores: b.Scores[i : i+1]}
		acc := newAccumulator()
		err := a.walk(ctx, single, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
			for _, span := range pm.Lines {
				seg := p.Segment(span, true)
				elements += len(seg)
				match(seg, acc)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if acc.elements == 0 {
			continue
		}
		hit := Hit{Name: filepath.Base(sm.Path), Path: sm.Path}
		for _, bin := range acc.histogram().Bins {
			hit.Counts = append(hit.Counts, Count{Label: bin.Label, N: int(bin.Value)})
		}
		hits = append(hits, hit)
		a.logger.Info("score matched", "score", hit.Name, "items", len(hit.Counts))
	}
	a.observe(statistic, start, elements)
	return hits, nil
}
