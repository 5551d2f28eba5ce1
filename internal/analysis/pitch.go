package analysis

import (
	"context"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

// Unit is what a pitch histogram adds for every note.
type Unit string

const (
	// ByDuration adds the note's quarter length.
	ByDuration Unit = "duration"
	// ByNotes adds 1 per note.
	ByNotes Unit = "notes"
)

func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case ByDuration, ByNotes:
		return u, nil
	}
	return "", apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "count by %q, want duration or notes", s)
}

// checkUnit accepts an unset CountBy as ByDuration.
func (a *Analyzer) checkUnit() error {
	if a.opts.CountBy == "" {
		return nil
	}
	_, err := ParseUnit(string(a.opts.CountBy))
	return err
}

// PitchHistogram sums note durations per pitch over every matched line, or
// counts the notes when CountBy is ByNotes. Grace notes count with the
// part's grace duration, or 1, when CountGraceNotes is set. Bins are
// ordered by MIDI number.
func (a *Analyzer) PitchHistogram(ctx context.Context, b *criteria.Bundle) (*Histogram, error) {
	if err := requireGranularity(b, criteria.Lines); err != nil {
		return nil, err
	}
	if err := a.checkUnit(); err != nil {
		return nil, err
	}
	start := time.Now()
	acc := newAccumulator()
	err := a.walk(ctx, b, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
		grace := p.GraceDuration(a.opts.GraceNoteCap)
		for _, span := range pm.Lines {
			a.countPitches(acc, p.Segment(span, false), grace)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h := acc.histogram()
	a.observe("ph", start, h.Elements)
	return h, nil
}

func (a *Analyzer) countPitches(acc *accumulator, seg []score.Element, grace float64) {
	for _, e := range seg {
		d := e.QuarterLength()
		if e.IsGrace() {
			if !a.opts.CountGraceNotes {
				continue
			}
			d = grace
		}
		if a.opts.CountBy == ByNotes {
			d = 1
		}
		acc.add(e.Pitch.NameWithOctave(), e.Pitch.MIDI(), d)
	}
}

// SectionHistograms holds one pitch histogram per line section.
type SectionHistograms [3]*Histogram

// SectionRow is one pitch of the shared axis of the three section
// histograms. Present is false where the section never reaches the pitch.
type SectionRow struct {
	Label   string
	Rank    int
	Values  [3]float64
	Present [3]bool
}

// SectionPitchHistograms computes a pitch histogram for each of the three
// sections of the matched lines.
func (a *Analyzer) SectionPitchHistograms(ctx context.Context, b *criteria.Bundle) (SectionHistograms, error) {
	if err := requireGranularity(b, criteria.Sections); err != nil {
		return SectionHistograms{}, err
	}
	if err := a.checkUnit(); err != nil {
		return SectionHistograms{}, err
	}
	start := time.Now()
	accs := [3]*accumulator{newAccumulator(), newAccumulator(), newAccumulator()}
	err := a.walk(ctx, b, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
		grace := p.GraceDuration(a.opts.GraceNoteCap)
		for _, line := range pm.Sections {
			for i, span := range line {
				if span == nil {
					continue
				}
				a.countPitches(accs[i], p.Segment(*span, false), grace)
			}
		}
		return nil
	})
	if err != nil {
		return SectionHistograms{}, err
	}
	var out SectionHistograms
	elements := 0
	for i, acc := range accs {
		out[i] = acc.histogram()
		elements += out[i].Elements
	}
	a.observe("phlj", start, elements)
	return out, nil
}

// Rows normalizes each section on its own and lays the three histograms
// over the union of their pitches, ordered by MIDI number.
func (s SectionHistograms) Rows(m Mode) ([]SectionRow, error) {
	var normalized [3]*Histogram
	axis := newAccumulator()
	for i, h := range s {
		if h == nil {
			h = &Histogram{}
		}
		n, err := h.Normalize(m)
		if err != nil {
			return nil, err
		}
		normalized[i] = n
		for _, b := range n.Bins {
			axis.add(b.Label, b.Rank, 0)
		}
	}
	union := axis.histogram().Bins

	rows := make([]SectionRow, len(union))
	for r, u := range union {
		rows[r] = SectionRow{Label: u.Label, Rank: u.Rank}
		for i, h := range normalized {
			if v, ok := h.Lookup(u.Label); ok {
				rows[r].Values[i] = v
				rows[r].Present[i] = true
			}
		}
	}
	return rows, nil
}
