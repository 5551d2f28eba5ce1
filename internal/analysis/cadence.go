package analysis

import (
	"context"
	"math"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
)

// SectionNames label the three sections of a line.
var SectionNames = [3]string{"S1", "S2", "S3"}

// CadenceRow holds, for one pitch, its share in percent of the cadences of
// each section, per line type of the plan.
type CadenceRow struct {
	Label  string
	Rank   int
	Values [][3]float64
}

// Cadences is the cadential-note table of one mode.
type Cadences struct {
	Plan criteria.CadencePlan
	// Bundles holds the filter result per line type; nil where no line
	// matched.
	Bundles []*criteria.Bundle
	Rows    []CadenceRow
}

// Column returns the percentages of line type lt and section sec, in row
// order.
func (c *Cadences) Column(lt, sec int) []float64 {
	out := make([]float64, len(c.Rows))
	for i, r := range c.Rows {
		out[i] = r.Values[lt][sec]
	}
	return out
}

func (c *Cadences) Labels() []string {
	out := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		out[i] = r.Label
	}
	return out
}

// CadentialNotes filters ix once per line type of plan and counts the last
// note of every section. Counts become percentages of their section's
// total; a section without cadences is all zeros. c must come from
// criteria.ValidateCadence.
func (a *Analyzer) CadentialNotes(ctx context.Context, ix *criteria.Index, c criteria.Criteria, plan criteria.CadencePlan) (*Cadences, error) {
	start := time.Now()
	log := logger.FromContext(ctx)
	out := &Cadences{Plan: plan}
	counts := make([][3]map[string]int, len(plan.LineTypes))
	axis := newAccumulator()
	matched := 0
	elements := 0
	for i, lt := range plan.LineTypes {
		counts[i] = [3]map[string]int{{}, {}, {}}
		b, err := ix.Filter(ctx, c.ForLineType(lt), criteria.Sections)
		if apperrors.Is(err, apperrors.ErrNoMatch) {
			a.metrics.Filtered(0)
			log.Warn("no results found for", "line_type", lt, "title", plan.Titles[i])
			out.Bundles = append(out.Bundles, nil)
			continue
		}
		if err != nil {
			return nil, err
		}
		a.metrics.Filtered(b.FoundLines)
		matched++
		out.Bundles = append(out.Bundles, b)
		err = a.walk(ctx, b, func(_ criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error {
			for _, line := range pm.Sections {
				for sec, span := range line {
					if span == nil {
						continue
					}
					n, ok := a.cadentialNote(p.Segment(*span, true))
					if !ok {
						continue
					}
					name := n.Pitch.NameWithOctave()
					counts[i][sec][name]++
					axis.add(name, n.Pitch.MIDI(), 0)
					elements++
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if matched == 0 {
		return nil, apperrors.Newf(apperrors.ErrNoMatch, "no lines found for any %s line type", plan.Mode)
	}

	union := axis.histogram().Bins
	out.Rows = make([]CadenceRow, len(union))
	for r, u := range union {
		out.Rows[r] = CadenceRow{Label: u.Label, Rank: u.Rank, Values: make([][3]float64, len(plan.LineTypes))}
	}
	for i := range plan.LineTypes {
		for sec := range SectionNames {
			total := 0
			for _, n := range counts[i][sec] {
				total += n
			}
			if total == 0 {
				continue
			}
			for r := range out.Rows {
				n := counts[i][sec][out.Rows[r].Label]
				out.Rows[r].Values[i][sec] = float64(n) * 100 / float64(total)
			}
		}
	}
	if err := out.check(); err != nil {
		return nil, err
	}
	a.observe("cn", start, elements)
	return out, nil
}

// check verifies that every section column of every line type holds
// either no cadences or percentages summing to 100.
func (c *Cadences) check() error {
	for lt := range c.Plan.LineTypes {
		for sec, name := range SectionNames {
			total := 0.0
			for _, r := range c.Rows {
				if len(r.Values) != len(c.Plan.LineTypes) {
					return apperrors.Newf(apperrors.ErrResultShapeMismatch,
						"row %s has %d line types, want %d", r.Label, len(r.Values), len(c.Plan.LineTypes))
				}
				total += r.Values[lt][sec]
			}
			if total != 0 && math.Abs(total-100) > 1e-6 {
				return apperrors.Newf(apperrors.ErrResultShapeMismatch,
					"%s %s cadences sum to %.4f%%", c.Plan.LineTypes[lt], name, total)
			}
		}
	}
	return nil
}

// cadentialNote returns the last sounding note of seg, stepping back over
// grace notes unless IncludeGraceNotes is set.
func (a *Analyzer) cadentialNote(seg []score.Element) (score.Element, bool) {
	for i := len(seg) - 1; i >= 0; i-- {
		e := seg[i]
		if e.Rest {
			continue
		}
		if e.IsGrace() && !a.opts.IncludeGraceNotes {
			continue
		}
		return e, true
	}
	return score.Element{}, false
}
