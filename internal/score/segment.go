package score

import (
	"sort"

	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
)

// Segment returns the elements whose offset lies inside span, both ends
// inclusive, in offset order. Rests are kept only when withRests is set.
func (p *Part) Segment(span catalog.Span, withRests bool) []Element {
	i := sort.Search(len(p.Elements), func(i int) bool {
		return p.Elements[i].Offset.Cmp(span.Start) >= 0
	})
	var out []Element
	for ; i < len(p.Elements); i++ {
		e := p.Elements[i]
		if e.Offset.Cmp(span.End) > 0 {
			break
		}
		if e.Rest && !withRests {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Notes returns every sounding element of the part.
func (p *Part) Notes() []Element {
	out := make([]Element, 0, len(p.Elements))
	for _, e := range p.Elements {
		if !e.Rest {
			out = append(out, e)
		}
	}
	return out
}

// GraceDuration is the value a grace note is counted with: the shortest
// nonzero note duration in the part, never more than limit.
func (p *Part) GraceDuration(limit float64) float64 {
	d := limit
	for _, e := range p.Elements {
		if e.Rest {
			continue
		}
		if ql := e.QuarterLength(); ql > 0 && ql < d {
			d = ql
		}
	}
	return d
}
