package analysis

import (
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Mode selects how histogram values are scaled.
type Mode string

const (
	Sum Mode = "sum"
	Max Mode = "max"
	Abs Mode = "abs"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Sum, Max, Abs:
		return m, nil
	}
	return "", apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "count %q, want sum, max or abs", s)
}

// YLabel is the axis label for values scaled with m.
func (m Mode) YLabel() string {
	if m == Abs {
		return "Count"
	}
	return "Normalized Count"
}

// Normalize returns a scaled copy of values: divided by their total for
// Sum, by their maximum for Max, unchanged for Abs. A zero total or
// maximum leaves the values unchanged.
func Normalize(values []float64, m Mode) ([]float64, error) {
	out := make([]float64, len(values))
	copy(out, values)
	switch m {
	case Sum:
		if total := floats.Sum(out); total != 0 {
			floats.Scale(1/total, out)
		}
	case Max:
		if len(out) == 0 {
			break
		}
		// the maximum maps to exactly 1
		if top := floats.Max(out); top != 0 {
			for i := range out {
				out[i] /= top
			}
		}
	case Abs:
	default:
		return nil, apperrors.Newf(apperrors.ErrAmbiguousAggregationMode, "count %q, want sum, max or abs", m)
	}
	return out, nil
}
