package analysis

import (
	"math"
	"sort"
)

// whiskerReach is the whisker length in interquartile ranges.
const whiskerReach = 1.5

// BoxStats summarizes a series the way a box-and-whisker plot draws it.
// The whiskers sit on the most extreme values within whiskerReach IQRs of
// the box; Outliers keeps the values beyond them in series order.
type BoxStats struct {
	Count        int
	Median       float64
	Q1           float64
	Q3           float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     []float64
}

// Boxplot computes BoxStats with linearly interpolated quartiles. An empty
// series gives zero statistics.
func Boxplot(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	st := BoxStats{
		Count:  len(values),
		Median: quantile(sorted, 0.5),
		Q1:     quantile(sorted, 0.25),
		Q3:     quantile(sorted, 0.75),
	}
	iqr := st.Q3 - st.Q1
	lo := st.Q1 - whiskerReach*iqr
	hi := st.Q3 + whiskerReach*iqr

	st.LowerWhisker = st.Q1
	for _, v := range sorted {
		if v >= lo {
			if v < st.Q1 {
				st.LowerWhisker = v
			}
			break
		}
	}
	st.UpperWhisker = st.Q3
	for i := len(sorted) - 1; i >= 0; i-- {
		if v := sorted[i]; v <= hi {
			if v > st.Q3 {
				st.UpperWhisker = v
			}
			break
		}
	}
	for _, v := range values {
		if v < st.LowerWhisker || v > st.UpperWhisker {
			st.Outliers = append(st.Outliers, v)
		}
	}
	return st
}

// quantile interpolates linearly between the closest ranks of a sorted,
// non-empty slice.
func quantile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := math.Floor(h)
	hi := math.Ceil(h)
	a, b := sorted[int(lo)], sorted[int(hi)]
	return a + (h-lo)*(b-a)
}
