package analysis

import (
	"sort"
)

// Bin is one row of a histogram.
type Bin struct {
	Label string
	// Rank orders bins: MIDI number for pitches, semitones for intervals.
	Rank  int
	Value float64
}

// Histogram is an ordered list of bins.
type Histogram struct {
	Bins []Bin
	// Elements counts the score elements that contributed.
	Elements int
}

func (h *Histogram) Labels() []string {
	out := make([]string, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = b.Label
	}
	return out
}

func (h *Histogram) Values() []float64 {
	out := make([]float64, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = b.Value
	}
	return out
}

func (h *Histogram) Ranks() []int {
	out := make([]int, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = b.Rank
	}
	return out
}

// Lookup returns the value of the bin labelled label.
func (h *Histogram) Lookup(label string) (float64, bool) {
	for _, b := range h.Bins {
		if b.Label == label {
			return b.Value, true
		}
	}
	return 0, false
}

// Normalize returns a copy of h with values scaled by m.
func (h *Histogram) Normalize(m Mode) (*Histogram, error) {
	values, err := Normalize(h.Values(), m)
	if err != nil {
		return nil, err
	}
	out := &Histogram{Bins: make([]Bin, len(h.Bins)), Elements: h.Elements}
	copy(out.Bins, h.Bins)
	for i := range out.Bins {
		out.Bins[i].Value = values[i]
	}
	return out, nil
}

// accumulator sums values per label during a single pass.
type accumulator struct {
	totals   map[string]float64
	ranks    map[string]int
	elements int
}

func newAccumulator() *accumulator {
	return &accumulator{
		totals: make(map[string]float64),
		ranks:  make(map[string]int),
	}
}

func (a *accumulator) add(label string, rank int, v float64) {
	a.totals[label] += v
	a.ranks[label] = rank
	a.elements++
}

// histogram orders bins by rank, then label.
func (a *accumulator) histogram() *Histogram {
	h := &Histogram{Bins: make([]Bin, 0, len(a.totals)), Elements: a.elements}
	for label, v := range a.totals {
		h.Bins = append(h.Bins, Bin{Label: label, Rank: a.ranks[label], Value: v})
	}
	sortBins(h.Bins)
	return h
}

func sortBins(bins []Bin) {
	sort.Slice(bins, func(i, j int) bool {
		if bins[i].Rank != bins[j].Rank {
			return bins[i].Rank < bins[j].Rank
		}
		return bins[i].Label < bins[j].Label
	})
}
