package score

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is the distance between two spelled pitches. Generic counts
// diatonic steps and Semitones chromatic steps; both are negative for
// descending motion.
type Interval struct {
	Generic   int
	Semitones int
}

func NewInterval(from, to Pitch) Interval {
	return Interval{
		Generic:   to.diatonic() - from.diatonic(),
		Semitones: to.MIDI() - from.MIDI(),
	}
}

// Descending follows the diatonic direction; unisons follow the chromatic
// one.
func (iv Interval) Descending() bool {
	if iv.Generic != 0 {
		return iv.Generic < 0
	}
	return iv.Semitones < 0
}

// Number is the diatonic size: 1 for a unison, 2 for a second, 8 for an
// octave.
func (iv Interval) Number() int {
	return abs(iv.Generic) + 1
}

func (iv Interval) isPerfect() bool {
	switch (iv.Number() - 1) % 7 {
	case 0, 3, 4:
		return true
	}
	return false
}

func baseSemitones(number int) int {
	simple := (number - 1) % 7
	return stepSemitones[simple] + 12*((number-1)/7)
}

// Quality is P, M, m, A or d, repeated for doubly augmented or diminished
// intervals.
func (iv Interval) Quality() string {
	size := iv.Semitones
	if iv.Descending() {
		size = -size
	}
	delta := size - baseSemitones(iv.Number())
	if iv.isPerfect() {
		switch {
		case delta == 0:
			return "P"
		case delta > 0:
			return strings.Repeat("A", delta)
		default:
			return strings.Repeat("d", -delta)
		}
	}
	switch {
	case delta == 0:
		return "M"
	case delta == -1:
		return "m"
	case delta > 0:
		return strings.Repeat("A", delta)
	default:
		return strings.Repeat("d", -delta-1)
	}
}

// Name is the undirected name, e.g. "M2", "P5", "m3".
func (iv Interval) Name() string {
	return iv.Quality() + strconv.Itoa(iv.Number())
}

// DirectedName marks descending motion with '-', e.g. "m-3".
func (iv Interval) DirectedName() string {
	if iv.Descending() {
		return iv.Quality() + "-" + strconv.Itoa(iv.Number())
	}
	return iv.Name()
}

func (iv Interval) String() string { return iv.DirectedName() }

var qualityWords = map[byte]string{
	'P': "Perfect",
	'M': "Major",
	'm': "Minor",
	'A': "Augmented",
	'd': "Diminished",
}

var numberWords = []string{
	"", "Unison", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh",
	"Octave", "Ninth", "Tenth", "Eleventh", "Twelfth", "Thirteenth",
	"Fourteenth", "Double-octave",
}

// NiceName spells the interval out, e.g. "Major Tenth".
func (iv Interval) NiceName() string {
	q := iv.Quality()
	word := qualityWords[q[0]]
	switch {
	case len(q) == 2:
		word = "Doubly-" + word
	case len(q) > 2:
		word = strconv.Itoa(len(q)) + "x-" + word
	}
	n := iv.Number()
	num := fmt.Sprintf("%dth", n)
	if n < len(numberWords) {
		num = numberWords[n]
	}
	return word + " " + num
}

// ParseInterval reads names produced by Name and DirectedName.
func ParseInterval(name string) (Interval, error) {
	i := 0
	for i < len(name) && strings.IndexByte("PMmAd", name[i]) >= 0 {
		i++
	}
	q := name[:i]
	rest := name[i:]
	descending := strings.HasPrefix(rest, "-")
	rest = strings.TrimPrefix(rest, "-")
	number, err := strconv.Atoi(rest)
	if q == "" || err != nil || number < 1 {
		return Interval{}, fmt.Errorf("invalid interval %q", name)
	}
	base := baseSemitones(number)
	perfect := Interval{Generic: number - 1}.isPerfect()
	var delta int
	switch {
	case q == "P" && perfect:
		delta = 0
	case q == "M" && !perfect:
		delta = 0
	case q == "m" && !perfect:
		delta = -1
	case strings.Trim(q, "A") == "":
		delta = len(q)
	case strings.Trim(q, "d") == "" && perfect:
		delta = -len(q)
	case strings.Trim(q, "d") == "":
		delta = -len(q) - 1
	default:
		return Interval{}, fmt.Errorf("invalid interval %q: quality %q does not fit %d", name, q, number)
	}
	iv := Interval{Generic: number - 1, Semitones: base + delta}
	if descending {
		iv.Generic = -iv.Generic
		iv.Semitones = -iv.Semitones
	}
	return iv, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
