package score

import (
	"fmt"
	"strconv"
	"strings"
)

const steps = "CDEFGAB"

var stepSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// Pitch is a spelled pitch: diatonic step, chromatic alteration in
// semitones, and octave (C4 is middle C).
type Pitch struct {
	Step   byte
	Alter  int
	Octave int
}

func (p Pitch) stepIndex() int {
	return strings.IndexByte(steps, p.Step)
}

// MIDI returns the MIDI note number, used to order pitches by height.
func (p Pitch) MIDI() int {
	return stepSemitones[p.stepIndex()] + (p.Octave+1)*12 + p.Alter
}

// diatonic is the step count from C0, ignoring alterations.
func (p Pitch) diatonic() int {
	return p.stepIndex() + 7*p.Octave
}

// Name spells the pitch class with '#' for sharps and '-' for flats, e.g.
// "C#", "B-", "C##".
func (p Pitch) Name() string {
	var b strings.Builder
	b.WriteByte(p.Step)
	switch {
	case p.Alter > 0:
		b.WriteString(strings.Repeat("#", p.Alter))
	case p.Alter < 0:
		b.WriteString(strings.Repeat("-", -p.Alter))
	}
	return b.String()
}

// NameWithOctave is Name followed by the octave, e.g. "G#4", "B-3".
func (p Pitch) NameWithOctave() string {
	return p.Name() + strconv.Itoa(p.Octave)
}

func (p Pitch) String() string { return p.NameWithOctave() }

// ParsePitch reads names like "E4", "C#5", "B-3", "Bb3" or "C##4".
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Pitch{}, fmt.Errorf("invalid pitch %q", s)
	}
	step := s[0]
	if step >= 'a' && step <= 'g' {
		step -= 'a' - 'A'
	}
	if strings.IndexByte(steps, step) < 0 {
		return Pitch{}, fmt.Errorf("invalid pitch %q: unknown step", s)
	}
	p := Pitch{Step: step}
	i := 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			p.Alter++
			continue
		case '-', 'b':
			p.Alter--
			continue
		}
		break
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid pitch %q: bad octave", s)
	}
	p.Octave = octave
	return p, nil
}

// MustPitch is ParsePitch for literals known to be valid.
func MustPitch(s string) Pitch {
	p, err := ParsePitch(s)
	if err != nil {
		panic(err)
	}
	return p
}
