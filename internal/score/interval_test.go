package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalNames(t *testing.T) {
	cases := []struct {
		from, to string
		name     string
		directed string
		nice     string
	}{
		{"C4", "D4", "M2", "M2", "Major Second"},
		{"E4", "C4", "M3", "M-3", "Major Third"},
		{"E4", "C#4", "m3", "m-3", "Minor Third"},
		{"C4", "C4", "P1", "P1", "Perfect Unison"},
		{"C4", "F#4", "A4", "A4", "Augmented Fourth"},
		{"B3", "F4", "d5", "d5", "Diminished Fifth"},
		{"G4", "D4", "P4", "P-4", "Perfect Fourth"},
		{"C4", "C5", "P8", "P8", "Perfect Octave"},
		{"C4", "E5", "M10", "M10", "Major Tenth"},
		{"C4", "B#3", "d2", "d-2", "Diminished Second"},
		{"C4", "C#4", "A1", "A1", "Augmented Unison"},
	}
	for _, tc := range cases {
		t.Run(tc.from+"-"+tc.to, func(t *testing.T) {
			iv := NewInterval(MustPitch(tc.from), MustPitch(tc.to))
			assert.Equal(t, tc.name, iv.Name())
			assert.Equal(t, tc.directed, iv.DirectedName())
			assert.Equal(t, tc.nice, iv.NiceName())
		})
	}
}

func TestParseInterval(t *testing.T) {
	cases := []struct {
		name      string
		generic   int
		semitones int
	}{
		{"M2", 1, 2},
		{"m-3", -2, -3},
		{"P8", 7, 12},
		{"A4", 3, 6},
		{"d5", 4, 6},
		{"P-1", 0, 0},
		{"m10", 9, 15},
		{"d-2", -1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			iv, err := ParseInterval(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.generic, iv.Generic)
			assert.Equal(t, tc.semitones, iv.Semitones)
		})
	}
}

func TestParseIntervalInvalid(t *testing.T) {
	for _, in := range []string{"", "2", "X2", "M5", "P3", "m", "M0"} {
		_, err := ParseInterval(in)
		assert.Error(t, err, in)
	}
}
