package report

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"gonum.org/v1/plot/vg"
)

// Style is the presentation of a figure derived from the role types and
// modes that actually matched.
type Style struct {
	// Group codes: "ls", "da" or "sd" for the role types; "eh", "xp" or
	// "ex" for the modes.
	RoleGroup string
	ModeGroup string
	Color     color.RGBA
	Hatch     string
	// XMin and XMax bound the pitch axis, in MIDI numbers.
	XMin, XMax int
	YLabel     string
}

var (
	roleColors = map[string]string{"ls": "#66CCFF", "da": "#FF9966", "sd": "#B2B2B2"}
	roleLimits = map[string][2]int{"ls": {54, 76}, "da": {59, 85}, "sd": {54, 85}}
	modeHatch  = map[string]string{"eh": "/", "xp": `\`, "ex": "x"}
)

// StyleFor picks colour, hatch and pitch range from the found criteria.
func StyleFor(found criteria.Criteria, m analysis.Mode) Style {
	role := "sd"
	if len(found.RoleTypes) == 1 {
		switch found.RoleTypes[0] {
		case "laosheng":
			role = "ls"
		case "dan":
			role = "da"
		}
	}
	mode := "ex"
	if len(found.Modes) == 1 {
		switch found.Modes[0] {
		case "erhuang":
			mode = "eh"
		case "xipi":
			mode = "xp"
		}
	}
	lim := roleLimits[role]
	return Style{
		RoleGroup: role,
		ModeGroup: mode,
		Color:     MustHex(roleColors[role]),
		Hatch:     modeHatch[mode],
		XMin:      lim[0],
		XMax:      lim[1],
		YLabel:    m.YLabel(),
	}
}

// Dashes renders the hatch as a bar outline pattern, since the plot
// backend has no fill patterns.
func (s Style) Dashes() []vg.Length {
	return hatchDashes(s.Hatch)
}

func hatchDashes(h string) []vg.Length {
	switch h {
	case "/":
		return []vg.Length{vg.Points(4), vg.Points(2)}
	case `\`:
		return []vg.Length{vg.Points(1), vg.Points(2)}
	case "O":
		return []vg.Length{vg.Points(6), vg.Points(2), vg.Points(1), vg.Points(2)}
	}
	return nil
}

// PitchStyle is the fill of one pitch in stacked cadence bars.
type PitchStyle struct {
	Color color.RGBA
	Hatch string
}

var cadencePitches = map[string]PitchStyle{
	"G#3":  {MustHex("#F4D03F"), "x"},
	"B3":   {MustHex("#76D7C4"), "x"},
	"C#4":  {MustHex("#2E86C1"), "x"},
	"C##4": {MustHex("#5B2C6F"), "x"},
	"D#4":  {MustHex("#BB8FCE"), "x"},
	"E4":   {MustHex("#E74C3C"), ""},
	"F#4":  {MustHex("#F39C12"), ""},
	"G#4":  {MustHex("#F4D03F"), ""},
	"A4":   {MustHex("#2ECC71"), ""},
	"A#4":  {MustHex("#117864"), ""},
	"B4":   {MustHex("#76D7C4"), ""},
	"C#5":  {MustHex("#2E86C1"), ""},
	"D#5":  {MustHex("#BB8FCE"), ""},
	"E5":   {MustHex("#E74C3C"), "O"},
	"F#5":  {MustHex("#F39C12"), "O"},
}

var fallbackPitch = PitchStyle{Color: MustHex("#B2B2B2")}

// CadencePitchStyle returns the fill for a cadential pitch, gray for
// pitches outside the usual cadence set.
func CadencePitchStyle(name string) PitchStyle {
	if ps, ok := cadencePitches[name]; ok {
		return ps
	}
	return fallbackPitch
}

// ParseHex reads "#RRGGBB".
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func MustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
