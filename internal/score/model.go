// Package score holds the parsed form of a MusicXML score: parts as flat,
// offset-ordered element streams, and the pitch and interval arithmetic the
// statistics are computed with.
package score

import (
	"math/big"
)

// Element is a note or rest of a part. Offset and Duration are exact
// quarter lengths measured from the start of the part. Grace notes have a
// zero duration.
type Element struct {
	Offset   *big.Rat
	Duration *big.Rat
	Rest     bool
	Pitch    Pitch
	// Lyric joins the texts of all lyric lines with "\n".
	Lyric   string
	Measure string
}

// IsGrace reports a sounding note without duration.
func (e Element) IsGrace() bool {
	return !e.Rest && e.Duration.Sign() == 0
}

func (e Element) HasLyric() bool {
	return e.Lyric != ""
}

// QuarterLength is Duration as a float.
func (e Element) QuarterLength() float64 {
	f, _ := e.Duration.Float64()
	return f
}

// Part is one staff of a score.
type Part struct {
	ID       string
	Name     string
	Elements []Element
}

// Score is a parsed score file.
type Score struct {
	Path  string
	Title string
	Parts []*Part
}
