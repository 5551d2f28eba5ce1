// Package catalogtest builds catalog rows for tests.
package catalogtest

import "strings"

// Line describes one data row. Sections holds up to three "start,end"
// pairs; an empty string leaves that section empty.
type Line struct {
	RoleType, Mode, TempoClass, LineType string
	Start, End                           string
	Sections                             [3][2]string
}

// Row renders a data row. score is written in column 0 and may be empty.
func Row(score string, l Line) string {
	cols := make([]string, 18)
	cols[0] = score
	cols[1] = l.RoleType
	cols[2] = l.Mode
	cols[3] = l.TempoClass
	cols[4] = l.LineType
	cols[6] = l.Start
	cols[7] = l.End
	for i, start := range []int{10, 13, 16} {
		cols[start] = l.Sections[i][0]
		cols[start+1] = l.Sections[i][1]
	}
	return strings.Join(cols, ",")
}

// Header renders a score header row that opens Part 1.
func Header(score string) string {
	return score + ",Part 1" + strings.Repeat(",", 16)
}

// PartHeader renders the row that opens the next part of the current score.
func PartHeader(n string) string {
	return ",Part " + n + strings.Repeat(",", 16)
}

// Join joins rows into a catalog document.
func Join(rows ...string) string {
	return strings.Join(rows, "\n") + "\n"
}
