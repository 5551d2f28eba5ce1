// Package catalog reads the line catalog (lines_data.csv) that locates every
// sung line, and its three sections, inside the MusicXML scores of the
// collection.
package catalog

// Column positions in a catalog row.
const (
	colScore      = 0
	colRoleType   = 1
	colMode       = 2
	colTempoClass = 3
	colLineType   = 4
	colLineStart  = 6
	colLineEnd    = 7
	minDataCols   = colLineEnd + 1
)

// sectionCols holds the start column of each section's start/end pair.
var sectionCols = [3]int{10, 13, 16}

// Record is one catalogued line.
type Record struct {
	// Score is the score path exactly as written in the catalog; Path is the
	// same file resolved against the catalog directory.
	Score      string
	Path       string
	Part       int
	Row        int
	RoleType   string
	Mode       string
	TempoClass string
	LineType   string
	Line       Span
	// Sections holds the three line sections; a nil entry means the line
	// has no such section.
	Sections [3]*Span
}

// Part groups the records of one voice part, numbered from 1.
type Part struct {
	Index   int
	Records []Record
}

type Score struct {
	Name  string
	Path  string
	Parts []Part
}

// Catalog is the parsed catalog in file order.
type Catalog struct {
	Dir    string
	Scores []Score
}

// Records returns every record in file order.
func (c *Catalog) Records() []Record {
	n := 0
	for _, s := range c.Scores {
		for _, p := range s.Parts {
			n += len(p.Records)
		}
	}
	out := make([]Record, 0, n)
	for _, s := range c.Scores {
		for _, p := range s.Parts {
			out = append(out, p.Records...)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	n := 0
	for _, s := range c.Scores {
		for _, p := range s.Parts {
			n += len(p.Records)
		}
	}
	return n
}
