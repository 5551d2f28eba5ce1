// Package report renders analysis results as CSV tables and figures.
package report

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
)

// Missing marks a pitch a section never reaches.
const Missing = "--"

// FormatValue prints floats the way the results files have always been
// written: shortest representation, with ".0" on integral values.
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// HistogramTable renders a figure block of "label,value" rows.
func HistogramTable(name string, h *analysis.Histogram) []string {
	lines := []string{name}
	for _, b := range h.Bins {
		lines = append(lines, b.Label+","+FormatValue(b.Value))
	}
	return lines
}

// SectionTable renders "pitch,s1,s2,s3" rows.
func SectionTable(name string, rows []analysis.SectionRow) []string {
	lines := []string{name}
	for _, r := range rows {
		cells := []string{r.Label}
		for i := range r.Values {
			if r.Present[i] {
				cells = append(cells, FormatValue(r.Values[i]))
			} else {
				cells = append(cells, Missing)
			}
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return lines
}

var cadenceHeaders = map[string]string{
	"xipi":    ",Op. line,,,Cl. line,,",
	"erhuang": ",Op. l. 1,,,Op. l. 2,,,Cl. line,,",
}

// CadenceTable renders the two header lines and one row per pitch with
// the S1..S3 percentages of every line type.
func CadenceTable(name string, cad *analysis.Cadences) []string {
	header, ok := cadenceHeaders[cad.Plan.Mode]
	if !ok {
		cells := []string{""}
		for _, t := range cad.Plan.Titles {
			cells = append(cells, t, "", "")
		}
		header = strings.Join(cells, ",")
	}
	sections := []string{""}
	for range cad.Plan.LineTypes {
		sections = append(sections, analysis.SectionNames[:]...)
	}
	lines := []string{name, header, strings.Join(sections, ",")}
	for _, r := range cad.Rows {
		cells := []string{r.Label}
		for _, lt := range r.Values {
			for _, v := range lt {
				cells = append(cells, FormatValue(v))
			}
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return lines
}

const densityHeader = "index,score,median,Q1,Q3,lower fence,upper fence,outliers"

// DensityTable renders one boxplot row per score and the closing Avg row.
// The outliers column is left out of rows without outliers.
func DensityTable(name string, d *analysis.Density) []string {
	lines := []string{name, densityHeader}
	for _, s := range d.Series {
		index, scoreName := s.Label, filepath.Base(s.Score)
		if s.Label == analysis.AverageLabel {
			scoreName = ""
		}
		st := s.Stats
		cells := []string{
			index, scoreName,
			FormatValue(st.Median), FormatValue(st.Q1), FormatValue(st.Q3),
			FormatValue(st.LowerWhisker), FormatValue(st.UpperWhisker),
		}
		if len(st.Outliers) > 0 {
			out := make([]string, len(st.Outliers))
			for i, o := range st.Outliers {
				out[i] = FormatValue(o)
			}
			cells = append(cells, strings.Join(out, ";"))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return lines
}

// Results collects the figure blocks of one results file.
type Results struct {
	lines []string
}

func (r *Results) Add(block []string) {
	r.lines = append(r.lines, block...)
}

func (r *Results) Len() int { return len(r.lines) }

// WriteTo writes the blocks joined by newlines, without a trailing one.
func (r *Results) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, strings.Join(r.lines, "\n"))
	return int64(n), err
}

func (r *Results) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
