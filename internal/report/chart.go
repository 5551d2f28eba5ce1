package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Scale guides drawn on pitch axes: the E tonic and its octave in red, the
// B fifths in dotted gray.
var (
	tonicGuides  = []int{64, 76}
	fifthGuides  = []int{59, 71, 83}
	guideRed     = color.RGBA{R: 0xff, A: 0xff}
	guideGray    = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	dottedDashes = []vg.Length{vg.Points(1), vg.Points(3)}
	dashedDashes = []vg.Length{vg.Points(5), vg.Points(3)}
)

// Limits bounds an axis. The zero value lets the chart pick.
type Limits struct {
	Min, Max float64
}

func (l Limits) set() bool { return l.Max > l.Min }

// SumLimits fixes the value axis at [0, top] for sum-normalized values and
// leaves it free otherwise.
func SumLimits(m analysis.Mode, top float64) Limits {
	if m != analysis.Sum {
		return Limits{}
	}
	return Limits{Max: top}
}

// Figure is one or more plots laid out in a grid and saved as one image.
type Figure struct {
	Title  string
	Plots  [][]*plot.Plot
	Width  vg.Length
	Height vg.Length
}

var imageFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"svg": true, "pdf": true, "eps": true,
}

// formatOf takes the image format from the file extension; anything
// unknown is written as PNG.
func formatOf(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if imageFormats[ext] {
		return ext
	}
	return "png"
}

// Save draws the figure into path.
func (f *Figure) Save(path string) error {
	if len(f.Plots) == 0 || len(f.Plots[0]) == 0 {
		return fmt.Errorf("figure %q has no plots", f.Title)
	}
	c, err := draw.NewFormattedCanvas(f.Width, f.Height, formatOf(path))
	if err != nil {
		return fmt.Errorf("figure %q: %w", f.Title, err)
	}
	dc := draw.New(c)
	if len(f.Plots) == 1 && len(f.Plots[0]) == 1 {
		f.Plots[0][0].Draw(dc)
	} else {
		tiles := draw.Tiles{
			Rows:      len(f.Plots),
			Cols:      len(f.Plots[0]),
			PadX:      vg.Millimeter * 4,
			PadY:      vg.Millimeter * 4,
			PadTop:    vg.Millimeter * 2,
			PadBottom: vg.Millimeter * 2,
			PadLeft:   vg.Millimeter * 2,
			PadRight:  vg.Millimeter * 2,
		}
		canvases := plot.Align(f.Plots, tiles, dc)
		for i, row := range f.Plots {
			for j, p := range row {
				if p != nil {
					p.Draw(canvases[i][j])
				}
			}
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("writing figure %s: %w", path, err)
	}
	return out.Close()
}

// Charts builds figures of a fixed size.
type Charts struct {
	Width  vg.Length
	Height vg.Length
}

// NewCharts takes the figure size in inches.
func NewCharts(width, height float64) Charts {
	return Charts{Width: vg.Length(width) * vg.Inch, Height: vg.Length(height) * vg.Inch}
}

func (c Charts) figure(title string, plots ...*plot.Plot) *Figure {
	return &Figure{Title: title, Plots: [][]*plot.Plot{plots}, Width: c.Width, Height: c.Height}
}

func barWidth(span vg.Length, slots int) vg.Length {
	if slots < 1 {
		slots = 1
	}
	return span * 0.6 / vg.Length(slots)
}

// pitchAxis spreads bins over consecutive MIDI numbers from the style's
// range, widened to fit every bin. Spellings sharing a MIDI number share a
// bar and a tick.
type pitchAxis struct {
	lo, hi int
	values plotter.Values
	ticks  []plot.Tick
}

func newPitchAxis(st Style, ranks []int, labels []string, values []float64) pitchAxis {
	lo, hi := st.XMin, st.XMax
	for _, r := range ranks {
		lo = min(lo, r)
		hi = max(hi, r)
	}
	ax := pitchAxis{lo: lo, hi: hi, values: make(plotter.Values, hi-lo+1)}
	tickAt := make(map[int]int)
	for i, r := range ranks {
		ax.values[r-lo] += values[i]
		if j, ok := tickAt[r]; ok {
			ax.ticks[j].Label += "/" + labels[i]
			continue
		}
		tickAt[r] = len(ax.ticks)
		ax.ticks = append(ax.ticks, plot.Tick{Value: float64(r), Label: labels[i]})
	}
	return ax
}

func (ax pitchAxis) slots() int { return ax.hi - ax.lo + 1 }

// guides returns the scale guide lines inside the axis range, drawn across
// [from, to] of the other axis.
func (ax pitchAxis) guides(from, to float64, vertical bool) ([]plot.Plotter, error) {
	var out []plot.Plotter
	add := func(midi int, c color.Color, dashes []vg.Length) error {
		if midi < ax.lo || midi > ax.hi {
			return nil
		}
		x := float64(midi)
		pts := plotter.XYs{{X: x, Y: from}, {X: x, Y: to}}
		if !vertical {
			pts = plotter.XYs{{X: from, Y: x}, {X: to, Y: x}}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.LineStyle.Color = c
		l.LineStyle.Dashes = dashes
		out = append(out, l)
		return nil
	}
	if err := add(tonicGuides[0], guideRed, nil); err != nil {
		return nil, err
	}
	if err := add(tonicGuides[1], guideRed, dashedDashes); err != nil {
		return nil, err
	}
	for _, m := range fifthGuides {
		if err := add(m, guideGray, dottedDashes); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func rotateTicks(a *plot.Axis) {
	a.Tick.Label.Rotation = math.Pi / 2
	a.Tick.Label.XAlign = draw.XRight
	a.Tick.Label.YAlign = draw.YCenter
}

func topOf(values []float64, lim Limits) (float64, float64) {
	if lim.set() {
		return lim.Min, lim.Max
	}
	top := 0.0
	for _, v := range values {
		top = max(top, v)
	}
	if top == 0 {
		top = 1
	}
	return 0, top * 1.05
}

// Pitch draws a pitch histogram as vertical bars on a MIDI axis.
func (c Charts) Pitch(title string, h *analysis.Histogram, st Style, ylim Limits) (*Figure, error) {
	ax := newPitchAxis(st, h.Ranks(), h.Labels(), h.Values())
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Pitch"
	p.Y.Label.Text = st.YLabel

	bars, err := plotter.NewBarChart(ax.values, barWidth(c.Width, ax.slots()))
	if err != nil {
		return nil, fmt.Errorf("pitch histogram %q: %w", title, err)
	}
	bars.XMin = float64(ax.lo)
	bars.Color = st.Color
	bars.LineStyle.Dashes = st.Dashes()

	ymin, ymax := topOf(ax.values, ylim)
	guides, err := ax.guides(ymin, ymax, true)
	if err != nil {
		return nil, err
	}
	p.Add(guides...)
	p.Add(bars)
	p.X.Min, p.X.Max = float64(ax.lo)-1, float64(ax.hi)+1
	p.Y.Min, p.Y.Max = ymin, ymax
	p.X.Tick.Marker = plot.ConstantTicks(ax.ticks)
	rotateTicks(&p.X)
	return c.figure(title, p), nil
}

// Sections draws the three section histograms side by side as horizontal
// bars sharing the pitch axis.
func (c Charts) Sections(title string, rows []analysis.SectionRow, st Style, m analysis.Mode) (*Figure, error) {
	ranks := make([]int, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		ranks[i], labels[i] = r.Rank, r.Label
	}

	var xlim Limits
	switch m {
	case analysis.Sum:
		xlim = Limits{0, 0.5}
	case analysis.Max:
		xlim = Limits{0, 1}
	}
	if !xlim.set() {
		all := make([]float64, 0, 3*len(rows))
		for _, r := range rows {
			all = append(all, r.Values[:]...)
		}
		xlim.Min, xlim.Max = topOf(all, Limits{})
	}

	plots := make([]*plot.Plot, len(analysis.SectionNames))
	for sec, name := range analysis.SectionNames {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = r.Values[sec]
		}
		ax := newPitchAxis(st, ranks, labels, values)

		p := plot.New()
		p.Title.Text = name
		p.X.Label.Text = st.YLabel
		if sec == 0 {
			p.Y.Label.Text = "Pitch"
		}
		bars, err := plotter.NewBarChart(ax.values, barWidth(c.Height, ax.slots()))
		if err != nil {
			return nil, fmt.Errorf("section histogram %q %s: %w", title, name, err)
		}
		bars.Horizontal = true
		bars.XMin = float64(ax.lo)
		bars.Color = st.Color
		bars.LineStyle.Dashes = st.Dashes()

		guides, err := ax.guides(xlim.Min, xlim.Max, false)
		if err != nil {
			return nil, err
		}
		p.Add(guides...)
		p.Add(bars)
		p.X.Min, p.X.Max = xlim.Min, xlim.Max
		p.Y.Min, p.Y.Max = float64(ax.lo)-1, float64(ax.hi)+1
		p.Y.Tick.Marker = plot.ConstantTicks(ax.ticks)
		plots[sec] = p
	}
	f := c.figure(title, plots...)
	return f, nil
}

// Intervals draws an interval histogram with one bar per interval name.
func (c Charts) Intervals(title string, h *analysis.Histogram, st Style, ylim Limits) (*Figure, error) {
	values := plotter.Values(h.Values())
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Interval"
	p.Y.Label.Text = st.YLabel

	bars, err := plotter.NewBarChart(values, barWidth(c.Width, len(values)))
	if err != nil {
		return nil, fmt.Errorf("interval histogram %q: %w", title, err)
	}
	bars.Color = st.Color
	bars.LineStyle.Dashes = st.Dashes()
	p.Add(bars)
	p.NominalX(h.Labels()...)
	rotateTicks(&p.X)
	p.Y.Min, p.Y.Max = topOf(values, ylim)
	return c.figure(title, p), nil
}

// Cadences draws one stacked bar chart per line type of the plan, each
// with a bar per section stacking the percentages of every pitch.
func (c Charts) Cadences(title string, cad *analysis.Cadences) (*Figure, error) {
	plots := make([]*plot.Plot, len(cad.Plan.LineTypes))
	w := barWidth(c.Width/vg.Length(max(1, len(plots))), len(analysis.SectionNames))
	for lt := range cad.Plan.LineTypes {
		p := plot.New()
		if lt < len(cad.Plan.Titles) {
			p.Title.Text = cad.Plan.Titles[lt]
		}
		var below *plotter.BarChart
		for _, r := range cad.Rows {
			v := r.Values[lt]
			bars, err := plotter.NewBarChart(plotter.Values(v[:]), w)
			if err != nil {
				return nil, fmt.Errorf("cadences %q %s: %w", title, r.Label, err)
			}
			ps := CadencePitchStyle(r.Label)
			bars.Color = ps.Color
			bars.LineStyle.Dashes = hatchDashes(ps.Hatch)
			if below != nil {
				bars.StackOn(below)
			}
			below = bars
			p.Add(bars)
			if lt == len(plots)-1 {
				p.Legend.Add(r.Label, bars)
			}
		}
		p.NominalX(analysis.SectionNames[:]...)
		p.Y.Min, p.Y.Max = 0, 100
		p.Legend.Top = true
		plots[lt] = p
	}
	return c.figure(title, plots...), nil
}

var densityLimits = map[analysis.DensityMode]float64{
	analysis.Duration: 27,
	analysis.Notes:    70,
}

// Density draws a boxplot per score and one for the pooled series, with a
// red dashed line before the pooled box. Boxes carry the statistics of the
// results table rather than the plot library's own quantiles.
func (c Charts) Density(title string, d *analysis.Density) (*Figure, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sample scores"
	p.Y.Label.Text = d.Mode.YLabel()

	n := len(d.Series)
	w := barWidth(c.Width, n)
	top := densityLimits[d.Mode]
	labels := make([]string, n)
	for i, s := range d.Series {
		labels[i] = s.Label
		if len(s.Values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(w, float64(i), plotter.Values(s.Values))
		if err != nil {
			return nil, fmt.Errorf("density %q %s: %w", title, s.Label, err)
		}
		applyStats(box, s.Values, s.Stats)
		p.Add(box)
		for _, v := range s.Values {
			top = max(top, v)
		}
	}
	if n > 1 {
		x := float64(n) - 1.5
		sep, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
		if err != nil {
			return nil, err
		}
		sep.LineStyle.Color = guideRed
		sep.LineStyle.Dashes = dashedDashes
		p.Add(sep)
	}
	p.NominalX(labels...)
	p.Y.Min, p.Y.Max = 0, top
	return c.figure(title, p), nil
}

func applyStats(box *plotter.BoxPlot, values []float64, st analysis.BoxStats) {
	box.Median = st.Median
	box.Quartile1 = st.Q1
	box.Quartile3 = st.Q3
	box.AdjLow = st.LowerWhisker
	box.AdjHigh = st.UpperWhisker
	box.Outside = box.Outside[:0]
	for i, v := range values {
		if v < st.LowerWhisker || v > st.UpperWhisker {
			box.Outside = append(box.Outside, i)
		}
	}
}
