package main

import (
	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/report"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
	"github.com/spf13/cobra"
)

type countFlags struct {
	count   string
	noGrace bool
	png     string
}

func (f *countFlags) bind(cmd *cobra.Command, graceHelp string) {
	cmd.Flags().StringVar(&f.count, "count", "", "sum, max or abs (default from config)")
	cmd.Flags().BoolVar(&f.noGrace, "no-grace", false, graceHelp)
	cmd.Flags().StringVar(&f.png, "png", "", "also draw the figure into this file")
}

func (a *app) mode(s string) (analysis.Mode, error) {
	if s == "" {
		s = a.cfg.Analysis.Normalization
	}
	return analysis.ParseMode(s)
}

// pitchAnalyzer applies the --unit and --no-grace flags of the pitch
// histogram commands.
func (a *app) pitchAnalyzer(unit string, noGrace bool) (*analysis.Analyzer, error) {
	opts := a.analyzer.Options()
	if unit != "" {
		u, err := analysis.ParseUnit(unit)
		if err != nil {
			return nil, err
		}
		opts.CountBy = u
	}
	if noGrace {
		opts.CountGraceNotes = false
	}
	return a.analyzer.WithOptions(opts), nil
}

const unitHelp = "duration or notes: add quarter lengths or count notes (default from config)"

func newPitchCmd(a *app) *cobra.Command {
	var (
		cf   criteriaFlags
		f    countFlags
		unit string
	)
	cmd := &cobra.Command{
		Use:   "ph",
		Short: "Pitch histogram of the matched lines",
		Long: `Accumulate the quarter-length duration of every pitch sung in the
matched lines, or count its notes with --unit notes. Grace notes count with
the shortest note duration of their score, capped at analysis.graceNoteCap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m, err := a.mode(f.count)
			if err != nil {
				return err
			}
			b, err := a.bundle(ctx, &cf, criteria.Lines)
			if err != nil {
				return err
			}
			an, err := a.pitchAnalyzer(unit, f.noGrace)
			if err != nil {
				return err
			}
			h, err := an.PitchHistogram(ctx, b)
			if err != nil {
				return err
			}
			if h, err = h.Normalize(m); err != nil {
				return err
			}
			logger.FromContext(ctx).Info("pitch histogram", "pitches", len(h.Bins), "notes", h.Elements)
			if err := a.print(report.HistogramTable(figureName(f.png, "ph"), h)); err != nil {
				return err
			}
			if f.png == "" {
				return nil
			}
			fig, err := a.charts().Pitch(figureName(f.png, "ph"), h, report.StyleFor(b.Found, m), report.SumLimits(m, 0.35))
			if err != nil {
				return err
			}
			return a.save(ctx, fig, f.png, "ph")
		},
	}
	cf.bind(cmd, true)
	f.bind(cmd, "leave grace notes out of the histogram")
	cmd.Flags().StringVar(&unit, "unit", "", unitHelp)
	return cmd
}

func newSectionsCmd(a *app) *cobra.Command {
	var (
		cf   criteriaFlags
		f    countFlags
		unit string
	)
	cmd := &cobra.Command{
		Use:   "phlj",
		Short: "Pitch histograms of the three sections of the matched lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m, err := a.mode(f.count)
			if err != nil {
				return err
			}
			b, err := a.bundle(ctx, &cf, criteria.Sections)
			if err != nil {
				return err
			}
			an, err := a.pitchAnalyzer(unit, f.noGrace)
			if err != nil {
				return err
			}
			sh, err := an.SectionPitchHistograms(ctx, b)
			if err != nil {
				return err
			}
			rows, err := sh.Rows(m)
			if err != nil {
				return err
			}
			name := figureName(f.png, "phlj")
			if err := a.print(report.SectionTable(name, rows)); err != nil {
				return err
			}
			if f.png == "" {
				return nil
			}
			fig, err := a.charts().Sections(name, rows, report.StyleFor(b.Found, m), m)
			if err != nil {
				return err
			}
			return a.save(ctx, fig, f.png, "phlj")
		},
	}
	cf.bind(cmd, true)
	f.bind(cmd, "leave grace notes out of the histograms")
	cmd.Flags().StringVar(&unit, "unit", "", unitHelp)
	return cmd
}

func newIntervalCmd(a *app) *cobra.Command {
	var (
		cf       criteriaFlags
		f        countFlags
		directed bool
		silence  float64
	)
	cmd := &cobra.Command{
		Use:   "ih",
		Short: "Interval histogram of the matched lines",
		Long: `Count the melodic intervals between consecutive notes of the matched
lines. A rest longer than --silence quarter lengths breaks the melody; the
intervals across it are not counted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m, err := a.mode(f.count)
			if err != nil {
				return err
			}
			b, err := a.bundle(ctx, &cf, criteria.Lines)
			if err != nil {
				return err
			}
			opts := a.analyzer.Options()
			if cmd.Flags().Changed("silence") {
				opts.SilenceThreshold = silence
			}
			if f.noGrace {
				opts.IgnoreGraceNotes = true
			}
			h, err := a.analyzer.WithOptions(opts).IntervalHistogram(ctx, b, directed)
			if err != nil {
				return err
			}
			if h, err = h.Normalize(m); err != nil {
				return err
			}
			kind, top := "ihn", 0.5
			if directed {
				kind, top = "ihd", 0.27
			}
			name := figureName(f.png, kind)
			if err := a.print(report.HistogramTable(name, h)); err != nil {
				return err
			}
			if f.png == "" {
				return nil
			}
			fig, err := a.charts().Intervals(name, h, report.StyleFor(b.Found, m), report.SumLimits(m, top))
			if err != nil {
				return err
			}
			return a.save(ctx, fig, f.png, kind)
		},
	}
	cf.bind(cmd, true)
	f.bind(cmd, "skip grace notes when pairing notes")
	cmd.Flags().BoolVar(&directed, "directed", false, "keep the direction of each interval")
	cmd.Flags().Float64Var(&silence, "silence", 0.25, "longest rest, in quarter lengths, that does not break the melody")
	return cmd
}

func newCadenceCmd(a *app) *cobra.Command {
	var (
		cf criteriaFlags
		f  countFlags
	)
	cmd := &cobra.Command{
		Use:   "cn",
		Short: "Cadential notes of each line section, per line type",
		Long: `Count the last note of each section of the opening and closing lines
of one mode, as percentages of the section's cadences. Line types follow
from the mode: s and x for xipi; s1, s2 and x for erhuang.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)
			c, plan, issues, err := criteria.ValidateCadence(cf.criteria(), a.policy)
			criteria.LogIssues(log, issues)
			if err != nil {
				return err
			}
			an := a.analyzer
			if f.noGrace {
				opts := an.Options()
				opts.IncludeGraceNotes = false
				an = an.WithOptions(opts)
			}
			cad, err := an.CadentialNotes(ctx, a.index, c, plan)
			if err != nil {
				return err
			}
			name := figureName(f.png, "cn")
			if err := a.print(report.CadenceTable(name, cad)); err != nil {
				return err
			}
			if f.png == "" {
				return nil
			}
			fig, err := a.charts().Cadences(name, cad)
			if err != nil {
				return err
			}
			return a.save(ctx, fig, f.png, "cn")
		},
	}
	cf.bind(cmd, false)
	cmd.Flags().BoolVar(&f.noGrace, "no-grace", false, "never take a grace note as the cadential note")
	cmd.Flags().StringVar(&f.png, "png", "", "also draw the figure into this file")
	return cmd
}

func newDensityCmd(a *app) *cobra.Command {
	var (
		cf   criteriaFlags
		f    countFlags
		mode string
	)
	cmd := &cobra.Command{
		Use:   "md",
		Short: "Melodic density per syllable, per score and pooled",
		Long: `Split the matched lines into syllables by their lyrics and measure
each syllable by the number of notes or the duration sung on it. Padding
syllables between the configured bracket markers join the syllable before
them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if mode == "" {
				mode = a.cfg.Analysis.Density
			}
			dm, err := analysis.ParseDensityMode(mode)
			if err != nil {
				return err
			}
			b, err := a.bundle(ctx, &cf, criteria.Lines)
			if err != nil {
				return err
			}
			an := a.analyzer
			if f.noGrace {
				opts := an.Options()
				opts.IncludeGraceNotes = false
				an = an.WithOptions(opts)
			}
			d, err := an.MelodicDensity(ctx, b, dm)
			if err != nil {
				return err
			}
			kind := "md" + string(dm[0])
			name := figureName(f.png, kind)
			if err := a.print(report.DensityTable(name, d)); err != nil {
				return err
			}
			if f.png == "" {
				return nil
			}
			fig, err := a.charts().Density(name, d)
			if err != nil {
				return err
			}
			return a.save(ctx, fig, f.png, kind)
		},
	}
	cf.bind(cmd, true)
	cmd.Flags().StringVar(&mode, "mode", "", "notes or duration (default from config)")
	cmd.Flags().BoolVar(&f.noGrace, "no-grace", false, "leave grace notes out of the syllables")
	cmd.Flags().StringVar(&f.png, "png", "", "also draw the figure into this file")
	return cmd
}

func newAmbitusCmd(a *app) *cobra.Command {
	var cf criteriaFlags
	cmd := &cobra.Command{
		Use:   "ambitus",
		Short: "Lowest and highest pitch of the matched lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.bundle(ctx, &cf, criteria.Lines)
			if err != nil {
				return err
			}
			amb, err := a.analyzer.Ambitus(ctx, b)
			if err != nil {
				return err
			}
			return a.print([]string{amb.String()})
		},
	}
	cf.bind(cmd, true)
	return cmd
}
