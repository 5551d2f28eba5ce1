package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/catalog"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/report"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/config"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/metrics"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/tracing"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	config          string
	catalog         string
	logLevel        string
	logFormat       string
	metricsTextfile string
	lenient         bool
	workers         int
}

// app holds what every subcommand needs once the catalog is loaded.
type app struct {
	stdout   io.Writer
	flags    globalFlags
	cfg      *config.Config
	metrics  *metrics.Metrics
	cache    *score.Cache
	index    *criteria.Index
	analyzer *analysis.Analyzer
	policy   criteria.Policy
	span     *tracing.Span
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "jingju",
		Short: "Statistics of the singing melody in jingju music scores",
		Long: `jingju filters the lines of a jingju score collection by role type
(hangdang), mode (shengqiang), tempo class (banshi) and line type (judou),
and computes melodic statistics over the selected material.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.New(apperrors.ErrInvalidInput, err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "path to a YAML config file")
	pf.StringVar(&a.flags.catalog, "catalog", "", "path to lines_data.csv (overrides config)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "text or json")
	pf.StringVar(&a.flags.metricsTextfile, "metrics-textfile", "", "write run metrics to this Prometheus textfile")
	pf.BoolVar(&a.flags.lenient, "lenient", false, "correct or skip invalid criteria values instead of failing")
	pf.IntVar(&a.flags.workers, "workers", -1, "concurrent score parsers, 0 for GOMAXPROCS (overrides config)")

	root.AddCommand(
		newPitchCmd(a),
		newSectionsCmd(a),
		newIntervalCmd(a),
		newCadenceCmd(a),
		newDensityCmd(a),
		newAmbitusCmd(a),
		newFindCmd(a),
		newPlotsCmd(a),
	)
	return root
}

// setup loads configuration, logging and the catalog before any
// subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.flags.config)
	if err != nil {
		return err
	}
	if a.flags.catalog != "" {
		cfg.Corpus.Catalog = a.flags.catalog
	}
	if a.flags.logLevel != "" {
		cfg.Logging.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Logging.Format = a.flags.logFormat
	}
	if a.flags.metricsTextfile != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Textfile = a.flags.metricsTextfile
	}
	if a.flags.lenient {
		cfg.Analysis.Validation = "lenient"
	}
	if a.flags.workers >= 0 {
		cfg.Loader.Workers = a.flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	runID := uuid.NewString()
	ctx := logger.WithRunID(cmd.Context(), runID)
	ctx, a.span = tracing.Start(ctx, cmd.CommandPath(), runID)
	cmd.SetContext(ctx)
	log := logger.FromContext(ctx)
	log.Info("starting jingju", "command", cmd.Name(), "catalog", cfg.Corpus.Catalog)

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
	}
	a.policy, err = criteria.ParsePolicy(cfg.Analysis.Validation)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Corpus.Catalog)
	if err != nil {
		return err
	}
	a.index = criteria.NewIndex(cat)
	a.cache = score.NewCache(nil, a.metrics)
	a.analyzer = analysis.New(a.cache, analysis.OptionsFrom(cfg.Analysis), a.metrics)
	log.Debug("catalog indexed", "scores", len(cat.Scores), "lines", a.index.Len())
	return nil
}

// finish logs the run's timings and writes its metrics textfile, if
// enabled.
func (a *app) finish() error {
	if a.cfg == nil {
		return nil
	}
	if a.span != nil {
		a.span.End()
		a.span.Log(slog.Default())
	}
	if a.cache != nil {
		hits, misses := a.cache.Stats()
		slog.Debug("score cache", "scores", a.cache.Len(), "hits", hits, "misses", misses)
	}
	if a.metrics == nil {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// criteriaFlags binds the four axis flags of a subcommand.
type criteriaFlags struct {
	roleTypes    []string
	modes        []string
	tempoClasses []string
	lineTypes    []string
}

func (f *criteriaFlags) bind(cmd *cobra.Command, withLineTypes bool) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.roleTypes, "hd", nil, "role types (hangdang): laosheng, dan")
	fl.StringSliceVar(&f.modes, "sq", nil, "modes (shengqiang): erhuang, xipi")
	fl.StringSliceVar(&f.tempoClasses, "bs", nil, "tempo classes (banshi), e.g. manban, yuanban")
	if withLineTypes {
		fl.StringSliceVar(&f.lineTypes, "ju", nil, "line types (judou): s, s1, s2, x")
	}
}

func (f *criteriaFlags) criteria() criteria.Criteria {
	return criteria.Criteria{
		RoleTypes:    f.roleTypes,
		Modes:        f.modes,
		TempoClasses: f.tempoClasses,
		LineTypes:    f.lineTypes,
	}.WithDefaults()
}

// bundle validates the criteria, filters the catalog and loads the scores
// of the matched lines concurrently.
func (a *app) bundle(ctx context.Context, f *criteriaFlags, g criteria.Granularity) (*criteria.Bundle, error) {
	log := logger.FromContext(ctx)
	c, issues, err := criteria.Validate(f.criteria(), a.policy)
	criteria.LogIssues(log, issues)
	if err != nil {
		return nil, err
	}
	b, err := a.index.Filter(ctx, c, g)
	if apperrors.Is(err, apperrors.ErrNoMatch) {
		a.metrics.Filtered(0)
	}
	if err != nil {
		return nil, err
	}
	a.metrics.Filtered(b.FoundLines)
	criteria.LogIssues(log, b.NotFound())
	if err := a.preload(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (a *app) preload(ctx context.Context, b *criteria.Bundle) error {
	paths := make([]string, len(b.Scores))
	for i, s := range b.Scores {
		paths[i] = s.Path
	}
	return a.cache.Preload(ctx, paths, a.cfg.Loader.Workers)
}

func (a *app) charts() report.Charts {
	return report.NewCharts(a.cfg.Output.Width, a.cfg.Output.Height)
}

func (a *app) print(lines []string) error {
	_, err := fmt.Fprintln(a.stdout, strings.Join(lines, "\n"))
	return err
}

// figureName labels a results block with the image it belongs to, or the
// statistic when no image is written.
func figureName(png, statistic string) string {
	if png != "" {
		return filepath.Base(png)
	}
	return statistic
}

func (a *app) save(ctx context.Context, fig *report.Figure, path, kind string) error {
	if err := fig.Save(path); err != nil {
		return err
	}
	a.metrics.FigureWritten(kind)
	logger.FromContext(ctx).Info("figure written", "path", path)
	return nil
}
