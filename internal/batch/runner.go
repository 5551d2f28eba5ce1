package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/report"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/metrics"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// RootFolder is created under the output directory to hold every kind.
const RootFolder = "plots"

// Options configures a Runner.
type Options struct {
	Count   analysis.Mode
	Policy  criteria.Policy
	Charts  report.Charts
	Figures bool
	// Parallel bounds how many kinds run at once. Zero runs them one by
	// one.
	Parallel int
	Metrics  *metrics.Metrics
}

// Runner computes every figure of a plan.
type Runner struct {
	index    *criteria.Index
	analyzer *analysis.Analyzer
	opts     Options
}

func NewRunner(ix *criteria.Index, a *analysis.Analyzer, opts Options) *Runner {
	if opts.Count == "" {
		opts.Count = analysis.Sum
	}
	return &Runner{index: ix, analyzer: a, opts: opts}
}

// Summary reports what one kind produced.
type Summary struct {
	Kind    Kind
	Folder  string
	Results string
	Written int
	// Skipped lists figures whose criteria matched no line.
	Skipped []string
	Elapsed time.Duration
}

// Run creates <dir>/plots and computes kinds in order. A figure whose
// criteria match nothing is skipped with a warning; any other error stops
// the run.
func (r *Runner) Run(ctx context.Context, dir string, plan Plan, kinds []Kind) ([]Summary, error) {
	root := filepath.Join(dir, RootFolder)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", root, err)
	}
	summaries := make([]Summary, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.opts.Parallel))
	for i, k := range kinds {
		g.Go(func() error {
			s, err := r.runKind(gctx, root, k, plan[k])
			if err != nil {
				return fmt.Errorf("%s figures: %w", k, err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *Runner) runKind(ctx context.Context, root string, k Kind, figs []Figure) (Summary, error) {
	log := logger.FromContext(ctx).With("component", "batch", "kind", string(k))
	ctx, span := tracing.Child(ctx, string(k))
	defer span.End()
	start := time.Now()
	folder := filepath.Join(root, k.Folder())
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return Summary{}, fmt.Errorf("creating %s: %w", folder, err)
	}
	log.Info("computing figures", "folder", folder, "figures", len(figs))

	sum := Summary{Kind: k, Folder: folder, Results: filepath.Join(folder, k.ResultsFile())}
	var results report.Results
	for _, f := range figs {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		log.Info("computing figure", "file", f.File)
		fctx, fspan := tracing.Child(ctx, f.File)
		block, fig, err := r.figure(fctx, log, k, f)
		if errors.Is(err, apperrors.ErrNoMatch) {
			fspan.Set("skipped", true)
		}
		fspan.End()
		if errors.Is(err, apperrors.ErrNoMatch) {
			log.Warn("figure skipped", "file", f.File, "error", err)
			sum.Skipped = append(sum.Skipped, f.File)
			continue
		}
		if err != nil {
			return Summary{}, fmt.Errorf("figure %s: %w", f.File, err)
		}
		results.Add(block)
		if r.opts.Figures && fig != nil {
			if err := fig.Save(filepath.Join(folder, f.File)); err != nil {
				return Summary{}, err
			}
			r.opts.Metrics.FigureWritten(string(k))
			sum.Written++
		}
	}
	if err := results.WriteFile(sum.Results); err != nil {
		return Summary{}, fmt.Errorf("writing %s: %w", sum.Results, err)
	}
	sum.Elapsed = time.Since(start)
	span.Set("written", sum.Written)
	span.Set("skipped", len(sum.Skipped))
	log.Info("figures done", "results", sum.Results, "written", sum.Written, "skipped", len(sum.Skipped), "elapsed", sum.Elapsed)
	return sum, nil
}

// figure computes the results block of one figure and, when figures are
// enabled, its chart.
func (r *Runner) figure(ctx context.Context, log *slog.Logger, k Kind, f Figure) ([]string, *report.Figure, error) {
	if k == CadentialNotes {
		return r.cadences(ctx, log, f)
	}

	c, issues, err := criteria.Validate(f.Criteria(), r.opts.Policy)
	criteria.LogIssues(log, issues)
	if err != nil {
		return nil, nil, err
	}
	g := criteria.Lines
	if k == SectionPitchHistograms {
		g = criteria.Sections
	}
	b, err := r.index.Filter(ctx, c, g)
	if errors.Is(err, apperrors.ErrNoMatch) {
		r.opts.Metrics.Filtered(0)
	}
	if err != nil {
		return nil, nil, err
	}
	r.opts.Metrics.Filtered(b.FoundLines)
	criteria.LogIssues(log, b.NotFound())
	st := report.StyleFor(b.Found, r.opts.Count)
	charts := r.opts.Charts

	switch k {
	case PitchHistograms:
		h, err := r.analyzer.PitchHistogram(ctx, b)
		if err == nil {
			h, err = h.Normalize(r.opts.Count)
		}
		if err != nil {
			return nil, nil, err
		}
		fig, err := r.chart(func() (*report.Figure, error) {
			return charts.Pitch(f.File, h, st, report.SumLimits(r.opts.Count, 0.35))
		})
		return report.HistogramTable(f.File, h), fig, err

	case SectionPitchHistograms:
		sh, err := r.analyzer.SectionPitchHistograms(ctx, b)
		if err != nil {
			return nil, nil, err
		}
		rows, err := sh.Rows(r.opts.Count)
		if err != nil {
			return nil, nil, err
		}
		fig, err := r.chart(func() (*report.Figure, error) {
			return charts.Sections(f.File, rows, st, r.opts.Count)
		})
		return report.SectionTable(f.File, rows), fig, err

	case DirectedIntervals, UndirectedIntervals:
		directed := k == DirectedIntervals
		h, err := r.analyzer.IntervalHistogram(ctx, b, directed)
		if err == nil {
			h, err = h.Normalize(r.opts.Count)
		}
		if err != nil {
			return nil, nil, err
		}
		top := 0.5
		if directed {
			top = 0.27
		}
		fig, err := r.chart(func() (*report.Figure, error) {
			return charts.Intervals(f.File, h, st, report.SumLimits(r.opts.Count, top))
		})
		return report.HistogramTable(f.File, h), fig, err

	case MelodicDensityAsNotes, MelodicDensityAsDurations:
		mode := analysis.Duration
		if k == MelodicDensityAsNotes {
			mode = analysis.Notes
		}
		d, err := r.analyzer.MelodicDensity(ctx, b, mode)
		if err != nil {
			return nil, nil, err
		}
		fig, err := r.chart(func() (*report.Figure, error) { return charts.Density(f.File, d) })
		return report.DensityTable(f.File, d), fig, err
	}
	return nil, nil, apperrors.Newf(apperrors.ErrInvalidInput, "figure kind %q", k)
}

func (r *Runner) cadences(ctx context.Context, log *slog.Logger, f Figure) ([]string, *report.Figure, error) {
	c, plan, issues, err := criteria.ValidateCadence(f.Criteria(), r.opts.Policy)
	criteria.LogIssues(log, issues)
	if err != nil {
		return nil, nil, err
	}
	cad, err := r.analyzer.CadentialNotes(ctx, r.index, c, plan)
	if err != nil {
		return nil, nil, err
	}
	fig, err := r.chart(func() (*report.Figure, error) { return r.opts.Charts.Cadences(f.File, cad) })
	return report.CadenceTable(f.File, cad), fig, err
}

func (r *Runner) chart(build func() (*report.Figure, error)) (*report.Figure, error) {
	if !r.opts.Figures {
		return nil, nil
	}
	return build()
}
