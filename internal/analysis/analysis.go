// Package analysis computes the melodic statistics over the lines selected
// by a criteria filter: pitch and interval histograms, cadential notes,
// melodic density, ambitus and score search.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/config"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/metrics"
)

// Source returns parsed scores by path. *score.Cache implements it.
type Source interface {
	Load(ctx context.Context, path string) (*score.Score, error)
}

// Markers are the lyric characters that open and close a padding
// syllable.
type Markers struct {
	Open  string
	Close string
}

// Options tune how notes are counted. The zero value is not useful; start
// from DefaultOptions or OptionsFrom.
type Options struct {
	// SilenceThreshold is the longest rest, in quarter lengths, skipped
	// when looking for the second note of an interval.
	SilenceThreshold float64
	// GraceNoteCap bounds the duration grace notes are counted with.
	GraceNoteCap float64
	// CountGraceNotes adds grace notes to pitch histograms.
	CountGraceNotes bool
	// CountBy selects what a pitch histogram adds per note.
	CountBy Unit
	// IgnoreGraceNotes leaves grace notes out of intervals.
	IgnoreGraceNotes bool
	// IncludeGraceNotes lets grace notes be cadential notes and adds them
	// to melodic density.
	IncludeGraceNotes bool
	Markers           Markers
}

func DefaultOptions() Options {
	return OptionsFrom(config.Default().Analysis)
}

func OptionsFrom(cfg config.AnalysisConfig) Options {
	return Options{
		SilenceThreshold:  cfg.SilenceThreshold,
		GraceNoteCap:      cfg.GraceNoteCap,
		CountGraceNotes:   cfg.CountGraceNotes,
		CountBy:           Unit(cfg.CountBy),
		IgnoreGraceNotes:  cfg.IgnoreGraceNotes,
		IncludeGraceNotes: cfg.IncludeGraceNotes,
		Markers:           Markers{Open: cfg.Markers.Open, Close: cfg.Markers.Close},
	}
}

// Analyzer runs statistics over filtered bundles.
type Analyzer struct {
	src     Source
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns an analyzer reading scores from src. m may be nil.
func New(src Source, opts Options, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		src:     src,
		opts:    opts,
		metrics: m,
		logger:  logger.WithComponent("analysis"),
	}
}

func (a *Analyzer) Options() Options { return a.opts }

// WithOptions returns an analyzer sharing the source and metrics of a.
func (a *Analyzer) WithOptions(opts Options) *Analyzer {
	out := *a
	out.opts = opts
	return &out
}

type partFunc func(sm criteria.ScoreMaterial, pm criteria.PartMaterial, p *score.Part) error

// walk loads every score of b and calls fn once per part with matched
// material. It stops at score boundaries when ctx is done.
func (a *Analyzer) walk(ctx context.Context, b *criteria.Bundle, fn partFunc) error {
	log := logger.FromContext(ctx)
	for _, sm := range b.Scores {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug("parsing score", "score", filepath.Base(sm.Path))
		s, err := a.src.Load(ctx, sm.Path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", sm.Name, err)
		}
		for _, pm := range sm.Parts {
			if pm.Len() == 0 {
				continue
			}
			p, err := s.VoicePart(pm.Index)
			if err != nil {
				return err
			}
			if err := fn(sm, pm, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func requireGranularity(b *criteria.Bundle, g criteria.Granularity) error {
	if b.Granularity != g {
		return apperrors.Newf(apperrors.ErrInvalidInput, "statistic needs %s material, got %s", g, b.Granularity)
	}
	return nil
}

func (a *Analyzer) observe(statistic string, start time.Time, elements int) {
	a.metrics.ObserveStatistic(statistic, time.Since(start), elements)
	a.logger.Debug("statistic computed", "statistic", statistic, "elements", elements, "elapsed", time.Since(start))
}
