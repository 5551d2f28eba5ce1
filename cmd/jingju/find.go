package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/criteria"
	"github.com/MTG/Jingju-Scores-Analysis/internal/score"
	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
	"github.com/MTG/Jingju-Scores-Analysis/pkg/logger"
	"github.com/spf13/cobra"
)

func newFindCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find scores whose matched lines contain given pitches or intervals",
	}
	cmd.AddCommand(newFindThresholdCmd(a), newFindPitchCmd(a), newFindIntervalCmd(a))
	return cmd
}

func newFindThresholdCmd(a *app) *cobra.Command {
	var (
		cf        criteriaFlags
		pitch     string
		direction string
	)
	cmd := &cobra.Command{
		Use:   "pitch-threshold",
		Short: "Scores going below (low) or above (high) a pitch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := score.ParsePitch(pitch)
			if err != nil {
				return apperrors.Newf(apperrors.ErrInvalidInput, "pitch %q: %v", pitch, err)
			}
			d, err := analysis.ParseDirection(direction)
			if err != nil {
				return err
			}
			return a.find(cmd.Context(), &cf, func(ctx context.Context, b *criteria.Bundle) ([]analysis.Hit, error) {
				return a.analyzer.FindByPitchThreshold(ctx, b, p, d)
			})
		},
	}
	cf.bind(cmd, true)
	cmd.Flags().StringVar(&pitch, "pitch", "", "threshold pitch, e.g. E4")
	cmd.Flags().StringVar(&direction, "direction", string(analysis.Below), "low or high")
	_ = cmd.MarkFlagRequired("pitch")
	return cmd
}

func newFindPitchCmd(a *app) *cobra.Command {
	var (
		cf      criteriaFlags
		pitches []string
	)
	cmd := &cobra.Command{
		Use:   "pitch",
		Short: "Scores containing any of the given pitches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ps := make([]score.Pitch, 0, len(pitches))
			for _, s := range pitches {
				p, err := score.ParsePitch(strings.TrimSpace(s))
				if err != nil {
					return apperrors.Newf(apperrors.ErrInvalidInput, "pitch %q: %v", s, err)
				}
				ps = append(ps, p)
			}
			return a.find(cmd.Context(), &cf, func(ctx context.Context, b *criteria.Bundle) ([]analysis.Hit, error) {
				return a.analyzer.FindByPitch(ctx, b, ps)
			})
		},
	}
	cf.bind(cmd, true)
	cmd.Flags().StringSliceVar(&pitches, "pitches", nil, "pitches to look for, e.g. C#5,D5")
	_ = cmd.MarkFlagRequired("pitches")
	return cmd
}

func newFindIntervalCmd(a *app) *cobra.Command {
	var (
		cf        criteriaFlags
		intervals []string
		directed  bool
	)
	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Scores containing any of the given intervals",
		Long: `Find scores whose matched lines contain any of the given intervals.
With --directed, descending intervals carry a minus sign, e.g. m-3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.find(cmd.Context(), &cf, func(ctx context.Context, b *criteria.Bundle) ([]analysis.Hit, error) {
				return a.analyzer.FindByInterval(ctx, b, intervals, directed)
			})
		},
	}
	cf.bind(cmd, true)
	cmd.Flags().StringSliceVar(&intervals, "intervals", nil, "interval names, e.g. P4,m-3")
	cmd.Flags().BoolVar(&directed, "directed", false, "match descending and ascending intervals separately")
	_ = cmd.MarkFlagRequired("intervals")
	return cmd
}

type searchFunc func(ctx context.Context, b *criteria.Bundle) ([]analysis.Hit, error)

// find prints one "score,path,counts" row per hit, counts as
// "label:n" joined by ";".
func (a *app) find(ctx context.Context, cf *criteriaFlags, search searchFunc) error {
	b, err := a.bundle(ctx, cf, criteria.Lines)
	if err != nil {
		return err
	}
	hits, err := search(ctx, b)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("scores found", "hits", len(hits), "searched", len(b.Scores))
	lines := []string{"score,path,counts"}
	for _, h := range hits {
		counts := make([]string, len(h.Counts))
		for i, c := range h.Counts {
			counts[i] = c.Label + ":" + strconv.Itoa(c.N)
		}
		lines = append(lines, h.Name+","+h.Path+","+strings.Join(counts, ";"))
	}
	return a.print(lines)
}
