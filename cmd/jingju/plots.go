package main

import (
	"strconv"
	"strings"

	"github.com/MTG/Jingju-Scores-Analysis/internal/analysis"
	"github.com/MTG/Jingju-Scores-Analysis/internal/batch"
	"github.com/spf13/cobra"
)

func newPlotsCmd(a *app) *cobra.Command {
	var (
		kinds     []string
		dir       string
		planPath  string
		count     string
		unit      string
		noFigures bool
		parallel  int
	)
	cmd := &cobra.Command{
		Use:   "plots",
		Short: "Compute the published figure set",
		Long: `Compute every figure of the plan for the selected kinds (ph, phlj,
ihd, ihn, cn, mdn, mdd; all by default). Each kind gets a folder under
<path>/plots holding its figures and a <kind>_results.csv table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ks, err := batch.ParseKinds(kinds)
			if err != nil {
				return err
			}
			plan := batch.DefaultPlan()
			if planPath != "" {
				if plan, err = batch.LoadPlan(planPath); err != nil {
					return err
				}
			}
			if count == "" {
				count = a.cfg.Analysis.Normalization
			}
			m, err := analysis.ParseMode(count)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = a.cfg.Output.Dir
			}

			an, err := a.pitchAnalyzer(unit, false)
			if err != nil {
				return err
			}
			r := batch.NewRunner(a.index, an, batch.Options{
				Count:    m,
				Policy:   a.policy,
				Charts:   a.charts(),
				Figures:  a.cfg.Output.Figures && !noFigures,
				Parallel: parallel,
				Metrics:  a.metrics,
			})
			sums, err := r.Run(ctx, dir, plan, ks)
			if err != nil {
				return err
			}
			lines := []string{"kind,results,figures,skipped"}
			for _, s := range sums {
				lines = append(lines, strings.Join([]string{
					string(s.Kind), s.Results, strconv.Itoa(s.Written), strings.Join(s.Skipped, ";"),
				}, ","))
			}
			return a.print(lines)
		},
	}
	cmd.Flags().StringSliceVarP(&kinds, "figures", "f", nil, "figure kinds to compute: ph, phlj, ihd, ihn, cn, mdn, mdd")
	cmd.Flags().StringVarP(&dir, "path", "p", "", "directory receiving the plots folder (default from config)")
	cmd.Flags().StringVar(&planPath, "plan", "", "YAML file replacing the figures of some kinds")
	cmd.Flags().StringVar(&count, "count", "", "sum, max or abs (default from config)")
	cmd.Flags().StringVar(&unit, "unit", "", unitHelp+"; applies to ph and phlj")
	cmd.Flags().BoolVar(&noFigures, "no-figures", false, "write the results tables only")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "kinds computed at once")
	return cmd
}
