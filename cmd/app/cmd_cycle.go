package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"FactorEdge/internal/di"
)

var (
	cycleAsOf string
	cycleFrom string
	cycleTo   string
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run the daily cycle once, or rerun it over a date range",
	Long: `Track factor performance, recalibrate weights and publish the next-day
prediction for the latest stored day.

Examples:
  factoredge cycle
  factoredge cycle --as-of 2024-03-15
  factoredge cycle --from 2024-01-01 --to 2024-03-31`,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
	cycleCmd.Flags().StringVar(&cycleAsOf, "as-of", "", "run the cycle as of this day (default: latest bar)")
	cycleCmd.Flags().StringVar(&cycleFrom, "from", "", "first day of a rerun")
	cycleCmd.Flags().StringVar(&cycleTo, "to", "", "last day of a rerun")
}

func runCycle(cmd *cobra.Command, _ []string) error {
	asOf, err := parseDateFlag("as-of", cycleAsOf)
	if err != nil {
		return err
	}
	from, err := parseDateFlag("from", cycleFrom)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", cycleTo)
	if err != nil {
		return err
	}
	if from.IsZero() != to.IsZero() {
		return fmt.Errorf("--from and --to must be given together")
	}

	return withEngine(func(e *di.Engine) error {
		ctx := cmd.Context()
		if !from.IsZero() {
			res, err := e.Cycle.Rerun(ctx, from, to)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		}
		res, err := e.Cycle.Run(ctx, asOf)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	})
}
