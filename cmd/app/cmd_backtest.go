package main

import (
	"github.com/spf13/cobra"

	"FactorEdge/internal/di"
	"FactorEdge/internal/domain/models"
)

var (
	backtestAsOf string
	backtestDays int
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the composite over stored history",
	Long: `Score every stored day with the weights in force before it and report
accuracy per probability bucket and per ISO week.`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&backtestAsOf, "as-of", "", "replay through this day (default: all history)")
	backtestCmd.Flags().IntVar(&backtestDays, "days", 0, "trailing days for the weekly report (default: engine.report_days)")
}

type backtestReport struct {
	Buckets []models.BucketAccuracy `json:"buckets"`
	Weekly  []models.WeeklyAccuracy `json:"weekly"`
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	asOf, err := parseDateFlag("as-of", backtestAsOf)
	if err != nil {
		return err
	}
	return withEngine(func(e *di.Engine) error {
		days := backtestDays
		if days <= 0 {
			days = e.Config.Engine.ReportDays
		}
		ctx := cmd.Context()
		buckets, err := e.Backtest.Buckets(ctx, asOf)
		if err != nil {
			return err
		}
		weekly, err := e.Backtest.Weekly(ctx, asOf, days)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), backtestReport{Buckets: buckets, Weekly: weekly})
	})
}
