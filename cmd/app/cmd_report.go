package main

import (
	"time"

	"github.com/spf13/cobra"

	"FactorEdge/internal/di"
	"FactorEdge/internal/domain/models"
)

var reportWindow int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the latest and next-day predictions with factor performance",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportWindow, "window", 0, "factor performance window in days (default: engine.tracking_window)")
}

type predictionReport struct {
	Latest      models.CompositePrediction `json:"latest"`
	Next        models.CompositePrediction `json:"next"`
	Performance []models.FactorPerformance `json:"performance"`
}

func runReport(cmd *cobra.Command, _ []string) error {
	return withEngine(func(e *di.Engine) error {
		window := reportWindow
		if window <= 0 {
			window = e.Config.Engine.TrackingWindow
		}
		ctx := cmd.Context()
		latest, err := e.Reports.Latest(ctx)
		if err != nil {
			return err
		}
		next, err := e.Reports.NextDay(ctx)
		if err != nil {
			return err
		}
		perf, err := e.Reports.FactorPerformance(ctx, time.Time{}, window)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), predictionReport{Latest: latest, Next: next, Performance: perf})
	})
}
