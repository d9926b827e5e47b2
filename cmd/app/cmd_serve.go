package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"FactorEdge/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scheduler and bar consumer",
	Long: `Serve the report API. When enabled in the config the daily cycle also
runs on a schedule and on every closed bar consumed from Kafka.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()
	return app.Run()
}
