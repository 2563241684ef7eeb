package main

import (
	"log/slog"
	"os"

	"backtest_go/internal/app"

	"github.com/spf13/cobra"
)

var (
	configPath string
	bootstrap  = app.NewBootstrap()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "backtest",
	Short:        "Deterministic tick-by-tick backtest execution engine",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap.Initialize(configPath)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to the YAML config; empty runs on defaults")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("❌ Command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
