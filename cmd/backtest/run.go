package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"backtest_go/internal/analytics"
	"backtest_go/internal/domain"
	"backtest_go/internal/event"
	"backtest_go/internal/infra"
	"backtest_go/internal/tape"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tapePath    string
	profileName string
	dumpPath    string
)

func init() {
	runCmd.Flags().StringVar(&tapePath, "tape", "", "CSV event tape to replay")
	runCmd.Flags().StringVar(&profileName, "profile", "", "stored engine profile to use instead of the config file")
	runCmd.Flags().StringVar(&dumpPath, "dump", "", "write the replay state here when the stream breaks")
	runCmd.MarkFlagRequired("tape")
}

// runResult is printed to stdout when a run completes.
type runResult struct {
	RunID    string                `json:"run_id"`
	Events   int                   `json:"events"`
	Fills    int                   `json:"fills"`
	Snapshot domain.Snapshot       `json:"snapshot"`
	Report   analytics.Report      `json:"report"`
	Metrics  infra.MetricsSnapshot `json:"metrics"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a tape through a fresh engine and report the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Graceful Shutdown Context
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runBacktest(ctx)
	},
}

func runBacktest(ctx context.Context) error {
	runID := uuid.NewString()
	logger := bootstrap.Logger.With(slog.String("run_id", runID))

	engCfg, err := bootstrap.EngineConfig(profileName)
	if err != nil {
		return err
	}

	f, err := os.Open(tapePath)
	if err != nil {
		return fmt.Errorf("open tape: %w", err)
	}
	event.Warmup()
	events, err := tape.Read(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", tapePath, err)
	}
	defer func() {
		for _, ev := range events {
			event.Release(ev)
		}
	}()

	r, err := bootstrap.NewReplayer(engCfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Replay started",
		slog.String("tape", tapePath),
		slog.String("profile", profileName),
		slog.Int("events", len(events)),
	)

	if err := r.Run(ctx, events); err != nil {
		if dumpPath != "" {
			if dumpErr := r.DumpState(dumpPath); dumpErr != nil {
				logger.Error("Failed to dump state", slog.Any("error", dumpErr))
			}
		}
		return fmt.Errorf("replay halted at seq %d: %w", r.NextSeq(), err)
	}

	res := runResult{
		RunID:    runID,
		Events:   len(events),
		Fills:    len(r.Fills()),
		Snapshot: r.Engine().Snapshot(),
		Report:   analytics.Compute(r.History(), r.Fills()),
		Metrics:  bootstrap.Metrics.Snapshot(),
	}
	logger.Info("Replay finished",
		slog.Float64("equity", res.Snapshot.Equity),
		slog.Float64("realized_pnl", res.Snapshot.RealizedPnL),
		slog.Float64("total_return", res.Report.TotalReturn),
		slog.Uint64("rejections", res.Metrics.Rejections),
		slog.Int64("avg_tick_latency_ns", res.Metrics.AvgLatencyNs),
	)

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
