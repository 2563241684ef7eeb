package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"backtest_go/internal/app"
	"backtest_go/internal/infra"
	"backtest_go/internal/replay"
)

func setupRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	yaml := "storage:\n  path: " + filepath.Join(dir, "profiles.db") + "\n" +
		"logging:\n  level: error\n  file: " + filepath.Join(dir, "run.log") + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	bootstrap = app.NewBootstrap()
	bootstrap.Metrics = &infra.Metrics{}
	if err := bootstrap.Initialize(cfgPath); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() {
		bootstrap.Close()
		tapePath, profileName, dumpPath = "", "", ""
	})
	return dir
}

func TestRunBacktest_SampleTape(t *testing.T) {
	setupRun(t)
	tapePath = filepath.Join("..", "..", "testdata", "sample_tape.csv")

	if err := runBacktest(context.Background()); err != nil {
		t.Fatalf("runBacktest failed: %v", err)
	}
	snap := bootstrap.Metrics.Snapshot()
	if snap.TicksProcessed != 4 {
		t.Errorf("TicksProcessed = %d, want 4", snap.TicksProcessed)
	}
	if snap.OrdersFilled != 2 || snap.OrdersCanceled != 1 {
		t.Errorf("metrics = %+v, want 2 fills and 1 cancel", snap)
	}
}

func TestRunBacktest_GapDumpsState(t *testing.T) {
	dir := setupRun(t)
	tapePath = filepath.Join(dir, "gap.csv")
	dumpPath = filepath.Join(dir, "dump.json")
	tape := "1,0,tick,100,1,buy\n3,1,tick,101,1,buy\n"
	if err := os.WriteFile(tapePath, []byte(tape), 0644); err != nil {
		t.Fatal(err)
	}

	err := runBacktest(context.Background())
	var gap *replay.GapError
	if !errors.As(err, &gap) {
		t.Fatalf("err = %v, want *GapError", err)
	}
	if _, err := os.Stat(dumpPath); err != nil {
		t.Errorf("state dump not written: %v", err)
	}
}

func TestRunBacktest_UnknownProfile(t *testing.T) {
	setupRun(t)
	tapePath = filepath.Join("..", "..", "testdata", "sample_tape.csv")
	profileName = "nope"

	if err := runBacktest(context.Background()); err == nil {
		t.Error("expected error for unknown profile")
	}
}
