// Command optimize grid-searches simulation parameters for the best
// win rate and prints ranked result tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"beatbox/logging"
	"beatbox/optimize"
	"beatbox/store"
)

func main() {
	jokerMin := flag.Int("joker-min", 0, "Minimum jokers")
	jokerMax := flag.Int("joker-max", 2, "Maximum jokers")
	budgetMin := flag.Int("budget-min", 0, "Minimum inclusive budget")
	budgetMax := flag.Int("budget-max", 20, "Maximum inclusive budget")
	thresholdMin := flag.Float64("threshold-min", 0, "Minimum adoption threshold")
	thresholdMax := flag.Float64("threshold-max", 20, "Maximum adoption threshold")
	thresholdStep := flag.Float64("threshold-step", 5, "Threshold step")
	trials := flag.Int("trials", 1000, "Games per grid cell")
	workers := flag.Int("workers", 0, "Worker goroutines per cell (0 = NumCPU)")
	seed := flag.Int64("seed", 0, "Base RNG seed (0 = from clock)")
	top := flag.Int("top", 5, "Rows per ranking table")
	outDir := flag.String("out-dir", "", "If set, archive every cell's games as parquet here")
	flag.Parse()

	logger := slog.New(logging.NewPrettyJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := optimize.GridConfig{
		Ranges: optimize.Ranges{
			JokerMin:      *jokerMin,
			JokerMax:      *jokerMax,
			BudgetMin:     *budgetMin,
			BudgetMax:     *budgetMax,
			ThresholdMin:  *thresholdMin,
			ThresholdMax:  *thresholdMax,
			ThresholdStep: *thresholdStep,
		},
		TrialsPerCell: *trials,
		Workers:       *workers,
		Seed:          *seed,
		OnCell: func(done, total int, key optimize.Key, winRate float64) {
			slog.Info("cell finished",
				"done", done,
				"total", total,
				"jokers", key.Jokers,
				"budget", key.Budget,
				"threshold", key.Threshold,
				"win_rate", winRate,
			)
		},
	}

	cells := cfg.Cells()
	slog.Info("starting grid search", "cells", len(cells), "trials_per_cell", *trials)

	res, err := optimize.RunGrid(ctx, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("cancelled before completion")
			return
		}
		slog.Error("grid search failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("\nBest configuration: %s (%.2f%% win rate)\n\n", res.Best, res.BestWinRate)

	fmt.Printf("Top %d overall:\n", *top)
	for i, r := range res.TopOverall(*top) {
		fmt.Printf("  %d. %s: %.2f%%\n", i+1, r.Key, r.WinRate)
	}
	fmt.Println()

	for _, p := range []optimize.Parameter{optimize.ParamJokers, optimize.ParamBudget, optimize.ParamThreshold} {
		fmt.Printf("Top %d by %s:\n", *top, p)
		for _, g := range res.TopByParameter(p, *top) {
			fmt.Printf("  %s = %g:\n", p, g.Value)
			for _, r := range g.Top {
				fmt.Printf("    %s: %.2f%%\n", r.Key, r.WinRate)
			}
		}
		fmt.Println()
	}

	if *outDir != "" {
		if err := archive(*outDir, res); err != nil {
			slog.Error("failed to archive grid results", "err", err)
			os.Exit(1)
		}
	}
}

// archive streams every cell's per-game rows into one parquet batch.
func archive(outDir string, res *optimize.Results) error {
	w, err := store.NewBatchWriter(outDir)
	if err != nil {
		return err
	}

	for _, key := range res.Keys() {
		cell := res.Cells[key]
		rows := store.RowsFromResults(key.String(), "optimize", cell)
		if err := w.WriteRows(rows); err != nil {
			return fmt.Errorf("write cell %s: %w", key, err)
		}
		w.NoteBatchWritten()
	}

	path, rows, batches, err := w.Finalize()
	if err != nil {
		return err
	}
	slog.Info("archived grid results", "path", path, "rows", rows, "cells", batches)
	return nil
}
