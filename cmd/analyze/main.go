// Command analyze runs SQL summaries over archived simulation batches.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	dataDirs := flag.String("data", "data", "Comma-separated directories of parquet batches")
	top := flag.Int("top", 10, "Number of configurations to show in the ranking")
	distributions := flag.Bool("distributions", false, "Also print win/loss remaining-count distributions")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openGamesDB(strings.Split(*dataDirs, ","))
	if err != nil {
		log.Fatalf("Failed to open duckdb over %s: %v", *dataDirs, err)
	}
	defer db.Close()

	t, err := queryTotals(ctx, db)
	if err != nil {
		log.Fatalf("Failed to query totals: %v", err)
	}
	fmt.Printf("Games: %d  Wins: %d  Win rate: %.2f%%  Avg moves: %.1f\n\n", t.Games, t.Wins, t.WinRate, t.AvgMoves)
	if t.Games == 0 {
		return
	}

	configs, err := queryTopConfigs(ctx, db, *top)
	if err != nil {
		log.Fatalf("Failed to rank configurations: %v", err)
	}
	fmt.Printf("Top %d configurations by win rate:\n", *top)
	fmt.Printf("%-7s %-7s %-10s %-8s %-8s %-9s %-10s %-8s\n",
		"jokers", "budget", "threshold", "games", "wins", "win rate", "avg moves", "avg incl")
	for _, r := range configs {
		fmt.Printf("%-7d %-7d %-10.1f %-8d %-8d %-8.2f%% %-10.1f %-8.2f\n",
			r.Jokers, r.InclusiveBudget, r.Threshold, r.Games, r.Wins, r.WinRate, r.AvgMoves, r.AvgInclusive)
	}
	fmt.Println()

	for _, col := range []string{"jokers", "inclusive_budget", "threshold"} {
		rows, err := queryByParameter(ctx, db, col)
		if err != nil {
			log.Fatalf("Failed to aggregate by %s: %v", col, err)
		}
		fmt.Printf("Win rate by %s:\n", col)
		for _, r := range rows {
			fmt.Printf("  %8.1f: %6.2f%% over %d games\n", r.Value, r.WinRate, r.Games)
		}
		fmt.Println()
	}

	if *distributions {
		wins, err := queryWinBoxDistribution(ctx, db)
		if err != nil {
			log.Fatalf("Failed to query win distribution: %v", err)
		}
		fmt.Println("Wins by boxes still alive:")
		for _, r := range wins {
			fmt.Printf("  %d boxes: %d\n", r.Remaining, r.Games)
		}

		losses, err := queryLossCardDistribution(ctx, db)
		if err != nil {
			log.Fatalf("Failed to query loss distribution: %v", err)
		}
		fmt.Println("Losses by cards left:")
		for _, r := range losses {
			fmt.Printf("  %d cards: %d\n", r.Remaining, r.Games)
		}
	}
}
