// Command simulate plays one batch of heuristic games and reports the
// aggregate statistics, optionally archiving every game to parquet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"beatbox/sim"
	"beatbox/store"
)

type progressMsg struct {
	done  int
	total int
}

type doneMsg struct {
	res *sim.Results
	err error
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type model struct {
	cfg       sim.BatchConfig
	done      int
	startTime time.Time
	now       time.Time

	res *sim.Results
	err error

	msgs chan tea.Msg
}

func initialModel(cfg sim.BatchConfig, msgs chan tea.Msg) model {
	now := time.Now()
	return model{cfg: cfg, startTime: now, now: now, msgs: msgs}
}

func waitForMsg(msgs chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-msgs
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForMsg(m.msgs), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case progressMsg:
		m.done = msg.done
		return m, waitForMsg(m.msgs)
	case doneMsg:
		m.res = msg.res
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	duration := m.now.Sub(m.startTime)
	gamesPerSec := float64(m.done) / duration.Seconds()
	if duration.Seconds() < 1 {
		gamesPerSec = 0
	}

	s := fmt.Sprintf("Jokers: %d  Budget: %d  Threshold: %.1f\n\n",
		m.cfg.Jokers, m.cfg.InclusiveBudget, m.cfg.Threshold)
	s += fmt.Sprintf("Games Played: %d / %d\n", m.done, m.cfg.Trials)
	s += fmt.Sprintf("Duration:     %s\n", duration.Round(time.Second))
	s += fmt.Sprintf("Games/Sec:    %.0f\n", gamesPerSec)
	s += "\nPress q to quit.\n"
	return s
}

func main() {
	jokers := flag.Int("jokers", 0, "Jokers in the deck (0-2)")
	budget := flag.Int("budget", 10, "Inclusive choices allowed per game")
	threshold := flag.Float64("threshold", 5, "Percentage-point edge an inclusive move needs")
	trials := flag.Int("trials", 10000, "Number of games to play")
	workers := flag.Int("workers", 0, "Worker goroutines (0 = NumCPU)")
	seed := flag.Int64("seed", 0, "Base RNG seed (0 = from clock)")
	outDir := flag.String("out-dir", "", "If set, archive every game as a parquet batch here")
	tui := flag.Bool("tui", false, "Show a live TUI instead of ticker logs")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgs := make(chan tea.Msg, 64)
	cfg := sim.BatchConfig{
		Config: sim.Config{
			Jokers:          *jokers,
			InclusiveBudget: *budget,
			Threshold:       *threshold,
		},
		Trials:  *trials,
		Workers: *workers,
		Seed:    *seed,
		OnProgress: func(done, total int) {
			// Drop updates rather than stall the workers.
			select {
			case msgs <- progressMsg{done: done, total: total}:
			default:
			}
		},
	}

	go func() {
		res, err := sim.RunBatch(ctx, cfg)
		msgs <- doneMsg{res: res, err: err}
	}()

	var res *sim.Results
	var err error
	if *tui {
		res, err = runTUI(cfg, msgs)
	} else {
		res, err = runTicker(cfg, msgs)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("Cancelled before completion")
			return
		}
		log.Fatalf("Batch failed: %v", err)
	}
	if res == nil {
		// TUI quit before the batch finished.
		return
	}

	printSummary(res)

	if *outDir != "" {
		rows := store.RowsFromResults(fmt.Sprintf("batch_%d", res.Seed), "simulate", res)
		path, err := store.WriteBatchParquetAtomic(*outDir, rows)
		if err != nil {
			log.Fatalf("Failed to archive batch: %v", err)
		}
		log.Printf("Archived %d games to %s", len(rows), path)
	}
}

func runTUI(cfg sim.BatchConfig, msgs chan tea.Msg) (*sim.Results, error) {
	p := tea.NewProgram(initialModel(cfg, msgs), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(model)
	return m.res, m.err
}

func runTicker(cfg sim.BatchConfig, msgs chan tea.Msg) (*sim.Results, error) {
	log.Printf("Playing %d games (jokers=%d budget=%d threshold=%.1f)",
		cfg.Trials, cfg.Jokers, cfg.InclusiveBudget, cfg.Threshold)

	startTime := time.Now()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	done := 0
	for {
		select {
		case msg := <-msgs:
			switch msg := msg.(type) {
			case progressMsg:
				done = msg.done
			case doneMsg:
				return msg.res, msg.err
			}
		case <-ticker.C:
			elapsed := time.Since(startTime)
			log.Printf("Progress: %d/%d (%.0f games/sec)", done, cfg.Trials,
				float64(done)/elapsed.Seconds())
		}
	}
}

func printSummary(res *sim.Results) {
	fmt.Printf("\nGames:     %d\n", res.TotalGames())
	fmt.Printf("Wins:      %d\n", res.Wins)
	fmt.Printf("Losses:    %d\n", res.Losses)
	fmt.Printf("Win rate:  %.2f%%\n", res.WinRate())
	fmt.Printf("Avg moves: %.1f (min %d, max %d)\n", res.AvgMoves(), res.MinMoves(), res.MaxMoves())
	fmt.Printf("Avg inclusive used: %.2f\n", res.AvgInclusiveUsed())
	fmt.Printf("Avg jokers drawn:   %.2f\n", res.AvgJokersDrawn())
	fmt.Printf("Seed: %d\n", res.Seed)

	fmt.Println("\nWins by boxes still alive:")
	printDistribution(res.WinBoxDistribution())
	fmt.Println("Losses by cards left:")
	printDistribution(res.LossCardDistribution())
}

func printDistribution(dist map[int]int) {
	keys := make([]int, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		fmt.Printf("  %2d: %d\n", k, dist[k])
	}
}
