// Package store archives per-game simulation results as Parquet
// batches, one row per finished game, for offline SQL analysis.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"beatbox/sim"
)

// GameRow is a single finished game: the configuration that produced
// it plus its outcome. Config columns are dictionary-encoded via low
// cardinality; the row is flat so DuckDB can aggregate it directly.
type GameRow struct {
	BatchID string `parquet:"batch_id,dict"`
	Trial   int32  `parquet:"trial"`

	Jokers          int32   `parquet:"jokers"`
	InclusiveBudget int32   `parquet:"inclusive_budget"`
	Threshold       float64 `parquet:"threshold"`
	Seed            int64   `parquet:"seed"`

	Won           bool  `parquet:"won"`
	Moves         int32 `parquet:"moves"`
	InclusiveUsed int32 `parquet:"inclusive_used"`
	JokersDrawn   int32 `parquet:"jokers_drawn"`
	// BoxesLeft is set on wins, CardsLeft on losses; the other is 0.
	BoxesLeft int32 `parquet:"boxes_left"`
	CardsLeft int32 `parquet:"cards_left"`

	Source string `parquet:"source,dict"`
}

// RowsFromResults flattens one batch into rows. The per-trial seed is
// recorded so any single game can be replayed.
func RowsFromResults(batchID, source string, res *sim.Results) []GameRow {
	rows := make([]GameRow, 0, len(res.Outcomes))
	for trial, o := range res.Outcomes {
		row := GameRow{
			BatchID:         batchID,
			Trial:           int32(trial),
			Jokers:          int32(res.Config.Jokers),
			InclusiveBudget: int32(res.Config.InclusiveBudget),
			Threshold:       res.Config.Threshold,
			Seed:            res.Seed + int64(trial),
			Won:             o.Won,
			Moves:           int32(o.Stats.MovesUsed),
			InclusiveUsed:   int32(o.Stats.InclusiveUsed),
			JokersDrawn:     int32(o.Stats.JokersDrawn),
			Source:          source,
		}
		if o.Won {
			row.BoxesLeft = int32(o.Remaining)
		} else {
			row.CardsLeft = int32(o.Remaining)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteBatchParquetAtomic writes rows to a new batch file in outDir.
// The file lands under a tmp/ subdirectory first and is renamed into
// place, so readers globbing outDir never see a partial file.
func WriteBatchParquetAtomic(outDir string, rows []GameRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("games_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "game_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}

	return finalPath, nil
}
