package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
)

// openGamesDB opens an in-memory DuckDB with a `games` view over every
// parquet batch under the given roots. Glob patterns keep startup fast;
// tmp/ staging files are excluded so a concurrent writer is invisible.
func openGamesDB(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	// Basic pragmas; ignore errors for compatibility across versions.
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}
	if len(globs) == 0 {
		_ = db.Close()
		return nil, fmt.Errorf("no data roots given")
	}

	sqlText := `CREATE OR REPLACE VIEW games AS
		SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

type totals struct {
	Games    int64
	Wins     int64
	WinRate  float64
	AvgMoves float64
}

func queryTotals(ctx context.Context, db *sql.DB) (totals, error) {
	var t totals
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN won THEN 1 ELSE 0 END), 0),
			COALESCE(100.0 * AVG(CASE WHEN won THEN 1.0 ELSE 0.0 END), 0),
			COALESCE(AVG(moves), 0)
		FROM games`).Scan(&t.Games, &t.Wins, &t.WinRate, &t.AvgMoves)
	return t, err
}

type configRow struct {
	Jokers          int64
	InclusiveBudget int64
	Threshold       float64
	Games           int64
	Wins            int64
	WinRate         float64
	AvgMoves        float64
	AvgInclusive    float64
	AvgJokersDrawn  float64
}

// queryTopConfigs ranks distinct configurations by win rate.
func queryTopConfigs(ctx context.Context, db *sql.DB, limit int) ([]configRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			jokers,
			inclusive_budget,
			threshold,
			COUNT(*) AS games,
			SUM(CASE WHEN won THEN 1 ELSE 0 END) AS wins,
			100.0 * AVG(CASE WHEN won THEN 1.0 ELSE 0.0 END) AS win_rate,
			AVG(moves) AS avg_moves,
			AVG(inclusive_used) AS avg_inclusive,
			AVG(jokers_drawn) AS avg_jokers_drawn
		FROM games
		GROUP BY jokers, inclusive_budget, threshold
		ORDER BY win_rate DESC, games DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []configRow
	for rows.Next() {
		var r configRow
		if err := rows.Scan(&r.Jokers, &r.InclusiveBudget, &r.Threshold, &r.Games, &r.Wins,
			&r.WinRate, &r.AvgMoves, &r.AvgInclusive, &r.AvgJokersDrawn); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type paramRow struct {
	Value   float64
	Games   int64
	WinRate float64
}

// queryByParameter aggregates win rate over one configuration column.
// col is restricted to known columns; never pass user input through.
func queryByParameter(ctx context.Context, db *sql.DB, col string) ([]paramRow, error) {
	switch col {
	case "jokers", "inclusive_budget", "threshold":
	default:
		return nil, fmt.Errorf("unknown parameter column %q", col)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT
			CAST(`+col+` AS DOUBLE) AS value,
			COUNT(*) AS games,
			100.0 * AVG(CASE WHEN won THEN 1.0 ELSE 0.0 END) AS win_rate
		FROM games
		GROUP BY 1
		ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []paramRow
	for rows.Next() {
		var r paramRow
		if err := rows.Scan(&r.Value, &r.Games, &r.WinRate); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type distRow struct {
	Remaining int64
	Games     int64
}

// queryWinBoxDistribution counts wins by surviving-box count.
func queryWinBoxDistribution(ctx context.Context, db *sql.DB) ([]distRow, error) {
	return queryDistribution(ctx, db, `SELECT boxes_left, COUNT(*) FROM games WHERE won GROUP BY 1 ORDER BY 1`)
}

// queryLossCardDistribution counts losses by cards left undrawn.
func queryLossCardDistribution(ctx context.Context, db *sql.DB) ([]distRow, error) {
	return queryDistribution(ctx, db, `SELECT cards_left, COUNT(*) FROM games WHERE NOT won GROUP BY 1 ORDER BY 1`)
}

func queryDistribution(ctx context.Context, db *sql.DB, q string) ([]distRow, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []distRow
	for rows.Next() {
		var r distRow
		if err := rows.Scan(&r.Remaining, &r.Games); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
