// Package optimize grid-searches the simulation parameters (jokers,
// inclusive budget, adoption threshold) for the best win rate.
package optimize

import (
	"context"
	"fmt"
	"sort"

	"beatbox/game"
	"beatbox/sim"
)

// Parameter names one grid axis for TopByParameter.
type Parameter string

const (
	ParamJokers    Parameter = "jokers"
	ParamBudget    Parameter = "budget"
	ParamThreshold Parameter = "threshold"
)

// Ranges defines the grid. Integer axes are inclusive on both ends;
// the threshold axis steps from Min to Max inclusive by Step.
type Ranges struct {
	JokerMin, JokerMax   int
	BudgetMin, BudgetMax int

	ThresholdMin, ThresholdMax, ThresholdStep float64
}

func (r Ranges) Validate() error {
	if r.JokerMin < 0 || r.JokerMax > 2 || r.JokerMin > r.JokerMax {
		return fmt.Errorf("%w: joker range [%d,%d]", sim.ErrInvalidParameterRange, r.JokerMin, r.JokerMax)
	}
	if r.BudgetMin < 0 || r.BudgetMin > r.BudgetMax {
		return fmt.Errorf("%w: budget range [%d,%d]", sim.ErrInvalidParameterRange, r.BudgetMin, r.BudgetMax)
	}
	if r.BudgetMin > game.MaxInclusiveBudget(r.JokerMax) {
		return fmt.Errorf("%w: budget range [%d,%d] exceeds every deck", sim.ErrInvalidParameterRange, r.BudgetMin, r.BudgetMax)
	}
	if r.ThresholdMin < 0 || r.ThresholdMax > 100 || r.ThresholdMin > r.ThresholdMax {
		return fmt.Errorf("%w: threshold range [%.2f,%.2f]", sim.ErrInvalidParameterRange, r.ThresholdMin, r.ThresholdMax)
	}
	if r.ThresholdStep <= 0 && r.ThresholdMin != r.ThresholdMax {
		return fmt.Errorf("%w: threshold step %.2f must be positive", sim.ErrInvalidParameterRange, r.ThresholdStep)
	}
	return nil
}

// Cells enumerates the grid in jokers-budget-threshold order. Budgets
// a deck cannot honor (budget > 43 + jokers) are skipped rather than
// rejected, so a wide budget range works across joker counts.
func (r Ranges) Cells() []sim.Config {
	var cells []sim.Config
	for jokers := r.JokerMin; jokers <= r.JokerMax; jokers++ {
		for budget := r.BudgetMin; budget <= r.BudgetMax; budget++ {
			if budget > game.MaxInclusiveBudget(jokers) {
				continue
			}
			for _, threshold := range r.thresholds() {
				cells = append(cells, sim.Config{
					Jokers:          jokers,
					InclusiveBudget: budget,
					Threshold:       threshold,
				})
			}
		}
	}
	return cells
}

func (r Ranges) thresholds() []float64 {
	if r.ThresholdMin == r.ThresholdMax {
		return []float64{r.ThresholdMin}
	}
	var out []float64
	// The epsilon keeps Max in the grid despite float stepping.
	for t := r.ThresholdMin; t <= r.ThresholdMax+1e-9; t += r.ThresholdStep {
		out = append(out, t)
	}
	return out
}

// GridConfig configures RunGrid.
type GridConfig struct {
	Ranges
	// TrialsPerCell is the batch size for every cell. Must be positive.
	TrialsPerCell int
	// Workers is passed through to each cell's RunBatch.
	Workers int
	// Seed is the base seed; cell i runs with Seed + i*1e6 so cells
	// never share trial seeds. 0 seeds from the clock per cell.
	Seed int64
	// OnCell, if set, is called after each finished cell.
	OnCell func(done, total int, key Key, winRate float64)
}

// Key identifies one grid cell.
type Key struct {
	Jokers    int
	Budget    int
	Threshold float64
}

func (k Key) String() string {
	return fmt.Sprintf("jokers=%d budget=%d threshold=%.1f", k.Jokers, k.Budget, k.Threshold)
}

// Ranked is one scored cell.
type Ranked struct {
	Key     Key
	WinRate float64
}

// Group is the top cells sharing one value of the grouping parameter.
type Group struct {
	Value float64
	Top   []Ranked
}

// Results holds every cell's batch results plus the running best.
type Results struct {
	Cells map[Key]*sim.Results
	// order preserves enumeration order for deterministic ranking ties.
	order []Key

	Best        Key
	BestWinRate float64
	hasBest     bool
}

func (r *Results) add(k Key, res *sim.Results) {
	if r.Cells == nil {
		r.Cells = map[Key]*sim.Results{}
	}
	r.Cells[k] = res
	r.order = append(r.order, k)
	if wr := res.WinRate(); !r.hasBest || wr > r.BestWinRate {
		r.Best = k
		r.BestWinRate = wr
		r.hasBest = true
	}
}

// Keys returns the cell keys in enumeration order.
func (r *Results) Keys() []Key {
	return append([]Key(nil), r.order...)
}

// TopOverall returns the n best cells by win rate, enumeration order
// breaking ties.
func (r *Results) TopOverall(n int) []Ranked {
	ranked := make([]Ranked, 0, len(r.order))
	for _, k := range r.order {
		ranked = append(ranked, Ranked{Key: k, WinRate: r.Cells[k].WinRate()})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].WinRate > ranked[j].WinRate })
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// TopByParameter groups cells by one parameter's value and returns the
// n best cells within each group, groups sorted by parameter value.
func (r *Results) TopByParameter(p Parameter, n int) []Group {
	byValue := map[float64][]Ranked{}
	for _, k := range r.order {
		var v float64
		switch p {
		case ParamJokers:
			v = float64(k.Jokers)
		case ParamBudget:
			v = float64(k.Budget)
		case ParamThreshold:
			v = k.Threshold
		default:
			return nil
		}
		byValue[v] = append(byValue[v], Ranked{Key: k, WinRate: r.Cells[k].WinRate()})
	}

	values := make([]float64, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Float64s(values)

	groups := make([]Group, 0, len(values))
	for _, v := range values {
		ranked := byValue[v]
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].WinRate > ranked[j].WinRate })
		if n > 0 && n < len(ranked) {
			ranked = ranked[:n]
		}
		groups = append(groups, Group{Value: v, Top: ranked})
	}
	return groups
}

// RunGrid runs an independent batch per cell, sequentially (each cell
// already saturates the worker pool). Cancellation between cells
// returns ctx.Err(); a failed cell aborts the grid.
func RunGrid(ctx context.Context, cfg GridConfig) (*Results, error) {
	if err := cfg.Ranges.Validate(); err != nil {
		return nil, err
	}
	if cfg.TrialsPerCell <= 0 {
		return nil, fmt.Errorf("%w: trials per cell %d must be positive", sim.ErrInvalidParameterRange, cfg.TrialsPerCell)
	}

	cells := cfg.Cells()
	out := &Results{}
	for i, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var seed int64
		if cfg.Seed != 0 {
			seed = cfg.Seed + int64(i)*1_000_000
		}
		res, err := sim.RunBatch(ctx, sim.BatchConfig{
			Config:  cell,
			Trials:  cfg.TrialsPerCell,
			Workers: cfg.Workers,
			Seed:    seed,
		})
		if err != nil {
			return nil, fmt.Errorf("cell %d/%d (jokers=%d budget=%d threshold=%.1f): %w",
				i+1, len(cells), cell.Jokers, cell.InclusiveBudget, cell.Threshold, err)
		}

		key := Key{Jokers: cell.Jokers, Budget: cell.InclusiveBudget, Threshold: cell.Threshold}
		out.add(key, res)
		if cfg.OnCell != nil {
			cfg.OnCell(i+1, len(cells), key, res.WinRate())
		}
	}
	return out, nil
}
