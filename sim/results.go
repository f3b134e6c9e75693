package sim

// Results aggregates one finished batch. Outcomes is indexed by trial,
// so two runs with the same BatchConfig produce identical Results.
// Built once by RunBatch; treat as immutable.
type Results struct {
	Config Config
	// Seed is the base seed actually used (resolved from the clock
	// when BatchConfig.Seed was 0).
	Seed     int64
	Wins     int
	Losses   int
	Outcomes []GameOutcome
}

func (r *Results) TotalGames() int { return len(r.Outcomes) }

// WinRate returns wins as a percentage of all games.
func (r *Results) WinRate() float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	return 100 * float64(r.Wins) / float64(len(r.Outcomes))
}

// MovesPerGame returns the per-trial move counts.
func (r *Results) MovesPerGame() []int {
	out := make([]int, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Stats.MovesUsed
	}
	return out
}

// InclusiveUsedPerGame returns the per-trial inclusive-choice counts.
func (r *Results) InclusiveUsedPerGame() []int {
	out := make([]int, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Stats.InclusiveUsed
	}
	return out
}

// JokersDrawnPerGame returns the per-trial joker counts.
func (r *Results) JokersDrawnPerGame() []int {
	out := make([]int, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Stats.JokersDrawn
	}
	return out
}

// BoxesLeftInWins returns, for each won game in trial order, how many
// boxes were still alive at the end.
func (r *Results) BoxesLeftInWins() []int {
	var out []int
	for _, o := range r.Outcomes {
		if o.Won {
			out = append(out, o.Remaining)
		}
	}
	return out
}

// CardsLeftInLosses returns, for each lost game in trial order, how
// many cards were still undrawn when the last box failed.
func (r *Results) CardsLeftInLosses() []int {
	var out []int
	for _, o := range r.Outcomes {
		if !o.Won {
			out = append(out, o.Remaining)
		}
	}
	return out
}

// WinBoxDistribution maps surviving-box count to number of wins.
func (r *Results) WinBoxDistribution() map[int]int {
	out := map[int]int{}
	for _, o := range r.Outcomes {
		if o.Won {
			out[o.Remaining]++
		}
	}
	return out
}

// LossCardDistribution maps cards-left count to number of losses.
func (r *Results) LossCardDistribution() map[int]int {
	out := map[int]int{}
	for _, o := range r.Outcomes {
		if !o.Won {
			out[o.Remaining]++
		}
	}
	return out
}

// AvgMoves is the mean moves per game.
func (r *Results) AvgMoves() float64 { return r.avg(func(o GameOutcome) int { return o.Stats.MovesUsed }) }

// AvgInclusiveUsed is the mean inclusive choices per game.
func (r *Results) AvgInclusiveUsed() float64 {
	return r.avg(func(o GameOutcome) int { return o.Stats.InclusiveUsed })
}

// AvgJokersDrawn is the mean jokers drawn per game.
func (r *Results) AvgJokersDrawn() float64 {
	return r.avg(func(o GameOutcome) int { return o.Stats.JokersDrawn })
}

// MinMoves is the shortest game, or 0 for an empty batch.
func (r *Results) MinMoves() int {
	min := 0
	for i, o := range r.Outcomes {
		if i == 0 || o.Stats.MovesUsed < min {
			min = o.Stats.MovesUsed
		}
	}
	return min
}

// MaxMoves is the longest game.
func (r *Results) MaxMoves() int {
	max := 0
	for _, o := range r.Outcomes {
		if o.Stats.MovesUsed > max {
			max = o.Stats.MovesUsed
		}
	}
	return max
}

func (r *Results) avg(f func(GameOutcome) int) float64 {
	if len(r.Outcomes) == 0 {
		return 0
	}
	sum := 0
	for _, o := range r.Outcomes {
		sum += f(o)
	}
	return float64(sum) / float64(len(r.Outcomes))
}
