// Package sim runs Monte Carlo batches of heuristic-played games.
package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"beatbox/game"
	"beatbox/player"
	"beatbox/rules"
)

// ErrInvalidParameterRange is returned when a simulation or grid
// parameter is outside its legal range.
var ErrInvalidParameterRange = errors.New("parameter out of range")

// Config is one simulated game configuration.
type Config struct {
	Jokers          int
	InclusiveBudget int
	// Threshold feeds player.Config.Threshold.
	Threshold float64
}

func (c Config) Validate() error {
	if c.Jokers < 0 || c.Jokers > 2 {
		return fmt.Errorf("%w: jokers %d not in [0,2]", ErrInvalidParameterRange, c.Jokers)
	}
	if max := game.MaxInclusiveBudget(c.Jokers); c.InclusiveBudget < 0 || c.InclusiveBudget > max {
		return fmt.Errorf("%w: inclusive budget %d not in [0,%d]", ErrInvalidParameterRange, c.InclusiveBudget, max)
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("%w: threshold %.2f not in [0,100]", ErrInvalidParameterRange, c.Threshold)
	}
	return nil
}

// GameOutcome is the result of one finished game.
type GameOutcome struct {
	Won bool
	// Remaining counts live boxes on a win, undrawn cards on a loss.
	Remaining int
	Stats     game.Stats
}

// PlayGame deals a fresh game from rng and plays it to completion with
// the probability heuristic, taking every offered recovery the
// heuristic pre-selected. Engine errors are fatal: the heuristic only
// emits legal moves, so an error here means a bug, not bad luck.
func PlayGame(cfg Config, rng *rand.Rand) (GameOutcome, error) {
	state, err := game.NewGame(cfg.Jokers, cfg.InclusiveBudget, game.AutoDeal, rng)
	if err != nil {
		return GameOutcome{}, err
	}

	pcfg := player.Config{Threshold: cfg.Threshold}
	for !rules.IsGameOver(state) {
		choice, ok := player.ChooseMove(state, pcfg)
		if !ok {
			break
		}
		res, err := rules.ExecuteMove(state, choice.Position, choice.Predicate)
		if err != nil {
			return GameOutcome{}, fmt.Errorf("play %s at %d: %w", choice.Predicate, choice.Position, err)
		}
		if res.RecoveryOffered && choice.RecoveryPosition >= 0 {
			if err := rules.RecoverPosition(state, choice.RecoveryPosition); err != nil {
				return GameOutcome{}, fmt.Errorf("recover %d: %w", choice.RecoveryPosition, err)
			}
		}
	}

	out := GameOutcome{Won: rules.HasWon(state), Stats: state.Stats}
	if out.Won {
		out.Remaining = state.ActiveCount()
	} else {
		out.Remaining = len(state.RemainingDeck)
	}
	return out, nil
}
