// Package player chooses moves for the simulator: a greedy
// probability heuristic with a configurable bias toward inclusive
// predicates, since an inclusive exact match can buy back a failed
// box.
package player

import (
	"beatbox/game"
	"beatbox/rules"
)

// DefaultExactMatchCutoff is the exact-match percentage above which an
// inclusive move is considered recovery-worthy.
const DefaultExactMatchCutoff = 20.0

// Choice is the move the heuristic wants to play next.
type Choice struct {
	Position  int
	Predicate rules.Predicate
	// RecoveryPosition is the failed box to buy back if the move ends
	// up offering a recovery, or -1 to decline.
	RecoveryPosition int
}

// AdoptFunc decides whether an inclusive option displaces the current
// best plain option. best and inclusive are success percentages,
// exactMatch is the inclusive option's exact-match percentage.
type AdoptFunc func(best, inclusive, exactMatch float64) bool

// RecoveryFunc picks which failed box to buy back. It is only
// consulted when at least one box has failed.
type RecoveryFunc func(failed map[int]game.Card) int

// Config tunes the heuristic. The zero value plus a Threshold is a
// complete configuration; nil policies fall back to the defaults.
type Config struct {
	// Threshold is how many percentage points better an inclusive
	// option must be to displace the best plain option outright.
	Threshold float64
	// ExactMatchCutoff gates both threshold-free adoption and recovery
	// pre-selection. Zero means DefaultExactMatchCutoff.
	ExactMatchCutoff float64
	// Adopt overrides the inclusive-adoption rule.
	Adopt AdoptFunc
	// PickRecovery overrides the recovery-target rule.
	PickRecovery RecoveryFunc
}

func (c Config) adopt() AdoptFunc {
	if c.Adopt != nil {
		return c.Adopt
	}
	threshold, cutoff := c.Threshold, c.cutoff()
	return func(best, inclusive, exactMatch float64) bool {
		if inclusive > best+threshold {
			return true
		}
		return inclusive >= best && exactMatch > cutoff
	}
}

func (c Config) pickRecovery() RecoveryFunc {
	if c.PickRecovery != nil {
		return c.PickRecovery
	}
	return HighestFailedPosition
}

func (c Config) cutoff() float64 {
	if c.ExactMatchCutoff != 0 {
		return c.ExactMatchCutoff
	}
	return DefaultExactMatchCutoff
}

// HighestFailedPosition is the default recovery policy: the
// highest-indexed failed box.
func HighestFailedPosition(failed map[int]game.Card) int {
	best := -1
	for pos := range failed {
		if pos > best {
			best = pos
		}
	}
	return best
}

// ChooseMove scans the active positions in order and picks the move
// with the best success odds. Plain predicates compete on raw odds;
// inclusive predicates (budget permitting) displace the leader per the
// adoption rule. When an adopted inclusive option has a
// recovery-worthy exact-match chance and failed boxes exist, the
// recovery target is pre-selected.
//
// ok is false only when no position is active.
func ChooseMove(s *game.GameState, cfg Config) (Choice, bool) {
	if len(s.RemainingDeck) == 0 {
		return fallback(s)
	}

	adopt := cfg.adopt()
	pickRecovery := cfg.pickRecovery()
	cutoff := cfg.cutoff()

	best := -1.0
	var choice Choice
	found := false

	for pos, card := range s.VisibleCards {
		if card == nil {
			continue
		}
		odds := rules.CardOdds(*card, s.RemainingDeck)

		for _, pred := range []rules.Predicate{rules.Higher, rules.Lower} {
			if p := odds.For(pred); p > best {
				best = p
				choice = Choice{Position: pos, Predicate: pred, RecoveryPosition: -1}
				found = true
			}
		}

		if s.InclusiveRemaining <= 0 {
			continue
		}
		for _, pred := range []rules.Predicate{rules.HigherEqual, rules.LowerEqual} {
			p := odds.For(pred)
			if !adopt(best, p, odds.ExactMatch) {
				continue
			}
			best = p
			choice = Choice{Position: pos, Predicate: pred, RecoveryPosition: -1}
			if len(s.FailedBoxes) > 0 && odds.ExactMatch > cutoff {
				choice.RecoveryPosition = pickRecovery(s.FailedBoxes)
			}
			found = true
		}
	}

	if !found {
		return fallback(s)
	}
	return choice, true
}

// fallback plays the first active position: lower on a high card,
// higher otherwise. Used when no odds are computable (empty pile).
func fallback(s *game.GameState) (Choice, bool) {
	for pos, card := range s.VisibleCards {
		if card == nil {
			continue
		}
		pred := rules.Higher
		if !card.Joker && card.Value > 7 {
			pred = rules.Lower
		}
		return Choice{Position: pos, Predicate: pred, RecoveryPosition: -1}, true
	}
	return Choice{}, false
}
