package rules

import "beatbox/game"

// Odds are success percentages (0-100) for each predicate against one
// target card, over the current draw pile. Jokers in the pile count
// toward every outcome AND inflate the denominator, so the four
// predicate odds do not sum to a clean 100 when jokers remain. That is
// the house convention throughout the repo.
type Odds struct {
	Higher      float64
	Lower       float64
	HigherEqual float64
	LowerEqual  float64
	// ExactMatch is the chance the drawn card triggers an inclusive
	// recovery: equal value or a joker.
	ExactMatch float64
}

// For returns the odds for a single predicate.
func (o Odds) For(p Predicate) float64 {
	switch p {
	case Higher:
		return o.Higher
	case Lower:
		return o.Lower
	case HigherEqual:
		return o.HigherEqual
	case LowerEqual:
		return o.LowerEqual
	}
	return 0
}

// CardOdds computes the odds of each predicate holding for the next
// draw against target, given the remaining pile. A joker target
// satisfies everything, so all odds are 100. An empty pile yields all
// zeros. Pure: neither input is modified.
func CardOdds(target game.Card, remaining []game.Card) Odds {
	if target.Joker {
		return Odds{Higher: 100, Lower: 100, HigherEqual: 100, LowerEqual: 100, ExactMatch: 100}
	}
	if len(remaining) == 0 {
		return Odds{}
	}

	var higher, lower, equal, jokers int
	for _, c := range remaining {
		switch {
		case c.Joker:
			jokers++
		case c.Value > target.Value:
			higher++
		case c.Value < target.Value:
			lower++
		default:
			equal++
		}
	}

	// Jokers succeed for every predicate and also widen the
	// denominator.
	higher += jokers
	lower += jokers
	equal += jokers
	denom := float64(len(remaining) + jokers)

	return Odds{
		Higher:      100 * float64(higher) / denom,
		Lower:       100 * float64(lower) / denom,
		HigherEqual: 100 * float64(higher+equal-jokers) / denom,
		LowerEqual:  100 * float64(lower+equal-jokers) / denom,
		ExactMatch:  100 * float64(equal) / denom,
	}
}

// StateOdds computes CardOdds for every active position. Failed
// positions are absent from the result.
func StateOdds(s *game.GameState) map[int]Odds {
	out := make(map[int]Odds, game.NumPositions)
	for pos, card := range s.VisibleCards {
		if card == nil {
			continue
		}
		out[pos] = CardOdds(*card, s.RemainingDeck)
	}
	return out
}
