package player

import (
	"testing"

	"beatbox/game"
	"beatbox/rules"
)

func card(v int) game.Card {
	return game.Card{Value: v, Suit: "♠"}
}

func testState(visible []game.Card, deck []game.Card, budget int) *game.GameState {
	s := &game.GameState{
		RemainingDeck:      append([]game.Card(nil), deck...),
		FailedBoxes:        map[int]game.Card{},
		InclusiveRemaining: budget,
	}
	for i, c := range visible {
		cc := c
		s.VisibleCards[i] = &cc
	}
	return s
}

func TestChooseMove_PicksBestPlainOdds(t *testing.T) {
	// Position 0 shows an ace: lower is a certainty. Position 1 shows
	// an 8 with mixed odds. The ace's lower must win.
	s := testState([]game.Card{card(14), card(8)}, []game.Card{card(3), card(9), card(10)}, 0)

	choice, ok := ChooseMove(s, Config{Threshold: 5})
	if !ok {
		t.Fatalf("no choice for a live board")
	}
	if choice.Position != 0 || choice.Predicate != rules.Lower {
		t.Fatalf("choice=%+v want position 0 lower", choice)
	}
	if choice.RecoveryPosition != -1 {
		t.Fatalf("plain choice pre-selected recovery %d", choice.RecoveryPosition)
	}
}

func TestChooseMove_AdoptsInclusiveOverThreshold(t *testing.T) {
	// Target 7 against [8 8 8 7 2 2 2 2 2 2]: lower is 60%, lower-or-
	// equal 70%, exact match 10%. With threshold 5 the inclusive edge
	// (10 points) is enough; with threshold 15 it is not, and the
	// exact-match route is closed because 10% is under the cutoff.
	deck := []game.Card{
		card(8), card(8), card(8), card(7),
		card(2), card(2), card(2), card(2), card(2), card(2),
	}

	s := testState([]game.Card{card(7)}, deck, 5)
	choice, ok := ChooseMove(s, Config{Threshold: 5})
	if !ok {
		t.Fatalf("no choice")
	}
	if choice.Predicate != rules.LowerEqual {
		t.Fatalf("threshold 5: predicate=%v want lowerEqual", choice.Predicate)
	}

	s = testState([]game.Card{card(7)}, deck, 5)
	choice, ok = ChooseMove(s, Config{Threshold: 15})
	if !ok {
		t.Fatalf("no choice")
	}
	if choice.Predicate != rules.Lower {
		t.Fatalf("threshold 15: predicate=%v want plain lower", choice.Predicate)
	}
}

func TestChooseMove_IgnoresInclusiveWithoutBudget(t *testing.T) {
	deck := []game.Card{card(7), card(7), card(7), card(8)}
	s := testState([]game.Card{card(7)}, deck, 0)

	choice, ok := ChooseMove(s, Config{Threshold: 5})
	if !ok {
		t.Fatalf("no choice")
	}
	if choice.Predicate.Inclusive() {
		t.Fatalf("no budget, but chose %v", choice.Predicate)
	}
}

func TestChooseMove_PreselectsRecovery(t *testing.T) {
	// Exact match chance 75%: well over the cutoff, so the highest-
	// indexed failed box is pre-selected.
	deck := []game.Card{card(7), card(7), card(7), card(8)}
	s := testState([]game.Card{card(7)}, deck, 5)
	s.FailedBoxes[2] = card(4)
	s.FailedBoxes[6] = card(11)

	choice, ok := ChooseMove(s, Config{Threshold: 5})
	if !ok {
		t.Fatalf("no choice")
	}
	if !choice.Predicate.Inclusive() {
		t.Fatalf("predicate=%v want inclusive", choice.Predicate)
	}
	if choice.RecoveryPosition != 6 {
		t.Fatalf("recovery=%d want 6", choice.RecoveryPosition)
	}
}

func TestChooseMove_CustomPolicies(t *testing.T) {
	deck := []game.Card{card(7), card(7), card(7), card(8)}
	s := testState([]game.Card{card(7)}, deck, 5)
	s.FailedBoxes[2] = card(4)
	s.FailedBoxes[6] = card(11)

	cfg := Config{
		Threshold: 5,
		Adopt:     func(best, inclusive, exactMatch float64) bool { return true },
		PickRecovery: func(failed map[int]game.Card) int {
			// Lowest-indexed instead of highest.
			best := -1
			for pos := range failed {
				if best == -1 || pos < best {
					best = pos
				}
			}
			return best
		},
	}
	choice, ok := ChooseMove(s, cfg)
	if !ok {
		t.Fatalf("no choice")
	}
	if choice.RecoveryPosition != 2 {
		t.Fatalf("recovery=%d want 2", choice.RecoveryPosition)
	}
}

func TestChooseMove_FallbackOnEmptyPile(t *testing.T) {
	s := testState([]game.Card{card(9)}, nil, 0)
	choice, ok := ChooseMove(s, Config{})
	if !ok {
		t.Fatalf("fallback should still pick a move")
	}
	if choice.Position != 0 || choice.Predicate != rules.Lower {
		t.Fatalf("choice=%+v want position 0 lower for a high card", choice)
	}

	s = testState([]game.Card{card(5)}, nil, 0)
	choice, _ = ChooseMove(s, Config{})
	if choice.Predicate != rules.Higher {
		t.Fatalf("predicate=%v want higher for a low card", choice.Predicate)
	}
}

func TestChooseMove_NoActivePositions(t *testing.T) {
	s := testState(nil, []game.Card{card(5)}, 0)
	if _, ok := ChooseMove(s, Config{}); ok {
		t.Fatalf("dead board should yield no choice")
	}
}
