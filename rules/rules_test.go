package rules

import (
	"errors"
	"testing"

	"beatbox/game"
)

// card is shorthand for building test cards; spades unless stated.
func card(v int) game.Card {
	return game.Card{Value: v, Suit: "♠"}
}

func joker() game.Card {
	return game.Card{Joker: true}
}

// testState builds a state with the given cards in positions 0..n-1
// and the given draw pile. Unlisted positions start failed-free but
// empty.
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

// allCards is the multiset of every card in the game: visible, failed,
// and undrawn.
func allCards(s *game.GameState) map[game.Card]int {
	counts := map[game.Card]int{}
	for _, c := range s.VisibleCards {
		if c != nil {
			counts[*c]++
		}
	}
	for _, c := range s.FailedBoxes {
		counts[c]++
	}
	for _, c := range s.RemainingDeck {
		counts[c]++
	}
	return counts
}

func assertSameCards(t *testing.T, before, after map[game.Card]int) {
	t.Helper()
	for c, n := range before {
		if after[c] != n {
			t.Fatalf("card %s count changed: %d -> %d", c, n, after[c])
		}
	}
	for c, n := range after {
		if before[c] != n {
			t.Fatalf("card %s appeared from nowhere (%d)", c, n)
		}
	}
}

// assertStatesEqual compares the observable state, ignoring history
// bookkeeping.
func assertStatesEqual(t *testing.T, got, want *game.GameState) {
	t.Helper()
	for i := range want.VisibleCards {
		g, w := got.VisibleCards[i], want.VisibleCards[i]
		switch {
		case g == nil && w == nil:
		case g == nil || w == nil || *g != *w:
			t.Fatalf("position %d = %v want %v", i, g, w)
		}
	}
	if len(got.RemainingDeck) != len(want.RemainingDeck) {
		t.Fatalf("deck len=%d want=%d", len(got.RemainingDeck), len(want.RemainingDeck))
	}
	for i := range want.RemainingDeck {
		if got.RemainingDeck[i] != want.RemainingDeck[i] {
			t.Fatalf("deck[%d]=%s want=%s", i, got.RemainingDeck[i], want.RemainingDeck[i])
		}
	}
	if len(got.FailedBoxes) != len(want.FailedBoxes) {
		t.Fatalf("failed boxes=%d want=%d", len(got.FailedBoxes), len(want.FailedBoxes))
	}
	for pos, c := range want.FailedBoxes {
		if got.FailedBoxes[pos] != c {
			t.Fatalf("failed box %d = %s want %s", pos, got.FailedBoxes[pos], c)
		}
	}
	if got.InclusiveRemaining != want.InclusiveRemaining {
		t.Fatalf("inclusive=%d want=%d", got.InclusiveRemaining, want.InclusiveRemaining)
	}
	if got.Stats != want.Stats {
		t.Fatalf("stats=%+v want=%+v", got.Stats, want.Stats)
	}
	if len(got.Aux) != len(want.Aux) {
		t.Fatalf("aux len=%d want=%d", len(got.Aux), len(want.Aux))
	}
	for i := range want.Aux {
		if got.Aux[i] != want.Aux[i] {
			t.Fatalf("aux[%d]=%d want=%d", i, got.Aux[i], want.Aux[i])
		}
	}
}

func TestExecuteMove_Success(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{card(9), card(2)}, 0)
	before := allCards(s)

	res, err := ExecuteMove(s, 0, Higher)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.Success {
		t.Fatalf("9 higher than 5 should succeed")
	}
	if res.RecoveryOffered {
		t.Fatalf("plain move must never offer recovery")
	}
	if s.VisibleCards[0] == nil || s.VisibleCards[0].Value != 9 {
		t.Fatalf("position 0 = %v, want the drawn 9", s.VisibleCards[0])
	}
	if len(s.RemainingDeck) != 1 {
		t.Fatalf("deck=%d want=1", len(s.RemainingDeck))
	}
	if s.Stats.MovesUsed != 1 {
		t.Fatalf("moves used=%d want=1", s.Stats.MovesUsed)
	}

	// The prior 5 left the game; everything else is still here.
	after := allCards(s)
	after[card(5)]++
	assertSameCards(t, before, after)
}

func TestExecuteMove_Failure(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{card(3)}, 0)

	res, err := ExecuteMove(s, 0, Higher)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if res.Success {
		t.Fatalf("3 higher than 5 should fail")
	}
	if s.VisibleCards[0] != nil {
		t.Fatalf("failed position should be empty, got %v", s.VisibleCards[0])
	}
	if got := s.FailedBoxes[0]; got != card(5) {
		t.Fatalf("failed box holds %s want %s", got, card(5))
	}
}

func TestExecuteMove_Validation(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{card(3)}, 0)
	snapshot := s.Clone()

	if _, err := ExecuteMove(s, -1, Higher); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("position -1: got %v", err)
	}
	if _, err := ExecuteMove(s, 9, Higher); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("position 9: got %v", err)
	}
	if _, err := ExecuteMove(s, 3, Higher); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("empty position: got %v", err)
	}
	if _, err := ExecuteMove(s, 0, HigherEqual); !errors.Is(err, ErrInsufficientInclusive) {
		t.Fatalf("no budget: got %v", err)
	}

	// Failed validation must not touch the state.
	assertStatesEqual(t, s, snapshot)
	if len(s.MoveHistory) != 0 {
		t.Fatalf("rejected moves must not enter history")
	}

	empty := testState([]game.Card{card(5)}, nil, 0)
	if _, err := ExecuteMove(empty, 0, Higher); !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("empty deck: got %v", err)
	}
}

func TestExecuteMove_JokerAlwaysSucceeds(t *testing.T) {
	// Joker drawn against a worst-case claim.
	s := testState([]game.Card{card(2)}, []game.Card{joker()}, 0)
	res, err := ExecuteMove(s, 0, Lower)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.Success {
		t.Fatalf("a drawn joker must satisfy any predicate")
	}
	if s.Stats.JokersDrawn != 1 {
		t.Fatalf("jokers drawn=%d want=1", s.Stats.JokersDrawn)
	}

	// Joker showing as the target.
	s = testState([]game.Card{joker()}, []game.Card{card(2)}, 0)
	res, err = ExecuteMove(s, 0, Higher)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.Success {
		t.Fatalf("any draw against a joker target must succeed")
	}
}

func TestExecuteMove_InclusiveBudget(t *testing.T) {
	s := testState([]game.Card{card(5), card(8)}, []game.Card{card(5), card(8)}, 1)

	res, err := ExecuteMove(s, 0, HigherEqual)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.Success {
		t.Fatalf("5 >= 5 should succeed")
	}
	if s.InclusiveRemaining != 0 {
		t.Fatalf("inclusive=%d want=0", s.InclusiveRemaining)
	}
	if s.Stats.InclusiveUsed != 1 {
		t.Fatalf("inclusive used=%d want=1", s.Stats.InclusiveUsed)
	}

	// Budget exhausted: the next inclusive claim is rejected cleanly.
	snapshot := s.Clone()
	if _, err := ExecuteMove(s, 1, LowerEqual); !errors.Is(err, ErrInsufficientInclusive) {
		t.Fatalf("got %v", err)
	}
	assertStatesEqual(t, s, snapshot)
}

func TestRecovery_OfferedAndTaken(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{card(5), card(7)}, 2)
	s.FailedBoxes[3] = card(11)

	res, err := ExecuteMove(s, 0, HigherEqual)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.RecoveryOffered {
		t.Fatalf("inclusive exact match with a failed box should offer recovery")
	}

	if err := RecoverPosition(s, 3); err != nil {
		t.Fatalf("RecoverPosition: %v", err)
	}
	if s.VisibleCards[3] == nil || s.VisibleCards[3].Value != 11 {
		t.Fatalf("recovered position holds %v want J", s.VisibleCards[3])
	}
	if len(s.FailedBoxes) != 0 {
		t.Fatalf("failed boxes=%d want=0", len(s.FailedBoxes))
	}

	// Declining is just not calling RecoverPosition; a later recovery
	// of a non-failed position is rejected.
	if err := RecoverPosition(s, 3); !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("recovering a live position: got %v", err)
	}
}

func TestRecovery_NotOfferedWithoutFailedBoxes(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{card(5)}, 1)
	res, err := ExecuteMove(s, 0, HigherEqual)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.Success {
		t.Fatalf("exact match should succeed")
	}
	if res.RecoveryOffered {
		t.Fatalf("nothing to recover, so no offer")
	}
}

func TestRecovery_OfferedOnJoker(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{joker()}, 1)
	s.FailedBoxes[1] = card(9)

	res, err := ExecuteMove(s, 0, HigherEqual)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if !res.RecoveryOffered {
		t.Fatalf("an inclusive joker draw should offer recovery")
	}

	// A plain predicate never offers, joker or not.
	s = testState([]game.Card{card(5)}, []game.Card{joker()}, 1)
	s.FailedBoxes[1] = card(9)
	res, err = ExecuteMove(s, 0, Higher)
	if err != nil {
		t.Fatalf("ExecuteMove: %v", err)
	}
	if res.RecoveryOffered {
		t.Fatalf("plain predicates must not offer recovery")
	}
}

func TestUndo_RestoresExactly(t *testing.T) {
	cases := []struct {
		name string
		deck []game.Card
		pred Predicate
	}{
		{"successful move", []game.Card{card(9), card(2)}, Higher},
		{"failed move", []game.Card{card(3), card(2)}, Higher},
		{"inclusive exact match", []game.Card{card(5), card(2)}, HigherEqual},
		{"joker draw", []game.Card{joker(), card(2)}, Lower},
	}

	for _, c := range cases {
		s := testState([]game.Card{card(5)}, c.deck, 3)
		s.FailedBoxes[7] = card(12)
		s.Aux = []int{4, 5, 6}
		snapshot := s.Clone()

		if _, err := ExecuteMove(s, 0, c.pred); err != nil {
			t.Fatalf("%s: ExecuteMove: %v", c.name, err)
		}
		s.Aux[0] = 99 // caller-side count update, rolled back with the move
		if err := Undo(s); err != nil {
			t.Fatalf("%s: Undo: %v", c.name, err)
		}
		assertStatesEqual(t, s, snapshot)
		if len(s.MoveHistory) != 0 {
			t.Fatalf("%s: history len=%d want=0", c.name, len(s.MoveHistory))
		}
	}
}

func TestUndo_Recovery(t *testing.T) {
	s := testState([]game.Card{card(5)}, []game.Card{card(9)}, 3)
	s.FailedBoxes[7] = card(12)
	snapshot := s.Clone()

	if err := RecoverPosition(s, 7); err != nil {
		t.Fatalf("RecoverPosition: %v", err)
	}
	if err := Undo(s); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	assertStatesEqual(t, s, snapshot)
}

func TestUndo_FullGameRewind(t *testing.T) {
	s := testState(
		[]game.Card{card(5), card(10)},
		[]game.Card{card(7), card(3), card(12), card(6)},
		2,
	)
	snapshot := s.Clone()

	moves := []struct {
		pos  int
		pred Predicate
	}{
		{0, Higher}, {1, Lower}, {0, HigherEqual},
	}
	for _, m := range moves {
		if _, err := ExecuteMove(s, m.pos, m.pred); err != nil {
			t.Fatalf("move %+v: %v", m, err)
		}
	}

	for range moves {
		if err := Undo(s); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	assertStatesEqual(t, s, snapshot)

	if err := Undo(s); !errors.Is(err, ErrNoMoveHistory) {
		t.Fatalf("undo past the start: got %v", err)
	}
}

func TestGameOverAndWin(t *testing.T) {
	// Deck left, boxes alive: still playing.
	s := testState([]game.Card{card(5)}, []game.Card{card(9)}, 0)
	if IsGameOver(s) || HasWon(s) {
		t.Fatalf("mid-game state reported as over")
	}

	// Deck empty, a box alive: won.
	s = testState([]game.Card{card(5)}, nil, 0)
	if !IsGameOver(s) || !HasWon(s) {
		t.Fatalf("empty deck with a live box should be a win")
	}

	// All boxes failed, cards left: lost.
	s = testState(nil, []game.Card{card(9)}, 0)
	s.FailedBoxes[0] = card(5)
	if !IsGameOver(s) || HasWon(s) {
		t.Fatalf("all boxes failed should be a loss")
	}

	// Deck empty and all failed: over, not won.
	s = testState(nil, nil, 0)
	if !IsGameOver(s) || HasWon(s) {
		t.Fatalf("empty everything should be a loss")
	}
}
