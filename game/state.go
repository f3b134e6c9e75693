package game

import (
	"fmt"
	"math/rand"
)

// NumPositions is the size of the box. The visible grid never grows or
// shrinks; a position that fails simply holds nil until recovered.
const NumPositions = 9

// MaxInclusiveBudget returns the largest inclusive-choice budget a deck
// with the given joker count supports (43 draws remain after the deal,
// plus one per joker).
func MaxInclusiveBudget(jokers int) int {
	return 43 + jokers
}

// DealStrategy selects how the initial nine cards reach the box.
type DealStrategy int

const (
	// AutoDeal shuffles the deck and deals the top nine cards.
	AutoDeal DealStrategy = iota
	// ManualDeal leaves the box empty; the caller places the initial
	// cards with PlaceInitial before play starts.
	ManualDeal
)

// Stats are per-game counters used by the simulator and the play CLI.
// They are part of the undo snapshot so Undo restores them exactly.
type Stats struct {
	MovesUsed     int
	InclusiveUsed int
	JokersDrawn   int
}

// Move is an immutable undo record. It captures everything mutated by
// a single ExecuteMove or RecoverPosition call, before the mutation:
// the popped record alone is enough to invert the move.
type Move struct {
	// Drawn is the card drawn for this move, nil for a recovery.
	Drawn *Card
	// Position is the slot targeted.
	Position int
	// Prior is the card occupying the slot before the move (nil if the
	// slot was empty, as in a recovery).
	Prior *Card
	// UsedInclusive records whether this move consumed budget.
	UsedInclusive bool
	// FailedBoxes is a full copy of the failed-box map before the move.
	FailedBoxes map[int]Card
	// InclusiveRemaining is the budget before the move.
	InclusiveRemaining int
	// Stats are the counters before the move.
	Stats Stats
	// Aux is a copy of GameState.Aux before the move. Sessions stash
	// card-counting totals there so undo restores them atomically.
	Aux []int
}

// GameState is the complete state of one game. It is owned by a single
// session or simulation trial and is not safe for concurrent use.
type GameState struct {
	// VisibleCards are the nine box slots; nil marks a failed (or, under
	// ManualDeal, not-yet-placed) position.
	VisibleCards [NumPositions]*Card
	// RemainingDeck is the draw pile; index 0 is drawn next.
	RemainingDeck []Card
	// FailedBoxes maps a failed position to the card that was showing
	// when it failed, retained for recovery and display.
	FailedBoxes map[int]Card
	// InclusiveRemaining is the unused higher-equal/lower-equal budget.
	InclusiveRemaining int
	// MoveHistory is the undo stack, oldest first.
	MoveHistory []Move

	Jokers int
	Stats  Stats

	// Aux is opaque caller state snapshotted with every move. See Move.Aux.
	Aux []int
}

// NewGame builds a fresh game. Under AutoDeal the deck is shuffled with
// rng and the top nine cards fill the box; under ManualDeal the whole
// deck stays in RemainingDeck and the caller places the initial cards.
func NewGame(jokers, inclusiveBudget int, deal DealStrategy, rng *rand.Rand) (*GameState, error) {
	if jokers < 0 || jokers > 2 {
		return nil, fmt.Errorf("joker count %d out of range [0,2]", jokers)
	}
	if max := MaxInclusiveBudget(jokers); inclusiveBudget < 0 || inclusiveBudget > max {
		return nil, fmt.Errorf("inclusive budget %d out of range [0,%d] with %d joker(s)", inclusiveBudget, max, jokers)
	}

	deck := BuildDeck(jokers)
	if deal == AutoDeal {
		deck = Shuffle(deck, rng)
	}

	state := &GameState{
		FailedBoxes:        map[int]Card{},
		InclusiveRemaining: inclusiveBudget,
		Jokers:             jokers,
	}

	switch deal {
	case AutoDeal:
		for i := 0; i < NumPositions; i++ {
			c := deck[i]
			state.VisibleCards[i] = &c
		}
		state.RemainingDeck = deck[NumPositions:]
	case ManualDeal:
		state.RemainingDeck = deck
	default:
		return nil, fmt.Errorf("unknown deal strategy %d", deal)
	}

	return state, nil
}

// PlaceInitial moves the named card from the draw pile into an empty
// slot. It is only meaningful before play starts under ManualDeal; the
// multiset of cards in the game is preserved.
func (s *GameState) PlaceInitial(position int, c Card) error {
	if position < 0 || position >= NumPositions {
		return fmt.Errorf("position %d out of range [0,%d)", position, NumPositions)
	}
	if s.VisibleCards[position] != nil {
		return fmt.Errorf("position %d is already occupied", position)
	}
	for i := range s.RemainingDeck {
		if s.RemainingDeck[i] == c {
			placed := s.RemainingDeck[i]
			s.RemainingDeck = append(s.RemainingDeck[:i], s.RemainingDeck[i+1:]...)
			s.VisibleCards[position] = &placed
			return nil
		}
	}
	return fmt.Errorf("card %s is not in the draw pile", c)
}

// ActiveCount returns the number of non-empty box slots.
func (s *GameState) ActiveCount() int {
	n := 0
	for _, c := range s.VisibleCards {
		if c != nil {
			n++
		}
	}
	return n
}

// Clone performs a deep copy of the game state, history included.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}

	out := &GameState{
		InclusiveRemaining: s.InclusiveRemaining,
		Jokers:             s.Jokers,
		Stats:              s.Stats,
	}

	for i, c := range s.VisibleCards {
		if c != nil {
			cc := *c
			out.VisibleCards[i] = &cc
		}
	}

	out.RemainingDeck = make([]Card, len(s.RemainingDeck))
	copy(out.RemainingDeck, s.RemainingDeck)

	out.FailedBoxes = make(map[int]Card, len(s.FailedBoxes))
	for pos, c := range s.FailedBoxes {
		out.FailedBoxes[pos] = c
	}

	if len(s.MoveHistory) > 0 {
		out.MoveHistory = make([]Move, len(s.MoveHistory))
		for i := range s.MoveHistory {
			out.MoveHistory[i] = cloneMove(s.MoveHistory[i])
		}
	}

	if len(s.Aux) > 0 {
		out.Aux = append([]int(nil), s.Aux...)
	}

	return out
}

func cloneMove(m Move) Move {
	out := m
	if m.Drawn != nil {
		c := *m.Drawn
		out.Drawn = &c
	}
	if m.Prior != nil {
		c := *m.Prior
		out.Prior = &c
	}
	out.FailedBoxes = make(map[int]Card, len(m.FailedBoxes))
	for pos, c := range m.FailedBoxes {
		out.FailedBoxes[pos] = c
	}
	if len(m.Aux) > 0 {
		out.Aux = append([]int(nil), m.Aux...)
	}
	return out
}
