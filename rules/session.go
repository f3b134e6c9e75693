package rules

import (
	"fmt"
	"math/rand"

	"beatbox/game"
)

// Count indexes into a session's running card counts.
type Count int

const (
	// CountHiLo tracks +1 per card over 8, -1 per card under 8.
	CountHiLo Count = iota
	// CountTiered2 weights the extremes double: Q/K/A +2, 9/10/J +1,
	// 5/6/7 -1, 2/3/4 -2.
	CountTiered2
	// CountTiered3 weights in three tiers: K/A +3, J/Q +2, 9/10 +1,
	// 6/7 -1, 4/5 -2, 2/3 -3.
	CountTiered3

	numCounts
)

// Session wraps a single interactive game: the state plus running card
// counts and display preferences. The counts live in GameState.Aux so
// every engine snapshot carries them and Undo rolls them back with the
// rest of the state. Not safe for concurrent use.
type Session struct {
	State *game.GameState

	// ShowFailedCards controls whether the play CLI reveals the card
	// trapped under a failed box.
	ShowFailedCards bool
}

// NewSession starts a fresh game. Under AutoDeal the nine dealt cards
// are counted immediately; under ManualDeal counting happens as the
// caller places cards.
func NewSession(jokers, inclusiveBudget int, deal game.DealStrategy, rng *rand.Rand) (*Session, error) {
	state, err := game.NewGame(jokers, inclusiveBudget, deal, rng)
	if err != nil {
		return nil, err
	}
	state.Aux = make([]int, numCounts)

	s := &Session{State: state}
	for _, c := range state.VisibleCards {
		if c != nil {
			s.countCard(*c)
		}
	}
	return s, nil
}

// Counts returns the three running counts.
func (s *Session) Counts() (hiLo, tiered2, tiered3 int) {
	return s.State.Aux[CountHiLo], s.State.Aux[CountTiered2], s.State.Aux[CountTiered3]
}

// PlaceInitial places one of the manual-deal starting cards and counts
// it.
func (s *Session) PlaceInitial(position int, c game.Card) error {
	if err := s.State.PlaceInitial(position, c); err != nil {
		return err
	}
	s.countCard(c)
	return nil
}

// ExecuteMove plays one move and counts the revealed card.
func (s *Session) ExecuteMove(position int, pred Predicate) (MoveResult, error) {
	res, err := ExecuteMove(s.State, position, pred)
	if err != nil {
		return res, err
	}
	s.countCard(res.Drawn)
	return res, nil
}

// Recover brings a failed box back and counts its card again, since
// it re-enters play.
func (s *Session) Recover(position int) error {
	card, ok := s.State.FailedBoxes[position]
	if !ok {
		return fmt.Errorf("%w: %d is not a failed box", ErrInvalidPosition, position)
	}
	if err := RecoverPosition(s.State, position); err != nil {
		return err
	}
	s.countCard(card)
	return nil
}

// Undo reverts the last move or recovery, counts included.
func (s *Session) Undo() error {
	return Undo(s.State)
}

func (s *Session) countCard(c game.Card) {
	if c.Joker {
		return
	}
	v := c.Value

	switch {
	case v > 8:
		s.State.Aux[CountHiLo]++
	case v < 8:
		s.State.Aux[CountHiLo]--
	}

	switch {
	case v >= 12:
		s.State.Aux[CountTiered2] += 2
	case v >= 9:
		s.State.Aux[CountTiered2]++
	case v <= 4:
		s.State.Aux[CountTiered2] -= 2
	case v <= 7:
		s.State.Aux[CountTiered2]--
	}

	switch {
	case v >= 13:
		s.State.Aux[CountTiered3] += 3
	case v >= 11:
		s.State.Aux[CountTiered3] += 2
	case v >= 9:
		s.State.Aux[CountTiered3]++
	case v <= 3:
		s.State.Aux[CountTiered3] -= 3
	case v <= 5:
		s.State.Aux[CountTiered3] -= 2
	case v <= 7:
		s.State.Aux[CountTiered3]--
	}
}
