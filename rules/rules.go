// Package rules implements the Beat the Box state machine on top of
// game.GameState: move execution, recovery, undo, and the probability
// engine the heuristic player drives off.
package rules

import (
	"errors"
	"fmt"

	"beatbox/game"
)

var (
	// ErrInvalidPosition is returned for an out-of-range, empty, or
	// (for recovery) not-failed position.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrEmptyDeck is returned when a move is attempted with no cards
	// left to draw.
	ErrEmptyDeck = errors.New("draw pile is empty")
	// ErrInsufficientInclusive is returned when an inclusive predicate
	// is chosen with no budget remaining.
	ErrInsufficientInclusive = errors.New("no inclusive choices remaining")
	// ErrNoMoveHistory is returned by Undo on a fresh game.
	ErrNoMoveHistory = errors.New("no moves to undo")
)

// Predicate is the claim made about the next drawn card relative to
// the card showing at the chosen position.
type Predicate int

const (
	Higher Predicate = iota
	Lower
	HigherEqual
	LowerEqual
)

func (p Predicate) String() string {
	switch p {
	case Higher:
		return "higher"
	case Lower:
		return "lower"
	case HigherEqual:
		return "higher or equal"
	case LowerEqual:
		return "lower or equal"
	}
	return fmt.Sprintf("predicate(%d)", int(p))
}

// Inclusive reports whether the predicate consumes inclusive budget.
func (p Predicate) Inclusive() bool {
	return p == HigherEqual || p == LowerEqual
}

// holds resolves the predicate for a drawn card against a target.
// A joker on either side satisfies every predicate.
func (p Predicate) holds(drawn, target game.Card) bool {
	if drawn.Joker || target.Joker {
		return true
	}
	switch p {
	case Higher:
		return drawn.Value > target.Value
	case Lower:
		return drawn.Value < target.Value
	case HigherEqual:
		return drawn.Value >= target.Value
	case LowerEqual:
		return drawn.Value <= target.Value
	}
	return false
}

// MoveResult is the outcome of one ExecuteMove call.
type MoveResult struct {
	// Drawn is the card that came off the pile.
	Drawn game.Card
	// Success is true when the drawn card satisfied the predicate (a
	// joker anywhere always succeeds).
	Success bool
	// RecoveryOffered is true when the move was an inclusive exact
	// match (or involved a joker) and at least one failed box exists.
	// The caller may then call RecoverPosition, or decline.
	RecoveryOffered bool
}

// ExecuteMove draws the next card and resolves predicate pred against
// the card at position. On success the drawn card replaces the target;
// on failure the position empties and the target moves to FailedBoxes.
// The pre-move state is snapshotted onto MoveHistory first, so a
// failed validation leaves the state untouched and a completed move is
// exactly invertible by Undo.
func ExecuteMove(s *game.GameState, position int, pred Predicate) (MoveResult, error) {
	if position < 0 || position >= game.NumPositions {
		return MoveResult{}, fmt.Errorf("%w: %d out of range [0,%d)", ErrInvalidPosition, position, game.NumPositions)
	}
	if s.VisibleCards[position] == nil {
		return MoveResult{}, fmt.Errorf("%w: %d has no card", ErrInvalidPosition, position)
	}
	if len(s.RemainingDeck) == 0 {
		return MoveResult{}, ErrEmptyDeck
	}
	if pred.Inclusive() && s.InclusiveRemaining <= 0 {
		return MoveResult{}, ErrInsufficientInclusive
	}

	drawn := s.RemainingDeck[0]
	target := *s.VisibleCards[position]

	s.MoveHistory = append(s.MoveHistory, snapshot(s, &drawn, position, s.VisibleCards[position], pred.Inclusive()))

	s.RemainingDeck = s.RemainingDeck[1:]
	if pred.Inclusive() {
		s.InclusiveRemaining--
		s.Stats.InclusiveUsed++
	}
	s.Stats.MovesUsed++
	if drawn.Joker {
		s.Stats.JokersDrawn++
	}

	success := pred.holds(drawn, target)
	if success {
		placed := drawn
		s.VisibleCards[position] = &placed
	} else {
		s.VisibleCards[position] = nil
		s.FailedBoxes[position] = target
	}

	exact := drawn.Joker || target.Joker || drawn.Value == target.Value
	offered := pred.Inclusive() && exact && len(s.FailedBoxes) > 0

	return MoveResult{Drawn: drawn, Success: success, RecoveryOffered: offered}, nil
}

// RecoverPosition moves a failed box's card back into play. The engine
// does not police when recovery is legal; callers act on
// MoveResult.RecoveryOffered. Recoveries are undoable like moves.
func RecoverPosition(s *game.GameState, position int) error {
	card, ok := s.FailedBoxes[position]
	if !ok {
		return fmt.Errorf("%w: %d is not a failed box", ErrInvalidPosition, position)
	}

	s.MoveHistory = append(s.MoveHistory, snapshot(s, nil, position, nil, false))

	restored := card
	s.VisibleCards[position] = &restored
	delete(s.FailedBoxes, position)
	return nil
}

// Undo pops the most recent move or recovery and restores the state
// exactly: the drawn card returns to the front of the pile, the
// position's prior card comes back, and the failed-box map, inclusive
// budget, counters, and auxiliary counts are reinstated wholesale.
func Undo(s *game.GameState) error {
	if len(s.MoveHistory) == 0 {
		return ErrNoMoveHistory
	}

	m := s.MoveHistory[len(s.MoveHistory)-1]
	s.MoveHistory = s.MoveHistory[:len(s.MoveHistory)-1]

	if m.Drawn != nil {
		deck := make([]game.Card, 0, len(s.RemainingDeck)+1)
		deck = append(deck, *m.Drawn)
		deck = append(deck, s.RemainingDeck...)
		s.RemainingDeck = deck
	}

	if m.Prior != nil {
		prior := *m.Prior
		s.VisibleCards[m.Position] = &prior
	} else {
		s.VisibleCards[m.Position] = nil
	}

	s.FailedBoxes = make(map[int]game.Card, len(m.FailedBoxes))
	for pos, c := range m.FailedBoxes {
		s.FailedBoxes[pos] = c
	}

	s.InclusiveRemaining = m.InclusiveRemaining
	s.Stats = m.Stats
	s.Aux = append([]int(nil), m.Aux...)
	return nil
}

// IsGameOver reports whether play has ended: the pile is exhausted or
// every box has failed.
func IsGameOver(s *game.GameState) bool {
	return len(s.RemainingDeck) == 0 || s.ActiveCount() == 0
}

// HasWon reports a win: the whole pile was played out with at least
// one box still alive.
func HasWon(s *game.GameState) bool {
	return len(s.RemainingDeck) == 0 && s.ActiveCount() > 0
}

// snapshot captures the pre-move state for one history record. prior
// and drawn are copied so later mutation cannot reach into history.
func snapshot(s *game.GameState, drawn *game.Card, position int, prior *game.Card, usedInclusive bool) game.Move {
	m := game.Move{
		Position:           position,
		UsedInclusive:      usedInclusive,
		InclusiveRemaining: s.InclusiveRemaining,
		Stats:              s.Stats,
		FailedBoxes:        make(map[int]game.Card, len(s.FailedBoxes)),
		Aux:                append([]int(nil), s.Aux...),
	}
	if drawn != nil {
		c := *drawn
		m.Drawn = &c
	}
	if prior != nil {
		c := *prior
		m.Prior = &c
	}
	for pos, c := range s.FailedBoxes {
		m.FailedBoxes[pos] = c
	}
	return m
}
