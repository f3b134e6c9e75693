// Package game defines the core state types for Beat the Box.
//
// A game is nine face-up positions (the "box") played against a FIFO
// draw pile. The state is designed to be cheaply clonable so the
// simulator can run many independent games, and every mutation is
// snapshotted so the engine can undo exactly.
package game

import "math/rand"

// Card values follow the usual high-ace convention.
const (
	ValueJack  = 11
	ValueQueen = 12
	ValueKing  = 13
	ValueAce   = 14
)

// Suits in dealing order. Suit is irrelevant to comparison; it only
// disambiguates card identity.
var Suits = []string{"♠", "♥", "♦", "♣"}

// Card is a single playing card. Jokers carry no comparable value:
// Value is 0 and every predicate resolves in their favor.
type Card struct {
	Value int
	Suit  string
	Joker bool
}

func (c Card) String() string {
	if c.Joker {
		return "🃏"
	}
	var face string
	switch c.Value {
	case ValueAce:
		face = "A"
	case ValueKing:
		face = "K"
	case ValueQueen:
		face = "Q"
	case ValueJack:
		face = "J"
	case 10:
		face = "10"
	default:
		face = string(rune('0' + c.Value))
	}
	return face + c.Suit
}

// BuildDeck returns the 52 standard cards plus jokers (0-2) in
// deterministic order. Callers shuffle separately.
func BuildDeck(jokers int) []Card {
	deck := make([]Card, 0, 52+jokers)
	for _, suit := range Suits {
		for v := 2; v <= ValueAce; v++ {
			deck = append(deck, Card{Value: v, Suit: suit})
		}
	}
	for i := 0; i < jokers; i++ {
		deck = append(deck, Card{Joker: true})
	}
	return deck
}

// Shuffle returns a uniformly random permutation of deck without
// modifying the input. rng must not be shared across goroutines.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
