package rules

import (
	"math"
	"testing"

	"beatbox/game"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s=%v want=%v", name, got, want)
	}
}

func TestCardOdds_NoJokers(t *testing.T) {
	// Target 7 with 12 cards left: 7 higher, 5 lower, none equal.
	deck := []game.Card{
		card(8), card(9), card(10), card(11), card(12), card(13), card(14),
		card(2), card(3), card(4), card(5), card(6),
	}
	o := CardOdds(card(7), deck)

	approx(t, "higher", o.Higher, 100*7.0/12)
	approx(t, "lower", o.Lower, 100*5.0/12)
	approx(t, "higherEqual", o.HigherEqual, 100*7.0/12)
	approx(t, "lowerEqual", o.LowerEqual, 100*5.0/12)
	approx(t, "exactMatch", o.ExactMatch, 0)
}

func TestCardOdds_WithJokersAndEquals(t *testing.T) {
	// Target 7, pile of one higher, one lower, one equal, one joker.
	// The joker counts toward every outcome and widens the
	// denominator to 5.
	deck := []game.Card{card(8), card(2), card(7), joker()}
	o := CardOdds(card(7), deck)

	approx(t, "higher", o.Higher, 100*2.0/5)
	approx(t, "lower", o.Lower, 100*2.0/5)
	approx(t, "higherEqual", o.HigherEqual, 100*3.0/5)
	approx(t, "lowerEqual", o.LowerEqual, 100*3.0/5)
	approx(t, "exactMatch", o.ExactMatch, 100*2.0/5)
}

func TestCardOdds_JokerTarget(t *testing.T) {
	o := CardOdds(joker(), []game.Card{card(2)})
	for name, got := range map[string]float64{
		"higher": o.Higher, "lower": o.Lower,
		"higherEqual": o.HigherEqual, "lowerEqual": o.LowerEqual,
		"exactMatch": o.ExactMatch,
	} {
		approx(t, name, got, 100)
	}
}

func TestCardOdds_EmptyPile(t *testing.T) {
	o := CardOdds(card(7), nil)
	if o != (Odds{}) {
		t.Fatalf("empty pile should yield zero odds, got %+v", o)
	}
}

func TestCardOdds_Pure(t *testing.T) {
	deck := []game.Card{card(8), card(2), joker()}
	original := append([]game.Card(nil), deck...)

	_ = CardOdds(card(7), deck)

	for i := range deck {
		if deck[i] != original[i] {
			t.Fatalf("CardOdds modified the pile at %d", i)
		}
	}
}

func TestStateOdds_SkipsFailedPositions(t *testing.T) {
	s := testState([]game.Card{card(5), card(9)}, []game.Card{card(7)}, 0)
	s.VisibleCards[1] = nil
	s.FailedBoxes[1] = card(9)

	odds := StateOdds(s)
	if len(odds) != 1 {
		t.Fatalf("odds for %d positions, want 1", len(odds))
	}
	o, ok := odds[0]
	if !ok {
		t.Fatalf("no odds for position 0")
	}
	approx(t, "higher", o.Higher, 100)
}
