// Command play is a line-oriented interface for playing one game by
// hand. All rules live in the engine packages; this file only parses
// commands and prints state.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"beatbox/game"
	"beatbox/rules"
)

var suitByLetter = map[byte]string{
	's': "♠",
	'h': "♥",
	'd': "♦",
	'c': "♣",
}

var predByName = map[string]rules.Predicate{
	"h":  rules.Higher,
	"l":  rules.Lower,
	"he": rules.HigherEqual,
	"le": rules.LowerEqual,
}

func main() {
	jokers := flag.Int("jokers", 0, "Jokers in the deck (0-2)")
	budget := flag.Int("budget", 10, "Inclusive choices allowed")
	manual := flag.Bool("manual", false, "Enter the nine starting cards by hand (physical deck mode)")
	showFailed := flag.Bool("show-failed", false, "Reveal the card under a failed box")
	seed := flag.Int64("seed", 0, "RNG seed (0 = from clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	deal := game.AutoDeal
	if *manual {
		deal = game.ManualDeal
	}
	sess, err := rules.NewSession(*jokers, *budget, deal, rng)
	if err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}
	sess.ShowFailedCards = *showFailed

	in := bufio.NewScanner(os.Stdin)
	if *manual {
		if err := placeStartingCards(sess, in); err != nil {
			log.Fatalf("Failed to place starting cards: %v", err)
		}
	}

	fmt.Println("Commands: <pos> h|l|he|le, odds, counts, undo, quit")
	for {
		printBoard(sess)
		if rules.IsGameOver(sess.State) {
			if rules.HasWon(sess.State) {
				fmt.Printf("You beat the box with %d position(s) alive!\n", sess.State.ActiveCount())
			} else {
				fmt.Printf("All boxes failed with %d card(s) left. Better luck next time.\n", len(sess.State.RemainingDeck))
			}
			fmt.Println("Type undo to take back the last move, anything else to quit.")
			if !in.Scan() || strings.TrimSpace(in.Text()) != "undo" {
				return
			}
			if err := sess.Undo(); err != nil {
				fmt.Println(err)
				return
			}
			continue
		}

		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(strings.ToLower(in.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "q":
			return
		case "undo":
			if err := sess.Undo(); err != nil {
				fmt.Println(err)
			}
		case "odds":
			printOdds(sess.State)
		case "counts":
			hiLo, t2, t3 := sess.Counts()
			fmt.Printf("Counts: hi-lo %+d, two-tier %+d, three-tier %+d\n", hiLo, t2, t3)
		default:
			playMove(sess, in, fields)
		}
	}
}

func playMove(sess *rules.Session, in *bufio.Scanner, fields []string) {
	if len(fields) != 2 {
		fmt.Println("Expected: <pos> h|l|he|le")
		return
	}
	pos, err := strconv.Atoi(fields[0])
	if err != nil || pos < 1 || pos > game.NumPositions {
		fmt.Printf("Position must be 1-%d\n", game.NumPositions)
		return
	}
	pred, ok := predByName[fields[1]]
	if !ok {
		fmt.Println("Predicate must be h, l, he, or le")
		return
	}

	res, err := sess.ExecuteMove(pos-1, pred)
	if err != nil {
		fmt.Println(err)
		return
	}
	if res.Success {
		fmt.Printf("Drew %s: success\n", res.Drawn)
	} else {
		fmt.Printf("Drew %s: position %d failed\n", res.Drawn, pos)
	}

	if res.RecoveryOffered {
		offerRecovery(sess, in)
	}
}

func offerRecovery(sess *rules.Session, in *bufio.Scanner) {
	failed := make([]int, 0, len(sess.State.FailedBoxes))
	for p := range sess.State.FailedBoxes {
		failed = append(failed, p+1)
	}
	sort.Ints(failed)

	fmt.Printf("Exact match! Recover a failed position %v, or enter to skip: ", failed)
	if !in.Scan() {
		return
	}
	text := strings.TrimSpace(in.Text())
	if text == "" {
		return
	}
	pos, err := strconv.Atoi(text)
	if err != nil {
		fmt.Println("Skipping recovery")
		return
	}
	if err := sess.Recover(pos - 1); err != nil {
		fmt.Println(err)
	}
}

func placeStartingCards(sess *rules.Session, in *bufio.Scanner) error {
	fmt.Println("Enter the nine dealt cards (e.g. qs, 10h, 7d, joker):")
	for pos := 0; pos < game.NumPositions; pos++ {
		for {
			fmt.Printf("Position %d: ", pos+1)
			if !in.Scan() {
				return fmt.Errorf("input closed")
			}
			card, err := parseCard(strings.TrimSpace(strings.ToLower(in.Text())))
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := sess.PlaceInitial(pos, card); err != nil {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	return nil
}

// parseCard reads tokens like "qs" (queen of spades), "10h", "ad", or
// "joker".
func parseCard(token string) (game.Card, error) {
	if token == "joker" || token == "j0" {
		return game.Card{Joker: true}, nil
	}
	if len(token) < 2 {
		return game.Card{}, fmt.Errorf("unrecognized card %q", token)
	}

	suit, ok := suitByLetter[token[len(token)-1]]
	if !ok {
		return game.Card{}, fmt.Errorf("unknown suit in %q (use s, h, d, or c)", token)
	}

	var value int
	switch face := token[:len(token)-1]; face {
	case "a":
		value = game.ValueAce
	case "k":
		value = game.ValueKing
	case "q":
		value = game.ValueQueen
	case "j":
		value = game.ValueJack
	default:
		v, err := strconv.Atoi(face)
		if err != nil || v < 2 || v > 10 {
			return game.Card{}, fmt.Errorf("unknown face %q", face)
		}
		value = v
	}
	return game.Card{Value: value, Suit: suit}, nil
}

func printBoard(sess *rules.Session) {
	s := sess.State
	fmt.Println()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			pos := row*3 + col
			fmt.Printf("%d:%-5s", pos+1, slotText(sess, pos))
		}
		fmt.Println()
	}
	fmt.Printf("Deck: %d cards  Inclusive left: %d", len(s.RemainingDeck), s.InclusiveRemaining)
	if len(s.FailedBoxes) > 0 {
		fmt.Printf("  Failed: %d", len(s.FailedBoxes))
	}
	fmt.Println()
}

func slotText(sess *rules.Session, pos int) string {
	if c := sess.State.VisibleCards[pos]; c != nil {
		return c.String()
	}
	if c, ok := sess.State.FailedBoxes[pos]; ok && sess.ShowFailedCards {
		return "(" + c.String() + ")"
	}
	return "--"
}

func printOdds(s *game.GameState) {
	odds := rules.StateOdds(s)
	positions := make([]int, 0, len(odds))
	for p := range odds {
		positions = append(positions, p)
	}
	sort.Ints(positions)

	fmt.Printf("%-4s %-6s %7s %7s %7s %7s %7s\n", "pos", "card", "higher", "lower", ">=", "<=", "exact")
	for _, p := range positions {
		o := odds[p]
		fmt.Printf("%-4d %-6s %6.1f%% %6.1f%% %6.1f%% %6.1f%% %6.1f%%\n",
			p+1, s.VisibleCards[p], o.Higher, o.Lower, o.HigherEqual, o.LowerEqual, o.ExactMatch)
	}
}
