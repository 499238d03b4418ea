package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit is one of the four single-letter suits: H, D, C, S.
type Suit string

const (
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
	Spades   Suit = "S"
)

// Suits lists every suit in deck-generation order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank bounds. Face cards are 11=J, 12=Q, 13=K, 14=A.
const (
	MinRank = 2
	MaxRank = 14
)

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// Symbol returns the unicode pip for the suit.
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Card is a plain value; two cards are the same card iff suit and rank match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank >= MinRank && c.Rank <= MaxRank
}

// String renders the card the way clients display it, e.g. "A♥" or "10♠".
func (c Card) String() string {
	return RankLabel(c.Rank) + c.Suit.Symbol()
}

// RankLabel returns "J", "Q", "K", "A" for face ranks and the number otherwise.
// Rank 1 is the low ace used in wheel straights.
func RankLabel(rank int) string {
	switch rank {
	case 1, 14:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return strconv.Itoa(rank)
	}
}

// ParseCard reads the compact suit-first form sent by clients: "H14", "HA",
// "S10", "ST", "d7". Matching is case-insensitive.
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit := Suit(s[:1])
	if !suit.Valid() {
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}
	rank, err := parseRank(s[1:])
	if err != nil {
		return Card{}, fmt.Errorf("invalid rank in card %q: %w", s, err)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

func parseRank(s string) (int, error) {
	switch s {
	case "A":
		return 14, nil
	case "K":
		return 13, nil
	case "Q":
		return 12, nil
	case "J":
		return 11, nil
	case "T":
		return 10, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < MinRank || n > MaxRank {
		return 0, fmt.Errorf("rank %d out of range", n)
	}
	return n, nil
}

// ContainsCard reports whether c appears in cards.
func ContainsCard(cards []Card, c Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
