// Package poker finds the best five-card poker hand among any number of cards
// and encodes it as a comparable strength vector.
package poker

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jason-s-yu/lotpoker/internal/models"
)

// ErrInsufficientCards is returned when fewer than five distinct cards are given.
var ErrInsufficientCards = errors.New("at least 5 cards are required")

// HandSize is the number of cards in a poker hand.
const HandSize = 5

// Class is the hand category; a higher value is a stronger hand.
type Class int

const (
	NoHand Class = iota
	HighCard
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var classNames = map[Class]string{
	NoHand:        "Insufficient Cards",
	HighCard:      "High Card",
	OnePair:       "One Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Strength is [class, tiebreak1..tiebreak5], zero padded. Vectors compare
// element-wise from the left.
type Strength [6]int

// Class returns the hand category encoded in the first element.
func (s Strength) Class() Class {
	return Class(s[0])
}

// Compare returns 1 if s beats o, -1 if o beats s and 0 on a tie.
func (s Strength) Compare(o Strength) int {
	for i := range s {
		if s[i] > o[i] {
			return 1
		}
		if s[i] < o[i] {
			return -1
		}
	}
	return 0
}

// Hand is the evaluation result: the category, its strength vector and the
// five cards that make it.
type Hand struct {
	Class    Class
	Strength Strength
	Cards    []models.Card
}

// Evaluate returns the best five-card hand that can be built from cards.
// Duplicate cards are counted once.
func Evaluate(cards []models.Card) (Hand, error) {
	sorted := distinctByRankDesc(cards)
	if len(sorted) < HandSize {
		return Hand{}, fmt.Errorf("evaluate %d cards: %w", len(sorted), ErrInsufficientCards)
	}

	byRank := make(map[int][]models.Card)
	bySuit := make(map[models.Suit][]models.Card)
	var ranksDesc []int
	for _, c := range sorted {
		if _, ok := byRank[c.Rank]; !ok {
			ranksDesc = append(ranksDesc, c.Rank)
		}
		byRank[c.Rank] = append(byRank[c.Rank], c)
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
	}

	var flushSuits []models.Suit
	for _, suit := range models.Suits {
		if len(bySuit[suit]) >= HandSize {
			flushSuits = append(flushSuits, suit)
		}
	}

	// Straight flush.
	var sfRun []int
	var sfSuit models.Suit
	for _, suit := range flushSuits {
		if run := findStraight(bySuit[suit]); run != nil && (sfRun == nil || run[0] > sfRun[0]) {
			sfRun, sfSuit = run, suit
		}
	}
	if sfRun != nil {
		class := StraightFlush
		if sfRun[0] == models.MaxRank {
			class = RoyalFlush
		}
		return newHand(class, sfRun, cardsForRanks(bySuit[sfSuit], sfRun)), nil
	}

	var quads, trips, pairs []int
	for _, r := range ranksDesc {
		switch len(byRank[r]) {
		case 4:
			quads = append(quads, r)
		case 3:
			trips = append(trips, r)
		case 2:
			pairs = append(pairs, r)
		}
	}

	if len(quads) > 0 {
		q := quads[0]
		kickers := highestExcluding(sorted, 1, q)
		hand := append(append([]models.Card{}, byRank[q]...), kickers...)
		return newHand(FourOfAKind, []int{q, kickers[0].Rank}, hand), nil
	}

	if len(trips) > 0 && (len(pairs) > 0 || len(trips) > 1) {
		t := trips[0]
		p := 0
		if len(pairs) > 0 {
			p = pairs[0]
		}
		if len(trips) > 1 && trips[1] > p {
			p = trips[1]
		}
		hand := append(append([]models.Card{}, byRank[t][:3]...), byRank[p][:2]...)
		return newHand(FullHouse, []int{t, p}, hand), nil
	}

	if len(flushSuits) > 0 {
		var best []models.Card
		for _, suit := range flushSuits {
			top := bySuit[suit][:HandSize]
			if best == nil || compareRanks(top, best) > 0 {
				best = top
			}
		}
		return newHand(Flush, ranksOf(best), best), nil
	}

	if run := findStraight(sorted); run != nil {
		return newHand(Straight, run, cardsForRanks(sorted, run)), nil
	}

	if len(trips) > 0 {
		t := trips[0]
		kickers := highestExcluding(sorted, 2, t)
		hand := append(append([]models.Card{}, byRank[t]...), kickers...)
		return newHand(ThreeOfAKind, append([]int{t}, ranksOf(kickers)...), hand), nil
	}

	if len(pairs) >= 2 {
		hi, lo := pairs[0], pairs[1]
		kickers := highestExcluding(sorted, 1, hi, lo)
		hand := append(append(append([]models.Card{}, byRank[hi]...), byRank[lo]...), kickers...)
		return newHand(TwoPair, []int{hi, lo, kickers[0].Rank}, hand), nil
	}

	if len(pairs) == 1 {
		p := pairs[0]
		kickers := highestExcluding(sorted, 3, p)
		hand := append(append([]models.Card{}, byRank[p]...), kickers...)
		return newHand(OnePair, append([]int{p}, ranksOf(kickers)...), hand), nil
	}

	top := append([]models.Card{}, sorted[:HandSize]...)
	return newHand(HighCard, ranksOf(top), top), nil
}

// Compare orders two card sets by their best hands.
func Compare(a, b []models.Card) (int, error) {
	ha, err := Evaluate(a)
	if err != nil {
		return 0, err
	}
	hb, err := Evaluate(b)
	if err != nil {
		return 0, err
	}
	return ha.Strength.Compare(hb.Strength), nil
}

func newHand(class Class, tiebreaks []int, cards []models.Card) Hand {
	var s Strength
	s[0] = int(class)
	copy(s[1:], tiebreaks)
	return Hand{Class: class, Strength: s, Cards: cards}
}

// distinctByRankDesc drops repeated cards and sorts by rank, highest first.
// Equal ranks keep their input order.
func distinctByRankDesc(cards []models.Card) []models.Card {
	seen := make(map[models.Card]bool, len(cards))
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank > out[j].Rank
	})
	return out
}

// findStraight returns the five ranks of the highest straight in cards,
// highest first, or nil. cards must be sorted by rank descending. An ace
// also plays low as rank 1.
func findStraight(cards []models.Card) []int {
	var ranks []int
	var seen [models.MaxRank + 1]bool
	for _, c := range cards {
		if !seen[c.Rank] {
			seen[c.Rank] = true
			ranks = append(ranks, c.Rank)
		}
	}
	if seen[models.MaxRank] {
		ranks = append(ranks, 1)
	}

	run := 1
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]-1 {
			run = 1
			continue
		}
		run++
		if run == HandSize {
			return append([]int(nil), ranks[i-HandSize+1:i+1]...)
		}
	}
	return nil
}

// cardsForRanks picks, for each rank, the first card of that rank in cards.
// Rank 1 selects an ace.
func cardsForRanks(cards []models.Card, ranks []int) []models.Card {
	out := make([]models.Card, 0, len(ranks))
	for _, r := range ranks {
		want := r
		if want == 1 {
			want = models.MaxRank
		}
		for _, c := range cards {
			if c.Rank == want {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// highestExcluding returns the n highest cards whose rank is not in skip.
func highestExcluding(sorted []models.Card, n int, skip ...int) []models.Card {
	out := make([]models.Card, 0, n)
	for _, c := range sorted {
		if len(out) == n {
			break
		}
		excluded := false
		for _, s := range skip {
			if c.Rank == s {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, c)
		}
	}
	return out
}

func ranksOf(cards []models.Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = c.Rank
	}
	return out
}

func compareRanks(a, b []models.Card) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Rank != b[i].Rank {
			if a[i].Rank > b[i].Rank {
				return 1
			}
			return -1
		}
	}
	return 0
}
