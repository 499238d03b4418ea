// Package scoring turns the final state of a game into ranked score lines.
package scoring

import (
	"errors"
	"sort"

	"github.com/jason-s-yu/lotpoker/internal/models"
	"github.com/jason-s-yu/lotpoker/internal/poker"
)

// PrizeUnit scales the triangular prize table.
const PrizeUnit = 100

// Entry is one player's final state as seen by the scorer.
type Entry struct {
	PlayerID    string
	HiddenCard  models.Card
	EarnedCards []models.Card
	Money       int
	Guess       *models.Guess
}

// Prize returns the hand prize for rank position k (1 = strongest) among n
// players: (n-k)(n-k+1)/2 * PrizeUnit. Last place gets nothing.
func Prize(k, n int) int {
	if k < 1 || k > n {
		return 0
	}
	m := n - k
	return m * (m + 1) / 2 * PrizeUnit
}

type rankedHand struct {
	idx  int
	hand poker.Hand
}

// Score ranks every entry by poker hand, awards prizes, guess bonuses and
// leftover money, and returns the lines ordered by total score, highest first.
// Players with equal hands keep their entry order.
func Score(entries []Entry) []models.ScoreDetail {
	n := len(entries)
	details := make([]models.ScoreDetail, n)
	ranked := make([]rankedHand, n)

	for i, e := range entries {
		candidates := make([]models.Card, 0, len(e.EarnedCards)+1)
		candidates = append(candidates, e.EarnedCards...)
		if !models.ContainsCard(candidates, e.HiddenCard) {
			candidates = append(candidates, e.HiddenCard)
		}

		hand, err := poker.Evaluate(candidates)
		valid := err == nil
		if err != nil && !errors.Is(err, poker.ErrInsufficientCards) {
			// Evaluate has no other failure mode.
			panic(err)
		}
		if !valid {
			hand = poker.Hand{Class: poker.NoHand, Cards: []models.Card{}}
		}

		ranked[i] = rankedHand{idx: i, hand: hand}
		details[i] = models.ScoreDetail{
			PlayerID:   e.PlayerID,
			HandName:   hand.Class.String(),
			BestHand:   hand.Cards,
			HiddenCard: e.HiddenCard,
			Valid:      valid,
			MoneyScore: e.Money,
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].hand.Strength.Compare(ranked[b].hand.Strength) > 0
	})
	order := make([]int, n)
	for pos, r := range ranked {
		details[r.idx].Rank = pos + 1
		details[r.idx].PrizeScore = Prize(pos+1, n)
		order[pos] = r.idx
	}

	byID := make(map[string]int, n)
	for i, e := range entries {
		byID[e.PlayerID] = i
	}
	for i, e := range entries {
		if e.Guess == nil || e.Guess.TargetID == "" {
			continue
		}
		t, ok := byID[e.Guess.TargetID]
		if !ok {
			continue
		}
		if entries[t].HiddenCard == e.Guess.Card {
			details[i].GuessScore += details[t].PrizeScore / 2
		}
	}

	out := make([]models.ScoreDetail, 0, n)
	for _, idx := range order {
		d := details[idx]
		d.TotalScore = d.PrizeScore + d.GuessScore + d.MoneyScore
		out = append(out, d)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].TotalScore > out[b].TotalScore
	})
	return out
}
