// internal/game/rules.go
package game

import "fmt"

// LotCount is the number of lots dealt from one deck.
const LotCount = 13

// DefaultRoundPlan groups the 13 lots into five auction rounds.
var DefaultRoundPlan = [][]int{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, {9, 10, 11}, {12}}

// HouseRules holds the per-server game configuration.
type HouseRules struct {
	MinPlayers    int     `json:"minPlayers"`    // roster size that starts a game
	StartingMoney int     `json:"startingMoney"` // restored to every player at each deal
	RoundPlan     [][]int `json:"roundPlan"`     // lot ids auctioned together, per round
}

// DefaultHouseRules returns the standard setup: two players, 1000 coins, five rounds.
func DefaultHouseRules() HouseRules {
	plan := make([][]int, len(DefaultRoundPlan))
	for i, r := range DefaultRoundPlan {
		plan[i] = append([]int(nil), r...)
	}
	return HouseRules{
		MinPlayers:    2,
		StartingMoney: 1000,
		RoundPlan:     plan,
	}
}

// Validate checks the rules describe a playable game: every lot is
// auctioned in exactly one round.
func (rules HouseRules) Validate() error {
	if rules.MinPlayers < 1 {
		return fmt.Errorf("minPlayers must be at least 1, got %d", rules.MinPlayers)
	}
	if rules.StartingMoney < 0 {
		return fmt.Errorf("startingMoney must not be negative, got %d", rules.StartingMoney)
	}
	if len(rules.RoundPlan) == 0 {
		return fmt.Errorf("roundPlan must contain at least one round")
	}
	seen := make(map[int]bool)
	for r, lots := range rules.RoundPlan {
		if len(lots) == 0 {
			return fmt.Errorf("round %d has no lots", r+1)
		}
		for _, id := range lots {
			if id < 0 || id >= LotCount {
				return fmt.Errorf("round %d: lot %d out of range", r+1, id)
			}
			if seen[id] {
				return fmt.Errorf("round %d: lot %d is auctioned twice", r+1, id)
			}
			seen[id] = true
		}
	}
	if len(seen) != LotCount {
		return fmt.Errorf("roundPlan covers %d of %d lots", len(seen), LotCount)
	}
	return nil
}
