// internal/game/sync_state.go
package game

import (
	"github.com/jason-s-yu/lotpoker/internal/models"
)

// ObfPlayerState is one player as anyone may see them: no hidden card, no guess.
type ObfPlayerState struct {
	PlayerID    string        `json:"playerId"`
	Money       int           `json:"money"`
	EarnedCards []models.Card `json:"earnedCards"`
	Submitted   bool          `json:"submitted"` // false while the game still waits on this player
}

// ObfGameState is the public snapshot served to spectators and reconnecting clients.
// Bids and hidden cards are never included; final scores appear once the game is finished.
type ObfGameState struct {
	GameID     string               `json:"gameId"`
	Phase      string               `json:"phase"`
	Round      int                  `json:"round"` // 1-based, 0 outside the auction
	RoundCount int                  `json:"roundCount"`
	ActiveLots []int                `json:"activeLotIds,omitempty"`
	Lots       []LotView            `json:"lots,omitempty"`
	Players    []ObfPlayerState     `json:"players"`
	MinPlayers int                  `json:"minPlayers"`
	Scores     []models.ScoreDetail `json:"scores,omitempty"`
}

// GetPublicState generates a snapshot of the game that is safe to show to anyone.
func (g *AuctionGame) GetPublicState() ObfGameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	obf := ObfGameState{
		GameID:     g.ID.String(),
		Phase:      g.Phase.String(),
		RoundCount: len(g.HouseRules.RoundPlan),
		Lots:       g.lotViews(),
		Players:    make([]ObfPlayerState, 0, len(g.Players)),
		MinPlayers: g.HouseRules.MinPlayers,
	}
	if g.Phase == PhaseAuction {
		obf.Round = g.CurrentRound + 1
		obf.ActiveLots = append([]int(nil), g.HouseRules.RoundPlan[g.CurrentRound]...)
	}
	if g.Phase == PhaseFinished {
		obf.Scores = append([]models.ScoreDetail(nil), g.Results...)
	}

	for _, p := range g.Players {
		s := p.Summary()
		obf.Players = append(obf.Players, ObfPlayerState{
			PlayerID:    s.ID,
			Money:       s.Money,
			EarnedCards: s.EarnedCards,
			Submitted:   p.Waiting == models.WaitingNone,
		})
	}
	return obf
}
