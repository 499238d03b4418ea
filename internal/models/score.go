package models

// ScoreDetail is the read-only result line for one player at game end.
type ScoreDetail struct {
	PlayerID   string `json:"playerId"`
	Rank       int    `json:"rank"`
	HandName   string `json:"handRankName"`
	BestHand   []Card `json:"bestHand"`
	HiddenCard Card   `json:"hiddenCard"`
	Valid      bool   `json:"valid"`
	PrizeScore int    `json:"prizeScore"`
	GuessScore int    `json:"guessScore"`
	MoneyScore int    `json:"moneyScore"`
	TotalScore int    `json:"totalScore"`
}
