package models

// WaitState records which submission the controller still needs from a player.
type WaitState string

const (
	WaitingNone  WaitState = ""
	WaitingBid   WaitState = "bid"
	WaitingGuess WaitState = "guess"
)

// Guess is a claim about another player's hidden card. An empty TargetID
// means the player declined to guess.
type Guess struct {
	TargetID string `json:"targetPlayerId"`
	Card     Card   `json:"card"`
}

// Player is owned by the game controller; Money and EarnedCards only change
// through auction settlement.
type Player struct {
	ID          string    `json:"id"`
	Money       int       `json:"money"`
	HiddenCard  *Card     `json:"-"`
	EarnedCards []Card    `json:"earnedCards"`
	Guess       *Guess    `json:"-"`
	Waiting     WaitState `json:"-"`
}

// NewPlayer returns a player holding the starting stake and nothing else.
func NewPlayer(id string, money int) *Player {
	return &Player{
		ID:          id,
		Money:       money,
		EarnedCards: []Card{},
	}
}

// ResetForGame clears per-game state and restores the starting stake.
func (p *Player) ResetForGame(money int) {
	p.Money = money
	p.HiddenCard = nil
	p.EarnedCards = []Card{}
	p.Guess = nil
	p.Waiting = WaitingNone
}

// PlayerSummary is the public view of a player: never the hidden card or guess.
type PlayerSummary struct {
	ID          string `json:"id"`
	Money       int    `json:"money"`
	EarnedCards []Card `json:"earnedCards"`
}

// Summary returns the public view of p.
func (p *Player) Summary() PlayerSummary {
	cards := make([]Card, len(p.EarnedCards))
	copy(cards, p.EarnedCards)
	return PlayerSummary{ID: p.ID, Money: p.Money, EarnedCards: cards}
}
