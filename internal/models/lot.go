package models

// LotSize is the number of cards auctioned together as one lot.
const LotSize = 4

// Bid is one player's sealed offer for one lot in the current round.
type Bid struct {
	PlayerID string `json:"playerId"`
	LotID    int    `json:"lotId"`
	Amount   int    `json:"amount"`
}

// Lot is a fixed group of cards. Only Bids changes after the deal, and it
// only ever holds bids for the round being collected.
type Lot struct {
	ID    int    `json:"id"`
	Cards []Card `json:"cards"`
	Bids  []Bid  `json:"-"`
}
