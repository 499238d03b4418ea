// Package auction resolves sealed-bid lot auctions.
//
// A unique top bidder pays the second-highest amount. When the top amount is
// tied the winner is drawn uniformly from the tied bidders and pays the full
// tied amount.
package auction

import (
	"fmt"

	"github.com/jason-s-yu/lotpoker/internal/models"
)

// Rand is the subset of *rand.Rand used to break ties.
type Rand interface {
	Intn(n int) int
}

// Outcome is the settled result of one lot.
type Outcome struct {
	LotID    int           `json:"lotId"`
	WinnerID string        `json:"winnerId"`
	Price    int           `json:"pricePaid"`
	Cards    []models.Card `json:"cards"`

	// Tied lists every bidder that shared the top amount, the winner included.
	Tied []string `json:"-"`
}

// Resolve picks the winner and clearing price for lot. ok is false when no
// bids were placed; the lot then stays unsold.
func Resolve(lot *models.Lot, bids []models.Bid, r Rand) (out Outcome, ok bool) {
	if len(bids) == 0 {
		return Outcome{}, false
	}

	var top []models.Bid
	second := 0
	for _, b := range bids {
		switch {
		case len(top) == 0:
			top = []models.Bid{b}
		case b.Amount > top[0].Amount:
			second = top[0].Amount
			top = []models.Bid{b}
		case b.Amount == top[0].Amount:
			second = top[0].Amount
			top = append(top, b)
		case b.Amount > second:
			second = b.Amount
		}
	}

	winner := top[0]
	if len(top) > 1 {
		winner = top[r.Intn(len(top))]
	}

	tied := make([]string, len(top))
	for i, b := range top {
		tied[i] = b.PlayerID
	}
	cards := make([]models.Card, len(lot.Cards))
	copy(cards, lot.Cards)

	return Outcome{
		LotID:    lot.ID,
		WinnerID: winner.PlayerID,
		Price:    second,
		Cards:    cards,
		Tied:     tied,
	}, true
}

// Settle charges the winner the clearing price and hands over the lot's cards.
// Bid validation keeps the price within the winner's money.
func Settle(out Outcome, winner *models.Player) error {
	if winner == nil || winner.ID != out.WinnerID {
		return fmt.Errorf("settle lot %d: winner %q not found", out.LotID, out.WinnerID)
	}
	if out.Price > winner.Money {
		return fmt.Errorf("settle lot %d: price %d exceeds %s's money %d", out.LotID, out.Price, winner.ID, winner.Money)
	}
	winner.Money -= out.Price
	winner.EarnedCards = append(winner.EarnedCards, out.Cards...)
	return nil
}
