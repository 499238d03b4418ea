// Package deck builds and deals the 52-card deck used by every game.
package deck

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jason-s-yu/lotpoker/internal/models"
)

// Size is the number of cards in a standard deck.
const Size = 52

// NewRand returns a random source seeded from seed, or from the clock when
// seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Standard returns the 52 cards in suit-major, rank-ascending order.
func Standard() []models.Card {
	cards := make([]models.Card, 0, Size)
	for _, suit := range models.Suits {
		for rank := models.MinRank; rank <= models.MaxRank; rank++ {
			cards = append(cards, models.Card{Suit: suit, Rank: rank})
		}
	}
	return cards
}

// Shuffled returns a standard deck permuted by r.
func Shuffled(r *rand.Rand) []models.Card {
	cards := Standard()
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

// Partition splits cards into consecutive lots of models.LotSize, numbered
// from zero. len(cards) must be a multiple of the lot size.
func Partition(cards []models.Card) ([]*models.Lot, error) {
	if len(cards)%models.LotSize != 0 {
		return nil, fmt.Errorf("cannot partition %d cards into lots of %d", len(cards), models.LotSize)
	}
	lots := make([]*models.Lot, 0, len(cards)/models.LotSize)
	for i := 0; i < len(cards); i += models.LotSize {
		lotCards := make([]models.Card, models.LotSize)
		copy(lotCards, cards[i:i+models.LotSize])
		lots = append(lots, &models.Lot{ID: i / models.LotSize, Cards: lotCards})
	}
	return lots, nil
}

// DealLots shuffles a fresh deck and partitions it into 13 lots.
func DealLots(r *rand.Rand) []*models.Lot {
	lots, err := Partition(Shuffled(r))
	if err != nil {
		// Size is a multiple of LotSize.
		panic(err)
	}
	return lots
}

// RandomCard draws a card uniformly from the 52 combinations, independent of
// any lot already dealt.
func RandomCard(r *rand.Rand) models.Card {
	return models.Card{
		Suit: models.Suits[r.Intn(len(models.Suits))],
		Rank: models.MinRank + r.Intn(models.MaxRank-models.MinRank+1),
	}
}
