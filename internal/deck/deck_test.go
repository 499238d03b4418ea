package deck

import (
	"testing"

	"github.com/jason-s-yu/lotpoker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardDeckHasEveryCardOnce(t *testing.T) {
	cards := Standard()
	require.Len(t, cards, Size)
	seen := make(map[models.Card]bool)
	for _, c := range cards {
		require.True(t, c.Valid(), "invalid card %v", c)
		require.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestDealLotsPartitionsTheDeck(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		lots := DealLots(NewRand(seed))
		require.Len(t, lots, 13)

		seen := make(map[models.Card]int)
		for i, lot := range lots {
			assert.Equal(t, i, lot.ID)
			require.Len(t, lot.Cards, models.LotSize)
			assert.Empty(t, lot.Bids)
			for _, c := range lot.Cards {
				seen[c]++
			}
		}
		require.Len(t, seen, Size, "seed %d", seed)
		for c, n := range seen {
			assert.Equal(t, 1, n, "card %v appears %d times (seed %d)", c, n, seed)
		}
	}
}

func TestShuffleIsReproducibleForASeed(t *testing.T) {
	a := Shuffled(NewRand(42))
	b := Shuffled(NewRand(42))
	c := Shuffled(NewRand(43))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPartitionRejectsRaggedDeck(t *testing.T) {
	_, err := Partition(Standard()[:51])
	assert.Error(t, err)
}

func TestRandomCardIsAlwaysValid(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		assert.True(t, RandomCard(r).Valid())
	}
}
