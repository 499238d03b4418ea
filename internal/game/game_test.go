// internal/game/game_test.go
package game

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lotpoker/internal/deck"
	"github.com/jason-s-yu/lotpoker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []Event            // Events sent to everyone
	playerEvents map[string][]Event // Events sent to specific players
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[string][]Event),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID string, ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = []Event{}
	mb.playerEvents = make(map[string][]Event)
}

func (mb *mockBroadcaster) getLastPlayerEvent(playerID string) Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

func (mb *mockBroadcaster) broadcasts() []Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return append([]Event(nil), mb.allEvents...)
}

func (mb *mockBroadcaster) privateTo(playerID string) []Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return append([]Event(nil), mb.playerEvents[playerID]...)
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, ev := range events {
		if e, ok := ev.(T); ok {
			out = append(out, e)
		}
	}
	return out
}

// newTestGame builds a seeded lobby wired to a mock broadcaster.
func newTestGame(t *testing.T, minPlayers int) (*AuctionGame, *mockBroadcaster) {
	t.Helper()
	rules := DefaultHouseRules()
	rules.MinPlayers = minPlayers
	require.NoError(t, rules.Validate())

	g := NewAuctionGame(rules, deck.NewRand(42))
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	return g, mb
}

// setupTestGame seats the given players; the last join deals the game.
func setupTestGame(t *testing.T, ids ...string) (*AuctionGame, *mockBroadcaster) {
	t.Helper()
	g, mb := newTestGame(t, len(ids))
	for _, id := range ids {
		require.NoError(t, g.Join(id))
	}
	require.Equal(t, PhaseAuction, g.Phase)
	return g, mb
}

// passRounds has every seated player submit an empty bid until guessing starts.
func passRounds(t *testing.T, g *AuctionGame) {
	t.Helper()
	for g.Phase == PhaseAuction {
		for _, p := range append([]*models.Player(nil), g.Players...) {
			require.NoError(t, g.SubmitBids(p.ID, nil))
		}
	}
	require.Equal(t, PhaseGuessing, g.Phase)
}

func TestJoinValidation(t *testing.T) {
	g, mb := newTestGame(t, 3)

	require.NoError(t, g.Join("alice"))
	assert.True(t, IsValidationError(g.Join("")))
	assert.True(t, IsValidationError(g.Join("   ")))
	assert.True(t, IsValidationError(g.Join("alice")))
	require.NoError(t, g.Join("bob"))

	assert.Equal(t, PhaseLobby, g.Phase)
	assert.Len(t, g.Players, 2)

	joined := eventsOf[PlayerJoinedEvent](mb.broadcasts())
	require.Len(t, joined, 2)
	assert.Equal(t, "bob", joined[1].PlayerID)
	assert.Equal(t, 2, joined[1].TotalPlayers)
}

func TestAutoStartDealsGame(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")

	assert.Equal(t, 0, g.CurrentRound)
	require.Len(t, g.Lots, LotCount)

	seen := make(map[models.Card]bool)
	for i, lot := range g.Lots {
		assert.Equal(t, i, lot.ID)
		require.Len(t, lot.Cards, models.LotSize)
		for _, c := range lot.Cards {
			assert.False(t, seen[c], "card %s dealt twice", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, deck.Size)

	for _, p := range g.Players {
		require.NotNil(t, p.HiddenCard)
		assert.True(t, p.HiddenCard.Valid())
		assert.Equal(t, 1000, p.Money)
		assert.Equal(t, models.WaitingBid, p.Waiting)

		private := mb.privateTo(p.ID)
		starts := eventsOf[GameStartEvent](private)
		require.Len(t, starts, 1)
		assert.Equal(t, *p.HiddenCard, starts[0].HiddenCard)
		assert.Equal(t, 1000, starts[0].InitialMoney)
		assert.Len(t, starts[0].Players, 2)
		assert.Len(t, starts[0].Lots, LotCount)

		auctions := eventsOf[StartAuctionEvent](private)
		require.Len(t, auctions, 1)
		assert.Equal(t, 1, auctions[0].Round)
		assert.Equal(t, []int{0, 1, 2}, auctions[0].LotIDs)
		assert.Equal(t, 1000, auctions[0].Money)
	}
}

func TestSameSeedSameDeal(t *testing.T) {
	g1, _ := setupTestGame(t, "alice", "bob")
	g2, _ := setupTestGame(t, "alice", "bob")
	for i := range g1.Lots {
		assert.Equal(t, g1.Lots[i].Cards, g2.Lots[i].Cards)
	}
	assert.Equal(t, *g1.Players[0].HiddenCard, *g2.Players[0].HiddenCard)
}

func TestJoinRejectedDuringGame(t *testing.T) {
	g, _ := setupTestGame(t, "alice", "bob")
	err := g.Join("carol")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Len(t, g.Players, 2)
}

func TestBidValidation(t *testing.T) {
	tests := []struct {
		name string
		bids []BidEntry
	}{
		{"negative amount", []BidEntry{{LotID: 0, Amount: -1}}},
		{"over money", []BidEntry{{LotID: 0, Amount: 600}, {LotID: 1, Amount: 401}}},
		{"lot outside round", []BidEntry{{LotID: 5, Amount: 10}}},
		{"unknown lot", []BidEntry{{LotID: 99, Amount: 10}}},
		{"duplicate lot", []BidEntry{{LotID: 1, Amount: 10}, {LotID: 1, Amount: 20}}},
		{"overflowing total", []BidEntry{{LotID: 0, Amount: math.MaxInt/2 + 1}, {LotID: 1, Amount: math.MaxInt/2 + 1}}},
		{"single huge amount", []BidEntry{{LotID: 0, Amount: math.MaxInt}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, mb := setupTestGame(t, "alice", "bob")
			mb.clear()

			err := g.SubmitBids("alice", tc.bids)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			rejected, ok := mb.getLastPlayerEvent("alice").(BidRejectedEvent)
			require.True(t, ok)
			assert.Equal(t, err.Error(), rejected.Message)

			assert.Equal(t, models.WaitingBid, g.Players[0].Waiting, "rejected bid must leave the player waiting")
			for _, lot := range g.Lots {
				assert.Empty(t, lot.Bids)
			}
			assert.Empty(t, mb.broadcasts())
			assert.Empty(t, mb.privateTo("bob"))
		})
	}
}

func TestBidSpendingExactlyAllMoney(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 500}, {LotID: 2, Amount: 500}}))
	_, ok := mb.getLastPlayerEvent("alice").(BidAcceptedEvent)
	assert.True(t, ok)
	assert.Len(t, g.Lots[0].Bids, 1)
}

func TestSecondSubmissionRejected(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 10}}))

	err := g.SubmitBids("alice", []BidEntry{{LotID: 1, Amount: 10}})
	require.Error(t, err)
	_, ok := mb.getLastPlayerEvent("alice").(BidRejectedEvent)
	assert.True(t, ok)
	assert.Empty(t, g.Lots[1].Bids)
}

func TestUnknownPlayerBid(t *testing.T) {
	g, _ := setupTestGame(t, "alice", "bob")
	assert.True(t, IsValidationError(g.SubmitBids("mallory", nil)))
}

func TestRoundResolution(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	lot0 := append([]models.Card(nil), g.Lots[0].Cards...)
	lot1 := append([]models.Card(nil), g.Lots[1].Cards...)
	mb.clear()

	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 100}}))
	assert.Empty(t, mb.broadcasts(), "round must not resolve before every player has bid")

	require.NoError(t, g.SubmitBids("bob", []BidEntry{{LotID: 0, Amount: 80}, {LotID: 1, Amount: 50}}))

	results := eventsOf[AuctionResultEvent](mb.broadcasts())
	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, 1, res.Round)
	assert.Equal(t, []int{2}, res.Unsold)
	require.Len(t, res.Results, 2)

	assert.Equal(t, 0, res.Results[0].LotID)
	assert.Equal(t, "alice", res.Results[0].WinnerID)
	assert.Equal(t, 80, res.Results[0].Price)
	assert.Equal(t, 1, res.Results[1].LotID)
	assert.Equal(t, "bob", res.Results[1].WinnerID)
	assert.Equal(t, 0, res.Results[1].Price)

	alice, bob := g.Players[0], g.Players[1]
	assert.Equal(t, 920, alice.Money)
	assert.Equal(t, lot0, alice.EarnedCards)
	assert.Equal(t, 1000, bob.Money)
	assert.Equal(t, lot1, bob.EarnedCards)

	require.Len(t, res.Players, 2)
	assert.Equal(t, 920, res.Players[0].Money)

	assert.Equal(t, 1, g.CurrentRound)
	auctions := eventsOf[StartAuctionEvent](mb.privateTo("alice"))
	require.Len(t, auctions, 1)
	assert.Equal(t, 2, auctions[0].Round)
	assert.Equal(t, []int{3, 4, 5}, auctions[0].LotIDs)
	assert.Equal(t, 920, auctions[0].Money)
}

func TestTiedBidsPayFullAmount(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	mb.clear()
	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 70}}))
	require.NoError(t, g.SubmitBids("bob", []BidEntry{{LotID: 0, Amount: 70}}))

	res := eventsOf[AuctionResultEvent](mb.broadcasts())[0]
	require.Len(t, res.Results, 1)
	assert.Contains(t, []string{"alice", "bob"}, res.Results[0].WinnerID)
	assert.Equal(t, 70, res.Results[0].Price)

	total := g.Players[0].Money + g.Players[1].Money
	assert.Equal(t, 1930, total)
}

func TestFullGame(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")

	var endedID uuid.UUID
	var endedScores []models.ScoreDetail
	g.OnGameEnd = func(id uuid.UUID, scores []models.ScoreDetail) {
		endedID = id
		endedScores = scores
	}

	// alice takes the first lot of every round at bob's price
	for round := 0; round < len(DefaultRoundPlan); round++ {
		first := DefaultRoundPlan[round][0]
		require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: first, Amount: 10}}))
		require.NoError(t, g.SubmitBids("bob", []BidEntry{{LotID: first, Amount: 5}}))
	}
	require.Equal(t, PhaseGuessing, g.Phase)
	assert.Len(t, eventsOf[AuctionResultEvent](mb.broadcasts()), 5)

	alice, bob := g.Players[0], g.Players[1]
	assert.Len(t, alice.EarnedCards, 20)
	assert.Equal(t, 975, alice.Money)
	assert.Empty(t, bob.EarnedCards)

	guessing := eventsOf[StartGuessingEvent](mb.broadcasts())
	require.Len(t, guessing, 1)
	require.Len(t, guessing[0].CardsPerPlayer, 2)
	assert.Len(t, guessing[0].CardsPerPlayer[0].Cards, 20)

	require.NoError(t, g.SubmitGuess("alice", "", models.Card{}))
	assert.Equal(t, PhaseGuessing, g.Phase)
	require.NoError(t, g.SubmitGuess("bob", "alice", *alice.HiddenCard))

	require.Equal(t, PhaseFinished, g.Phase)
	over := eventsOf[GameOverEvent](mb.broadcasts())
	require.Len(t, over, 1)
	scores := over[0].Scores
	require.Len(t, scores, 2)

	// alice: prize 100 + money 975; bob: no hand, half of alice's prize + 1000
	assert.Equal(t, "alice", scores[0].PlayerID)
	assert.Equal(t, 1, scores[0].Rank)
	assert.True(t, scores[0].Valid)
	assert.Equal(t, 100, scores[0].PrizeScore)
	assert.Equal(t, 1075, scores[0].TotalScore)

	assert.Equal(t, "bob", scores[1].PlayerID)
	assert.False(t, scores[1].Valid)
	assert.Equal(t, "Insufficient Cards", scores[1].HandName)
	assert.Equal(t, 50, scores[1].GuessScore)
	assert.Equal(t, 1050, scores[1].TotalScore)

	assert.Equal(t, g.ID, endedID)
	assert.Equal(t, scores, endedScores)
	assert.Equal(t, scores, g.Results)
}

func TestGuessRules(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")

	err := g.SubmitGuess("alice", "bob", models.Card{Suit: models.Hearts, Rank: 14})
	require.Error(t, err, "guess during auction")
	_, ok := mb.getLastPlayerEvent("alice").(GuessRejectedEvent)
	assert.True(t, ok)

	passRounds(t, g)
	require.NoError(t, g.SubmitGuess("alice", "bob", models.Card{Suit: models.Hearts, Rank: 14}))
	_, ok = mb.getLastPlayerEvent("alice").(GuessAcceptedEvent)
	assert.True(t, ok)

	err = g.SubmitGuess("alice", "bob", models.Card{Suit: models.Spades, Rank: 2})
	require.Error(t, err, "guess is write-once")
	assert.Equal(t, models.Card{Suit: models.Hearts, Rank: 14}, g.Players[0].Guess.Card)
}

func TestDisconnectDuringAuctionUnblocksRound(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob", "carol")

	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 10}}))
	require.NoError(t, g.SubmitBids("carol", []BidEntry{{LotID: 0, Amount: 50}}))
	g.Disconnect("carol")

	left := eventsOf[PlayerLeftEvent](mb.broadcasts())
	require.Len(t, left, 1)
	assert.Equal(t, "carol", left[0].PlayerID)
	assert.Len(t, g.Lots[0].Bids, 1, "departed player's bids are dropped")

	require.NoError(t, g.SubmitBids("bob", nil))
	res := eventsOf[AuctionResultEvent](mb.broadcasts())
	require.Len(t, res, 1)
	require.Len(t, res[0].Results, 1)
	assert.Equal(t, "alice", res[0].Results[0].WinnerID)
	assert.Equal(t, 0, res[0].Results[0].Price)
}

func TestDisconnectOfLastHoldoutResolvesRound(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob", "carol")
	require.NoError(t, g.SubmitBids("alice", nil))
	require.NoError(t, g.SubmitBids("bob", nil))
	g.Disconnect("carol")

	assert.Len(t, eventsOf[AuctionResultEvent](mb.broadcasts()), 1)
	assert.Equal(t, 1, g.CurrentRound)
}

func TestDisconnectDuringGuessingFinishesGame(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	passRounds(t, g)
	require.NoError(t, g.SubmitGuess("alice", "bob", models.Card{Suit: models.Clubs, Rank: 3}))
	g.Disconnect("bob")

	assert.Equal(t, PhaseFinished, g.Phase)
	over := eventsOf[GameOverEvent](mb.broadcasts())
	require.Len(t, over, 1)
	require.Len(t, over[0].Scores, 1)
	assert.Equal(t, "alice", over[0].Scores[0].PlayerID)
}

func TestEveryoneLeavingResetsToLobby(t *testing.T) {
	g, _ := setupTestGame(t, "alice", "bob")
	g.Disconnect("alice")
	assert.Equal(t, PhaseAuction, g.Phase)
	g.Disconnect("bob")

	assert.Equal(t, PhaseLobby, g.Phase)
	assert.Nil(t, g.Lots)
	assert.Empty(t, g.Players)

	require.NoError(t, g.Join("carol"))
	assert.Equal(t, PhaseLobby, g.Phase)
}

func TestDisconnectUnknownPlayerIsNoop(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	mb.clear()
	g.Disconnect("nobody")
	assert.Empty(t, mb.broadcasts())
	assert.Len(t, g.Players, 2)
}

func TestNewGameAfterFinish(t *testing.T) {
	g, mb := setupTestGame(t, "alice", "bob")
	require.True(t, IsValidationError(g.NewGame("alice")), "game still running")

	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 300}}))
	require.NoError(t, g.SubmitBids("bob", nil))
	passRounds(t, g)
	require.NoError(t, g.SubmitGuess("alice", "", models.Card{}))
	require.NoError(t, g.SubmitGuess("bob", "", models.Card{}))
	require.Equal(t, PhaseFinished, g.Phase)
	firstID := g.ID

	mb.clear()
	require.NoError(t, g.NewGame("bob"))
	assert.Equal(t, PhaseAuction, g.Phase)
	assert.NotEqual(t, firstID, g.ID)
	assert.Nil(t, g.Results)
	for _, p := range g.Players {
		assert.Equal(t, 1000, p.Money)
		assert.Empty(t, p.EarnedCards)
		assert.Nil(t, p.Guess)
	}
	assert.Len(t, eventsOf[GameStartEvent](mb.privateTo("alice")), 1)
}

func TestJoinAfterFinishStartsNextGame(t *testing.T) {
	g, _ := setupTestGame(t, "alice", "bob")
	passRounds(t, g)
	require.NoError(t, g.SubmitGuess("alice", "", models.Card{}))
	require.NoError(t, g.SubmitGuess("bob", "", models.Card{}))
	require.Equal(t, PhaseFinished, g.Phase)

	require.NoError(t, g.Join("carol"))
	assert.Equal(t, PhaseAuction, g.Phase)
	assert.Len(t, g.Players, 3)
}

func TestHandleCommandDispatch(t *testing.T) {
	g, mb := newTestGame(t, 2)
	require.NoError(t, g.HandleCommand(JoinCommand{PlayerID: "alice"}))
	require.NoError(t, g.HandleCommand(JoinCommand{PlayerID: "bob"}))
	require.Equal(t, PhaseAuction, g.Phase)

	require.NoError(t, g.HandleCommand(SubmitBidsCommand{PlayerID: "alice", Bids: []BidEntry{{LotID: 2, Amount: 1}}}))
	assert.Len(t, g.Lots[2].Bids, 1)

	require.NoError(t, g.HandleCommand(DisconnectCommand{PlayerID: "bob"}))
	assert.Len(t, eventsOf[AuctionResultEvent](mb.broadcasts()), 1)

	assert.True(t, IsValidationError(g.HandleCommand(NewGameCommand{PlayerID: "alice"})))
	assert.True(t, IsValidationError(g.HandleCommand(SubmitGuessCommand{PlayerID: "alice"})))
}

func TestPublicStateHidesSecrets(t *testing.T) {
	g, _ := setupTestGame(t, "alice", "bob")
	require.NoError(t, g.SubmitBids("alice", []BidEntry{{LotID: 0, Amount: 123}}))

	st := g.GetPublicState()
	assert.Equal(t, "auction", st.Phase)
	assert.Equal(t, 1, st.Round)
	assert.Equal(t, []int{0, 1, 2}, st.ActiveLots)
	require.Len(t, st.Players, 2)
	assert.True(t, st.Players[0].Submitted)
	assert.False(t, st.Players[1].Submitted)

	raw, err := json.Marshal(st)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hiddenCard")
	assert.NotContains(t, string(raw), "bids")
}

func TestMarshalEvent(t *testing.T) {
	data, err := MarshalEvent(BidRejectedEvent{Message: "nope"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bidRejected","message":"nope"}`, string(data))

	data, err = MarshalEvent(PongEvent{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))

	data, err = MarshalEvent(StartAuctionEvent{Round: 2, LotIDs: []int{3, 4, 5}, Money: 900})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"startAuction","round":2,"lotIds":[3,4,5],"money":900}`, string(data))
}
