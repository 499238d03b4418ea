// internal/game/game.go
package game

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lotpoker/internal/auction"
	"github.com/jason-s-yu/lotpoker/internal/deck"
	"github.com/jason-s-yu/lotpoker/internal/models"
	"github.com/jason-s-yu/lotpoker/internal/scoring"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc receives the final score lines of a finished game.
// It is called with the game lock held and must not call back into the game.
type OnGameEndFunc func(gameID uuid.UUID, scores []models.ScoreDetail)

// AuctionGame holds the entire state of the single game room in memory.
type AuctionGame struct {
	ID         uuid.UUID // regenerated at every deal
	HouseRules HouseRules

	Players      []*models.Player // join order
	Lots         []*models.Lot    // nil until the first deal
	CurrentRound int              // index into HouseRules.RoundPlan
	Phase        Phase
	Results      []models.ScoreDetail // set when a game reaches Finished

	Mu sync.Mutex

	// BroadcastFn is used to send events to all connected players. If nil, no broadcast is done.
	BroadcastFn func(ev Event)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(playerID string, ev Event)

	// OnGameEnd is invoked once per game, after gameOver has been broadcast.
	OnGameEnd OnGameEndFunc

	// Actions receives the action log. Optional.
	Actions ActionPublisher

	Logger *logrus.Logger

	rng         *rand.Rand
	actionIndex int
}

// NewAuctionGame builds an empty lobby. rng drives shuffles, hidden cards and
// tie breaks; pass deck.NewRand(seed) for a reproducible game.
func NewAuctionGame(rules HouseRules, rng *rand.Rand) *AuctionGame {
	if rng == nil {
		rng = deck.NewRand(0)
	}
	return &AuctionGame{
		ID:         uuid.New(),
		HouseRules: rules,
		Players:    []*models.Player{},
		Phase:      PhaseLobby,
		Logger:     logrus.StandardLogger(),
		rng:        rng,
	}
}

func (g *AuctionGame) log() *logrus.Entry {
	logger := g.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithFields(logrus.Fields{"game_id": g.ID, "phase": g.Phase.String()})
}

// Join adds a player to the lobby. Empty and duplicate names are rejected, as
// are joins while a game is being played. Reaching MinPlayers deals a game.
func (g *AuctionGame) Join(playerID string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if strings.TrimSpace(playerID) == "" {
		return reject("join", "Player name must not be empty.")
	}
	if g.getPlayerByID(playerID) != nil {
		return reject("join", "Name %q is already taken.", playerID)
	}
	if g.Phase.InProgress() {
		return reject("join", "A game is already in progress.")
	}
	if g.Phase == PhaseFinished {
		g.resetToLobby()
	}

	g.Players = append(g.Players, models.NewPlayer(playerID, g.HouseRules.StartingMoney))
	g.log().Infof("player %s joined (%d present)", playerID, len(g.Players))
	g.fireEvent(PlayerJoinedEvent{PlayerID: playerID, TotalPlayers: len(g.Players)})
	g.logAction(playerID, "player_join", map[string]interface{}{"total_players": len(g.Players)})

	if len(g.Players) >= g.HouseRules.MinPlayers {
		g.startGame()
	}
	return nil
}

// NewGame restarts a finished game with everyone still connected.
func (g *AuctionGame) NewGame(playerID string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.getPlayerByID(playerID) == nil {
		return reject("newGame", "Player %q has not joined.", playerID)
	}
	if g.Phase != PhaseFinished {
		return reject("newGame", "The current game has not finished.")
	}
	g.logAction(playerID, "new_game_requested", nil)
	if len(g.Players) >= g.HouseRules.MinPlayers {
		g.startGame()
	} else {
		g.resetToLobby()
	}
	return nil
}

// startGame deals a fresh game to the current roster.
// Assumes lock is held.
func (g *AuctionGame) startGame() {
	g.Phase = PhaseDealingSetup
	g.ID = uuid.New()
	g.actionIndex = 0
	g.CurrentRound = 0
	g.Results = nil
	g.Lots = deck.DealLots(g.rng)

	for _, p := range g.Players {
		p.ResetForGame(g.HouseRules.StartingMoney)
		hc := deck.RandomCard(g.rng)
		p.HiddenCard = &hc
	}

	g.log().Infof("dealt game for %d players", len(g.Players))
	g.logAction("", "game_start", map[string]interface{}{
		"players":      g.playerIDs(),
		"lots":         g.lotViews(),
		"hidden_cards": g.hiddenCards(),
	})

	roster := g.roster()
	lots := g.lotViews()
	for _, p := range g.Players {
		g.fireEventToPlayer(p.ID, GameStartEvent{
			GameID:       g.ID.String(),
			HiddenCard:   *p.HiddenCard,
			InitialMoney: p.Money,
			Players:      roster,
			Lots:         lots,
		})
	}

	g.startAuction()
}

// startAuction opens the current round for bids.
// Assumes lock is held.
func (g *AuctionGame) startAuction() {
	g.Phase = PhaseAuction
	lotIDs := g.HouseRules.RoundPlan[g.CurrentRound]
	for _, id := range lotIDs {
		g.Lots[id].Bids = nil
	}

	for _, p := range g.Players {
		p.Waiting = models.WaitingBid
		g.fireEventToPlayer(p.ID, StartAuctionEvent{
			Round:  g.CurrentRound + 1,
			LotIDs: append([]int(nil), lotIDs...),
			Money:  p.Money,
		})
	}
	g.log().Debugf("round %d open for lots %v", g.CurrentRound+1, lotIDs)
}

// SubmitBids records a player's sealed bids for the active round. A player
// submits exactly once per round; an empty submission passes on every lot.
func (g *AuctionGame) SubmitBids(playerID string, bids []BidEntry) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.getPlayerByID(playerID)
	if p == nil {
		return reject("bid", "Player %q has not joined.", playerID)
	}

	var err error
	if g.Phase != PhaseAuction || p.Waiting != models.WaitingBid {
		err = reject("bid", "Not currently accepting bids from you.")
	} else {
		err = g.validateBids(p, bids)
	}
	if err != nil {
		g.fireEventToPlayer(p.ID, BidRejectedEvent{Message: err.Error()})
		return err
	}

	p.Waiting = models.WaitingNone
	for _, b := range bids {
		lot := g.Lots[b.LotID]
		lot.Bids = append(lot.Bids, models.Bid{PlayerID: p.ID, LotID: b.LotID, Amount: b.Amount})
	}
	g.fireEventToPlayer(p.ID, BidAcceptedEvent{Round: g.CurrentRound + 1})
	g.logAction(p.ID, "bid_submitted", map[string]interface{}{
		"round": g.CurrentRound + 1,
		"bids":  bids,
	})

	g.checkRoundComplete()
	return nil
}

// validateBids checks a submission against the active round and the player's money.
// Assumes lock is held.
func (g *AuctionGame) validateBids(p *models.Player, bids []BidEntry) error {
	active := make(map[int]bool)
	for _, id := range g.HouseRules.RoundPlan[g.CurrentRound] {
		active[id] = true
	}

	seen := make(map[int]bool, len(bids))
	total := 0
	for _, b := range bids {
		if b.Amount < 0 {
			return reject("bid", "You cannot bid a negative amount.")
		}
		if !active[b.LotID] {
			return reject("bid", "Lot %d is not up for auction this round.", b.LotID)
		}
		if seen[b.LotID] {
			return reject("bid", "Lot %d appears more than once in your bid.", b.LotID)
		}
		seen[b.LotID] = true
		// Compare against the remainder so a huge amount cannot wrap the sum.
		if b.Amount > p.Money-total {
			return reject("bid", "You cannot bid more than your available money.")
		}
		total += b.Amount
	}
	return nil
}

// checkRoundComplete resolves the round once nobody is still owed a bid.
// Assumes lock is held.
func (g *AuctionGame) checkRoundComplete() {
	if g.Phase != PhaseAuction || len(g.Players) == 0 {
		return
	}
	for _, p := range g.Players {
		if p.Waiting == models.WaitingBid {
			return
		}
	}
	g.endAuction()
}

// endAuction resolves and settles every lot of the round, then advances.
// Assumes lock is held.
func (g *AuctionGame) endAuction() {
	round := g.CurrentRound
	results := []auction.Outcome{}
	unsold := []int{}

	for _, id := range g.HouseRules.RoundPlan[round] {
		lot := g.Lots[id]
		out, ok := auction.Resolve(lot, lot.Bids, g.rng)
		lot.Bids = nil
		if !ok {
			unsold = append(unsold, id)
			continue
		}
		if err := auction.Settle(out, g.getPlayerByID(out.WinnerID)); err != nil {
			g.log().Errorf("settling lot %d: %v", id, err)
			unsold = append(unsold, id)
			continue
		}
		results = append(results, out)
		g.logAction(out.WinnerID, "lot_won", map[string]interface{}{
			"round":      round + 1,
			"lot_id":     id,
			"price_paid": out.Price,
			"tied":       len(out.Tied),
		})
	}

	g.fireEvent(AuctionResultEvent{
		Round:   round + 1,
		Results: results,
		Unsold:  unsold,
		Players: g.roster(),
	})

	g.CurrentRound++
	if g.CurrentRound >= len(g.HouseRules.RoundPlan) {
		g.startGuessing()
		return
	}
	g.startAuction()
}

// startGuessing shows everyone's earned cards and asks each player for one guess.
// Assumes lock is held.
func (g *AuctionGame) startGuessing() {
	g.Phase = PhaseGuessing
	summaries := make([]EarnedCards, 0, len(g.Players))
	for _, p := range g.Players {
		p.Waiting = models.WaitingGuess
		summaries = append(summaries, EarnedCards{PlayerID: p.ID, Cards: p.Summary().EarnedCards})
	}
	g.fireEvent(StartGuessingEvent{CardsPerPlayer: summaries})
}

// SubmitGuess records a player's single claim about another player's hidden
// card. Any claim is accepted while the player owes one; an empty targetID
// declines.
func (g *AuctionGame) SubmitGuess(playerID, targetID string, card models.Card) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.getPlayerByID(playerID)
	if p == nil {
		return reject("guess", "Player %q has not joined.", playerID)
	}
	if g.Phase != PhaseGuessing || p.Waiting != models.WaitingGuess {
		err := reject("guess", "Not currently accepting a guess from you.")
		g.fireEventToPlayer(p.ID, GuessRejectedEvent{Message: err.Error()})
		return err
	}

	p.Waiting = models.WaitingNone
	p.Guess = &models.Guess{TargetID: targetID, Card: card}
	g.fireEventToPlayer(p.ID, GuessAcceptedEvent{})
	g.logAction(p.ID, "guess_submitted", map[string]interface{}{
		"target_player_id": targetID,
		"card":             card,
	})

	g.checkGuessingComplete()
	return nil
}

// checkGuessingComplete scores the game once every guess is in.
// Assumes lock is held.
func (g *AuctionGame) checkGuessingComplete() {
	if g.Phase != PhaseGuessing || len(g.Players) == 0 {
		return
	}
	for _, p := range g.Players {
		if p.Waiting == models.WaitingGuess {
			return
		}
	}
	g.endGame()
}

// endGame scores the game, broadcasts the results and finishes.
// Assumes lock is held.
func (g *AuctionGame) endGame() {
	g.Phase = PhaseScoring

	entries := make([]scoring.Entry, 0, len(g.Players))
	for _, p := range g.Players {
		e := scoring.Entry{
			PlayerID:    p.ID,
			EarnedCards: p.EarnedCards,
			Money:       p.Money,
			Guess:       p.Guess,
		}
		if p.HiddenCard != nil {
			e.HiddenCard = *p.HiddenCard
		}
		entries = append(entries, e)
	}
	scores := scoring.Score(entries)
	g.Results = scores

	totals := make(map[string]int, len(scores))
	for _, s := range scores {
		totals[s.PlayerID] = s.TotalScore
	}
	g.logAction("", "game_end", map[string]interface{}{"scores": totals})
	if len(scores) > 0 {
		g.log().Infof("game over, %s leads with %d", scores[0].PlayerID, scores[0].TotalScore)
	}

	g.fireEvent(GameOverEvent{GameID: g.ID.String(), Scores: scores})
	g.Phase = PhaseFinished
	for _, p := range g.Players {
		p.Waiting = models.WaitingNone
	}

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, scores)
	}
}

// Disconnect removes a player. A departed player's pending bids are dropped
// and the round or guessing phase is re-checked so nobody waits on them.
func (g *AuctionGame) Disconnect(playerID string) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	idx := -1
	for i, p := range g.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)

	if g.Phase == PhaseAuction {
		for _, id := range g.HouseRules.RoundPlan[g.CurrentRound] {
			g.Lots[id].Bids = dropBidsFrom(g.Lots[id].Bids, playerID)
		}
	}

	g.log().Infof("player %s left (%d remain)", playerID, len(g.Players))
	g.fireEvent(PlayerLeftEvent{PlayerID: playerID, TotalPlayers: len(g.Players)})
	g.logAction(playerID, "player_leave", map[string]interface{}{"total_players": len(g.Players)})

	if len(g.Players) == 0 {
		g.resetToLobby()
		return
	}
	switch g.Phase {
	case PhaseAuction:
		g.checkRoundComplete()
	case PhaseGuessing:
		g.checkGuessingComplete()
	}
}

func dropBidsFrom(bids []models.Bid, playerID string) []models.Bid {
	kept := bids[:0]
	for _, b := range bids {
		if b.PlayerID != playerID {
			kept = append(kept, b)
		}
	}
	return kept
}

// resetToLobby discards any dealt game. Remaining players keep their seats.
// Assumes lock is held.
func (g *AuctionGame) resetToLobby() {
	g.Phase = PhaseLobby
	g.Lots = nil
	g.CurrentRound = 0
	g.Results = nil
	for _, p := range g.Players {
		p.ResetForGame(g.HouseRules.StartingMoney)
	}
}

// HasPlayer reports whether playerID is seated.
func (g *AuctionGame) HasPlayer(playerID string) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.getPlayerByID(playerID) != nil
}

// fireEvent broadcasts an event to all connected players.
// Assumes lock is held.
func (g *AuctionGame) fireEvent(ev Event) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		g.log().Debugf("BroadcastFn is nil, dropping %s", ev.Type())
	}
}

// fireEventToPlayer sends an event only to a specific player.
// Assumes lock is held.
func (g *AuctionGame) fireEventToPlayer(playerID string, ev Event) {
	if g.BroadcastToPlayerFn != nil {
		g.BroadcastToPlayerFn(playerID, ev)
	} else {
		g.log().Debugf("BroadcastToPlayerFn is nil, dropping %s for %s", ev.Type(), playerID)
	}
}

// getPlayerByID is a helper to find a player struct by their ID.
// Assumes lock is held by caller.
func (g *AuctionGame) getPlayerByID(playerID string) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (g *AuctionGame) roster() []models.PlayerSummary {
	out := make([]models.PlayerSummary, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, p.Summary())
	}
	return out
}

func (g *AuctionGame) playerIDs() []string {
	ids := make([]string, 0, len(g.Players))
	for _, p := range g.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (g *AuctionGame) hiddenCards() map[string]models.Card {
	out := make(map[string]models.Card, len(g.Players))
	for _, p := range g.Players {
		if p.HiddenCard != nil {
			out[p.ID] = *p.HiddenCard
		}
	}
	return out
}

func (g *AuctionGame) lotViews() []LotView {
	out := make([]LotView, 0, len(g.Lots))
	for _, l := range g.Lots {
		out = append(out, LotView{ID: l.ID, Cards: append([]models.Card(nil), l.Cards...)})
	}
	return out
}
