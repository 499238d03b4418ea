// internal/game/events.go
package game

import (
	"github.com/jason-s-yu/lotpoker/internal/auction"
	"github.com/jason-s-yu/lotpoker/internal/models"
)

// GameEventType is the wire name carried in every outbound message's "type" field.
type GameEventType string

const (
	EventPlayerJoined  GameEventType = "playerJoined"
	EventPlayerLeft    GameEventType = "playerLeft"
	EventJoinRejected  GameEventType = "joinRejected"
	EventGameStart     GameEventType = "gameStart"     // private: includes the recipient's hidden card
	EventStartAuction  GameEventType = "startAuction"  // private: includes the recipient's money
	EventAuctionResult GameEventType = "auctionResult" // public
	EventStartGuessing GameEventType = "startGuessing" // public
	EventGameOver      GameEventType = "gameOver"      // public, reveals hidden cards
	EventBidAccepted   GameEventType = "bidAccepted"
	EventBidRejected   GameEventType = "bidRejected"
	EventGuessAccepted GameEventType = "guessAccepted"
	EventGuessRejected GameEventType = "guessRejected"
	EventError         GameEventType = "error"
	EventPong          GameEventType = "pong"
)

// Event is an outbound message. The set of implementations is closed.
type Event interface {
	Type() GameEventType
	gameEvent()
}

// LotView is a lot as shown to players: its id and cards, never its bids.
type LotView struct {
	ID    int           `json:"id"`
	Cards []models.Card `json:"cards"`
}

// EarnedCards lists the cards one player won at auction.
type EarnedCards struct {
	PlayerID string        `json:"playerId"`
	Cards    []models.Card `json:"cards"`
}

type PlayerJoinedEvent struct {
	PlayerID     string `json:"playerId"`
	TotalPlayers int    `json:"totalPlayers"`
}

type PlayerLeftEvent struct {
	PlayerID     string `json:"playerId"`
	TotalPlayers int    `json:"totalPlayers"`
}

type JoinRejectedEvent struct {
	Message string `json:"message"`
}

type GameStartEvent struct {
	GameID       string                 `json:"gameId"`
	HiddenCard   models.Card            `json:"hiddenCard"`
	InitialMoney int                    `json:"initialMoney"`
	Players      []models.PlayerSummary `json:"players"`
	Lots         []LotView              `json:"lots"`
}

type StartAuctionEvent struct {
	Round  int   `json:"round"` // 1-based
	LotIDs []int `json:"lotIds"`
	Money  int   `json:"money"`
}

type AuctionResultEvent struct {
	Round   int                    `json:"round"`
	Results []auction.Outcome      `json:"results"`
	Unsold  []int                  `json:"unsoldLotIds"`
	Players []models.PlayerSummary `json:"players"`
}

type StartGuessingEvent struct {
	CardsPerPlayer []EarnedCards `json:"cardsPerPlayer"`
}

type GameOverEvent struct {
	GameID string               `json:"gameId"`
	Scores []models.ScoreDetail `json:"scores"`
}

type BidAcceptedEvent struct {
	Round int `json:"round"`
}

type BidRejectedEvent struct {
	Message string `json:"message"`
}

type GuessAcceptedEvent struct{}

type GuessRejectedEvent struct {
	Message string `json:"message"`
}

// ErrorEvent reports a malformed or unknown client message.
type ErrorEvent struct {
	Message string `json:"message"`
}

type PongEvent struct{}

func (PlayerJoinedEvent) Type() GameEventType  { return EventPlayerJoined }
func (PlayerLeftEvent) Type() GameEventType    { return EventPlayerLeft }
func (JoinRejectedEvent) Type() GameEventType  { return EventJoinRejected }
func (GameStartEvent) Type() GameEventType     { return EventGameStart }
func (StartAuctionEvent) Type() GameEventType  { return EventStartAuction }
func (AuctionResultEvent) Type() GameEventType { return EventAuctionResult }
func (StartGuessingEvent) Type() GameEventType { return EventStartGuessing }
func (GameOverEvent) Type() GameEventType      { return EventGameOver }
func (BidAcceptedEvent) Type() GameEventType   { return EventBidAccepted }
func (BidRejectedEvent) Type() GameEventType   { return EventBidRejected }
func (GuessAcceptedEvent) Type() GameEventType { return EventGuessAccepted }
func (GuessRejectedEvent) Type() GameEventType { return EventGuessRejected }
func (ErrorEvent) Type() GameEventType         { return EventError }
func (PongEvent) Type() GameEventType          { return EventPong }

func (PlayerJoinedEvent) gameEvent()  {}
func (PlayerLeftEvent) gameEvent()    {}
func (JoinRejectedEvent) gameEvent()  {}
func (GameStartEvent) gameEvent()     {}
func (StartAuctionEvent) gameEvent()  {}
func (AuctionResultEvent) gameEvent() {}
func (StartGuessingEvent) gameEvent() {}
func (GameOverEvent) gameEvent()      {}
func (BidAcceptedEvent) gameEvent()   {}
func (BidRejectedEvent) gameEvent()   {}
func (GuessAcceptedEvent) gameEvent() {}
func (GuessRejectedEvent) gameEvent() {}
func (ErrorEvent) gameEvent()         {}
func (PongEvent) gameEvent()          {}
