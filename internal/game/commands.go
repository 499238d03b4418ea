// internal/game/commands.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/lotpoker/internal/models"
)

// Command is an inbound player action. The set of implementations is closed;
// HandleCommand switches over all of them.
type Command interface {
	Actor() string
	gameCommand()
}

// BidEntry is one lot's amount within a bid submission.
type BidEntry struct {
	LotID  int `json:"lotId"`
	Amount int `json:"amount"`
}

type JoinCommand struct {
	PlayerID string
}

type SubmitBidsCommand struct {
	PlayerID string
	Bids     []BidEntry
}

// SubmitGuessCommand claims that TargetID holds Card. An empty TargetID declines.
type SubmitGuessCommand struct {
	PlayerID string
	TargetID string
	Card     models.Card
}

type DisconnectCommand struct {
	PlayerID string
}

type NewGameCommand struct {
	PlayerID string
}

func (c JoinCommand) Actor() string        { return c.PlayerID }
func (c SubmitBidsCommand) Actor() string  { return c.PlayerID }
func (c SubmitGuessCommand) Actor() string { return c.PlayerID }
func (c DisconnectCommand) Actor() string  { return c.PlayerID }
func (c NewGameCommand) Actor() string     { return c.PlayerID }

func (JoinCommand) gameCommand()        {}
func (SubmitBidsCommand) gameCommand()  {}
func (SubmitGuessCommand) gameCommand() {}
func (DisconnectCommand) gameCommand()  {}
func (NewGameCommand) gameCommand()     {}

// HandleCommand applies cmd to the game.
func (g *AuctionGame) HandleCommand(cmd Command) error {
	switch c := cmd.(type) {
	case JoinCommand:
		return g.Join(c.PlayerID)
	case SubmitBidsCommand:
		return g.SubmitBids(c.PlayerID, c.Bids)
	case SubmitGuessCommand:
		return g.SubmitGuess(c.PlayerID, c.TargetID, c.Card)
	case DisconnectCommand:
		g.Disconnect(c.PlayerID)
		return nil
	case NewGameCommand:
		return g.NewGame(c.PlayerID)
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
}
