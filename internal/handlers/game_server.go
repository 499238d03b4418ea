// internal/handlers/game_server.go
package handlers

import (
	"sync/atomic"

	"github.com/jason-s-yu/lotpoker/internal/game"
	"github.com/sirupsen/logrus"
)

// GameServer binds the single game room to the WebSocket connections
// that speak for its players.
type GameServer struct {
	Game   *game.AuctionGame
	Hub    *Hub
	Logger *logrus.Logger

	closing atomic.Bool
}

// NewGameServer wires g's broadcast hooks to a fresh connection hub.
func NewGameServer(g *game.AuctionGame, logger *logrus.Logger) *GameServer {
	gs := &GameServer{
		Game:   g,
		Hub:    NewHub(),
		Logger: logger,
	}

	g.Mu.Lock()
	g.BroadcastFn = gs.broadcast
	g.BroadcastToPlayerFn = gs.sendToPlayer
	g.Mu.Unlock()
	return gs
}

// broadcast sends ev to every seated player.
// Called by the game with its lock held.
func (gs *GameServer) broadcast(ev game.Event) {
	data := game.ConvertEventToBytes(gs.Logger, ev)
	for _, p := range gs.Game.Players {
		gs.Hub.SendTo(p.ID, data)
	}
}

// sendToPlayer sends ev to one seated player.
// Called by the game with its lock held.
func (gs *GameServer) sendToPlayer(playerID string, ev game.Event) {
	gs.Hub.SendTo(playerID, game.ConvertEventToBytes(gs.Logger, ev))
}

// Shutdown disconnects every client. Handlers close their sockets with
// ServerClosingError.
func (gs *GameServer) Shutdown() {
	gs.closing.Store(true)
	gs.Hub.CloseAll()
}

func (gs *GameServer) isClosing() bool {
	return gs.closing.Load()
}
