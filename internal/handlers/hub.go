// internal/handlers/hub.go
package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/lotpoker/internal/game"
	"github.com/sirupsen/logrus"
)

// outQueueSize bounds each connection's pending outbound messages. A full
// game with many players emits well under this per transition.
const outQueueSize = 256

// GameConnection is one WebSocket client. Outbound messages are queued on
// OutChan and written in order by a single writer goroutine.
type GameConnection struct {
	ID       uuid.UUID
	Remote   string
	PlayerID string // empty until a join is accepted
	Cancel   context.CancelFunc
	OutChan  chan []byte

	logger *logrus.Entry

	mu         sync.Mutex
	overflowed bool
}

func newGameConnection(remote string, cancel context.CancelFunc, logger *logrus.Logger) *GameConnection {
	id := uuid.New()
	return &GameConnection{
		ID:      id,
		Remote:  remote,
		Cancel:  cancel,
		OutChan: make(chan []byte, outQueueSize),
		logger:  logger.WithFields(logrus.Fields{"conn_id": id, "remote": remote}),
	}
}

// Write pushes a message onto OutChan without blocking. A client that lets
// the queue fill is cut off rather than silently missing a transition.
func (conn *GameConnection) Write(data []byte) {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.overflowed {
		return
	}
	select {
	case conn.OutChan <- data:
	default:
		conn.overflowed = true
		conn.logger.Warn("outbound queue full, dropping connection")
		conn.Cancel()
	}
}

// Overflowed reports whether Write gave up on this connection.
func (conn *GameConnection) Overflowed() bool {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	return conn.overflowed
}

// WriteEvent encodes ev and queues it.
func (conn *GameConnection) WriteEvent(ev game.Event) {
	conn.Write(game.ConvertEventToBytes(conn.logger, ev))
}

// WriteError is a convenience to send an error event.
func (conn *GameConnection) WriteError(msg string) {
	conn.WriteEvent(game.ErrorEvent{Message: msg})
}

// Hub tracks live connections and which player each one speaks for.
// Lock order: the game's Mu is always taken before the hub's.
type Hub struct {
	mu       sync.Mutex
	conns    map[uuid.UUID]*GameConnection
	byPlayer map[string]*GameConnection
}

func NewHub() *Hub {
	return &Hub{
		conns:    make(map[uuid.UUID]*GameConnection),
		byPlayer: make(map[string]*GameConnection),
	}
}

func (h *Hub) Add(conn *GameConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID] = conn
}

// Remove forgets conn and returns the player it was bound to, if any.
func (h *Hub) Remove(conn *GameConnection) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn.ID)
	playerID := conn.PlayerID
	if playerID != "" && h.byPlayer[playerID] == conn {
		delete(h.byPlayer, playerID)
	}
	conn.PlayerID = ""
	return playerID
}

// Bind claims playerID for conn. It fails if conn already speaks for a
// player or another connection holds the name.
func (h *Hub) Bind(conn *GameConnection, playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn.PlayerID != "" {
		return false
	}
	if _, taken := h.byPlayer[playerID]; taken {
		return false
	}
	conn.PlayerID = playerID
	h.byPlayer[playerID] = conn
	return true
}

// Unbind releases a name claimed by Bind.
func (h *Hub) Unbind(conn *GameConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conn.PlayerID != "" && h.byPlayer[conn.PlayerID] == conn {
		delete(h.byPlayer, conn.PlayerID)
	}
	conn.PlayerID = ""
}

// PlayerOf returns the player conn speaks for, or "".
func (h *Hub) PlayerOf(conn *GameConnection) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.PlayerID
}

// SendTo queues an encoded message for the connection bound to playerID, if any.
func (h *Hub) SendTo(playerID string, data []byte) {
	h.mu.Lock()
	conn := h.byPlayer[playerID]
	h.mu.Unlock()
	if conn != nil {
		conn.Write(data)
	}
}

// CloseAll cancels every connection.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns {
		conn.Cancel()
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
