// internal/handlers/game_ws.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/lotpoker/internal/game"
	"github.com/jason-s-yu/lotpoker/internal/middleware"
	"github.com/jason-s-yu/lotpoker/internal/models"
	"github.com/sirupsen/logrus"
)

// ClientMessage is the envelope for every inbound WebSocket message.
type ClientMessage struct {
	Type string `json:"type"`

	// Name is the requested player name for "join".
	Name string `json:"name,omitempty"`

	// Bids is the full submission for "bid": one entry per lot, each lot at most once.
	Bids []game.BidEntry `json:"bids,omitempty"`

	// TargetPlayerID and Card make up a "guess". An empty target declines.
	// Card is either a string such as "H14", "HA", "ST" or an object {"suit":"H","rank":14}.
	TargetPlayerID string          `json:"targetPlayerId,omitempty"`
	Card           json.RawMessage `json:"card,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to WebSocket for the game room,
// then runs one reader and one writer for the connection until it closes.
// The "game" subprotocol is offered but not required.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := newGameConnection(r.RemoteAddr, cancel, logger)
		gs.Hub.Add(conn)

		writerDone := make(chan struct{})
		go func() {
			writePump(ctx, c, conn)
			close(writerDone)
		}()

		readErr := readPump(ctx, c, gs, conn)

		// Unbind before the game drops the player so nothing more is queued for them.
		if playerID := gs.Hub.Remove(conn); playerID != "" {
			if err := gs.Game.HandleCommand(game.DisconnectCommand{PlayerID: playerID}); err != nil {
				conn.logger.Errorf("disconnecting %s: %v", playerID, err)
			}
		}
		cancel()
		<-writerDone
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)

		switch {
		case gs.isClosing():
			c.Close(ServerClosingError, "server shutting down")
		case conn.Overflowed():
			c.Close(SlowConsumerError, "outbound queue overflowed")
		default:
			c.Close(websocket.StatusNormalClosure, "")
		}
	}
}

// readPump reads client messages until the connection closes or ctx ends.
// It returns nil for an orderly close.
func readPump(ctx context.Context, c *websocket.Conn, gs *GameServer, conn *GameConnection) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			conn.logger.Warnf("ignoring non-text message type %d", msgType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.logger.Debugf("invalid JSON: %v", err)
			conn.WriteError("Invalid JSON format.")
			continue
		}
		gs.handleMessage(conn, msg)
	}
}

// writePump drains conn.OutChan onto the socket in order.
func writePump(ctx context.Context, c *websocket.Conn, conn *GameConnection) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-conn.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					conn.logger.Warnf("write failed: %v", err)
				}
				conn.Cancel()
				return
			}
		}
	}
}

// handleMessage routes one decoded client message.
func (gs *GameServer) handleMessage(conn *GameConnection, msg ClientMessage) {
	switch msg.Type {
	case "ping":
		conn.WriteEvent(game.PongEvent{})
		return
	case "join":
		gs.handleJoin(conn, msg.Name)
		return
	}

	playerID := gs.Hub.PlayerOf(conn)
	if playerID == "" {
		conn.WriteError("Join the game first.")
		return
	}

	cmd, err := decodeCommand(playerID, msg)
	if err != nil {
		conn.WriteError(err.Error())
		return
	}
	conn.logger.Debugf("%s from %s", msg.Type, playerID)

	if err := gs.Game.HandleCommand(cmd); err != nil {
		switch cmd.(type) {
		case game.SubmitBidsCommand, game.SubmitGuessCommand:
			// the game already sent bidRejected / guessRejected
		default:
			conn.WriteError(err.Error())
		}
	}
}

// handleJoin claims the name on the hub first so the game's private
// gameStart can reach this connection if the join deals a game.
func (gs *GameServer) handleJoin(conn *GameConnection, name string) {
	if strings.TrimSpace(name) == "" {
		conn.WriteEvent(game.JoinRejectedEvent{Message: "Player name must not be empty."})
		return
	}
	if !gs.Hub.Bind(conn, name) {
		reason := fmt.Sprintf("Name %q is already taken.", name)
		if gs.Hub.PlayerOf(conn) != "" {
			reason = "You have already joined."
		}
		conn.WriteEvent(game.JoinRejectedEvent{Message: reason})
		return
	}
	if err := gs.Game.HandleCommand(game.JoinCommand{PlayerID: name}); err != nil {
		gs.Hub.Unbind(conn)
		conn.WriteEvent(game.JoinRejectedEvent{Message: err.Error()})
	}
}

// decodeCommand turns a message from a joined player into a game command.
func decodeCommand(playerID string, msg ClientMessage) (game.Command, error) {
	switch msg.Type {
	case "bid":
		return game.SubmitBidsCommand{PlayerID: playerID, Bids: msg.Bids}, nil
	case "guess":
		cmd := game.SubmitGuessCommand{PlayerID: playerID, TargetID: msg.TargetPlayerID}
		if cmd.TargetID == "" {
			return cmd, nil
		}
		card, err := parseGuessCard(msg.Card)
		if err != nil {
			return nil, err
		}
		cmd.Card = card
		return cmd, nil
	case "newGame":
		return game.NewGameCommand{PlayerID: playerID}, nil
	default:
		return nil, fmt.Errorf("Unknown message type: %s", msg.Type)
	}
}

func parseGuessCard(raw json.RawMessage) (models.Card, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.Card{}, errors.New("A guess needs a card.")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Card{}, fmt.Errorf("Invalid card: %v", err)
		}
		card, err := models.ParseCard(s)
		if err != nil {
			return models.Card{}, fmt.Errorf("Invalid card: %v", err)
		}
		return card, nil
	}
	var card models.Card
	if err := json.Unmarshal(raw, &card); err != nil || !card.Valid() {
		return models.Card{}, errors.New("Invalid card.")
	}
	return card, nil
}
