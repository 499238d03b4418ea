// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jason-s-yu/lotpoker/internal/middleware"
	"github.com/sirupsen/logrus"
)

// GameStateHandler serves the public snapshot of the game room.
// Hidden cards and bids are never part of it.
func GameStateHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(gs.Game.GetPublicState()); err != nil {
			gs.Logger.Warnf("encoding game state: %v", err)
		}
	}
}

// HealthHandler reports liveness.
func HealthHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "ok",
			"connections": gs.Hub.Count(),
		})
	}
}

// NewRouter registers every game endpoint, each wrapped in request logging.
func NewRouter(logger *logrus.Logger, gs *GameServer) *http.ServeMux {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("/game/ws", logged(GameWSHandler(logger, gs)))
	mux.Handle("/game/state", logged(GameStateHandler(gs)))
	mux.Handle("/healthz", logged(HealthHandler(gs)))
	return mux
}
