// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the game handler.
// These provide more specific reasons for closure than standard codes.
const (
	SlowConsumerError  websocket.StatusCode = 3000 // Outbound queue overflowed; the client stopped reading.
	ServerClosingError websocket.StatusCode = 3001 // The server is shutting down.
)
