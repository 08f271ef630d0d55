// internal/handlers/ws_codes.go
package handlers

import (
	"github.com/coder/websocket"
	"github.com/jason-s-yu/arcade/internal/session"
)

// Custom WebSocket close codes. These give clients a more specific reason for
// closure than the standard codes.
const (
	StatusSuperseded websocket.StatusCode = session.CloseSuperseded // The identity signed in on a newer connection.
)

// closeStatus maps a hub close code onto the status sent in the close frame.
func closeStatus(code int) websocket.StatusCode {
	switch code {
	case session.CloseSuperseded:
		return StatusSuperseded
	case session.CloseShutdown:
		return websocket.StatusGoingAway
	default:
		return websocket.StatusNormalClosure
	}
}
