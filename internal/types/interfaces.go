// Package types holds the small interfaces shared between the server
// packages, kept separate to avoid import cycles.
package types

import "github.com/socket-games/server/internal/protocol"

// ClientConn is the coordinator's view of a connected client. The real
// implementation is the WebSocket client; tests substitute a recording
// fake.
type ClientConn interface {
	// ID returns the connection's unique id.
	ID() string

	// SendMessage queues a message for delivery. It must not block; a
	// message to a congested client may be dropped.
	SendMessage(msg *protocol.Message)

	// Close tears the connection down.
	Close()
}
