package protocol

import "encoding/json"

// Message is the envelope for every frame on the persistent connection.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType discriminates message payloads.
type MessageType string

// Client -> server message types.
const (
	MsgJoin     MessageType = "join"     // join a room
	MsgAction   MessageType = "action"   // game-specific player action
	MsgLeave    MessageType = "leave"    // leave the current room
	MsgStart    MessageType = "start"    // start the backing session
	MsgRecreate MessageType = "recreate" // recreate the session after it ended
	MsgChat     MessageType = "message"  // chat relay (also server -> client)
)

// Server -> client message types.
const (
	MsgJoinAccept  MessageType = "join-accept"  // join succeeded
	MsgJoinError   MessageType = "join-error"   // join rejected
	MsgGameEvent   MessageType = "game-event"   // session/player event relay
	MsgSystemEvent MessageType = "system-event" // identity/ownership notices
	MsgError       MessageType = "error"        // generic operation failure
)
