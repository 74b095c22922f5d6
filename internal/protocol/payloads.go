package protocol

import "github.com/socket-games/server/internal/game/ids"

// --- Client request payloads ---

// JoinPayload is the join request for a room.
type JoinPayload struct {
	Name     string `json:"name"`
	Hash     string `json:"hash"`
	Password string `json:"password,omitempty"`
}

// --- Server response payloads ---

// JoinAcceptPayload confirms a successful room join.
type JoinAcceptPayload struct {
	RoomCode string `json:"roomCode"`
}

// JoinErrorPayload carries the reason a join was rejected.
type JoinErrorPayload struct {
	Message string `json:"message"`
}

// GameEventPayload relays one session or player event to a client.
type GameEventPayload struct {
	Type     string        `json:"type"`
	GameID   ids.GameID    `json:"gameId"`
	PlayerID *ids.PlayerID `json:"playerId,omitempty"`
	Data     any           `json:"data"`
}

// SystemEventPayload carries room-level notices: the "youare" identity
// event sent to a joining client, and "joined"/"left"/"owner" broadcasts.
type SystemEventPayload struct {
	Type  string `json:"type"`
	Name  string `json:"name,omitempty"`
	ID    string `json:"id,omitempty"`
	Owner bool   `json:"owner,omitempty"`
}

// ChatPayload is a chat line broadcast to a room. SenderID is a pseudonymous
// hash of the sending connection, never the raw connection identifier.
type ChatPayload struct {
	Sender    string `json:"sender"`
	SenderID  string `json:"senderId"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorPayload reports an operation failure to the initiating client only.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- HTTP API payloads ---

// CreateRoomRequest is the body of POST /api/create.
type CreateRoomRequest struct {
	Namespace   string `json:"namespace"`
	HasPassword bool   `json:"hasPassword"`
	Password    string `json:"password,omitempty"`
}

// CreateRoomResponse returns the generated room code.
type CreateRoomResponse struct {
	Hash string `json:"hash"`
}

// RoomNeedsResponse describes what a client must supply to join a room.
// Password reports only whether one is required, never the credential.
type RoomNeedsResponse struct {
	Namespace string `json:"namespace"`
	Password  bool   `json:"password"`
}
