package engine

import "github.com/socket-games/server/internal/game/ids"

// EventType is the kind of a session or player event.
type EventType string

// Event kinds published on the registry bus. EventAll is only valid as a
// subscription filter.
const (
	EventAll               EventType = "ALL"
	EventGameCreated       EventType = "GAME_CREATED"
	EventGameStarted       EventType = "GAME_STARTED"
	EventGameDataChanged   EventType = "GAME_DATA_CHANGED"
	EventPlayerJoined      EventType = "PLAYER_JOINED"
	EventPlayerLeft        EventType = "PLAYER_LEFT"
	EventPlayerDataChanged EventType = "PLAYER_DATA_CHANGED"
	EventNextTurn          EventType = "NEXT_TURN"
	EventGameEnded         EventType = "GAME_ENDED"
)

// Event is one entry on the shared event stream. Data is the full GameData
// snapshot for session events, or the PlayerData snapshot for
// PLAYER_DATA_CHANGED (which also sets PlayerID).
type Event struct {
	Type     EventType     `json:"type"`
	GameID   ids.GameID    `json:"gameId"`
	PlayerID *ids.PlayerID `json:"playerId,omitempty"`
	Data     any           `json:"data"`
}
