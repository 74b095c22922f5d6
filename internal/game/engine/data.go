package engine

import (
	"encoding/json"

	"github.com/socket-games/server/internal/game/ids"
)

// State is the lifecycle state of a session.
type State string

const (
	StateNotInitialized State = "NOT_INITIALIZED"
	StateWaiting        State = "WAITING"
	StateRunning        State = "RUNNING"
	StateEnded          State = "ENDED"
)

// PlayerSummary is the roster entry embedded in GameData.
type PlayerSummary struct {
	Name     string       `json:"name"`
	PlayerID ids.PlayerID `json:"playerId"`
}

// GameData is a point-in-time snapshot of a session. PlayerIDs and Players
// are recomputed from the live roster on every snapshot and never stored
// independently. Custom holds the game-specific fields and is flattened
// into the same JSON object as the fixed fields.
type GameData struct {
	GameID             ids.GameID
	PlayerIDs          []ids.PlayerID
	Players            []PlayerSummary
	MinPlayers         int
	MaxPlayers         int
	State              State
	CurrentPlayerIndex int
	WinnerID           *ids.PlayerID
	Custom             map[string]any
}

// reserved JSON keys of GameData that game-specific fields can not shadow.
var reservedGameDataKeys = map[string]struct{}{
	"gameId":             {},
	"playerIds":          {},
	"players":            {},
	"minPlayers":         {},
	"maxPlayers":         {},
	"state":              {},
	"currentPlayerIndex": {},
	"winnerId":           {},
}

// MarshalJSON flattens the custom fields next to the fixed ones.
func (d GameData) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"gameId":             d.GameID,
		"playerIds":          d.PlayerIDs,
		"players":            d.Players,
		"minPlayers":         d.MinPlayers,
		"maxPlayers":         d.MaxPlayers,
		"state":              d.State,
		"currentPlayerIndex": d.CurrentPlayerIndex,
	}
	if d.WinnerID != nil {
		out["winnerId"] = d.WinnerID
	}
	for k, v := range d.Custom {
		if _, reserved := reservedGameDataKeys[k]; reserved {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// PlayerData is a point-in-time snapshot of one player. Custom fields are
// flattened next to name and playerId.
type PlayerData struct {
	Name     string
	PlayerID ids.PlayerID
	Custom   map[string]any
}

// MarshalJSON flattens the custom fields next to the fixed ones.
func (d PlayerData) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":     d.Name,
		"playerId": d.PlayerID,
	}
	for k, v := range d.Custom {
		if k == "name" || k == "playerId" {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}
