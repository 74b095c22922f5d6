// Package ids provides the structured identifiers used across the game
// engine and the room layer, plus the allocators that mint them.
//
// Game and player identifiers are tuples on the wire: a GameID is encoded
// as ["namespace", ordinal] and a PlayerID as [gameId, ordinal]. Ordinals
// are always the smallest non-negative integer not currently in use within
// their scope, so slots vacated by ended games and departed players are
// reused.
package ids

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// GameID identifies one game session within a namespace.
type GameID struct {
	Namespace string
	Ordinal   int
}

// PlayerID identifies one player within its owning session.
type PlayerID struct {
	Game    GameID
	Ordinal int
}

func (id GameID) String() string {
	return fmt.Sprintf("%s-%d", id.Namespace, id.Ordinal)
}

// MarshalJSON encodes the id as a ["namespace", ordinal] tuple.
func (id GameID) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{id.Namespace, id.Ordinal})
}

// UnmarshalJSON decodes a ["namespace", ordinal] tuple.
func (id *GameID) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &id.Namespace); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &id.Ordinal)
}

func (id PlayerID) String() string {
	return fmt.Sprintf("%s-%d", id.Game, id.Ordinal)
}

// MarshalJSON encodes the id as a [gameId, ordinal] tuple.
func (id PlayerID) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{id.Game, id.Ordinal})
}

// UnmarshalJSON decodes a [gameId, ordinal] tuple.
func (id *PlayerID) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &id.Game); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &id.Ordinal)
}

// NextOrdinal returns the smallest non-negative integer not present in
// existing. It is deliberately not a monotonic counter: ordinals freed by
// deleted games or departed players must be handed out again.
func NextOrdinal(existing []int) int {
	used := make(map[int]struct{}, len(existing))
	for _, n := range existing {
		used[n] = struct{}{}
	}
	next := 0
	for {
		if _, ok := used[next]; !ok {
			return next
		}
		next++
	}
}

// Room codes are short and case-sensitive, matching the join links handed
// out to players.
const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// NewRoomCode generates a random room code of the given length that is not
// rejected by taken. taken is consulted until a free code is found, so the
// caller must guarantee that free codes exist.
func NewRoomCode(length int, taken func(string) bool) string {
	for {
		code := randomCode(length)
		if taken == nil || !taken(code) {
			return code
		}
	}
}

func randomCode(length int) string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
	}
	return string(buf)
}
