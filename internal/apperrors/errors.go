// Package apperrors defines the typed failures shared by the game engine
// and the room layer. Every precondition violation is one of these values;
// the connection gateway is the only place they are translated into
// protocol error messages.
package apperrors

import (
	"errors"

	"github.com/socket-games/server/internal/protocol"
)

// GameError is a typed operation failure with a protocol error code.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Engine failures.
var (
	ErrNotInitialized        = &GameError{Code: protocol.ErrCodeNotInitialized, Message: "game not initialized"}
	ErrAlreadyInitialized    = &GameError{Code: protocol.ErrCodeAlreadyInitialized, Message: "game already initialized"}
	ErrNotStarted            = &GameError{Code: protocol.ErrCodeNotStarted, Message: "game not started"}
	ErrRoomFull              = &GameError{Code: protocol.ErrCodeRoomFull, Message: "room is full"}
	ErrNotEnoughPlayers      = &GameError{Code: protocol.ErrCodeNotEnoughPlayers, Message: "not enough players"}
	ErrTooManyPlayers        = &GameError{Code: protocol.ErrCodeTooManyPlayers, Message: "too many players"}
	ErrPlayerNotFound        = &GameError{Code: protocol.ErrCodePlayerNotFound, Message: "player not found"}
	ErrInvalidAction         = &GameError{Code: protocol.ErrCodeInvalidAction, Message: "invalid action"}
	ErrForbiddenFieldUpdate  = &GameError{Code: protocol.ErrCodeForbiddenFieldUpdate, Message: "field can not be updated"}
	ErrInvalidPlayerIdUpdate = &GameError{Code: protocol.ErrCodeInvalidPlayerIdUpdate, Message: "playerIds must be a permutation of the existing ids"}
)

// Registry failures.
var (
	ErrNotRegistered     = &GameError{Code: protocol.ErrCodeNotRegistered, Message: "game type not registered"}
	ErrAlreadyRegistered = &GameError{Code: protocol.ErrCodeAlreadyRegistered, Message: "game type already registered"}
	ErrGameNotFound      = &GameError{Code: protocol.ErrCodeGameNotFound, Message: "game not found"}
)

// Room failures.
var (
	ErrRoomNotFound      = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "room not found"}
	ErrAlreadyInRoom     = &GameError{Code: protocol.ErrCodeAlreadyInRoom, Message: "already in a room"}
	ErrInvalidCredential = &GameError{Code: protocol.ErrCodeInvalidCredential, Message: "invalid password"}
)

// CodeOf extracts the protocol error code and text of an error. Errors
// outside the taxonomy map to the unknown code.
func CodeOf(err error) (int, string) {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code, ge.Message
	}
	return protocol.ErrCodeUnknown, err.Error()
}

// Describe returns the human readable text of an error.
func Describe(err error) string {
	_, text := CodeOf(err)
	return text
}
