package protocol

// Error codes carried by ErrorPayload.
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001

	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomFull          = 2002
	ErrCodeAlreadyInRoom     = 2003
	ErrCodeInvalidCredential = 2004

	ErrCodeNotInitialized        = 3001
	ErrCodeAlreadyInitialized    = 3002
	ErrCodeNotStarted            = 3003
	ErrCodeNotEnoughPlayers      = 3004
	ErrCodeTooManyPlayers        = 3005
	ErrCodePlayerNotFound        = 3006
	ErrCodeInvalidAction         = 3007
	ErrCodeForbiddenFieldUpdate  = 3008
	ErrCodeInvalidPlayerIdUpdate = 3009

	ErrCodeNotRegistered     = 4001
	ErrCodeAlreadyRegistered = 4002
	ErrCodeGameNotFound      = 4003
)

// ErrorMessages maps error codes to their default text.
var ErrorMessages = map[int]string{
	ErrCodeUnknown:    "unknown error",
	ErrCodeInvalidMsg: "invalid message format",

	ErrCodeRoomNotFound:      "room not found",
	ErrCodeRoomFull:          "room is full",
	ErrCodeAlreadyInRoom:     "already in a room",
	ErrCodeInvalidCredential: "invalid password",

	ErrCodeNotInitialized:        "game not initialized",
	ErrCodeAlreadyInitialized:    "game already initialized",
	ErrCodeNotStarted:            "game not started",
	ErrCodeNotEnoughPlayers:      "not enough players",
	ErrCodeTooManyPlayers:        "too many players",
	ErrCodePlayerNotFound:        "player not found",
	ErrCodeInvalidAction:         "invalid action",
	ErrCodeForbiddenFieldUpdate:  "field can not be updated",
	ErrCodeInvalidPlayerIdUpdate: "playerIds must be a permutation of the existing ids",

	ErrCodeNotRegistered:     "game type not registered",
	ErrCodeAlreadyRegistered: "game type already registered",
	ErrCodeGameNotFound:      "game not found",
}
