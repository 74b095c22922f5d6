package server

import (
	"time"

	"github.com/socket-games/server/internal/game/engine"
	"github.com/socket-games/server/internal/game/ids"
	"github.com/socket-games/server/internal/protocol"
	"github.com/socket-games/server/internal/server/storage"
	"github.com/socket-games/server/internal/types"
)

// member is one connection's membership in a room.
type member struct {
	conn     types.ClientConn
	name     string
	playerID ids.PlayerID
}

// Room groups connections around at most one live game session. All fields
// are guarded by the owning Manager's mutex.
type Room struct {
	code         string
	namespace    string
	passwordHash string
	createdAt    time.Time

	members map[string]*member // keyed by connection id
	order   []string           // connection ids in join order, for ownership

	// owner is the connection id of the room owner, empty while the room
	// has no members.
	owner string

	// gameID is the backing session, nil between GAME_ENDED cleanup and an
	// explicit recreate.
	gameID   *ids.GameID
	relaySub *engine.Subscription
	endSub   *engine.Subscription
}

func newRoom(code, namespace, passwordHash string) *Room {
	return &Room{
		code:         code,
		namespace:    namespace,
		passwordHash: passwordHash,
		createdAt:    time.Now(),
		members:      make(map[string]*member),
	}
}

func (r *Room) empty() bool {
	return len(r.members) == 0
}

// broadcast sends a message to every member.
func (r *Room) broadcast(msg *protocol.Message) {
	for _, id := range r.order {
		if m, ok := r.members[id]; ok {
			m.conn.SendMessage(msg)
		}
	}
}

// memberByPlayerID resolves the member holding a session player id.
func (r *Room) memberByPlayerID(id ids.PlayerID) *member {
	for _, m := range r.members {
		if m.playerID == id {
			return m
		}
	}
	return nil
}

// removeMember drops a connection from membership and join order.
func (r *Room) removeMember(connID string) {
	delete(r.members, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// record builds the Redis mirror snapshot.
func (r *Room) record() *storage.RoomRecord {
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.members[id]; ok {
			names = append(names, m.name)
		}
	}

	return &storage.RoomRecord{
		Code:        r.code,
		Namespace:   r.namespace,
		HasPassword: r.passwordHash != "",
		PlayerNames: names,
		CreatedAt:   r.createdAt.Unix(),
	}
}
