package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/config"
	"github.com/socket-games/server/internal/game/engine"
	"github.com/socket-games/server/internal/game/ids"
	"github.com/socket-games/server/internal/protocol"
	"github.com/socket-games/server/internal/protocol/codec"
	"github.com/socket-games/server/internal/server/auth"
	"github.com/socket-games/server/internal/server/storage"
	"github.com/socket-games/server/internal/types"
)

// Manager is the room coordinator: it maps connections to rooms, rooms to
// game sessions, and fans session events back out to the right
// connections. One mutex serializes everything, which also gives the
// lock-free engine underneath its single timeline.
type Manager struct {
	mu sync.Mutex

	registry *engine.Registry
	store    *storage.RedisStore // nil when Redis is unavailable
	cfg      *config.Config

	rooms       map[string]*Room
	clientRooms map[string]*Room // connection id -> room

	// connections that have not joined a room yet, by connection id
	ghostTimers map[string]*time.Timer
}

// NewManager creates a coordinator. store may be nil; the Redis mirror is
// then skipped entirely.
func NewManager(registry *engine.Registry, store *storage.RedisStore, cfg *config.Config) *Manager {
	return &Manager{
		registry:    registry,
		store:       store,
		cfg:         cfg,
		rooms:       make(map[string]*Room),
		clientRooms: make(map[string]*Room),
		ghostTimers: make(map[string]*time.Timer),
	}
}

// Register tracks a fresh connection. A connection that joins nothing
// within the join grace period is dropped.
func (m *Manager) Register(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	connID := conn.ID()
	m.ghostTimers[connID] = time.AfterFunc(m.cfg.Game.JoinGraceDuration(), func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.ghostTimers, connID)
		if _, joined := m.clientRooms[connID]; !joined {
			log.Printf("dropping idle connection %s", connID)
			conn.Close()
		}
	})
}

// CreateRoom creates a room with a fresh session of the given namespace
// and returns its code. An empty password leaves the room open.
func (m *Manager) CreateRoom(namespace, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.Registered(namespace) {
		return "", apperrors.ErrNotRegistered
	}

	passwordHash := ""
	if password != "" {
		var err error
		passwordHash, err = auth.HashPassword(password)
		if err != nil {
			return "", err
		}
	}

	code := ids.NewRoomCode(m.cfg.Game.RoomCodeLength, func(c string) bool {
		_, taken := m.rooms[c]
		return taken
	})

	room := newRoom(code, namespace, passwordHash)
	if err := m.createSession(room); err != nil {
		return "", err
	}

	m.rooms[code] = room
	m.scheduleRoomGC(code)
	m.mirrorSave(room)

	log.Printf("room %s created (namespace %s)", code, namespace)
	return code, nil
}

// RoomExists reports whether a room code is live.
func (m *Manager) RoomExists(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.rooms[code]
	return ok
}

// RoomNeeds returns a room's namespace and whether it requires a password.
func (m *Manager) RoomNeeds(code string) (namespace string, needsPassword, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[code]
	if !ok {
		return "", false, false
	}
	return room.namespace, room.passwordHash != "", true
}

// Join adds a connection to a room and its backing session. Failures are
// reported to the connection as a join-error; room membership is rolled
// back if the session join fails.
func (m *Manager) Join(conn types.ClientConn, name, code, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	connID := conn.ID()

	if _, in := m.clientRooms[connID]; in {
		m.sendJoinError(conn, apperrors.ErrAlreadyInRoom)
		return false
	}

	room, ok := m.rooms[code]
	if !ok {
		m.sendJoinError(conn, apperrors.ErrRoomNotFound)
		return false
	}

	if room.passwordHash != "" && !auth.VerifyPassword(room.passwordHash, password) {
		m.sendJoinError(conn, apperrors.ErrInvalidCredential)
		return false
	}

	if room.gameID == nil {
		m.sendJoinError(conn, apperrors.ErrGameNotFound)
		return false
	}

	room.members[connID] = &member{conn: conn, name: name}
	room.order = append(room.order, connID)
	m.clientRooms[connID] = room

	playerID, err := m.registry.Join(*room.gameID, name, nil)
	if err != nil {
		room.removeMember(connID)
		delete(m.clientRooms, connID)
		m.sendJoinError(conn, err)
		return false
	}
	room.members[connID].playerID = playerID

	if room.owner == "" {
		room.owner = connID
	}
	m.cancelGhostTimer(connID)

	conn.SendMessage(codec.MustNewMessage(protocol.MsgJoinAccept, protocol.JoinAcceptPayload{
		RoomCode: room.code,
	}))
	conn.SendMessage(codec.MustNewMessage(protocol.MsgSystemEvent, protocol.SystemEventPayload{
		Type:  "youare",
		Name:  name,
		ID:    auth.HashClientID(connID),
		Owner: room.owner == connID,
	}))
	room.broadcast(codec.MustNewMessage(protocol.MsgSystemEvent, protocol.SystemEventPayload{
		Type: "joined",
		Name: name,
	}))

	m.mirrorSave(room)
	log.Printf("client %s joined room %s as %q", connID, room.code, name)
	return true
}

// Leave removes a connection from its room on request.
func (m *Manager) Leave(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.clientRooms[conn.ID()]
	if !ok {
		m.sendError(conn, apperrors.ErrRoomNotFound)
		return
	}
	m.removeFromRoom(room, conn.ID())
}

// Disconnect cleans a connection up after its socket is gone.
func (m *Manager) Disconnect(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	connID := conn.ID()
	m.cancelGhostTimer(connID)

	room, ok := m.clientRooms[connID]
	if !ok {
		return
	}
	m.removeFromRoom(room, connID)
}

// Start starts the room's session.
func (m *Manager) Start(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.clientRooms[conn.ID()]
	if !ok {
		m.sendError(conn, apperrors.ErrRoomNotFound)
		return
	}
	if room.gameID == nil {
		m.sendError(conn, apperrors.ErrGameNotFound)
		return
	}
	if err := m.registry.Start(*room.gameID); err != nil {
		m.sendError(conn, err)
		return
	}
	m.mirrorSave(room)
}

// Recreate replaces an ended session with a fresh one and rejoins every
// remaining member under a fresh player id.
func (m *Manager) Recreate(conn types.ClientConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.clientRooms[conn.ID()]
	if !ok {
		m.sendError(conn, apperrors.ErrRoomNotFound)
		return
	}
	if room.gameID != nil {
		m.sendError(conn, apperrors.ErrAlreadyInitialized)
		return
	}

	if err := m.createSession(room); err != nil {
		m.sendError(conn, err)
		return
	}

	for _, connID := range room.order {
		mem := room.members[connID]
		playerID, err := m.registry.Join(*room.gameID, mem.name, nil)
		if err != nil {
			log.Printf("rejoin of %s in room %s failed: %v", connID, room.code, err)
			continue
		}
		mem.playerID = playerID
	}

	m.mirrorSave(room)
	log.Printf("room %s recreated its session", room.code)
}

// Action routes a raw game action from a connection to its session.
func (m *Manager) Action(conn types.ClientConn, action engine.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.clientRooms[conn.ID()]
	if !ok {
		m.sendError(conn, apperrors.ErrRoomNotFound)
		return
	}
	if room.gameID == nil {
		m.sendError(conn, apperrors.ErrGameNotFound)
		return
	}

	mem := room.members[conn.ID()]
	if err := m.registry.SendAction(mem.playerID, action); err != nil {
		m.sendError(conn, err)
	}
}

// Chat relays a chat line to the whole room. The sender is identified by
// display name and a stable hash of the connection id, never the raw id.
func (m *Manager) Chat(conn types.ClientConn, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.clientRooms[conn.ID()]
	if !ok {
		m.sendError(conn, apperrors.ErrRoomNotFound)
		return
	}

	mem := room.members[conn.ID()]
	room.broadcast(codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		Sender:    mem.name,
		SenderID:  auth.HashClientID(conn.ID()),
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	}))
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// --- internals, caller holds m.mu ---

// createSession creates a fresh session for the room and attaches the
// event relay and the end-of-game cleanup. The relay is registered first
// so clients see GAME_ENDED before the session is torn down.
func (m *Manager) createSession(room *Room) error {
	g, err := m.registry.Create(room.namespace)
	if err != nil {
		return err
	}

	gameID := g.ID()
	room.gameID = &gameID
	room.relaySub = m.registry.Subscribe(func(ev engine.Event) {
		m.relay(room, ev)
	}, engine.EventAll, &gameID)
	room.endSub = m.registry.Subscribe(func(engine.Event) {
		m.onGameEnded(room)
	}, engine.EventGameEnded, &gameID)

	return nil
}

// relay fans one session event out to the room. PLAYER_DATA_CHANGED goes
// only to the connection owning that player; everything else is broadcast.
func (m *Manager) relay(room *Room, ev engine.Event) {
	msg := codec.MustNewMessage(protocol.MsgGameEvent, protocol.GameEventPayload{
		Type:     string(ev.Type),
		GameID:   ev.GameID,
		PlayerID: ev.PlayerID,
		Data:     ev.Data,
	})

	if ev.Type == engine.EventPlayerDataChanged && ev.PlayerID != nil {
		if mem := room.memberByPlayerID(*ev.PlayerID); mem != nil {
			mem.conn.SendMessage(msg)
		}
		return
	}
	room.broadcast(msg)
}

// onGameEnded tears the ended session down exactly once. The room keeps
// its members; a new session appears only on an explicit recreate.
func (m *Manager) onGameEnded(room *Room) {
	if room.gameID == nil {
		return
	}
	room.relaySub.Unsubscribe()
	room.endSub.Unsubscribe()
	m.registry.DeleteGame(*room.gameID)
	room.gameID = nil
	room.relaySub = nil
	room.endSub = nil
}

// removeFromRoom takes a connection out of its room and session, hands
// ownership over if needed and garbage collects the room when empty.
func (m *Manager) removeFromRoom(room *Room, connID string) {
	mem, ok := room.members[connID]
	if !ok {
		return
	}

	if room.gameID != nil {
		if err := m.registry.Leave(mem.playerID); err != nil {
			log.Printf("session leave of %s in room %s: %v", connID, room.code, err)
		}
	}

	room.removeMember(connID)
	delete(m.clientRooms, connID)

	room.broadcast(codec.MustNewMessage(protocol.MsgSystemEvent, protocol.SystemEventPayload{
		Type: "left",
		Name: mem.name,
	}))

	if room.owner == connID {
		room.owner = ""
		if len(room.order) > 0 {
			room.owner = room.order[0]
			newOwner := room.members[room.owner]
			room.broadcast(codec.MustNewMessage(protocol.MsgSystemEvent, protocol.SystemEventPayload{
				Type:  "owner",
				Name:  newOwner.name,
				ID:    auth.HashClientID(room.owner),
				Owner: true,
			}))
		}
	}

	if room.empty() {
		m.scheduleRoomGC(room.code)
	}
	m.mirrorSave(room)
	log.Printf("client %s left room %s", connID, room.code)
}

// scheduleRoomGC arms a one-shot emptiness check after the grace period.
// The check re-reads the room, so joins in between simply make it a no-op.
func (m *Manager) scheduleRoomGC(code string) {
	time.AfterFunc(m.cfg.Game.RoomGraceDuration(), func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.gcRoom(code)
	})
}

func (m *Manager) gcRoom(code string) {
	room, ok := m.rooms[code]
	if !ok || !room.empty() {
		return
	}

	if room.gameID != nil {
		room.relaySub.Unsubscribe()
		room.endSub.Unsubscribe()
		m.registry.DeleteGame(*room.gameID)
		room.gameID = nil
	}
	delete(m.rooms, code)
	m.mirrorDelete(code)
	log.Printf("room %s removed (empty)", code)
}

func (m *Manager) cancelGhostTimer(connID string) {
	if t, ok := m.ghostTimers[connID]; ok {
		t.Stop()
		delete(m.ghostTimers, connID)
	}
}

// sendJoinError reports a join failure to the joining connection only.
func (m *Manager) sendJoinError(conn types.ClientConn, err error) {
	msg := apperrors.Describe(err)
	conn.SendMessage(codec.MustNewMessage(protocol.MsgJoinError, protocol.JoinErrorPayload{
		Message: msg,
	}))
}

// sendError reports an operation failure to the initiating connection.
func (m *Manager) sendError(conn types.ClientConn, err error) {
	code, text := apperrors.CodeOf(err)
	conn.SendMessage(codec.NewErrorMessageWithText(code, text))
}

// mirrorSave writes the room snapshot to Redis, fire and forget.
func (m *Manager) mirrorSave(room *Room) {
	if m.store == nil {
		return
	}
	record := room.record()
	if room.gameID != nil {
		if g, err := m.registry.Game(*room.gameID); err == nil {
			record.GameState = string(g.State())
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.store.SaveRoom(ctx, record); err != nil {
			log.Printf("room mirror save failed: %v", err)
		}
	}()
}

// mirrorDelete drops the room snapshot from Redis, fire and forget.
func (m *Manager) mirrorDelete(code string) {
	if m.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.store.DeleteRoom(ctx, code); err != nil {
			log.Printf("room mirror delete failed: %v", err)
		}
	}()
}
