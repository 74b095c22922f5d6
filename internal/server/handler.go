package server

import (
	"log"

	"github.com/socket-games/server/internal/game/engine"
	"github.com/socket-games/server/internal/protocol"
	"github.com/socket-games/server/internal/protocol/codec"
	"github.com/socket-games/server/internal/types"
)

// handlerFunc is the uniform message handler signature.
type handlerFunc func(conn types.ClientConn, msg *protocol.Message)

// Handler dispatches decoded client messages to the coordinator.
type Handler struct {
	manager  *Manager
	handlers map[protocol.MessageType]handlerFunc
}

// NewHandler builds the dispatch table.
func NewHandler(manager *Manager) *Handler {
	h := &Handler{manager: manager}
	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgJoin:     h.handleJoin,
		protocol.MsgAction:   h.handleAction,
		protocol.MsgLeave:    h.handleLeave,
		protocol.MsgStart:    h.handleStart,
		protocol.MsgRecreate: h.handleRecreate,
		protocol.MsgChat:     h.handleChat,
	}
	return h
}

// Handle routes one message. Unknown kinds get an invalid-message error.
func (h *Handler) Handle(conn types.ClientConn, msg *protocol.Message) {
	fn, ok := h.handlers[msg.Type]
	if !ok {
		log.Printf("unknown message type %q from %s", msg.Type, conn.ID())
		conn.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	fn(conn, msg)
}

func (h *Handler) handleJoin(conn types.ClientConn, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinPayload](msg)
	if err != nil || payload.Name == "" || payload.Hash == "" {
		conn.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h.manager.Join(conn, payload.Name, payload.Hash, payload.Password)
}

func (h *Handler) handleAction(conn types.ClientConn, msg *protocol.Message) {
	action, err := codec.ParsePayload[engine.Action](msg)
	if err != nil {
		conn.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h.manager.Action(conn, *action)
}

func (h *Handler) handleLeave(conn types.ClientConn, _ *protocol.Message) {
	h.manager.Leave(conn)
}

func (h *Handler) handleStart(conn types.ClientConn, _ *protocol.Message) {
	h.manager.Start(conn)
}

func (h *Handler) handleRecreate(conn types.ClientConn, _ *protocol.Message) {
	h.manager.Recreate(conn)
}

func (h *Handler) handleChat(conn types.ClientConn, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil || payload.Message == "" {
		conn.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	h.manager.Chat(conn, payload.Message)
}
