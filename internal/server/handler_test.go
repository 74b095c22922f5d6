package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socket-games/server/internal/protocol"
	"github.com/socket-games/server/internal/protocol/codec"
	"github.com/socket-games/server/internal/testutil"
)

func TestHandle_UnknownMessageType(t *testing.T) {
	t.Parallel()

	h := NewHandler(newTestManager(t))
	c := testutil.NewSimpleClient("conn-1")

	h.Handle(c, &protocol.Message{Type: "teleport"})

	msg := c.LastOfType(protocol.MsgError)
	require.NotNil(t, msg)
	payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeInvalidMsg, payload.Code)
}

func TestHandle_JoinValidation(t *testing.T) {
	t.Parallel()

	h := NewHandler(newTestManager(t))
	c := testutil.NewSimpleClient("conn-1")

	// name and hash are mandatory
	h.Handle(c, codec.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Name: "alice"}))
	require.NotNil(t, c.LastOfType(protocol.MsgError))

	h.Handle(c, codec.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{Hash: "abcde"}))
	require.NotNil(t, c.LastOfType(protocol.MsgError))
}

func TestHandle_JoinDispatch(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	h := NewHandler(m)

	code, err := m.CreateRoom("tiktaktoe", "")
	require.NoError(t, err)

	c := testutil.NewSimpleClient("conn-1")
	h.Handle(c, codec.MustNewMessage(protocol.MsgJoin, protocol.JoinPayload{
		Name: "alice",
		Hash: code,
	}))

	assert.NotNil(t, c.LastOfType(protocol.MsgJoinAccept))
}

func TestHandle_ChatValidation(t *testing.T) {
	t.Parallel()

	h := NewHandler(newTestManager(t))
	c := testutil.NewSimpleClient("conn-1")

	h.Handle(c, codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{}))
	require.NotNil(t, c.LastOfType(protocol.MsgError))
}
