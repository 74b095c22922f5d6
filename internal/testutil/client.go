// Package testutil holds shared test fakes.
package testutil

import (
	"sync"

	"github.com/socket-games/server/internal/protocol"
	"github.com/socket-games/server/internal/protocol/codec"
)

// SimpleClient is a recording fake of types.ClientConn for coordinator
// tests. Sent messages are retained for assertions.
type SimpleClient struct {
	ClientID string

	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient creates a fake connection with the given id.
func NewSimpleClient(id string) *SimpleClient {
	return &SimpleClient{ClientID: id}
}

func (c *SimpleClient) ID() string { return c.ClientID }

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed reports whether Close was called.
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Messages returns a snapshot of everything sent so far.
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessagesOfType filters the recorded messages by envelope type.
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, msg := range c.Messages() {
		if msg.Type == t {
			out = append(out, msg)
		}
	}
	return out
}

// LastOfType returns the most recent message of a type, or nil.
func (c *SimpleClient) LastOfType(t protocol.MessageType) *protocol.Message {
	msgs := c.MessagesOfType(t)
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

// Payload decodes a message payload, failing the calling test indirectly
// through the returned error.
func Payload[T any](msg *protocol.Message) (*T, error) {
	return codec.ParsePayload[T](msg)
}
