package server

import (
	"sync"
	"testing"

	"github.com/socket-games/server/internal/protocol"
	"github.com/socket-games/server/internal/protocol/codec"
)

func TestClient_SendAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	c := NewClient(nil, nil)
	c.Close()
	c.Close() // idempotent

	// must not panic on the closed channel
	c.SendMessage(codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: "hi"}))
}

func TestClient_ConcurrentSendAndClose(t *testing.T) {
	t.Parallel()

	msg := codec.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: "x"})

	for i := 0; i < 50; i++ {
		c := NewClient(nil, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			// more sends than the buffer holds, so the full-buffer
			// close path races against the explicit Close as well
			for j := 0; j < 300; j++ {
				c.SendMessage(msg)
			}
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
	}
}
