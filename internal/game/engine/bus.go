package engine

import "github.com/socket-games/server/internal/game/ids"

// bus is the single shared event stream for all sessions of a registry.
// Subscriptions are logical filters evaluated at publish time; delivery is
// synchronous and in registration order. The bus inherits the registry's
// single-timeline model and does no locking of its own.
type bus struct {
	subs   []*Subscription
	nextID int
}

// Subscription is a disposable handle on the event stream. The owner must
// call Unsubscribe when it no longer wants events.
type Subscription struct {
	bus       *bus
	id        int
	fn        func(Event)
	eventType EventType
	gameID    *ids.GameID
	active    bool
}

// Unsubscribe detaches the subscription. Calling it more than once is a
// no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	for i, sub := range s.bus.subs {
		if sub.id == s.id {
			s.bus.subs = append(s.bus.subs[:i], s.bus.subs[i+1:]...)
			break
		}
	}
}

func (b *bus) subscribe(fn func(Event), eventType EventType, gameID *ids.GameID) *Subscription {
	b.nextID++
	sub := &Subscription{
		bus:       b,
		id:        b.nextID,
		fn:        fn,
		eventType: eventType,
		gameID:    gameID,
		active:    true,
	}
	b.subs = append(b.subs, sub)
	return sub
}

// publish delivers the event to every matching subscriber. Iteration runs
// over a snapshot so callbacks may subscribe or unsubscribe mid-delivery;
// a subscription removed during delivery receives no further events.
func (b *bus) publish(ev Event) {
	snapshot := make([]*Subscription, len(b.subs))
	copy(snapshot, b.subs)

	for _, sub := range snapshot {
		if !sub.active {
			continue
		}
		if sub.eventType != EventAll && sub.eventType != ev.Type {
			continue
		}
		if sub.gameID != nil && *sub.gameID != ev.GameID {
			continue
		}
		sub.fn(ev)
	}
}
