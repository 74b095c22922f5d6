package engine

import (
	"sort"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/ids"
)

// Registry holds the registered game types, the live sessions and the
// shared event bus. One registry backs one server process.
//
// The registry is not safe for concurrent use; the caller serializes
// access. In exchange it guarantees a strict event timeline: events of one
// operation are delivered before the next operation starts, with NEXT_TURN
// deferred to the end of the outermost operation that caused it.
type Registry struct {
	types map[string]Type
	games map[ids.GameID]*Game

	bus bus

	// depth tracks nesting of engine operations so deferred work runs only
	// when the outermost one unwinds.
	depth    int
	deferred []func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: map[string]Type{},
		games: map[ids.GameID]*Game{},
	}
}

// do runs one engine operation, draining deferred work once the outermost
// operation returns. Errors do not cancel already-scheduled work.
func (r *Registry) do(fn func() error) error {
	r.depth++
	err := fn()
	r.depth--

	if r.depth == 0 {
		for len(r.deferred) > 0 {
			next := r.deferred[0]
			r.deferred = r.deferred[1:]
			r.depth++
			next()
			r.depth--
		}
	}
	return err
}

// schedule queues fn to run after the outermost engine operation returns.
func (r *Registry) schedule(fn func()) {
	r.deferred = append(r.deferred, fn)
}

func (r *Registry) publish(ev Event) {
	r.bus.publish(ev)
}

// Register adds a game type under its namespace.
func (r *Registry) Register(t Type) error {
	if _, ok := r.types[t.Namespace]; ok {
		return apperrors.ErrAlreadyRegistered
	}
	r.types[t.Namespace] = t
	return nil
}

// Registered reports whether a namespace has a registered type.
func (r *Registry) Registered(namespace string) bool {
	_, ok := r.types[namespace]
	return ok
}

// Create initializes a new session of the given namespace with the
// smallest free ordinal and emits GAME_CREATED.
func (r *Registry) Create(namespace string) (*Game, error) {
	t, ok := r.types[namespace]
	if !ok {
		return nil, apperrors.ErrNotRegistered
	}

	var ordinals []int
	for id := range r.games {
		if id.Namespace == namespace {
			ordinals = append(ordinals, id.Ordinal)
		}
	}
	id := ids.GameID{Namespace: namespace, Ordinal: ids.NextOrdinal(ordinals)}

	g := newGame(t)
	r.games[id] = g
	if err := g.Init(r, id); err != nil {
		delete(r.games, id)
		return nil, err
	}

	r.do(func() error {
		r.publish(Event{Type: EventGameCreated, GameID: id, Data: g.Data()})
		return nil
	})
	return g, nil
}

// Game resolves a live session by id.
func (r *Registry) Game(id ids.GameID) (*Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, apperrors.ErrGameNotFound
	}
	return g, nil
}

// Join adds a player to a session. A nil playerID lets the session
// allocate one.
func (r *Registry) Join(id ids.GameID, name string, playerID *ids.PlayerID) (ids.PlayerID, error) {
	g, err := r.Game(id)
	if err != nil {
		return ids.PlayerID{}, err
	}
	return g.Join(name, playerID)
}

// Leave removes a player from a session.
func (r *Registry) Leave(id ids.PlayerID) error {
	g, err := r.Game(id.Game)
	if err != nil {
		return err
	}
	return g.Leave(id)
}

// Start starts a session.
func (r *Registry) Start(id ids.GameID) error {
	g, err := r.Game(id)
	if err != nil {
		return err
	}
	return g.Start()
}

// SendAction routes a player action to its session.
func (r *Registry) SendAction(id ids.PlayerID, action Action) error {
	g, err := r.Game(id.Game)
	if err != nil {
		return err
	}
	return g.HandleAction(id, action)
}

// NewPlayerID pre-allocates a player id on a session without joining.
func (r *Registry) NewPlayerID(id ids.GameID) (ids.PlayerID, error) {
	g, err := r.Game(id)
	if err != nil {
		return ids.PlayerID{}, err
	}
	return g.NewPlayerID(), nil
}

// DeleteGame drops a session from the registry. Unknown ids are ignored;
// the session's ordinal becomes reusable.
func (r *Registry) DeleteGame(id ids.GameID) {
	delete(r.games, id)
}

// Games returns the sessions of a namespace in the given state, sorted by
// ordinal. An empty state matches all states; an empty namespace matches
// all namespaces.
func (r *Registry) Games(namespace string, state State) []*Game {
	var out []*Game
	for id, g := range r.games {
		if namespace != "" && id.Namespace != namespace {
			continue
		}
		if state != "" && g.state != state {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].id, out[j].id
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Ordinal < b.Ordinal
	})
	return out
}

// Subscribe attaches a callback to the event stream, filtered by event
// type (EventAll matches everything) and optionally by session.
func (r *Registry) Subscribe(fn func(Event), eventType EventType, gameID *ids.GameID) *Subscription {
	return r.bus.subscribe(fn, eventType, gameID)
}
