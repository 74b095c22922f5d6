// Package engine implements the generic turn-based game session machinery:
// the session state machine, per-session player records, the game type
// registry and the shared event bus.
//
// The engine is written for a single logical timeline: all session mutation
// and event publication happen sequentially, serialized by the caller (the
// room coordinator holds one lock around every entry point). Nothing in
// this package blocks, and event delivery is synchronous within the
// publishing call, except the intentionally deferred NEXT_TURN emission.
package engine

import (
	"math/rand"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/ids"
)

// Game is one session of a registered game type. It owns the roster, the
// turn order and the lifecycle state; game-specific behavior is delegated
// to the Rules value created by the type's factory.
type Game struct {
	typ      Type
	rules    Rules
	registry *Registry

	id                 ids.GameID
	state              State
	currentPlayerIndex int
	winnerID           *ids.PlayerID
	custom             map[string]any

	players []*Player

	// configured by OnInit, immutable afterwards
	initialGameData   map[string]any
	initialPlayerData map[string]any
	shuffle           bool
}

func newGame(t Type) *Game {
	return &Game{
		typ:                t,
		rules:              t.New(),
		state:              StateNotInitialized,
		currentPlayerIndex: -1,
		custom:             map[string]any{},
		initialGameData:    map[string]any{},
		initialPlayerData:  map[string]any{},
		shuffle:            true,
	}
}

// Init performs the one-time NOT_INITIALIZED -> WAITING transition. It
// invokes the rules' OnInit hook and then commits the initial game data,
// emitting GAME_DATA_CHANGED. The registry calls this during Create.
func (g *Game) Init(r *Registry, id ids.GameID) error {
	if g.state != StateNotInitialized {
		return apperrors.ErrAlreadyInitialized
	}
	g.registry = r
	g.id = id

	return r.do(func() error {
		g.rules.OnInit(g)
		g.state = StateWaiting
		return g.updateGameData(g.initialGameData, true)
	})
}

// ID returns the session id.
func (g *Game) ID() ids.GameID {
	return g.id
}

// State returns the current lifecycle state.
func (g *Game) State() State {
	return g.state
}

// Type returns the registered type descriptor of this session.
func (g *Game) Type() Type {
	return g.typ
}

// Players returns the roster in turn order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Player resolves a roster entry by id.
func (g *Game) Player(id ids.PlayerID) (*Player, error) {
	idx, err := g.indexOf(id)
	if err != nil {
		return nil, err
	}
	return g.players[idx], nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() (*Player, error) {
	if g.currentPlayerIndex < 0 || g.currentPlayerIndex >= len(g.players) {
		return nil, apperrors.ErrPlayerNotFound
	}
	return g.players[g.currentPlayerIndex], nil
}

// NewPlayerID allocates the smallest free player ordinal of this session.
func (g *Game) NewPlayerID() ids.PlayerID {
	ordinals := make([]int, len(g.players))
	for i, p := range g.players {
		ordinals[i] = p.id.Ordinal
	}
	return ids.PlayerID{Game: g.id, Ordinal: ids.NextOrdinal(ordinals)}
}

// Data returns a snapshot of the session, with playerIds and players
// derived from the live roster.
func (g *Game) Data() GameData {
	playerIDs := make([]ids.PlayerID, len(g.players))
	summaries := make([]PlayerSummary, len(g.players))
	for i, p := range g.players {
		playerIDs[i] = p.id
		summaries[i] = PlayerSummary{Name: p.name, PlayerID: p.id}
	}

	custom := make(map[string]any, len(g.custom))
	for k, v := range g.custom {
		custom[k] = v
	}

	return GameData{
		GameID:             g.id,
		PlayerIDs:          playerIDs,
		Players:            summaries,
		MinPlayers:         g.typ.MinPlayers,
		MaxPlayers:         g.typ.MaxPlayers,
		State:              g.state,
		CurrentPlayerIndex: g.currentPlayerIndex,
		WinnerID:           g.winnerID,
		Custom:             custom,
	}
}

// --- OnInit configuration ---

// SetInitialGameData stages game-specific fields committed at the end of
// Init. Read-only fields can not be staged.
func (g *Game) SetInitialGameData(data map[string]any) error {
	if g.state != StateNotInitialized {
		return apperrors.ErrAlreadyInitialized
	}
	for key := range data {
		if _, reserved := reservedGameDataKeys[key]; reserved {
			return apperrors.ErrForbiddenFieldUpdate
		}
	}
	g.initialGameData = data
	return nil
}

// SetInitialPlayerData stages the defaults every joining player is seeded
// with. The playerId can not be seeded.
func (g *Game) SetInitialPlayerData(data map[string]any) error {
	if g.state != StateNotInitialized {
		return apperrors.ErrAlreadyInitialized
	}
	if _, ok := data["playerId"]; ok {
		return apperrors.ErrForbiddenFieldUpdate
	}
	g.initialPlayerData = data
	return nil
}

// SetShuffle controls whether the roster is randomized on Start. Default
// is true.
func (g *Game) SetShuffle(shuffle bool) error {
	if g.state != StateNotInitialized {
		return apperrors.ErrAlreadyInitialized
	}
	g.shuffle = shuffle
	return nil
}

// --- Lifecycle operations ---

// Join adds a player to the roster and emits PLAYER_JOINED. A nil id lets
// the session allocate one. Join is valid before and after Start.
func (g *Game) Join(name string, id *ids.PlayerID) (ids.PlayerID, error) {
	if g.state == StateNotInitialized {
		return ids.PlayerID{}, apperrors.ErrNotInitialized
	}
	var pid ids.PlayerID
	err := g.registry.do(func() error {
		if len(g.players) >= g.typ.MaxPlayers {
			return apperrors.ErrRoomFull
		}
		if id != nil {
			pid = *id
		} else {
			pid = g.NewPlayerID()
		}

		custom := make(map[string]any, len(g.initialPlayerData))
		for k, v := range g.initialPlayerData {
			custom[k] = v
		}
		g.players = append(g.players, &Player{id: pid, name: name, game: g, custom: custom})

		g.publish(Event{Type: EventPlayerJoined, GameID: g.id, Data: g.Data()})
		return nil
	})
	return pid, err
}

// Leave removes a player. Before Start this is a plain removal; after
// Start the turn pointer is adjusted and the game may end if too few
// players remain. PLAYER_LEFT carries the post-removal snapshot.
func (g *Game) Leave(id ids.PlayerID) error {
	if g.state == StateNotInitialized {
		return apperrors.ErrNotInitialized
	}
	return g.registry.do(func() error {
		idx, err := g.indexOf(id)
		if err != nil {
			return err
		}

		if g.state != StateRunning {
			g.players = append(g.players[:idx], g.players[idx+1:]...)
			g.publish(Event{Type: EventPlayerLeft, GameID: g.id, Data: g.Data()})
			return nil
		}

		// The index adjustment must stay exactly this formula: decrement
		// modulo the pre-removal roster size whenever the departing index
		// is at or before the current one.
		oldCurrent := g.currentPlayerIndex
		if idx <= g.currentPlayerIndex {
			g.currentPlayerIndex = (g.currentPlayerIndex - 1 + len(g.players)) % len(g.players)
		}
		g.players = append(g.players[:idx], g.players[idx+1:]...)

		if idx == oldCurrent {
			g.next()
		} else if len(g.players) <= 1 && g.typ.MinPlayers > 1 {
			var winner *Player
			if len(g.players) == 1 {
				winner = g.players[0]
			}
			g.end(winner)
		}

		g.publish(Event{Type: EventPlayerLeft, GameID: g.id, Data: g.Data()})
		return nil
	})
}

// Start transitions WAITING -> RUNNING, optionally shuffles the roster,
// emits GAME_STARTED and performs the first turn advance.
func (g *Game) Start() error {
	if g.state == StateNotInitialized {
		return apperrors.ErrNotInitialized
	}
	return g.registry.do(func() error {
		if len(g.players) < g.typ.MinPlayers {
			return apperrors.ErrNotEnoughPlayers
		}
		if len(g.players) > g.typ.MaxPlayers {
			return apperrors.ErrTooManyPlayers
		}
		if g.state != StateWaiting {
			return apperrors.ErrAlreadyInitialized
		}

		if g.shuffle {
			rand.Shuffle(len(g.players), func(i, j int) {
				g.players[i], g.players[j] = g.players[j], g.players[i]
			})
		}

		g.state = StateRunning
		g.publish(Event{Type: EventGameStarted, GameID: g.id, Data: g.Data()})

		g.next()
		return nil
	})
}

// HandleAction validates and applies one player action. The action must
// carry every field the game type's action shape declares; the rules hook
// decides whether the turn is over.
func (g *Game) HandleAction(id ids.PlayerID, action Action) error {
	if g.state == StateNotInitialized {
		return apperrors.ErrNotInitialized
	}
	return g.registry.do(func() error {
		if g.state != StateRunning {
			return apperrors.ErrNotStarted
		}

		var prototype any
		if g.typ.Action != nil {
			prototype = g.typ.Action()
		}
		for _, field := range requiredFields(prototype) {
			if _, ok := action[field]; !ok {
				return apperrors.ErrInvalidAction
			}
		}

		player, err := g.Player(id)
		if err != nil {
			return err
		}

		turnOver, err := g.rules.OnPlayerAction(g, player, action)
		if err != nil {
			return err
		}
		if turnOver {
			g.next()
		}
		return nil
	})
}

// UpdateGameData merge-patches game-specific fields and emits
// GAME_DATA_CHANGED unless suppressed. The read-only fields state, gameId,
// currentPlayerIndex and winnerId are rejected. A playerIds entry reorders
// the roster: it must be a permutation of the existing ids, and the
// currently active player stays active at its new position.
func (g *Game) UpdateGameData(patch map[string]any, sendEvent bool) error {
	if g.state == StateNotInitialized {
		return apperrors.ErrNotInitialized
	}
	return g.registry.do(func() error {
		return g.updateGameData(patch, sendEvent)
	})
}

func (g *Game) updateGameData(patch map[string]any, sendEvent bool) error {
	for _, key := range []string{"state", "gameId", "currentPlayerIndex", "winnerId"} {
		if _, ok := patch[key]; ok {
			return apperrors.ErrForbiddenFieldUpdate
		}
	}

	if raw, ok := patch["playerIds"]; ok {
		newOrder, ok := raw.([]ids.PlayerID)
		if !ok {
			return apperrors.ErrInvalidPlayerIdUpdate
		}
		if err := g.reorderPlayers(newOrder); err != nil {
			return err
		}
	}

	for k, v := range patch {
		if k == "playerIds" {
			continue
		}
		g.custom[k] = v
	}

	if !sendEvent {
		return nil
	}
	g.publish(Event{Type: EventGameDataChanged, GameID: g.id, Data: g.Data()})
	return nil
}

func (g *Game) reorderPlayers(newOrder []ids.PlayerID) error {
	if len(newOrder) != len(g.players) {
		return apperrors.ErrInvalidPlayerIdUpdate
	}
	byID := make(map[ids.PlayerID]*Player, len(g.players))
	for _, p := range g.players {
		byID[p.id] = p
	}
	reordered := make([]*Player, len(newOrder))
	for i, id := range newOrder {
		p, ok := byID[id]
		if !ok {
			return apperrors.ErrInvalidPlayerIdUpdate
		}
		reordered[i] = p
		delete(byID, id)
	}

	var currentID ids.PlayerID
	hasCurrent := g.currentPlayerIndex >= 0 && g.currentPlayerIndex < len(g.players)
	if hasCurrent {
		currentID = g.players[g.currentPlayerIndex].id
	}

	g.players = reordered

	if hasCurrent {
		for i, p := range g.players {
			if p.id == currentID {
				g.currentPlayerIndex = i
				break
			}
		}
	}
	return nil
}

// Subscribe registers for this session's slice of the registry bus. Not
// valid before Init.
func (g *Game) Subscribe(fn func(Event), eventType EventType) (*Subscription, error) {
	if g.registry == nil {
		return nil, apperrors.ErrNotInitialized
	}
	id := g.id
	return g.registry.Subscribe(fn, eventType, &id), nil
}

// next asks the rules for a winner and either ends the game or advances
// the turn pointer. NEXT_TURN is deliberately deferred until the outermost
// engine operation returns, so the triggering caller finishes its own
// synchronous state changes before subscribers observe the new turn.
func (g *Game) next() {
	winner := g.rules.CheckWinCondition(g)
	// An empty roster ends the game with no winner. Without this a solo
	// game whose only player left would advance the turn modulo zero.
	if winner != nil || len(g.players) == 0 || (len(g.players) <= 1 && g.typ.MinPlayers > 1) {
		if winner == nil && len(g.players) == 1 {
			winner = g.players[0]
		}
		g.end(winner)
		return
	}

	g.currentPlayerIndex = (g.currentPlayerIndex + 1) % len(g.players)

	g.registry.schedule(func() {
		g.publish(Event{Type: EventNextTurn, GameID: g.id, Data: g.Data()})
	})
}

// end transitions to ENDED, the terminal state, and emits GAME_ENDED with
// the resolved winner (or none).
func (g *Game) end(winner *Player) {
	g.state = StateEnded
	if winner != nil {
		id := winner.id
		g.winnerID = &id
	}
	g.publish(Event{Type: EventGameEnded, GameID: g.id, Data: g.Data()})
}

func (g *Game) indexOf(id ids.PlayerID) (int, error) {
	for i, p := range g.players {
		if p.id == id {
			return i, nil
		}
	}
	return -1, apperrors.ErrPlayerNotFound
}

func (g *Game) publish(ev Event) {
	g.registry.publish(ev)
}
