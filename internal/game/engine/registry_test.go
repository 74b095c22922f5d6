package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/ids"
)

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 2, 2)))

	err := reg.Register(stubType("stub", 2, 2))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
	assert.True(t, reg.Registered("stub"))
	assert.False(t, reg.Registered("other"))
}

func TestCreate_UnknownNamespace(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	_, err := reg.Create("nope")
	assert.ErrorIs(t, err, apperrors.ErrNotRegistered)
}

func TestCreate_OrdinalReuse(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 2, 2)))

	g0, err := reg.Create("stub")
	require.NoError(t, err)
	g1, err := reg.Create("stub")
	require.NoError(t, err)
	g2, err := reg.Create("stub")
	require.NoError(t, err)

	assert.Equal(t, 0, g0.ID().Ordinal)
	assert.Equal(t, 1, g1.ID().Ordinal)
	assert.Equal(t, 2, g2.ID().Ordinal)

	reg.DeleteGame(g1.ID())

	g3, err := reg.Create("stub")
	require.NoError(t, err)
	assert.Equal(t, 1, g3.ID().Ordinal)
}

func TestDeleteGame_Idempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 2, 2)))
	g, err := reg.Create("stub")
	require.NoError(t, err)

	reg.DeleteGame(g.ID())
	reg.DeleteGame(g.ID())

	_, err = reg.Game(g.ID())
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestRegistry_DispatchToUnknownGame(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	ghost := ids.GameID{Namespace: "stub", Ordinal: 0}

	_, err := reg.Join(ghost, "a", nil)
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
	assert.ErrorIs(t, reg.Start(ghost), apperrors.ErrGameNotFound)
	assert.ErrorIs(t, reg.Leave(ids.PlayerID{Game: ghost}), apperrors.ErrGameNotFound)
	assert.ErrorIs(t, reg.SendAction(ids.PlayerID{Game: ghost}, Action{}), apperrors.ErrGameNotFound)
	_, err = reg.NewPlayerID(ghost)
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestGames_Filters(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("alpha", 1, 4)))
	require.NoError(t, reg.Register(stubType("beta", 1, 4)))

	a0, err := reg.Create("alpha")
	require.NoError(t, err)
	a1, err := reg.Create("alpha")
	require.NoError(t, err)
	_, err = reg.Create("beta")
	require.NoError(t, err)

	_, err = a1.Join("solo", nil)
	require.NoError(t, err)
	require.NoError(t, a1.Start())

	alphas := reg.Games("alpha", "")
	require.Len(t, alphas, 2)
	assert.Equal(t, a0.ID(), alphas[0].ID())
	assert.Equal(t, a1.ID(), alphas[1].ID())

	running := reg.Games("alpha", StateRunning)
	require.Len(t, running, 1)
	assert.Equal(t, a1.ID(), running[0].ID())

	waiting := reg.Games("", StateWaiting)
	assert.Len(t, waiting, 2)
}

func TestSubscribe_EventTypeAndGameFilters(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 1, 4)))

	g0, err := reg.Create("stub")
	require.NoError(t, err)
	g1, err := reg.Create("stub")
	require.NoError(t, err)

	all := &recorder{}
	onlyJoins := &recorder{}
	onlyG1 := &recorder{}

	reg.Subscribe(all.record, EventAll, nil)
	reg.Subscribe(onlyJoins.record, EventPlayerJoined, nil)
	g1ID := g1.ID()
	reg.Subscribe(onlyG1.record, EventAll, &g1ID)

	_, err = g0.Join("a", nil)
	require.NoError(t, err)
	_, err = g1.Join("b", nil)
	require.NoError(t, err)

	assert.Len(t, all.events, 2)
	assert.Len(t, onlyJoins.events, 2)
	require.Len(t, onlyG1.events, 1)
	assert.Equal(t, g1.ID(), onlyG1.events[0].GameID)
}

func TestSubscription_UnsubscribeIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 1, 4)))
	g, err := reg.Create("stub")
	require.NoError(t, err)

	rec := &recorder{}
	sub := reg.Subscribe(rec.record, EventPlayerJoined, nil)

	_, err = g.Join("a", nil)
	require.NoError(t, err)
	require.Len(t, rec.events, 1)

	sub.Unsubscribe()
	sub.Unsubscribe()

	_, err = g.Join("b", nil)
	require.NoError(t, err)
	assert.Len(t, rec.events, 1)
}

func TestSubscription_UnsubscribeDuringDelivery(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 1, 4)))
	g, err := reg.Create("stub")
	require.NoError(t, err)

	var second *Subscription
	firstSeen := 0
	secondSeen := 0

	reg.Subscribe(func(Event) {
		firstSeen++
		second.Unsubscribe()
	}, EventPlayerJoined, nil)
	second = reg.Subscribe(func(Event) {
		secondSeen++
	}, EventPlayerJoined, nil)

	_, err = g.Join("a", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, firstSeen)
	assert.Equal(t, 0, secondSeen, "a subscription removed mid-delivery receives nothing")
}

func TestDeferredEvents_DrainAfterOutermostCall(t *testing.T) {
	t.Parallel()

	// A subscriber reacting to NEXT_TURN by acting again must see its
	// follow-up NEXT_TURN after the triggering delivery returns, never
	// nested inside it.
	reg := NewRegistry()
	require.NoError(t, reg.Register(stubType("stub", 2, 2)))
	g, err := reg.Create("stub")
	require.NoError(t, err)
	a, err := g.Join("a", nil)
	require.NoError(t, err)
	_, err = g.Join("b", nil)
	require.NoError(t, err)

	var depth, maxDepth, turns int
	reg.Subscribe(func(ev Event) {
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		turns++
		if turns == 1 {
			// acting from inside the delivery schedules another turn
			require.NoError(t, g.HandleAction(a, Action{}))
		}
		depth--
	}, EventNextTurn, nil)

	require.NoError(t, g.Start())

	assert.Equal(t, 2, turns)
	assert.Equal(t, 1, maxDepth)
}
