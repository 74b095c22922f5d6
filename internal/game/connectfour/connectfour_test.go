package connectfour

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/engine"
)

func newRunningGame(t *testing.T) (*engine.Game, []*engine.Player) {
	t.Helper()

	reg := engine.NewRegistry()
	require.NoError(t, reg.Register(GameType))

	g, err := reg.Create(Namespace)
	require.NoError(t, err)
	_, err = g.Join("alice", nil)
	require.NoError(t, err)
	_, err = g.Join("bob", nil)
	require.NoError(t, err)
	require.NoError(t, g.Start())
	return g, g.Players()
}

func drop(t *testing.T, g *engine.Game, x int) {
	t.Helper()

	cur, err := g.CurrentPlayer()
	require.NoError(t, err)
	require.NoError(t, g.HandleAction(cur.ID(), engine.Action{"x": x}))
}

func TestTurnOrderIsNotShuffled(t *testing.T) {
	t.Parallel()

	g, players := newRunningGame(t)

	assert.Equal(t, "alice", players[0].Name())
	assert.Equal(t, "bob", players[1].Name())

	cur, err := g.CurrentPlayer()
	require.NoError(t, err)
	assert.Equal(t, "alice", cur.Name())
}

func TestDropStacks(t *testing.T) {
	t.Parallel()

	g, _ := newRunningGame(t)

	drop(t, g, 3) // alice
	drop(t, g, 3) // bob on top

	board := g.Data().Custom["board"].([][]*bool)
	require.NotNil(t, board[3][0])
	require.NotNil(t, board[3][1])
	assert.True(t, *board[3][0])
	assert.False(t, *board[3][1])
	assert.Nil(t, board[3][2])
}

func TestVerticalWin(t *testing.T) {
	t.Parallel()

	g, players := newRunningGame(t)

	drop(t, g, 0) // alice
	drop(t, g, 1)
	drop(t, g, 0) // alice
	drop(t, g, 1)
	drop(t, g, 0) // alice
	drop(t, g, 1)
	drop(t, g, 0) // alice, four in column 0

	assert.Equal(t, engine.StateEnded, g.State())
	require.NotNil(t, g.Data().WinnerID)
	assert.Equal(t, players[0].ID(), *g.Data().WinnerID)
}

func TestHorizontalWin(t *testing.T) {
	t.Parallel()

	g, players := newRunningGame(t)

	drop(t, g, 0) // alice
	drop(t, g, 0)
	drop(t, g, 1) // alice
	drop(t, g, 1)
	drop(t, g, 2) // alice
	drop(t, g, 2)
	drop(t, g, 3) // alice, four across the bottom row

	assert.Equal(t, engine.StateEnded, g.State())
	require.NotNil(t, g.Data().WinnerID)
	assert.Equal(t, players[0].ID(), *g.Data().WinnerID)
}

func TestDiagonalWin(t *testing.T) {
	t.Parallel()

	g, players := newRunningGame(t)

	// alice builds the upward diagonal (0,0) (1,1) (2,2) (3,3)
	drop(t, g, 0) // a (0,0)
	drop(t, g, 1) // b (1,0)
	drop(t, g, 1) // a (1,1)
	drop(t, g, 2) // b (2,0)
	drop(t, g, 2) // a (2,1)
	drop(t, g, 3) // b (3,0)
	drop(t, g, 2) // a (2,2)
	drop(t, g, 3) // b (3,1)
	drop(t, g, 3) // a (3,2)
	drop(t, g, 6) // b elsewhere
	drop(t, g, 3) // a (3,3) completes the diagonal

	assert.Equal(t, engine.StateEnded, g.State())
	require.NotNil(t, g.Data().WinnerID)
	assert.Equal(t, players[0].ID(), *g.Data().WinnerID)
}

func TestInvalidColumn(t *testing.T) {
	t.Parallel()

	g, _ := newRunningGame(t)
	cur, err := g.CurrentPlayer()
	require.NoError(t, err)

	err = g.HandleAction(cur.ID(), engine.Action{"x": 7})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
	err = g.HandleAction(cur.ID(), engine.Action{"x": -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
}

func TestFullColumnRejected(t *testing.T) {
	t.Parallel()

	g, _ := newRunningGame(t)

	// both players stack column 5 until it is full, alternating colors
	for i := 0; i < 3; i++ {
		drop(t, g, 5)
		drop(t, g, 5)
	}
	require.Equal(t, engine.StateRunning, g.State())

	cur, err := g.CurrentPlayer()
	require.NoError(t, err)
	err = g.HandleAction(cur.ID(), engine.Action{"x": 5})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
}
