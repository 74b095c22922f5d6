package tiktaktoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/engine"
)

func newRunningGame(t *testing.T) *engine.Game {
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
	return g
}

// move plays a cell as whoever is the current player.
func move(t *testing.T, g *engine.Game, x, y int) {
	t.Helper()

	cur, err := g.CurrentPlayer()
	require.NoError(t, err)
	require.NoError(t, g.HandleAction(cur.ID(), engine.Action{"x": x, "y": y}))
}

func TestGameType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tiktaktoe", GameType.Namespace)
	assert.Equal(t, 2, GameType.MinPlayers)
	assert.Equal(t, 2, GameType.MaxPlayers)
}

func TestInit_EmptyBoard(t *testing.T) {
	t.Parallel()

	g := newRunningGame(t)

	board, ok := g.Data().Custom["board"].([][]*bool)
	require.True(t, ok)
	require.Len(t, board, 3)
	for _, col := range board {
		require.Len(t, col, 3)
		for _, cell := range col {
			assert.Nil(t, cell)
		}
	}
}

func TestDiagonalWin(t *testing.T) {
	t.Parallel()

	g := newRunningGame(t)
	first := g.Players()[0]

	move(t, g, 0, 0) // first player
	move(t, g, 1, 0)
	move(t, g, 1, 1) // first player
	move(t, g, 2, 0)
	move(t, g, 2, 2) // first player completes the diagonal

	assert.Equal(t, engine.StateEnded, g.State())
	require.NotNil(t, g.Data().WinnerID)
	assert.Equal(t, first.ID(), *g.Data().WinnerID)

	tr := true
	fa := false
	want := [][]*bool{
		{&tr, nil, nil},
		{&fa, &tr, nil},
		{&fa, nil, &tr},
	}
	board := g.Data().Custom["board"].([][]*bool)
	for x := range want {
		for y := range want[x] {
			if want[x][y] == nil {
				assert.Nil(t, board[x][y], "cell %d,%d", x, y)
			} else {
				require.NotNil(t, board[x][y], "cell %d,%d", x, y)
				assert.Equal(t, *want[x][y], *board[x][y], "cell %d,%d", x, y)
			}
		}
	}
}

func TestColumnWin(t *testing.T) {
	t.Parallel()

	g := newRunningGame(t)
	first := g.Players()[0]

	move(t, g, 0, 0)
	move(t, g, 1, 0)
	move(t, g, 0, 1)
	move(t, g, 1, 1)
	move(t, g, 0, 2)

	assert.Equal(t, engine.StateEnded, g.State())
	require.NotNil(t, g.Data().WinnerID)
	assert.Equal(t, first.ID(), *g.Data().WinnerID)
}

func TestInvalidMoves(t *testing.T) {
	t.Parallel()

	g := newRunningGame(t)
	cur, err := g.CurrentPlayer()
	require.NoError(t, err)

	// out of bounds
	err = g.HandleAction(cur.ID(), engine.Action{"x": 3, "y": 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
	err = g.HandleAction(cur.ID(), engine.Action{"x": 0, "y": -1})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)

	// missing coordinate
	err = g.HandleAction(cur.ID(), engine.Action{"x": 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)

	// occupied cell
	move(t, g, 0, 0)
	cur, err = g.CurrentPlayer()
	require.NoError(t, err)
	err = g.HandleAction(cur.ID(), engine.Action{"x": 0, "y": 0})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAction)
}

func TestFailedMoveKeepsTurn(t *testing.T) {
	t.Parallel()

	g := newRunningGame(t)
	cur, err := g.CurrentPlayer()
	require.NoError(t, err)

	err = g.HandleAction(cur.ID(), engine.Action{"x": 9, "y": 9})
	require.ErrorIs(t, err, apperrors.ErrInvalidAction)

	still, err := g.CurrentPlayer()
	require.NoError(t, err)
	assert.Equal(t, cur.ID(), still.ID())
}
