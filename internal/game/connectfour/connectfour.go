// Package connectfour implements connect four on a 7x6 board for exactly
// two players. The board is stored column-major: board[x][y] with y=0 the
// bottom row, true for the first player in turn order. Turn order is not
// shuffled, so the creating side keeps the first move.
package connectfour

import (
	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/engine"
)

const (
	Namespace = "connectfour"

	columns = 7
	rows    = 6
)

// Action is one move: the column to drop into.
type Action struct {
	X int `json:"x"`
}

// GameType is the registrable descriptor.
var GameType = engine.Type{
	Namespace:  Namespace,
	MinPlayers: 2,
	MaxPlayers: 2,
	Action:     func() any { return Action{} },
	New:        func() engine.Rules { return &rules{} },
}

type rules struct {
	board [][]*bool
}

func (r *rules) OnInit(g *engine.Game) {
	r.board = newBoard()
	g.SetShuffle(false)
	g.SetInitialGameData(map[string]any{"board": r.board})
}

func (r *rules) OnPlayerAction(g *engine.Game, p *engine.Player, action engine.Action) (bool, error) {
	move, err := engine.DecodeAction[Action](action)
	if err != nil {
		return false, apperrors.ErrInvalidAction
	}
	if move.X < 0 || move.X >= columns {
		return false, apperrors.ErrInvalidAction
	}
	y := r.freeRowIndex(move.X)
	if y == -1 {
		return false, apperrors.ErrInvalidAction
	}

	mark := p.ID() == g.Players()[0].ID()
	r.board[move.X][y] = &mark
	return true, nil
}

func (r *rules) CheckWinCondition(g *engine.Game) *engine.Player {
	b := r.board

	for x := 0; x < columns; x++ {
		for y := 0; y < rows; y++ {
			cell := b[x][y]
			if cell == nil {
				continue
			}

			// vertical
			if y < rows-3 && eq(cell, b[x][y+1]) && eq(cell, b[x][y+2]) && eq(cell, b[x][y+3]) {
				return owner(g, *cell)
			}
			// horizontal
			if x < columns-3 && eq(cell, b[x+1][y]) && eq(cell, b[x+2][y]) && eq(cell, b[x+3][y]) {
				return owner(g, *cell)
			}
			// diagonal upwards
			if x < columns-3 && y < rows-3 && eq(cell, b[x+1][y+1]) && eq(cell, b[x+2][y+2]) && eq(cell, b[x+3][y+3]) {
				return owner(g, *cell)
			}
			// diagonal downwards
			if x < columns-3 && y > 2 && eq(cell, b[x+1][y-1]) && eq(cell, b[x+2][y-2]) && eq(cell, b[x+3][y-3]) {
				return owner(g, *cell)
			}
		}
	}

	return nil
}

// freeRowIndex returns the lowest empty row of a column, or -1 when full.
func (r *rules) freeRowIndex(x int) int {
	for y := 0; y < rows; y++ {
		if r.board[x][y] == nil {
			return y
		}
	}
	return -1
}

func owner(g *engine.Game, first bool) *engine.Player {
	players := g.Players()
	if len(players) < 2 {
		return nil
	}
	if first {
		return players[0]
	}
	return players[1]
}

func eq(a, b *bool) bool {
	return a != nil && b != nil && *a == *b
}

func newBoard() [][]*bool {
	board := make([][]*bool, columns)
	for i := range board {
		board[i] = make([]*bool, rows)
	}
	return board
}
