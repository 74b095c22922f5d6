// Package tiktaktoe implements the classic 3x3 board game for exactly two
// players. Cells hold true for the first player in turn order and false
// for the second.
package tiktaktoe

import (
	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/engine"
)

const (
	Namespace = "tiktaktoe"

	boardSize = 3
)

// Action is one move: the cell to mark.
type Action struct {
	X int `json:"x"`
	Y int `json:"y"`
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
	g.SetInitialGameData(map[string]any{"board": r.board})
	g.SetShuffle(true)
}

func (r *rules) OnPlayerAction(g *engine.Game, p *engine.Player, action engine.Action) (bool, error) {
	move, err := engine.DecodeAction[Action](action)
	if err != nil {
		return false, apperrors.ErrInvalidAction
	}
	if move.X < 0 || move.X >= boardSize || move.Y < 0 || move.Y >= boardSize {
		return false, apperrors.ErrInvalidAction
	}
	if r.board[move.X][move.Y] != nil {
		return false, apperrors.ErrInvalidAction
	}

	mark := p.ID() == g.Players()[0].ID()
	r.board[move.X][move.Y] = &mark
	return true, nil
}

func (r *rules) CheckWinCondition(g *engine.Game) *engine.Player {
	b := r.board

	for i := 0; i < boardSize; i++ {
		if b[i][0] != nil && eq(b[i][0], b[i][1]) && eq(b[i][1], b[i][2]) {
			return owner(g, *b[i][0])
		}
		if b[0][i] != nil && eq(b[0][i], b[1][i]) && eq(b[1][i], b[2][i]) {
			return owner(g, *b[0][i])
		}
	}

	if b[0][0] != nil && eq(b[0][0], b[1][1]) && eq(b[1][1], b[2][2]) ||
		b[0][2] != nil && eq(b[0][2], b[1][1]) && eq(b[1][1], b[2][0]) {
		return owner(g, *b[1][1])
	}

	return nil
}

// owner maps a cell value back to the player in turn order.
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
	board := make([][]*bool, boardSize)
	for i := range board {
		board[i] = make([]*bool, boardSize)
	}
	return board
}
