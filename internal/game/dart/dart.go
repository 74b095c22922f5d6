// Package dart implements a 301 countdown dart game for one to four
// players. Every player starts at 301 points and throws three darts per
// turn; a throw that would take the score below zero is a bust and
// restores the score the player had at the start of the turn. The first
// player to reach exactly zero wins.
package dart

import (
	"encoding/json"

	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/engine"
	"github.com/socket-games/server/internal/game/ids"
)

const (
	Namespace = "dart"

	initialPoints = 301
	maxThrows     = 3
)

// Field is one segment of the dart board. Fields 1 to 20 take multipliers
// 1 to 3; 25 is the bull (single or double only).
type Field struct {
	Field      int `json:"field"`
	Multiplier int `json:"multiplier"`
}

// Action is one throw.
type Action struct {
	Field Field `json:"field"`
}

// Score is one player's remaining points, serialized as a [playerId,
// points] tuple.
type Score struct {
	Player ids.PlayerID
	Points int
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Player, s.Points})
}

func (s *Score) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &s.Player); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &s.Points)
}

// GameType is the registrable descriptor.
var GameType = engine.Type{
	Namespace:  Namespace,
	MinPlayers: 1,
	MaxPlayers: 4,
	Action:     func() any { return Action{} },
	New:        func() engine.Rules { return &rules{throw: -1, backup: -1} },
}

type rules struct {
	scores []Score

	// throw counts the current throw of the turn, 1 to maxThrows. It stays
	// -1 until the game starts.
	throw int

	// backup is the acting player's score at the start of the turn,
	// restored on a bust. -1 outside a turn.
	backup int
}

// OnInit seeds the scoreboard once the roster is final: the turn order is
// only known after the start shuffle, so the points are filled in by a
// GAME_STARTED subscription that disposes itself when the game ends.
func (r *rules) OnInit(g *engine.Game) {
	g.SetInitialGameData(map[string]any{"points": []Score{}, "throw": -1})

	var startSub, endSub *engine.Subscription
	startSub, _ = g.Subscribe(func(ev engine.Event) {
		data, ok := ev.Data.(engine.GameData)
		if !ok {
			return
		}
		scores := make([]Score, len(data.PlayerIDs))
		for i, id := range data.PlayerIDs {
			scores[i] = Score{Player: id, Points: initialPoints}
		}
		r.scores = scores
		r.throw = 1
		g.UpdateGameData(map[string]any{"points": r.scores, "throw": r.throw}, true)
	}, engine.EventGameStarted)

	endSub, _ = g.Subscribe(func(engine.Event) {
		startSub.Unsubscribe()
		endSub.Unsubscribe()
	}, engine.EventGameEnded)
}

func (r *rules) CheckWinCondition(g *engine.Game) *engine.Player {
	for _, s := range r.scores {
		if s.Points == 0 {
			winner, err := g.Player(s.Player)
			if err != nil {
				return nil
			}
			return winner
		}
	}
	return nil
}

func (r *rules) OnPlayerAction(g *engine.Game, p *engine.Player, action engine.Action) (bool, error) {
	if r.throw == -1 {
		return false, apperrors.ErrNotStarted
	}

	move, err := engine.DecodeAction[Action](action)
	if err != nil {
		return false, apperrors.ErrInvalidAction
	}
	if !validField(move.Field) {
		return false, apperrors.ErrInvalidAction
	}

	idx := r.scoreIndex(p.ID())
	if idx == -1 {
		return false, apperrors.ErrPlayerNotFound
	}

	points := r.scores[idx].Points
	if r.throw == 1 {
		r.backup = points
	}

	thrown := move.Field.Field * move.Field.Multiplier
	turnOver := r.throw == maxThrows

	if points-thrown < 0 {
		// bust: the whole turn is void
		r.scores[idx].Points = r.backup
		turnOver = true
	} else {
		r.scores[idx].Points = points - thrown
	}

	for _, s := range r.scores {
		if s.Points == 0 {
			turnOver = true
		}
	}

	if turnOver {
		r.throw = 1
		r.backup = -1
		return true, g.UpdateGameData(map[string]any{"points": r.scores, "throw": r.throw}, false)
	}

	r.throw++
	return false, g.UpdateGameData(map[string]any{"points": r.scores, "throw": r.throw}, true)
}

func (r *rules) scoreIndex(id ids.PlayerID) int {
	for i, s := range r.scores {
		if s.Player == id {
			return i
		}
	}
	return -1
}

func validField(f Field) bool {
	if f.Field == 25 {
		return f.Multiplier == 1 || f.Multiplier == 2
	}
	return f.Field >= 1 && f.Field <= 20 && f.Multiplier >= 1 && f.Multiplier <= 3
}
