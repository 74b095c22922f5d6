package engine

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Rules is the capability interface a concrete game implements. The engine
// owns the session lifecycle, roster and turn order; the rules supply the
// game-specific behavior through these three hooks.
type Rules interface {
	// OnInit is called once during session initialization. Use it to set
	// the initial game data, initial player data and the shuffle flag, and
	// to attach event subscriptions.
	OnInit(g *Game)

	// CheckWinCondition returns the winning player, or nil if the game is
	// not decided yet. It is consulted on every turn advance.
	CheckWinCondition(g *Game) *Player

	// OnPlayerAction applies one action of the given player and reports
	// whether the player's turn is over.
	OnPlayerAction(g *Game, p *Player, action Action) (turnOver bool, err error)
}

// Type describes a registrable game: its namespace, roster bounds, the
// action payload shape and the rules factory.
type Type struct {
	Namespace  string
	MinPlayers int
	MaxPlayers int

	// Action returns an empty instance of the action payload shape. Its
	// json-tagged fields are the required fields of every incoming action.
	Action func() any

	// New creates a fresh rules instance for one session.
	New func() Rules
}

// Action is a raw, game-specific action payload.
type Action map[string]any

// DecodeAction converts a raw action into the concrete action type of a
// game, via a JSON round trip.
func DecodeAction[T any](a Action) (T, error) {
	var out T
	data, err := json.Marshal(a)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}

// requiredFields extracts the json field names of the action prototype.
// Fields tagged "-" are skipped.
func requiredFields(prototype any) []string {
	if prototype == nil {
		return nil
	}
	t := reflect.TypeOf(prototype)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, name)
	}
	return fields
}
