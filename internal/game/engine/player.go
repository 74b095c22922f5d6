package engine

import (
	"github.com/socket-games/server/internal/apperrors"
	"github.com/socket-games/server/internal/game/ids"
)

// Player is one roster entry of a session. The id is immutable for the
// lifetime of the session; everything else lives in the custom data map.
type Player struct {
	id     ids.PlayerID
	name   string
	game   *Game
	custom map[string]any
}

// ID returns the player's immutable id.
func (p *Player) ID() ids.PlayerID {
	return p.id
}

// Name returns the player's display name.
func (p *Player) Name() string {
	return p.name
}

// Data returns a snapshot of the player.
func (p *Player) Data() PlayerData {
	custom := make(map[string]any, len(p.custom))
	for k, v := range p.custom {
		custom[k] = v
	}
	return PlayerData{Name: p.name, PlayerID: p.id, Custom: custom}
}

// Get reads one custom data field.
func (p *Player) Get(key string) (any, bool) {
	v, ok := p.custom[key]
	return v, ok
}

// UpdateData merge-patches the player's data and emits PLAYER_DATA_CHANGED
// addressed to this player. The playerId can not be patched; a name entry
// updates the display name.
func (p *Player) UpdateData(patch map[string]any) error {
	if p.game == nil || p.game.registry == nil {
		return apperrors.ErrNotInitialized
	}
	return p.game.registry.do(func() error {
		if _, ok := patch["playerId"]; ok {
			return apperrors.ErrForbiddenFieldUpdate
		}
		for k, v := range patch {
			if k == "name" {
				if name, ok := v.(string); ok {
					p.name = name
				}
				continue
			}
			p.custom[k] = v
		}

		id := p.id
		p.game.publish(Event{
			Type:     EventPlayerDataChanged,
			GameID:   p.game.id,
			PlayerID: &id,
			Data:     p.Data(),
		})
		return nil
	})
}
