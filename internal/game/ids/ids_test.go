package ids

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOrdinal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"empty", nil, 0},
		{"contiguous", []int{0, 1, 2}, 3},
		{"gap is reused", []int{0, 1, 3, 4}, 2},
		{"zero free", []int{1, 2, 3}, 0},
		{"unordered", []int{3, 0, 1}, 2},
		{"duplicates", []int{0, 0, 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOrdinal(tt.existing))
		})
	}
}

func TestGameID_JSON(t *testing.T) {
	t.Parallel()

	id := GameID{Namespace: "tiktaktoe", Ordinal: 3}

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `["tiktaktoe", 3]`, string(data))

	var decoded GameID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestPlayerID_JSON(t *testing.T) {
	t.Parallel()

	id := PlayerID{Game: GameID{Namespace: "dart", Ordinal: 0}, Ordinal: 2}

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `[["dart", 0], 2]`, string(data))

	var decoded PlayerID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestNewRoomCode(t *testing.T) {
	t.Parallel()

	code := NewRoomCode(5, nil)
	assert.Len(t, code, 5)
	for _, r := range code {
		assert.True(t, (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'), "unexpected rune %q", r)
	}
}

func TestNewRoomCode_SkipsTaken(t *testing.T) {
	t.Parallel()

	var rejected []string
	code := NewRoomCode(5, func(c string) bool {
		if len(rejected) < 3 {
			rejected = append(rejected, c)
			return true
		}
		return false
	})

	assert.Len(t, code, 5)
	assert.NotContains(t, rejected, code)
}
