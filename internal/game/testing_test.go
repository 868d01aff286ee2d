package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const duelMission = `{
	"title": "Duel",
	"teams": [
		{"id": "empire", "name": "Empire"},
		{"id": "rebels", "name": "Rebels"}
	],
	"spacecrafts": [
		{"id": "player", "class": "falcon", "team": "empire", "piloted": true, "position": [0, 0, 0]},
		{"id": "enemy", "class": "viper", "team": "rebels", "position": [0, 2000, 0]}
	]
}`

func newTestContext() *Context {
	return NewContext(DefaultSettings(), nil)
}

func loadTestMission(t *testing.T, doc string) *Mission {
	t.Helper()
	m, err := LoadMission("test", []byte(doc), newTestContext(), NewMemoryRecordStore())
	require.NoError(t, err)
	return m
}

func newTestCraft(t *testing.T, ctx *Context, id, class string, pos Vec3) *Spacecraft {
	t.Helper()
	c, err := NewSpacecraft(SpacecraftOptions{ID: id, Class: class, Position: pos}, ctx)
	require.NoError(t, err)
	return c
}

func kill(c *Spacecraft) {
	c.Damage(c.Hitpoints()+1, c.Position(), nil)
}

func tickN(m *Mission, n int, dt float64) {
	for i := 0; i < n; i++ {
		m.Tick(dt, nil)
	}
}
