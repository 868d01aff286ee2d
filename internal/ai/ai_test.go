package ai

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpaceArmada/internal/game"
)

const skirmishMission = `{
	"title": "Skirmish",
	"teams": [
		{"id": "empire", "name": "Empire"},
		{"id": "rebels", "name": "Rebels"}
	],
	"spacecrafts": [
		{"id": "hunter", "class": "falcon", "team": "empire", "position": [0, 0, 0]},
		{"id": "wingman", "class": "falcon", "team": "empire", "squad": "alpha 1", "away": true, "position": [0, 0, 0]},
		{"id": "flagship", "class": "aries", "team": "empire", "ai": "none", "position": [0, -800, 0]},
		{"id": "near", "class": "viper", "team": "rebels", "squad": "red 1", "ai": "none", "position": [0, 500, 0]},
		{"id": "far", "class": "viper", "team": "rebels", "squad": "red 2", "ai": "none", "position": [0, 1500, 0]}
	]
}`

func loadMission(t *testing.T, doc string) *game.Mission {
	t.Helper()
	ctx := game.NewContext(game.DefaultSettings(), nil)
	ctx.Rand = rand.New(rand.NewSource(7))
	m, err := game.LoadMission("test", []byte(doc), ctx, game.NewMemoryRecordStore())
	require.NoError(t, err)
	return m
}

func craft(t *testing.T, m *game.Mission, id string) *game.Spacecraft {
	t.Helper()
	c := m.GetSpacecraftByID(id)
	require.NotNil(t, c, id)
	return c
}

func kill(c *game.Spacecraft) {
	c.Damage(c.Hitpoints()+1, c.Position(), nil)
}

func TestTurnIntensity(t *testing.T) {
	m := loadMission(t, skirmishMission)
	a := newSpacecraftAI(craft(t, m, "hunter"), m, nil)

	// falcon: 2.4 rad/s, 6 rad/s²
	assert.Zero(t, a.turnIntensity(0.0001, 0, 0.1))
	assert.Equal(t, 1.0, a.turnIntensity(1, 0, 0.1))
	assert.Equal(t, -1.0, a.turnIntensity(-1, 0, 0.1))
	assert.InDelta(t, 0.5, a.turnIntensity(0.12, 0, 0.1), 1e-9)

	// already turning fast enough to need 0.48 rad to stop
	assert.Zero(t, a.turnIntensity(0.4, 2.4, 0.1))
	// turning away: full command back
	assert.Equal(t, 1.0, a.turnIntensity(0.4, -2.4, 0.1))
}

func TestApproachFromRest(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	a := newSpacecraftAI(hunter, m, nil)

	a.approach(1000, 500, 100, 200)
	assert.Equal(t, 200.0, hunter.SpeedTarget())
	a.approach(50, 500, 100, 200)
	assert.Equal(t, -200.0, hunter.SpeedTarget())
	a.approach(300, 500, 100, 200)
	assert.Zero(t, hunter.SpeedTarget())
}

func TestUpdateTargetPicksNearestHostile(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	a := newSpacecraftAI(hunter, m, nil)

	a.updateTarget()
	assert.Same(t, craft(t, m, "near"), hunter.Target())

	kill(craft(t, m, "near"))
	a.updateTarget()
	assert.Same(t, craft(t, m, "far"), hunter.Target())
}

func TestUpdateTargetAcceptsForcedTarget(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	a := newSpacecraftAI(hunter, m, nil)
	a.updateTarget()

	far := craft(t, m, "far")
	hunter.SetTarget(far)
	a.updateTarget()
	assert.Same(t, far, hunter.Target())
}

func TestStandDown(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	a := newSpacecraftAI(hunter, m, nil)
	a.updateTarget()
	hunter.SetSpeedTarget(100)

	require.True(t, hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandStandDown}))
	assert.True(t, a.IsStandingDown())
	assert.Nil(t, hunter.Target())
	assert.Zero(t, hunter.SpeedTarget())

	a.updateTarget()
	assert.Nil(t, hunter.Target())

	// a target order ends the stand-down
	hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandTarget, Target: &game.TargetCommand{Single: "far"}})
	assert.False(t, a.IsStandingDown())
	a.updateTarget()
	assert.Same(t, craft(t, m, "far"), hunter.Target())
}

func TestPriorityTargets(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	a := newSpacecraftAI(hunter, m, nil)
	a.updateTarget()

	hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandTarget, Target: &game.TargetCommand{List: []string{"far", "ghost"}, Priority: true}})
	require.True(t, a.HasPriorityTargets())
	a.updateTarget()
	far := craft(t, m, "far")
	assert.Same(t, far, hunter.Target())

	kill(far)
	a.updateTarget()
	assert.False(t, a.HasPriorityTargets())
	assert.Same(t, craft(t, m, "near"), hunter.Target())
}

func TestTargetCommandCache(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	a := newSpacecraftAI(hunter, m, nil)

	cmd := &game.TargetCommand{Squads: []string{"red"}}
	hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandTarget, Target: cmd})
	assert.Len(t, a.Targets(), 2)

	late, err := game.NewSpacecraft(game.SpacecraftOptions{ID: "late", Class: "viper", Squad: "red 3", Position: game.Vec3{Y: 3000}}, m.Context())
	require.NoError(t, err)
	m.AddSpacecraft(late)

	hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandTarget, Target: cmd})
	assert.Len(t, a.Targets(), 2)

	hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandTarget, Target: cmd, ClearCache: true})
	assert.Len(t, a.Targets(), 3)
	assert.Contains(t, a.Targets(), late)
}

func TestJumpInFormation(t *testing.T) {
	m := loadMission(t, skirmishMission)
	wingman := craft(t, m, "wingman")
	newSpacecraftAI(wingman, m, nil)
	require.True(t, wingman.IsAway())

	wingman.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandJump, Jump: &game.JumpCommand{
		Way:       game.JumpIn,
		Anchor:    "flagship",
		Formation: &game.Formation{Type: game.FormationWedge, Spacing: game.Vec3{X: 10, Y: -20}},
	}})
	assert.False(t, wingman.IsAway())
	pos := wingman.Position()
	assert.InDelta(t, 10, pos.X, 1e-9)
	assert.InDelta(t, -820, pos.Y, 1e-9)
	assert.InDelta(t, 0, pos.Z, 1e-9)
}

func TestJumpInAtRandomDistanceFacesBack(t *testing.T) {
	m := loadMission(t, skirmishMission)
	wingman := craft(t, m, "wingman")
	newSpacecraftAI(wingman, m, nil)

	wingman.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandJump, Jump: &game.JumpCommand{Way: game.JumpIn, Distance: 1000}})
	require.False(t, wingman.IsAway())
	assert.InDelta(t, 1000, wingman.Position().Len(), 1e-6)
	// nose points back at where it came from
	assert.True(t, wingman.IsFacing(game.Vec3{}, 1e-6))
}

func TestJumpOut(t *testing.T) {
	m := loadMission(t, skirmishMission)
	hunter := craft(t, m, "hunter")
	newSpacecraftAI(hunter, m, nil)

	hunter.ExecuteCommand(game.SpacecraftCommand{Command: game.CommandJump, Jump: &game.JumpCommand{Way: game.JumpOut}})
	assert.True(t, hunter.IsAway())
}

func TestShipOrientsAttackVector(t *testing.T) {
	const doc = `{
		"teams": [{"id": "a"}, {"id": "b"}],
		"spacecrafts": [
			{"id": "frigate", "class": "taurus", "team": "a", "position": [0, 0, 0]},
			{"id": "gunship", "class": "centaur", "team": "a", "position": [5000, 0, 0]},
			{"id": "mark", "class": "viper", "team": "b", "ai": "none", "position": [0, 1000, 0]},
			{"id": "mark2", "class": "viper", "team": "b", "ai": "none", "position": [5000, 500, 0]}
		]
	}`
	m := loadMission(t, doc)

	frigate := craft(t, m, "frigate")
	ship := NewShipAI(frigate, m, nil)
	frigate.SetTarget(craft(t, m, "mark"))
	ship.Control(0.1)
	yaw, pitch, roll := frigate.TurnIntensities()
	// broadside on X: the nose has to swing left
	assert.Less(t, yaw, 0.0)
	assert.Zero(t, pitch)
	assert.Zero(t, roll)
	assert.Zero(t, frigate.SpeedTarget())

	gunship := craft(t, m, "gunship")
	ship2 := NewShipAI(gunship, m, nil)
	gunship.SetTarget(craft(t, m, "mark2"))
	ship2.Control(0.1)
	yaw, pitch, _ = gunship.TurnIntensities()
	// belly weapons on Z: pitch down until Z points ahead
	assert.Less(t, pitch, 0.0)
	assert.Zero(t, yaw)
}

func TestShipClosesInFromBeyondStandOff(t *testing.T) {
	const doc = `{
		"teams": [{"id": "a"}, {"id": "b"}],
		"spacecrafts": [
			{"id": "frigate", "class": "taurus", "team": "a", "position": [0, 0, 0]},
			{"id": "mark", "class": "viper", "team": "b", "ai": "none", "position": [0, 9000, 0]}
		]
	}`
	m := loadMission(t, doc)
	frigate := craft(t, m, "frigate")
	ship := NewShipAI(frigate, m, nil)
	ship.Control(0.1)
	assert.Same(t, craft(t, m, "mark"), frigate.Target())
	assert.Equal(t, frigate.MaxSpeed(), frigate.SpeedTarget())
	assert.Zero(t, m.Context().Projectiles.LockedCount())
}

func TestYawPitchTurnStyle(t *testing.T) {
	m := loadMission(t, skirmishMission)
	flagship := craft(t, m, "flagship")
	ship := NewShipAI(flagship, m, nil)
	// aries faces along Y; target up and to the right
	ship.orient(flagship.Position().Add(game.Vec3{X: 100, Y: 100, Z: 50}), 0.1)
	yaw, pitch, roll := flagship.TurnIntensities()
	assert.Greater(t, yaw, 0.0)
	assert.Greater(t, pitch, 0.0)
	assert.Zero(t, roll)
}
