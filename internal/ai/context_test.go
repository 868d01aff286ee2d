package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpaceArmada/internal/game"
)

func TestAddAIUnknownType(t *testing.T) {
	m := loadMission(t, skirmishMission)
	ctx := NewContext(m, nil)
	_, err := ctx.AddAI("kamikaze", craft(t, m, "hunter"))
	assert.ErrorIs(t, err, ErrUnknownAIType)
	assert.Empty(t, ctx.Controllers())
}

func TestAddAllFromMission(t *testing.T) {
	m := loadMission(t, skirmishMission)
	ctx := NewContext(m, nil)
	ctx.AddAllFromMission()

	// hunter and wingman; the rest have their AI disabled
	require.Len(t, ctx.Controllers(), 2)
	assert.Same(t, craft(t, m, "hunter"), ctx.Controllers()[0].Spacecraft())
	assert.IsType(t, &FighterAI{}, ctx.Controllers()[1])

	ctx.ClearAIs()
	assert.Empty(t, ctx.Controllers())
}

type recordingController struct {
	craft *game.Spacecraft
	calls *[]string
	moved game.Vec3
}

func (r *recordingController) Spacecraft() *game.Spacecraft { return r.craft }
func (r *recordingController) Control(float64)              { *r.calls = append(*r.calls, r.craft.ID()) }
func (r *recordingController) HandleSceneMoved(o game.Vec3)  { r.moved = r.moved.Add(o) }

func TestControlOrderAndCompaction(t *testing.T) {
	var calls []string
	m := loadMission(t, skirmishMission)
	ctx := NewContext(m, nil)
	for _, id := range []string{"far", "hunter", "near"} {
		ctx.controllers = append(ctx.controllers, &recordingController{craft: craft(t, m, id), calls: &calls})
	}

	ctx.Control(0.1)
	assert.Equal(t, []string{"far", "hunter", "near"}, calls)

	craft(t, m, "hunter").Destroy()
	calls = nil
	ctx.Control(0.1)
	assert.Equal(t, []string{"far", "hunter", "near"}, calls)
	require.Len(t, ctx.Controllers(), 2)

	calls = nil
	ctx.Control(0.1)
	assert.Equal(t, []string{"far", "near"}, calls)

	ctx.HandleSceneMoved(game.Vec3{X: 5})
	for _, c := range ctx.Controllers() {
		assert.Equal(t, game.Vec3{X: 5}, c.(*recordingController).moved)
	}
}

func TestShipAIFromClass(t *testing.T) {
	const doc = `{
		"teams": [{"id": "a"}, {"id": "b"}],
		"spacecrafts": [
			{"id": "frigate", "class": "taurus", "team": "a", "position": [0, 0, 0]},
			{"id": "pilot", "class": "falcon", "team": "b", "piloted": true, "position": [0, 5000, 0]}
		]
	}`
	m := loadMission(t, doc)
	ctx := NewContext(m, nil)
	ctx.AddAllFromMission()
	require.Len(t, ctx.Controllers(), 1)
	assert.IsType(t, &ShipAI{}, ctx.Controllers()[0])

	ctx.Control(0.1)
	frigate := craft(t, m, "frigate")
	assert.Same(t, m.Pilot(), frigate.Target())
}
