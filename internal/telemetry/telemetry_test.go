package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"SpaceArmada/internal/game"
)

func TestRecorderWithGlobalProvider(t *testing.T) {
	r, err := NewRecorder("b-1")
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		r.TickCompleted(3 * time.Millisecond)
		r.TriggerFired("raidersGone")
		r.SpacecraftDestroyed("viper")
		r.ProjectileHit()
	})
}

func TestRecorderDrivesMission(t *testing.T) {
	r, err := newRecorder(noop.NewMeterProvider().Meter("test"), "b-2")
	require.NoError(t, err)

	ctx := game.NewContext(game.DefaultSettings(), nil)
	ctx.Metrics = r
	m, err := game.LoadMission("duel", []byte(`{
		"spacecrafts": [{"id": "solo", "class": "falcon", "position": [0, 0, 0]}]
	}`), ctx, nil)
	require.NoError(t, err)
	assert.NotPanics(t, func() { m.Tick(game.Dt, nil) })
}
