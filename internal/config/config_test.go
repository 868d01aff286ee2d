package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpaceArmada/internal/game"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`), false))

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, ":8080", GetString("server.addr"))
	assert.Equal(t, game.SimHz, SimHz())

	s, err := GameSettings()
	require.NoError(t, err)
	assert.Equal(t, game.DefaultSettings(), s)
}

func TestLoadFromFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := writeConfig(t, `{
		"logLevel": "debug",
		"sim": {"hz": 30},
		"scoring": {
			"teamSurvivalBonus": 300,
			"performanceLevels": [
				{"name": "pass"},
				{"name": "ace", "referenceBaseScoreFactor": 2, "referenceHitRatio": 0.8}
			]
		},
		"battle": {"hideHitboxes": true, "deathGracePeriod": 0.5}
	}`)
	require.NoError(t, Load(dir, false))

	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, 30.0, SimHz())

	s, err := GameSettings()
	require.NoError(t, err)
	assert.Equal(t, 300.0, s.TeamSurvivalBonus)
	assert.Equal(t, float64(game.DefaultHullIntegrityBonus), s.HullIntegrityBonus)
	assert.True(t, s.HideHitboxes)
	assert.Equal(t, 0.5, s.DeathGracePeriod)
	require.Len(t, s.PerformanceLevels, 2)
	assert.Equal(t, game.PerformanceLevel{Name: "ace", ReferenceBaseScoreFactor: 2, ReferenceHitRatio: 0.8}, s.PerformanceLevels[1])
}

func TestLoadMissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	assert.Error(t, Load(t.TempDir(), false))

	viper.Reset()
	require.NoError(t, Load(t.TempDir(), true))
	assert.Equal(t, ":8080", GetString("server.addr"))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("ARMADA_SERVER_ADDR", "127.0.0.1:9999")
	require.NoError(t, Load(writeConfig(t, `{"server": {"addr": ":1"}}`), false))
	assert.Equal(t, "127.0.0.1:9999", GetString("server.addr"))
}

func TestSetOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(t.TempDir(), true))
	Set("storage.path", "/tmp/x.db")
	assert.Equal(t, "/tmp/x.db", GetString("storage.path"))
}

func TestEmptyPerformanceLevels(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{"scoring": {"performanceLevels": []}}`), false))
	_, err := GameSettings()
	assert.Error(t, err)
}
