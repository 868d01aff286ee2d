package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"SpaceArmada/internal/game"
)

const (
	FileName  = "armada.cfg.json"
	EnvPrefix = "ARMADA"
)

// Load sets the defaults and reads armada.cfg.json from configDir. A missing
// file is an error unless allowMissing is set; environment variables
// (ARMADA_SERVER_ADDR, ...) override both.
func Load(configDir string, allowMissing bool) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if allowMissing && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("sim.hz", game.SimHz)
	viper.SetDefault("storage.path", "./armada.db")

	viper.SetDefault("scoring.hullIntegrityBonus", game.DefaultHullIntegrityBonus)
	viper.SetDefault("scoring.hullIntegrityBonusTeam", game.DefaultHullIntegrityBonusTeam)
	viper.SetDefault("scoring.teamSurvivalBonus", game.DefaultTeamSurvivalBonus)
	viper.SetDefault("scoring.performanceLevels", levelMaps(game.DefaultPerformanceLevels()))

	viper.SetDefault("battle.hideHitboxes", false)
	viper.SetDefault("battle.sceneRecenterDistance", game.DefaultSceneRecenterDistance)
	viper.SetDefault("battle.deathGracePeriod", game.DefaultDeathGracePeriod)
}

// levelMaps renders levels the way they look when read from the JSON file.
func levelMaps(levels []game.PerformanceLevel) []map[string]any {
	out := make([]map[string]any, len(levels))
	for i, l := range levels {
		out[i] = map[string]any{
			"name":                     l.Name,
			"referenceBaseScoreFactor": l.ReferenceBaseScoreFactor,
			"referenceHitRatio":        l.ReferenceHitRatio,
			"referenceHullIntegrity":   l.ReferenceHullIntegrity,
			"referenceTeamSurvival":    l.ReferenceTeamSurvival,
		}
	}
	return out
}

// GameSettings converts the loaded configuration into simulation settings.
func GameSettings() (game.Settings, error) {
	s := game.DefaultSettings()
	s.HullIntegrityBonus = viper.GetFloat64("scoring.hullIntegrityBonus")
	s.HullIntegrityBonusTeam = viper.GetFloat64("scoring.hullIntegrityBonusTeam")
	s.TeamSurvivalBonus = viper.GetFloat64("scoring.teamSurvivalBonus")
	s.HideHitboxes = viper.GetBool("battle.hideHitboxes")
	s.SceneRecenterDistance = viper.GetFloat64("battle.sceneRecenterDistance")
	s.DeathGracePeriod = viper.GetFloat64("battle.deathGracePeriod")

	var levels []game.PerformanceLevel
	if err := viper.UnmarshalKey("scoring.performanceLevels", &levels); err != nil {
		return s, fmt.Errorf("scoring.performanceLevels: %w", err)
	}
	if len(levels) == 0 {
		return s, errors.New("scoring.performanceLevels: at least one level is required")
	}
	s.PerformanceLevels = levels
	return s, nil
}

// SimHz is the battle tick rate, falling back to the default when the
// configured value is not positive.
func SimHz() float64 {
	if hz := viper.GetFloat64("sim.hz"); hz > 0 {
		return hz
	}
	return game.SimHz
}

func GetString(key string) string { return viper.GetString(key) }

func GetBool(key string) bool { return viper.GetBool(key) }

// Set overrides a value, used for CLI flags.
func Set(key string, value any) { viper.Set(key, value) }
