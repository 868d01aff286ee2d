package server

import (
	"net/url"
	"strconv"

	"SpaceArmada/internal/game"
)

// SettingsOverrides are per-battle tweaks of the hub settings, taken from the
// query string of the create request.
type SettingsOverrides struct {
	HullIntegrityBonus     *float64
	HullIntegrityBonusTeam *float64
	TeamSurvivalBonus      *float64
	SceneRecenterDistance  *float64
	DeathGracePeriod       *float64
	HideHitboxes           *bool
	Seed                   *int64
}

func (o SettingsOverrides) apply(base game.Settings) game.Settings {
	if o.HullIntegrityBonus != nil {
		base.HullIntegrityBonus = *o.HullIntegrityBonus
	}
	if o.HullIntegrityBonusTeam != nil {
		base.HullIntegrityBonusTeam = *o.HullIntegrityBonusTeam
	}
	if o.TeamSurvivalBonus != nil {
		base.TeamSurvivalBonus = *o.TeamSurvivalBonus
	}
	if o.SceneRecenterDistance != nil {
		base.SceneRecenterDistance = *o.SceneRecenterDistance
	}
	if o.DeathGracePeriod != nil {
		base.DeathGracePeriod = *o.DeathGracePeriod
	}
	if o.HideHitboxes != nil {
		base.HideHitboxes = *o.HideHitboxes
	}
	return base
}

func parseFloatOverride(values url.Values, key string) *float64 {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		return nil
	}
	return &val
}

// parseSettingsOverrides reads the recognized keys; malformed values are
// ignored.
func parseSettingsOverrides(values url.Values) SettingsOverrides {
	o := SettingsOverrides{
		HullIntegrityBonus:     parseFloatOverride(values, "hullIntegrityBonus"),
		HullIntegrityBonusTeam: parseFloatOverride(values, "hullIntegrityBonusTeam"),
		TeamSurvivalBonus:      parseFloatOverride(values, "teamSurvivalBonus"),
		SceneRecenterDistance:  parseFloatOverride(values, "sceneRecenterDistance"),
		DeathGracePeriod:       parseFloatOverride(values, "deathGracePeriod"),
	}
	if raw := values.Get("hideHitboxes"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			o.HideHitboxes = &v
		}
	}
	if raw := values.Get("seed"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			o.Seed = &v
		}
	}
	return o
}
