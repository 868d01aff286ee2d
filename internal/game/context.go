package game

import (
	"log/slog"
	"math/rand"
	"time"
)

// PerformanceLevel is a named score tier. Required scores are derived from the
// mission's reference score using the reference factors.
type PerformanceLevel struct {
	Name                     string  `mapstructure:"name" json:"name"`
	ReferenceBaseScoreFactor float64 `mapstructure:"referenceBaseScoreFactor" json:"referenceBaseScoreFactor"`
	ReferenceHitRatio        float64 `mapstructure:"referenceHitRatio" json:"referenceHitRatio"`
	ReferenceHullIntegrity   float64 `mapstructure:"referenceHullIntegrity" json:"referenceHullIntegrity"`
	ReferenceTeamSurvival    float64 `mapstructure:"referenceTeamSurvival" json:"referenceTeamSurvival"`
}

// Settings are the battle-wide tunables.
type Settings struct {
	HullIntegrityBonus     float64
	HullIntegrityBonusTeam float64
	TeamSurvivalBonus      float64
	PerformanceLevels      []PerformanceLevel // ascending
	HideHitboxes           bool
	SceneRecenterDistance  float64
	DeathGracePeriod       float64
}

func DefaultPerformanceLevels() []PerformanceLevel {
	return []PerformanceLevel{
		{Name: "f"},
		{Name: "d", ReferenceBaseScoreFactor: 0.5, ReferenceHitRatio: 0.2, ReferenceHullIntegrity: 0.3, ReferenceTeamSurvival: 0.3},
		{Name: "c", ReferenceBaseScoreFactor: 0.8, ReferenceHitRatio: 0.3, ReferenceHullIntegrity: 0.5, ReferenceTeamSurvival: 0.5},
		{Name: "b", ReferenceBaseScoreFactor: 1.0, ReferenceHitRatio: 0.4, ReferenceHullIntegrity: 0.7, ReferenceTeamSurvival: 0.7},
		{Name: "a", ReferenceBaseScoreFactor: 1.2, ReferenceHitRatio: 0.5, ReferenceHullIntegrity: 0.8, ReferenceTeamSurvival: 0.8},
		{Name: "s", ReferenceBaseScoreFactor: 1.5, ReferenceHitRatio: 0.6, ReferenceHullIntegrity: 0.9, ReferenceTeamSurvival: 0.9},
	}
}

func DefaultSettings() Settings {
	return Settings{
		HullIntegrityBonus:     DefaultHullIntegrityBonus,
		HullIntegrityBonusTeam: DefaultHullIntegrityBonusTeam,
		TeamSurvivalBonus:      DefaultTeamSurvivalBonus,
		PerformanceLevels:      DefaultPerformanceLevels(),
		SceneRecenterDistance:  DefaultSceneRecenterDistance,
		DeathGracePeriod:       DefaultDeathGracePeriod,
	}
}

// WithDefaults fills in the performance levels when none are set. A Settings
// that was never filled in at all becomes DefaultSettings.
func (s Settings) WithDefaults() Settings {
	if s.isZero() {
		return DefaultSettings()
	}
	if len(s.PerformanceLevels) == 0 {
		s.PerformanceLevels = DefaultPerformanceLevels()
	}
	return s
}

func (s Settings) isZero() bool {
	return s.HullIntegrityBonus == 0 && s.HullIntegrityBonusTeam == 0 && s.TeamSurvivalBonus == 0 &&
		len(s.PerformanceLevels) == 0 && !s.HideHitboxes &&
		s.SceneRecenterDistance == 0 && s.DeathGracePeriod == 0
}

// Metrics receives simulation counters. See internal/telemetry.
type Metrics interface {
	TickCompleted(d time.Duration)
	TriggerFired(event string)
	SpacecraftDestroyed(class string)
	ProjectileHit()
}

type noopMetrics struct{}

func (noopMetrics) TickCompleted(time.Duration) {}
func (noopMetrics) TriggerFired(string)         {}
func (noopMetrics) SpacecraftDestroyed(string)  {}
func (noopMetrics) ProjectileHit()              {}

// Context is everything a running battle shares: pools, settings, the HUD
// queue and diagnostics. It replaces process-wide singletons; one Context per
// battle, used from a single goroutine.
type Context struct {
	Settings     Settings
	Log          *slog.Logger
	Rand         *rand.Rand
	Projectiles  *Pool[Projectile]
	Particles    *Pool[Particle]
	Messages     MessageQueue
	Metrics      Metrics
	Environments map[string]*Environment

	sceneMoved []func(offset Vec3)
}

func NewContext(settings Settings, log *slog.Logger) *Context {
	if log == nil {
		log = discardLogger()
	}
	return &Context{
		Settings:     settings,
		Log:          log,
		Rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		Projectiles:  NewPool(ProjectilePoolSize, func() *Projectile { return &Projectile{} }),
		Particles:    NewPool(ParticlePoolSize, func() *Particle { return &Particle{} }),
		Messages:     NewMessageLog(MessageQueueLimit),
		Metrics:      noopMetrics{},
		Environments: map[string]*Environment{},
	}
}

// OnSceneMoved registers a listener for scene re-centering.
func (c *Context) OnSceneMoved(fn func(offset Vec3)) {
	c.sceneMoved = append(c.sceneMoved, fn)
}

func (c *Context) notifySceneMoved(offset Vec3) {
	for _, fn := range c.sceneMoved {
		fn(offset)
	}
}

func (c *Context) metrics() Metrics {
	if c.Metrics == nil {
		return noopMetrics{}
	}
	return c.Metrics
}

func (c *Context) randomFloat() float64 {
	if c.Rand == nil {
		return rand.Float64()
	}
	return c.Rand.Float64()
}

// RandomFloat returns a value in [0, 1) from the battle's random source.
func (c *Context) RandomFloat() float64 { return c.randomFloat() }

// RandomDirection returns a uniformly distributed unit vector.
func (c *Context) RandomDirection() Vec3 {
	for {
		v := Vec3{
			X: c.randomFloat()*2 - 1,
			Y: c.randomFloat()*2 - 1,
			Z: c.randomFloat()*2 - 1,
		}
		if l := v.LenSq(); l > 1e-6 && l <= 1 {
			return v.Unit()
		}
	}
}

func discardLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }
