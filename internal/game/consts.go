package game

const (
	SimHz = 60.0 // default simulation tick rate
	Dt    = 1.0 / SimHz

	// hit-testing octree rebuilt every tick
	OctreeMaxDepth       = 2
	OctreeMaxLeafObjects = 1

	DefaultDeathGracePeriod      = 1.5    // seconds a wreck stays in the roster
	DefaultSceneRecenterDistance = 5000.0 // world units
	DefaultRandomShipsMapSize    = 3000.0

	DefaultHullIntegrityBonus     = 200
	DefaultHullIntegrityBonusTeam = 100
	DefaultTeamSurvivalBonus      = 150

	ProjectilePoolSize = 256
	ParticlePoolSize   = 512

	HitParticleLifetime       = 0.4
	ExplosionParticleLifetime = 1.2
	ExplosionParticleCount    = 6
	JumpParticleLifetime      = 0.8

	MessageQueueLimit      = 32
	MessageDefaultDuration = 4.0 // seconds
)
