package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpaceArmada/internal/game"
)

const fighterMission = `{
	"teams": [{"id": "blue"}, {"id": "red"}],
	"spacecrafts": [
		{"id": "ace", "class": "falcon", "team": "blue", "position": [0, 0, 0]},
		{"id": "buddy", "class": "falcon", "team": "blue", "ai": "none", "position": [0, 2000, 0], "away": true},
		{"id": "bandit", "class": "viper", "team": "red", "ai": "none", "position": [0, 800, 0]}
	]
}`

func TestFighterStartsWithoutPhase(t *testing.T) {
	m := loadMission(t, fighterMission)
	f := NewFighterAI(craft(t, m, "ace"), m, nil)
	assert.Equal(t, PhaseNone, f.Phase())
	assert.Equal(t, FighterApproachFactorStart, f.ApproachFactor())
	assert.Equal(t, FighterAimErrorMax, f.AimError())
	assert.Equal(t, "none", f.Phase().String())
}

func TestFighterChargesWhenHitByOthers(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)
	require.Same(t, craft(t, m, "bandit"), ace.Target())

	f.hitByNonTarget = FighterHitsBeforeCharge
	f.Control(0.05)
	assert.Equal(t, PhaseApproachAttack, f.Phase())
	assert.Equal(t, ace.MaxSpeed(), ace.SpeedTarget())
}

func TestFighterChargesAfterMissingTooLong(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)

	// 800/1200 + 8*0.25
	f.timeSinceTargetHit = 2.7
	f.Control(0.05)
	assert.Equal(t, PhaseApproachAttack, f.Phase())
}

func TestFighterNonTargetHitCounting(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)

	stranger, err := game.NewSpacecraft(game.SpacecraftOptions{ID: "stranger", Class: "viper", Position: game.Vec3{X: 300}}, m.Context())
	require.NoError(t, err)
	ace.Damage(1, ace.Position().Add(game.Vec3{X: 5}), stranger)
	assert.Equal(t, 1, f.HitByNonTarget())

	// hits by the target itself do not count
	ace.Damage(1, ace.Position(), craft(t, m, "bandit"))
	assert.Equal(t, 1, f.HitByNonTarget())
}

func TestFighterEvadesWhenHit(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)

	// hit from the right: the evasion never points back to the right
	ace.Damage(1, ace.Position().Add(game.Vec3{X: 5}), nil)
	strafe, lift := f.EvasiveStrafe()
	assert.LessOrEqual(t, strafe, 1e-9)
	assert.InDelta(t, ace.MaxStrafeSpeed(), game.Vec3{X: strafe, Y: lift}.Len(), 1e-6)

	f.Control(0.05)
	s, l := ace.StrafeTarget()
	assert.InDelta(t, strafe, s, 1e-9)
	assert.InDelta(t, lift, l, 1e-9)

	for range 20 {
		f.Control(0.05)
	}
	s, l = ace.StrafeTarget()
	assert.Zero(t, s)
	assert.Zero(t, l)
}

func TestFighterBreaksAwayAfterCharge(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)
	bandit := craft(t, m, "bandit")

	f.startChargeEvade(bandit)
	require.Equal(t, PhaseEvade, f.Phase())
	dest := f.EvadeDestination()
	critical := FighterCriticalDistanceFactor * (ace.Size() + bandit.Size())
	// past the target, off to the side
	assert.InDelta(t, bandit.Position().Y+critical, dest.Y, 1e-6)
	assert.InDelta(t, critical, game.Vec3{X: dest.X, Z: dest.Z}.Len(), 1e-6)

	offset := game.Vec3{X: -100, Y: 40}
	f.HandleSceneMoved(offset)
	assert.Equal(t, dest.Add(offset), f.EvadeDestination())

	f.evadeElapsed = FighterChargeEvadeTimeout
	f.Control(0.05)
	assert.Equal(t, PhaseNone, f.Phase())
}

func TestFighterTargetChangeResetsTactics(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)
	f.approachFactor = FighterApproachFactorMin
	f.phase = PhaseApproachAttack

	kill(craft(t, m, "bandit"))
	f.Control(0.05)
	assert.Nil(t, ace.Target())
	assert.Equal(t, PhaseNone, f.Phase())
	assert.Equal(t, FighterApproachFactorStart, f.ApproachFactor())
}

func TestFighterBlockers(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)
	bandit := craft(t, m, "bandit")

	// a hostile craft in the line of fire
	other, err := game.NewSpacecraft(game.SpacecraftOptions{ID: "other", Class: "viper", Position: game.Vec3{Y: 300}}, m.Context())
	require.NoError(t, err)
	m.AddSpacecraft(other)
	f.updateBlocker(bandit, 800)
	require.Same(t, other, f.Blocker())

	// a friendly blocker takes over and holds fire
	buddy := craft(t, m, "buddy")
	buddy.JumpIn(game.Vec3{Y: 400}, game.IdentityBasis())
	f.updateBlocker(bandit, 800)
	require.Same(t, buddy, f.Blocker())
	f.aimLocked, f.lockTime = true, FighterReactionTime
	f.fireIfAimed(bandit, 800, 0, 0, 0.05)
	assert.Zero(t, ace.ShotsFired())

	// and strafes around it
	f.strafe(0.05)
	s, l := ace.StrafeTarget()
	assert.InDelta(t, ace.MaxStrafeSpeed(), game.Vec3{X: s, Y: l}.Len(), 1e-6)

	// once it moves away the line is clear
	buddy.Translate(game.Vec3{X: 500})
	other.Translate(game.Vec3{X: 500})
	f.updateBlocker(bandit, 800)
	assert.Nil(t, f.Blocker())
}

func TestFighterFiresAfterReactionTime(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	f.Control(0.05)
	bandit := craft(t, m, "bandit")

	f.aimLocked, f.lockTime = false, 0
	f.fireIfAimed(bandit, 800, 0, 0, 0.1)
	assert.Zero(t, ace.ShotsFired())
	f.fireIfAimed(bandit, 800, 0, 0, 0.2)
	assert.Zero(t, ace.ShotsFired())
	f.fireIfAimed(bandit, 800, 0, 0, 0.2)
	assert.Equal(t, 2, ace.ShotsFired())

	// off target by more than the target's angular size
	f.fireIfAimed(bandit, 800, 0.1, 0, 0.1)
	assert.False(t, f.aimLocked)
}

func TestFighterDamagesStationaryTarget(t *testing.T) {
	m := loadMission(t, fighterMission)
	ai := NewContext(m, nil)
	ai.AddAllFromMission()
	require.Len(t, ai.Controllers(), 1)

	bandit := craft(t, m, "bandit")
	const dt = 1.0 / 60
	for range 20 * 60 {
		m.Tick(dt, nil)
		ai.Control(dt)
		if !bandit.IsAlive() {
			break
		}
	}
	ace := craft(t, m, "ace")
	assert.Positive(t, ace.ShotsFired())
	assert.Positive(t, ace.Hits())
	assert.Less(t, bandit.Hitpoints(), 220.0)
}

func TestFighterClosesInAfterMisses(t *testing.T) {
	m := loadMission(t, fighterMission)
	f := NewFighterAI(craft(t, m, "ace"), m, nil)
	f.Control(0.05)
	f.handleTargetHit(game.HitInfo{})

	miss := func(n int) {
		for range n {
			f.handleFired(game.HitInfo{})
		}
	}
	miss(FighterMissesBeforeCloseIn - 1)
	f.Control(0.05)
	assert.Equal(t, FighterApproachFactorStart, f.ApproachFactor())

	// a hit clears the count
	f.handleTargetHit(game.HitInfo{})
	miss(FighterMissesBeforeCloseIn - 1)
	f.Control(0.05)
	assert.Equal(t, FighterApproachFactorStart, f.ApproachFactor())

	f.handleTargetHit(game.HitInfo{})
	miss(FighterMissesBeforeCloseIn)
	f.Control(0.05)
	assert.InDelta(t, FighterApproachFactorStart*FighterApproachFactorDecay, f.ApproachFactor(), 1e-9)

	for range 10 {
		f.handleTargetHit(game.HitInfo{})
		miss(FighterMissesBeforeCloseIn)
		f.Control(0.05)
	}
	assert.Equal(t, FighterApproachFactorMin, f.ApproachFactor())
	assert.Equal(t, PhaseNone, f.Phase())
}

func TestFighterAimErrorFollowsLeadStability(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	bandit := craft(t, m, "bandit")

	// a sitting target keeps the lead steady, so the aim keeps tightening
	f.updateAimOffset(bandit, 800)
	assert.InDelta(t, FighterAimErrorMax*FighterAimErrorTighten, f.AimError(), 1e-12)
	f.updateAimOffset(bandit, 800)
	assert.InDelta(t, FighterAimErrorMax*FighterAimErrorTighten*FighterAimErrorTighten, f.AimError(), 1e-12)
	for range 30 {
		f.updateAimOffset(bandit, 800)
	}
	assert.Equal(t, FighterAimErrorMin, f.AimError())

	// once it speeds off the lead jumps and the error starts over
	bandit.SetSpeedTarget(bandit.MaxSpeed())
	bandit.Simulate(1)
	require.Positive(t, bandit.Velocity().Len())
	f.updateAimOffset(bandit, 800)
	assert.Equal(t, FighterAimErrorMax, f.AimError())
}

func TestFighterRollsAfterMissedVolleys(t *testing.T) {
	m := loadMission(t, fighterMission)
	ace := craft(t, m, "ace")
	f := NewFighterAI(ace, m, nil)
	bandit := craft(t, m, "bandit")
	require.True(t, ace.IsFacing(bandit.Position(), 1e-6))

	f.missedVolleys = FighterMissesBeforeRoll - 1
	f.roll(bandit, 0.05)
	assert.LessOrEqual(t, f.rollTimer, 0.0)

	// not while the nose is elsewhere
	behind, err := game.NewSpacecraft(game.SpacecraftOptions{ID: "behind", Class: "viper", Position: game.Vec3{Y: -800}}, m.Context())
	require.NoError(t, err)
	f.missedVolleys = FighterMissesBeforeRoll
	f.roll(behind, 0.05)
	assert.LessOrEqual(t, f.rollTimer, 0.0)

	f.roll(bandit, 0.05)
	duration := 2 * math.Sqrt(FighterRollCorrectionAngle/ace.AngularAcceleration())
	assert.InDelta(t, duration, f.rollTimer, 1e-9)
	assert.Zero(t, f.missedVolleys)

	f.roll(bandit, 0.05)
	_, _, roll := ace.TurnIntensities()
	assert.Equal(t, 1.0, math.Abs(roll))
	assert.Equal(t, f.rollDir, roll)

	// the correction runs out and does not restart without new misses
	f.roll(bandit, duration)
	f.roll(bandit, 0.05)
	assert.LessOrEqual(t, f.rollTimer, 0.0)
}
