package ai

import (
	"log/slog"
	"math"

	"SpaceArmada/internal/game"
)

// FighterPhase is the stage of a fighter's attack.
type FighterPhase int

const (
	PhaseNone FighterPhase = iota
	// charging the target at full speed
	PhaseApproachAttack
	// breaking away past the target after a charge
	PhaseEvade
)

func (p FighterPhase) String() string {
	switch p {
	case PhaseApproachAttack:
		return "approachAttack"
	case PhaseEvade:
		return "evade"
	}
	return "none"
}

// FighterAI flies small craft with fixed forward guns: it has to point its
// nose at the target, so most of its logic is about aiming and distance.
type FighterAI struct {
	*SpacecraftAI

	phase          FighterPhase
	approachFactor float64

	timeSinceTargetHit float64
	missedVolleys      int // since the last hit on the target
	missesSinceCloseIn int

	aimTimer   float64
	leadOffset game.Vec3
	aimError   float64
	aimOffset  game.Vec3
	aimLocked  bool
	lockTime   float64

	blocker *game.Spacecraft

	evade      game.Vec3 // strafe, lift
	evadeTimer float64

	rollTimer float64
	rollDir   float64

	evadeDestination game.Vec3
	evadeElapsed     float64
}

var _ Controller = (*FighterAI)(nil)

func NewFighterAI(craft *game.Spacecraft, mission *game.Mission, log *slog.Logger) *FighterAI {
	f := &FighterAI{SpacecraftAI: newSpacecraftAI(craft, mission, log)}
	f.resetTactics()
	f.targetChanged = f.resetTactics
	craft.AddEventHandler(game.EventBeingHit, f.handleBeingHit)
	craft.AddEventHandler(game.EventTargetFired, f.handleTargetFired)
	craft.AddEventHandler(game.EventTargetHit, f.handleTargetHit)
	craft.AddEventHandler(game.EventFired, f.handleFired)
	return f
}

func (f *FighterAI) Phase() FighterPhase         { return f.phase }
func (f *FighterAI) ApproachFactor() float64     { return f.approachFactor }
func (f *FighterAI) AimError() float64           { return f.aimError }
func (f *FighterAI) Blocker() *game.Spacecraft   { return f.blocker }
func (f *FighterAI) EvadeDestination() game.Vec3 { return f.evadeDestination }

// EvasiveStrafe is the strafe and lift of the current evasion.
func (f *FighterAI) EvasiveStrafe() (float64, float64) { return f.evade.X, f.evade.Y }

// resetTactics runs whenever the target changes.
func (f *FighterAI) resetTactics() {
	f.phase = PhaseNone
	f.approachFactor = FighterApproachFactorStart
	f.timeSinceTargetHit = 0
	f.missedVolleys = 0
	f.missesSinceCloseIn = 0
	f.aimTimer = 0
	f.leadOffset = game.Vec3{}
	f.aimOffset = game.Vec3{}
	f.aimError = FighterAimErrorMax
	f.aimLocked = false
	f.lockTime = 0
	f.blocker = nil
	f.rollTimer = 0
	f.evadeElapsed = 0
}

func (f *FighterAI) HandleSceneMoved(offset game.Vec3) {
	if f.phase == PhaseEvade {
		f.evadeDestination = f.evadeDestination.Add(offset)
	}
}

func (f *FighterAI) handleBeingHit(info game.HitInfo) {
	if f.blocker != nil || !f.usable() {
		return
	}
	local := f.craft.RelativeVector(info.Position)
	away := game.Vec3{X: -local.X, Y: -local.Z}
	if away.LenSq() < 1e-9 {
		away = game.Vec3{X: 1}
	}
	angle := (f.random() - 0.5) * math.Pi
	f.startEvasion(rotate2D(away.Unit(), angle))
}

func (f *FighterAI) handleTargetFired(info game.HitInfo) {
	if f.blocker != nil || !f.usable() || info.Source == nil || info.Source != f.craft.Target() {
		return
	}
	if !f.craft.IsFacing(info.Source.Position(), math.Pi/4) {
		return
	}
	angle := f.random() * 2 * math.Pi
	f.startEvasion(game.Vec3{X: math.Cos(angle), Y: math.Sin(angle)})
}

func (f *FighterAI) handleTargetHit(game.HitInfo) {
	f.timeSinceTargetHit = 0
	f.missedVolleys = 0
	f.missesSinceCloseIn = 0
}

func (f *FighterAI) handleFired(game.HitInfo) {
	f.missedVolleys++
	f.missesSinceCloseIn++
}

func (f *FighterAI) startEvasion(dir game.Vec3) {
	speed := f.craft.MaxStrafeSpeed()
	f.evade = dir.Scale(speed)
	f.evadeTimer = FighterEvadeDuration
}

func (f *FighterAI) random() float64 {
	if f.mission != nil {
		return f.mission.Context().RandomFloat()
	}
	return 0.5
}

func rotate2D(v game.Vec3, angle float64) game.Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return game.Vec3{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// criticalDistance is how close a charge may get before breaking away.
func (f *FighterAI) criticalDistance(target *game.Spacecraft) float64 {
	return FighterCriticalDistanceFactor * (f.craft.Size() + target.Size())
}

func (f *FighterAI) Control(dt float64) {
	if !f.usable() {
		return
	}
	f.updateTarget()
	target := f.craft.Target()
	if target == nil {
		f.stopAll()
		return
	}
	f.timeSinceTargetHit += dt

	pos := f.craft.Position()
	targetPos := target.Position()
	dist := targetPos.Dist(pos)

	f.aimTimer -= dt
	if f.aimTimer <= 0 {
		f.updateAimOffset(target, dist)
		f.aimTimer = FighterAimOffsetInterval
	}
	aimPoint := targetPos.Add(f.aimOffset)

	if f.phase == PhaseNone && f.shouldCharge(dist) {
		f.phase = PhaseApproachAttack
		f.log.Debug("charging", "target", target.ID())
	}

	f.updateBlocker(target, dist)

	switch f.phase {
	case PhaseApproachAttack:
		yaw, pitch := f.turnTowards(aimPoint, dt)
		f.craft.SetSpeedTarget(f.craft.MaxSpeed())
		f.fireIfAimed(target, dist, yaw, pitch, dt)
		if dist < f.criticalDistance(target) {
			f.startChargeEvade(target)
		}
	case PhaseEvade:
		f.evadeElapsed += dt
		f.turnTowards(f.evadeDestination, dt)
		f.craft.SetSpeedTarget(f.craft.MaxSpeed())
		if f.evadeDestination.Dist(pos) < f.craft.Size()*2 || f.evadeElapsed > FighterChargeEvadeTimeout {
			f.phase = PhaseNone
			f.timeSinceTargetHit = 0
			f.missedVolleys = 0
			f.hitByNonTarget = 0
		}
	default:
		yaw, pitch := f.turnTowards(aimPoint, dt)
		f.approach(dist,
			f.weaponRange*f.approachFactor,
			f.weaponRange*FighterMinDistanceFactor,
			min(f.craft.MaxSpeed(), f.weaponRange*FighterApproachSpeedFactor))
		if f.missesSinceCloseIn >= FighterMissesBeforeCloseIn {
			f.approachFactor = max(FighterApproachFactorMin, f.approachFactor*FighterApproachFactorDecay)
			f.missesSinceCloseIn = 0
		}
		f.fireIfAimed(target, dist, yaw, pitch, dt)
	}

	f.roll(target, dt)
	f.strafe(dt)
}

// shouldCharge reports that the fighter has been shot at by others for too
// long, or has failed to hit for longer than a few volleys should take.
func (f *FighterAI) shouldCharge(dist float64) bool {
	if f.hitByNonTarget >= FighterHitsBeforeCharge {
		return true
	}
	speed := f.craft.ProjectileSpeed()
	if speed <= 0 {
		return false
	}
	patience := dist/speed + FighterMissesBeforeCharge*f.craft.WeaponCooldown()
	return f.timeSinceTargetHit > patience
}

func (f *FighterAI) startChargeEvade(target *game.Spacecraft) {
	pos := f.craft.Position()
	dir := target.Position().Sub(pos).Unit()
	if dir.LenSq() == 0 {
		dir = f.craft.Orientation().Forward
	}
	perp := dir.Perpendicular().RotateAround(dir, f.random()*2*math.Pi)
	critical := f.criticalDistance(target)
	f.evadeDestination = target.Position().Add(dir.Scale(critical)).Add(perp.Scale(critical))
	f.evadeElapsed = 0
	f.phase = PhaseEvade
	f.log.Debug("breaking away", "target", target.ID())
}

// updateAimOffset refreshes the lead on the target and narrows the random
// aim error while the lead stays stable.
func (f *FighterAI) updateAimOffset(target *game.Spacecraft, dist float64) {
	lead := game.Vec3{}
	if speed := f.craft.ProjectileSpeed(); speed > 0 {
		flight := dist / speed
		lead = target.Velocity().Sub(f.craft.Velocity()).Scale(flight)
	}
	tolerance := FighterAimSimilarity * max(f.leadOffset.Len(), lead.Len(), target.Size())
	if lead.Dist(f.leadOffset) <= tolerance {
		f.aimError = max(FighterAimErrorMin, f.aimError*FighterAimErrorTighten)
	} else {
		f.aimError = FighterAimErrorMax
	}
	f.leadOffset = lead
	errorOffset := game.Vec3{}
	if f.mission != nil {
		errorOffset = f.mission.Context().RandomDirection().Scale(f.aimError * dist * f.random())
	}
	f.aimOffset = lead.Add(errorOffset)
}

// fireIfAimed fires once the nose has been on the aim point for the reaction
// time. A friendly craft in the line of fire holds fire; a hostile one does
// not delay it.
func (f *FighterAI) fireIfAimed(target *game.Spacecraft, dist, yaw, pitch, dt float64) {
	threshold := max(FighterMinFireAngle, math.Atan2(target.Size()*FighterFireAngleSizeFactor, dist))
	if math.Abs(yaw) > threshold || math.Abs(pitch) > threshold || dist > f.weaponRange {
		f.aimLocked = false
		f.lockTime = 0
		return
	}
	if !f.aimLocked {
		f.aimLocked = true
		f.lockTime = 0
	} else {
		f.lockTime += dt
	}
	if f.blocker != nil && !f.craft.IsHostile(f.blocker) {
		return
	}
	hostileBlocker := f.blocker != nil
	if f.lockTime < FighterReactionTime && !hostileBlocker {
		return
	}
	f.craft.Fire()
}

// updateBlocker tracks a craft sitting between the fighter and its target. A
// friendly blocker is kept until it clears, a hostile one gives way to a
// friendly one.
func (f *FighterAI) updateBlocker(target *game.Spacecraft, dist float64) {
	if f.blocker != nil && !f.blocks(f.blocker, target, dist) {
		f.blocker = nil
	}
	if f.mission == nil {
		return
	}
	if f.blocker != nil && !f.craft.IsHostile(f.blocker) {
		return
	}
	for _, c := range f.mission.Spacecrafts() {
		if c == f.craft || c == target || c == f.blocker || !f.blocks(c, target, dist) {
			continue
		}
		if f.blocker == nil || !f.craft.IsHostile(c) {
			f.blocker = c
			if !f.craft.IsHostile(c) {
				return
			}
		}
	}
}

func (f *FighterAI) blocks(c, target *game.Spacecraft, dist float64) bool {
	if !c.IsAlive() || c.IsAway() || dist <= 0 {
		return false
	}
	pos := f.craft.Position()
	dir := target.Position().Sub(pos).Scale(1 / dist)
	rel := c.Position().Sub(pos)
	along := rel.Dot(dir)
	if along <= 0 || along >= dist {
		return false
	}
	side := rel.Sub(dir.Scale(along)).Len()
	return side < c.Size()+f.craft.Size()
}

// strafe routes around a blocker, otherwise runs the current evasion.
func (f *FighterAI) strafe(dt float64) {
	if f.blocker != nil {
		local := f.craft.RelativeVector(f.blocker.Position())
		away := game.Vec3{X: -local.X, Y: -local.Z}
		if away.LenSq() < 1e-9 {
			away = game.Vec3{X: 1}
		}
		away = away.Unit().Scale(f.craft.MaxStrafeSpeed())
		f.craft.SetStrafeTarget(away.X, away.Y)
		f.evadeTimer = 0
		return
	}
	if f.evadeTimer > 0 {
		f.evadeTimer -= dt
		f.craft.SetStrafeTarget(f.evade.X, f.evade.Y)
		return
	}
	f.evade = game.Vec3{}
	f.craft.ResetStrafe()
}

// roll perturbs the aim geometry when volleys keep missing while the nose is
// on the target.
func (f *FighterAI) roll(target *game.Spacecraft, dt float64) {
	if f.rollTimer > 0 {
		f.rollTimer -= dt
		f.craft.SetRoll(f.rollDir)
		return
	}
	if f.missedVolleys < FighterMissesBeforeRoll || !f.craft.IsFacing(target.Position(), math.Pi/8) {
		return
	}
	// accelerate half way, decelerate the other half
	f.rollTimer = 2 * math.Sqrt(FighterRollCorrectionAngle/f.craft.AngularAcceleration())
	f.rollDir = 1
	if f.random() < 0.5 {
		f.rollDir = -1
	}
	f.missedVolleys = 0
	f.log.Debug("roll correction", "duration", f.rollTimer)
}
