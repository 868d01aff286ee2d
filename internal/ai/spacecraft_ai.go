package ai

import (
	"log/slog"
	"math"
	"slices"

	"SpaceArmada/internal/game"
)

// Controller pilots one spacecraft.
type Controller interface {
	Spacecraft() *game.Spacecraft
	Control(dt float64)
	HandleSceneMoved(offset game.Vec3)
}

// SpacecraftAI holds what every AI pilot shares: target selection, the
// command channel and the closed-form turn and approach helpers.
type SpacecraftAI struct {
	craft   *game.Spacecraft
	mission *game.Mission
	log     *slog.Logger

	standingDown bool
	targets      []*game.Spacecraft
	priority     bool
	// target the AI last acted on, to detect targets set from outside
	lastTarget *game.Spacecraft

	// hits taken from crafts other than the target while facing the target
	hitByNonTarget int
	weaponRange    float64

	anchorCache map[*game.JumpCommand]*game.Spacecraft
	targetCache map[*game.TargetCommand][]*game.Spacecraft

	// called after the target changed
	targetChanged func()
}

func newSpacecraftAI(craft *game.Spacecraft, mission *game.Mission, log *slog.Logger) *SpacecraftAI {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &SpacecraftAI{
		craft:       craft,
		mission:     mission,
		log:         log.With("craft", craft.ID()),
		weaponRange: craft.WeaponRange(),
		lastTarget:  craft.Target(),
		anchorCache: map[*game.JumpCommand]*game.Spacecraft{},
		targetCache: map[*game.TargetCommand][]*game.Spacecraft{},
	}
	craft.SetCommandHandler(a.ExecuteCommand)
	craft.AddEventHandler(game.EventBeingHit, a.handleBeingHit)
	return a
}

func (a *SpacecraftAI) Spacecraft() *game.Spacecraft { return a.craft }
func (a *SpacecraftAI) IsStandingDown() bool         { return a.standingDown }
func (a *SpacecraftAI) Targets() []*game.Spacecraft  { return a.targets }
func (a *SpacecraftAI) HasPriorityTargets() bool     { return a.priority }
func (a *SpacecraftAI) HitByNonTarget() int          { return a.hitByNonTarget }

// HandleSceneMoved is a no-op for controllers without world-space caches.
func (a *SpacecraftAI) HandleSceneMoved(game.Vec3) {}

// usable reports whether the craft can still be flown.
func (a *SpacecraftAI) usable() bool {
	return a.craft != nil && a.craft.IsAlive() && !a.craft.IsAway()
}

func (a *SpacecraftAI) handleBeingHit(info game.HitInfo) {
	target := a.craft.Target()
	if info.Source == nil || target == nil || info.Source == target {
		return
	}
	if a.craft.IsFacing(target.Position(), math.Pi/4) {
		a.hitByNonTarget++
	}
}

// stopAll zeroes every maneuvering command.
func (a *SpacecraftAI) stopAll() {
	a.craft.ResetSpeed()
	a.craft.ResetStrafe()
	a.craft.ResetTurn()
}

// turnIntensity returns the command for one rotation axis so that the craft
// turns by angle without overshooting within the next dt: while the current
// rate still needs stopAngle to brake, the remaining angle beyond it is what
// may be covered in this step.
func (a *SpacecraftAI) turnIntensity(angle, rate, dt float64) float64 {
	if math.Abs(angle) < AlignedAngle || dt <= 0 {
		return 0
	}
	maxRate := a.craft.MaxAngularVelocity()
	stop := 0.0
	if rate*angle > 0 {
		stop = max(MinStopAngle, rate*rate/(2*a.craft.AngularAcceleration()))
	}
	room := math.Abs(angle) - stop
	if room <= 0 {
		return 0
	}
	intensity := game.Clamp(room/(maxRate*dt), 0, 1)
	if angle < 0 {
		return -intensity
	}
	return intensity
}

// turn yaws and pitches by the given offsets, in radians.
func (a *SpacecraftAI) turn(yaw, pitch, dt float64) {
	rates := a.craft.AngularRates()
	a.craft.SetYaw(a.turnIntensity(yaw, rates.Yaw, dt))
	a.craft.SetPitch(a.turnIntensity(pitch, rates.Pitch, dt))
	a.craft.SetRoll(0)
}

func (a *SpacecraftAI) rollAndYaw(roll, yaw, dt float64) {
	rates := a.craft.AngularRates()
	a.craft.SetRoll(a.turnIntensity(roll, rates.Roll, dt))
	a.craft.SetYaw(a.turnIntensity(yaw, rates.Yaw, dt))
	a.craft.SetPitch(0)
}

func (a *SpacecraftAI) rollAndPitch(roll, pitch, dt float64) {
	rates := a.craft.AngularRates()
	a.craft.SetRoll(a.turnIntensity(roll, rates.Roll, dt))
	a.craft.SetPitch(a.turnIntensity(pitch, rates.Pitch, dt))
	a.craft.SetYaw(0)
}

// turnTowards points the nose at a world position.
func (a *SpacecraftAI) turnTowards(p game.Vec3, dt float64) (yaw, pitch float64) {
	yaw, pitch = game.YawPitch(a.craft.RelativeVector(p))
	a.turn(yaw, pitch, dt)
	return yaw, pitch
}

// approach keeps the distance to whatever the nose points at between
// minDistance and maxDistance, accounting for the distance needed to stop.
func (a *SpacecraftAI) approach(currentDistance, maxDistance, minDistance, maxSpeed float64) {
	speed := a.craft.ForwardSpeed()
	stopping := speed * math.Abs(speed) / (2 * a.craft.Acceleration())
	projected := currentDistance - stopping
	switch {
	case projected > maxDistance:
		a.craft.SetSpeedTarget(maxSpeed)
	case projected < minDistance:
		a.craft.SetSpeedTarget(-maxSpeed)
	default:
		a.craft.ResetSpeed()
	}
}

// updateTarget picks the craft to fight this tick.
func (a *SpacecraftAI) updateTarget() {
	craft := a.craft
	if a.standingDown {
		if craft.Target() != nil {
			craft.SetTarget(nil)
		}
		a.noteTarget()
		return
	}

	alive := a.targets[:0:0]
	for _, t := range a.targets {
		if t.IsAlive() {
			alive = append(alive, t)
		}
	}
	a.targets = alive

	current := craft.Target()
	if current != nil && !current.IsAlive() {
		craft.SetTarget(nil)
		current = nil
	}

	if a.priority {
		if len(a.targets) == 0 {
			// list exhausted, back to free hunting
			a.priority = false
			if current == nil {
				craft.SetTarget(a.nextBestHostile())
			}
			a.noteTarget()
			return
		}
		if current == nil || current.IsAway() || !slices.Contains(a.targets, current) {
			craft.SetTarget(a.firstAvailable())
		}
		a.noteTarget()
		return
	}

	if current != nil && current != a.lastTarget {
		// set from outside: accepted as is
		a.noteTarget()
		return
	}
	if current != nil && current.IsAway() {
		craft.SetTarget(nil)
		current = nil
	}
	if current == nil {
		next := a.firstAvailable()
		if next == nil {
			next = a.nextBestHostile()
		}
		craft.SetTarget(next)
	}
	a.noteTarget()
}

// noteTarget records the current target and resets tactics on a switch.
func (a *SpacecraftAI) noteTarget() {
	current := a.craft.Target()
	if current == a.lastTarget {
		return
	}
	a.lastTarget = current
	a.hitByNonTarget = 0
	if a.targetChanged != nil {
		a.targetChanged()
	}
}

func (a *SpacecraftAI) firstAvailable() *game.Spacecraft {
	for _, t := range a.targets {
		if t.IsAlive() && !t.IsAway() {
			return t
		}
	}
	return nil
}

// nextBestHostile is the closest hostile craft in the battle space.
func (a *SpacecraftAI) nextBestHostile() *game.Spacecraft {
	if a.mission == nil {
		return nil
	}
	var best *game.Spacecraft
	bestDist := math.Inf(1)
	pos := a.craft.Position()
	for _, c := range a.mission.Spacecrafts() {
		if !c.IsAlive() || c.IsAway() || !a.craft.IsHostile(c) {
			continue
		}
		if d := c.Position().Dist(pos); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
