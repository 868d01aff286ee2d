package ai

import (
	"log/slog"
	"math"

	"SpaceArmada/internal/game"
)

// ShipAI flies capital ships. Their turrets aim on their own, so the ship
// only needs to close in and present its attack vector to the target.
type ShipAI struct {
	*SpacecraftAI
}

var _ Controller = (*ShipAI)(nil)

func NewShipAI(craft *game.Spacecraft, mission *game.Mission, log *slog.Logger) *ShipAI {
	return &ShipAI{SpacecraftAI: newSpacecraftAI(craft, mission, log)}
}

func (s *ShipAI) standOffDistance() float64 { return s.weaponRange * ShipStandOffFactor }

func (s *ShipAI) Control(dt float64) {
	if !s.usable() {
		return
	}
	s.updateTarget()
	target := s.craft.Target()
	if target == nil {
		s.stopAll()
		return
	}
	targetPos := target.Position()
	dist := targetPos.Dist(s.craft.Position())

	if standOff := s.standOffDistance(); dist > standOff {
		s.turnTowards(targetPos, dt)
		s.approach(dist, standOff, s.weaponRange*ShipMinDistanceFactor, s.craft.MaxSpeed())
	} else {
		s.orient(targetPos, dt)
		s.craft.ResetSpeed()
	}

	if dist <= s.weaponRange {
		s.craft.Fire()
	}
}

// orient turns the attack vector of the class towards p, using the two axes
// of its turn style.
func (s *ShipAI) orient(p game.Vec3, dt float64) {
	class := s.craft.Class()
	t := s.craft.RelativeVector(p)
	a := class.AttackVector
	switch class.TurnStyle {
	case game.TurnRollYaw:
		roll := game.WrapAngle(math.Atan2(t.Z, t.X) - math.Atan2(a.Z, a.X))
		yaw := game.WrapAngle(math.Atan2(a.Y, a.X) - math.Atan2(t.Y, t.X))
		s.rollAndYaw(roll, yaw, dt)
	case game.TurnRollPitch:
		roll := game.WrapAngle(math.Atan2(t.Z, t.X) - math.Atan2(a.Z, a.X))
		pitch := game.WrapAngle(math.Atan2(t.Z, t.Y) - math.Atan2(a.Z, a.Y))
		s.rollAndPitch(roll, pitch, dt)
	default:
		ty, tp := game.YawPitch(t)
		ay, ap := game.YawPitch(a)
		s.turn(game.WrapAngle(ty-ay), tp-ap, dt)
	}
}
