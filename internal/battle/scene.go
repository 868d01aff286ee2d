package battle

import "SpaceArmada/internal/game"

// PilotScene keeps the world centered on the piloted craft, the way a
// camera following the player would.
type PilotScene struct {
	mission *game.Mission
	center  game.Vec3
}

var _ game.Scene = (*PilotScene)(nil)

func NewPilotScene(m *game.Mission) *PilotScene {
	return &PilotScene{mission: m}
}

func (s *PilotScene) FocusPosition() game.Vec3 {
	if p := s.mission.Pilot(); p != nil && !p.CanBeReused() {
		return p.Position()
	}
	return game.Vec3{}
}

// MoveCenter accumulates the shifts so the world origin can be recovered.
func (s *PilotScene) MoveCenter(offset game.Vec3) {
	s.center = s.center.Add(offset)
}

// Origin is where the original world origin is now.
func (s *PilotScene) Origin() game.Vec3 { return s.center }
