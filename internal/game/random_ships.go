package game

import (
	"fmt"
	"math"
	"sort"
)

type HeadingMode string

const (
	HeadingRandom   HeadingMode = "random"
	HeadingToCenter HeadingMode = "toCenter"
)

// RandomShipsConfig asks for crafts scattered over a cube around the origin.
type RandomShipsConfig struct {
	Ships     map[string]int `json:"ships"` // class name -> count
	MapSize   float64        `json:"mapSize,omitempty"`
	Heading   HeadingMode    `json:"heading,omitempty"`
	Equipment string         `json:"equipment,omitempty"`
	// every ship gets a team of its own, so they all fight each other
	Demo bool `json:"demo,omitempty"`
}

// AddRandomShips spawns the configured crafts with AI pilots and updates the
// reference score. Unknown classes are logged and skipped.
func (m *Mission) AddRandomShips(cfg RandomShipsConfig) {
	if cfg.MapSize <= 0 {
		cfg.MapSize = DefaultRandomShipsMapSize
	}
	if cfg.Heading == "" {
		cfg.Heading = HeadingRandom
	}
	m.randomShips = &cfg

	classes := make([]string, 0, len(cfg.Ships))
	for name := range cfg.Ships {
		classes = append(classes, name)
	}
	sort.Strings(classes)

	added := 0
	for _, className := range classes {
		for i := 0; i < cfg.Ships[className]; i++ {
			pos := Vec3{
				X: (m.ctx.randomFloat() - 0.5) * cfg.MapSize,
				Y: (m.ctx.randomFloat() - 0.5) * cfg.MapSize,
				Z: (m.ctx.randomFloat() - 0.5) * cfg.MapSize,
			}
			craft, err := NewSpacecraft(SpacecraftOptions{
				Class:       className,
				Equipment:   cfg.Equipment,
				Position:    pos,
				Orientation: m.randomHeading(pos, cfg.Heading),
			}, m.ctx)
			if err != nil {
				m.log.Error("skipping random ship", "class", className, "error", err)
				break
			}
			m.nextID++
			craft.id = fmt.Sprintf("random-%s-%d", className, m.nextID)
			if cfg.Demo {
				team := NewTeam(craft.id, craft.Class().DisplayName, nil)
				m.AddTeam(team)
				team.AddSpacecraft(craft)
			}
			m.AddSpacecraft(craft)
			added++
		}
	}
	m.UpdateReferenceScore()
	m.log.Info("random ships added", "count", added, "demo", cfg.Demo)
}

func (m *Mission) randomHeading(pos Vec3, mode HeadingMode) Basis {
	var forward Vec3
	if mode == HeadingToCenter && pos.LenSq() > 1e-6 {
		forward = pos.Scale(-1).Unit()
	} else {
		forward = m.ctx.RandomDirection()
	}
	up := Vec3{Z: 1}
	if math.Abs(forward.Z) > 0.99 {
		up = Vec3{X: 1}
	}
	roll := m.ctx.randomFloat() * 2 * math.Pi
	b := Basis{Forward: forward, Up: up}.orthonormal()
	return b.Roll(roll)
}
