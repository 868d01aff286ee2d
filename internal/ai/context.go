package ai

import (
	"errors"
	"fmt"
	"log/slog"

	"SpaceArmada/internal/game"
)

var ErrUnknownAIType = errors.New("unknown AI type")

// factory builds a controller for one craft.
type factory func(craft *game.Spacecraft, mission *game.Mission, log *slog.Logger) Controller

var factories = map[string]factory{
	TypeFighter: func(c *game.Spacecraft, m *game.Mission, l *slog.Logger) Controller { return NewFighterAI(c, m, l) },
	TypeShip:    func(c *game.Spacecraft, m *game.Mission, l *slog.Logger) Controller { return NewShipAI(c, m, l) },
}

// Context owns the AI controllers of one battle and runs them in the order
// they were added.
type Context struct {
	mission     *game.Mission
	log         *slog.Logger
	controllers []Controller
}

func NewContext(mission *game.Mission, log *slog.Logger) *Context {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Context{mission: mission, log: log.With("component", "ai")}
}

func (c *Context) Controllers() []Controller { return c.controllers }

// ClearAIs drops every controller.
func (c *Context) ClearAIs() {
	clear(c.controllers)
	c.controllers = c.controllers[:0]
}

// AddAI attaches a controller of the given type to craft.
func (c *Context) AddAI(aiType string, craft *game.Spacecraft) (Controller, error) {
	build, ok := factories[aiType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAIType, aiType)
	}
	ctrl := build(craft, c.mission, c.log)
	c.controllers = append(c.controllers, ctrl)
	return ctrl, nil
}

// AddAllFromMission attaches controllers to every non-piloted craft that
// names an AI type. Crafts with an unknown type are logged and left idle.
func (c *Context) AddAllFromMission() {
	if c.mission == nil {
		return
	}
	for _, craft := range c.mission.Spacecrafts() {
		if craft.IsPiloted() || craft.AIType() == "" {
			continue
		}
		if _, err := c.AddAI(craft.AIType(), craft); err != nil {
			c.log.Warn("no AI for spacecraft", "craft", craft.ID(), "error", err)
		}
	}
}

// Control runs every controller, then drops those whose craft is gone.
func (c *Context) Control(dt float64) {
	for _, ctrl := range c.controllers {
		ctrl.Control(dt)
	}
	kept := c.controllers[:0]
	for _, ctrl := range c.controllers {
		if craft := ctrl.Spacecraft(); craft == nil || craft.CanBeReused() {
			continue
		}
		kept = append(kept, ctrl)
	}
	clear(c.controllers[len(kept):])
	c.controllers = kept
}

// HandleSceneMoved forwards a world shift to controllers holding world
// positions.
func (c *Context) HandleSceneMoved(offset game.Vec3) {
	for _, ctrl := range c.controllers {
		ctrl.HandleSceneMoved(offset)
	}
}
