package game

import (
	"errors"
	"fmt"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

// Environment is the static backdrop of a battle. It carries no combat
// rules; its only simulated state is the drifting background offset.
type Environment struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Drift       Vec3    `json:"drift,omitempty"` // background units per second
	Offset      Vec3    `json:"-"`
	Elapsed     float64 `json:"-"`
}

func (e *Environment) Simulate(dt float64) {
	e.Elapsed += dt
	e.Offset = e.Offset.Add(e.Drift.Scale(dt))
}

// RegisterEnvironment makes a shared environment available by name.
func (c *Context) RegisterEnvironment(env *Environment) error {
	if env == nil || env.Name == "" {
		return fmt.Errorf("environment name cannot be empty")
	}
	c.Environments[env.Name] = env
	return nil
}

// Environment looks up a shared environment.
func (c *Context) Environment(name string) (*Environment, error) {
	env, ok := c.Environments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnvironment, name)
	}
	return env, nil
}
