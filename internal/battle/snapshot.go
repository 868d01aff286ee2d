package battle

import (
	"SpaceArmada/internal/dag"
	"SpaceArmada/internal/game"
)

// CraftState is the public view of one spacecraft.
type CraftState struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	Team      string    `json:"team,omitempty"`
	Squad     string    `json:"squad,omitempty"`
	Position  game.Vec3 `json:"position"`
	Forward   game.Vec3 `json:"forward"`
	Velocity  game.Vec3 `json:"velocity"`
	Hitpoints float64   `json:"hitpoints"`
	Hull      float64   `json:"hull"`
	Alive     bool      `json:"alive"`
	Away      bool      `json:"away,omitempty"`
	Piloted   bool      `json:"piloted,omitempty"`
	Target    string    `json:"target,omitempty"`
}

// Snapshot is the state of a battle after a step.
type Snapshot struct {
	Mission     string                `json:"mission"`
	Title       string                `json:"title,omitempty"`
	Elapsed     float64               `json:"elapsed"`
	State       string                `json:"state"`
	Won         bool                  `json:"won"`
	Lost        bool                  `json:"lost"`
	Objectives  []game.ObjectiveState `json:"objectives"`
	Crafts      []CraftState          `json:"crafts"`
	Projectiles int                   `json:"projectiles"`
	Messages    []game.HUDMessage     `json:"messages,omitempty"`
	Events      map[string]dag.Status `json:"events,omitempty"`
}

func (b *Battle) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.Mission
	snap := Snapshot{
		Mission:     m.Name(),
		Title:       m.Title(),
		Elapsed:     m.Elapsed(),
		Won:         m.IsWon(),
		Lost:        m.IsLost(),
		Objectives:  m.GetObjectivesState(),
		Projectiles: b.Ctx.Projectiles.LockedCount(),
		Events:      m.EventStatus(),
	}
	snap.State = m.GetState().String()
	if log, ok := b.Ctx.Messages.(*game.MessageLog); ok {
		snap.Messages = log.Messages()
	}
	snap.Crafts = make([]CraftState, 0, len(m.Spacecrafts()))
	for _, c := range m.Spacecrafts() {
		cs := CraftState{
			ID:        c.ID(),
			Class:     c.Class().Name,
			Squad:     c.SquadName(),
			Position:  c.Position(),
			Forward:   c.Orientation().Forward,
			Velocity:  c.Velocity(),
			Hitpoints: c.Hitpoints(),
			Hull:      c.HullIntegrity(),
			Alive:     c.IsAlive(),
			Away:      c.IsAway(),
			Piloted:   c.IsPiloted(),
		}
		if t := c.Team(); t != nil {
			cs.Team = t.ID()
		}
		if t := c.Target(); t != nil {
			cs.Target = t.ID()
		}
		snap.Crafts = append(snap.Crafts, cs)
	}
	return snap
}
