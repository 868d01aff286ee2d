package game

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"SpaceArmada/internal/dag"
)

var ErrInvalidMission = errors.New("invalid mission")

type MissionState int

const (
	StateNone MissionState = iota // implicit objective: destroy all enemies
	StateInProgress
	StateCompleted
	StateFailed
)

func (s MissionState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateInProgress:
		return "inProgress"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Scene is the render-side collaborator. The mission keeps the focused point
// near the origin by shifting the world when it drifts too far.
type Scene interface {
	FocusPosition() Vec3
	MoveCenter(offset Vec3)
}

// View is a camera configuration passed through to clients.
type View struct {
	Name     string `json:"name"`
	Position Vec3   `json:"position"`
	LookAt   string `json:"lookAt,omitempty"`
}

// Mission owns every craft, team and scripted event of a battle and advances
// them once per tick.
type Mission struct {
	ctx *Context
	log *slog.Logger

	name        string
	title       string
	description string

	environment     *Environment
	ownsEnvironment bool
	views           []View

	teams       []*Team
	events      []*MissionEvent
	winActions  []*Action
	loseActions []*Action

	spacecrafts []*Spacecraft
	hitObjects  []*Spacecraft
	pilot       *Spacecraft

	randomShips *RandomShipsConfig

	state          MissionState
	referenceScore float64
	hostileTotal   int

	escorted       []*Spacecraft
	escortedCached bool

	eventGraph *dag.Graph
	eventState *dag.State

	records RecordStore
	record  MissionRecord

	started bool
	elapsed float64
	nextID  int
}

// NewMission creates an empty mission and reads its record from the store.
func NewMission(name string, ctx *Context, records RecordStore) *Mission {
	if ctx == nil {
		ctx = NewContext(DefaultSettings(), nil)
	}
	m := &Mission{
		ctx:        ctx,
		log:        ctx.Log.With("mission", name),
		name:       name,
		records:    records,
		record:     MissionRecord{MissionName: name},
		eventState: dag.NewState(),
	}
	if records != nil {
		rec, err := records.LoadRecord(name)
		switch {
		case err == nil:
			m.record = rec
		case errors.Is(err, ErrRecordNotFound):
		default:
			m.log.Error("failed to load mission record", "error", err)
		}
	}
	return m
}

func (m *Mission) Name() string                    { return m.name }
func (m *Mission) Title() string                   { return m.title }
func (m *Mission) Description() string             { return m.description }
func (m *Mission) Context() *Context               { return m.ctx }
func (m *Mission) Environment() *Environment       { return m.environment }
func (m *Mission) Views() []View                   { return m.views }
func (m *Mission) Teams() []*Team                  { return m.teams }
func (m *Mission) Events() []*MissionEvent         { return m.events }
func (m *Mission) Spacecrafts() []*Spacecraft      { return m.spacecrafts }
func (m *Mission) HitObjects() []*Spacecraft       { return m.hitObjects }
func (m *Mission) Pilot() *Spacecraft              { return m.pilot }
func (m *Mission) GetState() MissionState          { return m.state }
func (m *Mission) ReferenceScore() float64         { return m.referenceScore }
func (m *Mission) Record() MissionRecord           { return m.record }
func (m *Mission) Elapsed() float64                { return m.elapsed }
func (m *Mission) RandomShips() *RandomShipsConfig { return m.randomShips }

func (m *Mission) GetTeam(id string) *Team {
	for _, t := range m.teams {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

func (m *Mission) AddTeam(t *Team) {
	m.teams = append(m.teams, t)
}

func (m *Mission) GetEvent(name string) *MissionEvent {
	for _, ev := range m.events {
		if ev.Name == name {
			return ev
		}
	}
	return nil
}

func (m *Mission) GetSpacecraftByID(id string) *Spacecraft {
	for _, c := range m.spacecrafts {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// GetSpacecraftCount counts the roster, or only living crafts.
func (m *Mission) GetSpacecraftCount(aliveOnly bool) int {
	if !aliveOnly {
		return len(m.spacecrafts)
	}
	n := 0
	for _, c := range m.spacecrafts {
		if c.IsAlive() {
			n++
		}
	}
	return n
}

// GetEnemies returns the living crafts hostile to the pilot.
func (m *Mission) GetEnemies() []*Spacecraft {
	if m.pilot == nil {
		return nil
	}
	var enemies []*Spacecraft
	for _, c := range m.spacecrafts {
		if c.IsAlive() && m.pilot.IsHostile(c) {
			enemies = append(enemies, c)
		}
	}
	return enemies
}

// GetEscortedSpacecraft returns the crafts whose loss fails the mission: the
// subjects of destroyed and count conditions on lose events.
func (m *Mission) GetEscortedSpacecraft() []*Spacecraft {
	if m.escortedCached {
		return m.escorted
	}
	seen := map[*Spacecraft]bool{}
	for _, a := range m.loseActions {
		for _, c := range a.Trigger().Conditions() {
			if c.Type != ConditionDestroyed && c.Type != ConditionCount {
				continue
			}
			for _, craft := range c.spacecrafts(m) {
				if !seen[craft] && craft != m.pilot {
					seen[craft] = true
					m.escorted = append(m.escorted, craft)
				}
			}
		}
	}
	m.escortedCached = true
	return m.escorted
}

// AddSpacecraft puts a craft into the roster. IDs are generated when missing.
func (m *Mission) AddSpacecraft(c *Spacecraft) {
	if c.id == "" {
		m.nextID++
		c.id = "craft-" + strconv.Itoa(m.nextID)
	}
	if c.IsPiloted() {
		if m.pilot != nil && m.pilot != c {
			m.log.Warn("mission already has a piloted craft, ignoring the flag", "craft", c.ID())
			c.piloted = false
		} else {
			m.pilot = c
		}
	}
	m.spacecrafts = append(m.spacecrafts, c)
	if c.IsAlive() && !c.IsAway() {
		m.hitObjects = append(m.hitObjects, c)
	}
	m.escortedCached = false
	m.escorted = nil
}

// CompleteMission and FailMission only act on a mission still undecided;
// the first outcome sticks.
func (m *Mission) CompleteMission() {
	if m.state == StateNone || m.state == StateInProgress {
		m.state = StateCompleted
		m.log.Info("mission completed")
	}
}

func (m *Mission) FailMission() {
	if m.state == StateNone || m.state == StateInProgress {
		m.state = StateFailed
		m.log.Info("mission failed")
	}
}

func (m *Mission) HasExplicitWin() bool { return len(m.winActions) > 0 }

// IsWon checks the win objective. Without scripted win actions the objective
// is to destroy every craft hostile to the pilot; meeting it completes the
// mission. Wrecks still inside their grace period are already gone here.
func (m *Mission) IsWon() bool {
	if len(m.winActions) > 0 {
		return m.state == StateCompleted
	}
	if m.state == StateCompleted {
		return true
	}
	if m.state == StateFailed || m.pilot == nil || !m.pilot.IsAlive() {
		return false
	}
	for _, c := range m.spacecrafts {
		if c.IsAlive() && m.pilot.IsHostile(c) {
			return false
		}
	}
	m.CompleteMission()
	return true
}

// IsLost is true without a pilot, once the pilot is gone, or after a lose
// action fired.
func (m *Mission) IsLost() bool {
	return m.pilot == nil || m.pilot.CanBeReused() || m.state == StateFailed
}

// IsOver reports a decided mission.
func (m *Mission) IsOver() bool {
	return m.IsLost() || m.IsWon()
}

// Tick advances the mission by dt. scene may be nil.
func (m *Mission) Tick(dt float64, scene Scene) {
	start := time.Now()
	if m.environment != nil {
		m.environment.Simulate(dt)
	}

	for _, ev := range m.events {
		if m.started && ev.Trigger.FireWhen() == FireMissionStarts {
			continue
		}
		ev.Simulate(m, dt)
	}
	m.started = true
	if m.ctx.Messages != nil {
		m.ctx.Messages.Simulate(dt)
	}

	hideHitboxes := m.ctx.Settings.HideHitboxes
	for _, c := range m.spacecrafts {
		c.Simulate(dt)
		if hideHitboxes && !c.CanBeReused() {
			c.SetHitboxVisible(false)
		}
	}
	m.reap()

	if m.ctx.Projectiles.HasLockedObjects() {
		tree := NewOctree(m.hitObjects, OctreeMaxDepth, OctreeMaxLeafObjects, true)
		m.ctx.Projectiles.ExecuteForLockedObjects(func(p *Projectile, index int) {
			p.Simulate(dt, tree, m.ctx)
			if p.CanBeReused() {
				m.ctx.Projectiles.MarkAsFree(index)
			}
		})
	}
	if m.ctx.Particles.HasLockedObjects() {
		m.ctx.Particles.ExecuteForLockedObjects(func(p *Particle, index int) {
			p.Simulate(dt)
			if p.CanBeReused() {
				m.ctx.Particles.MarkAsFree(index)
			}
		})
	}

	if scene != nil {
		m.recenter(scene)
	}
	m.elapsed += dt
	m.ctx.metrics().TickCompleted(time.Since(start))
}

// reap drops reusable crafts from the roster in one compacting pass and
// rebuilds the hit-testable list from what is left.
func (m *Mission) reap() {
	kept := m.spacecrafts[:0]
	for _, c := range m.spacecrafts {
		if c == nil {
			continue
		}
		if c.CanBeReused() {
			c.Destroy()
			continue
		}
		kept = append(kept, c)
	}
	clear(m.spacecrafts[len(kept):])
	m.spacecrafts = kept

	m.hitObjects = m.hitObjects[:0]
	for _, c := range m.spacecrafts {
		if c.IsAlive() && !c.IsAway() {
			m.hitObjects = append(m.hitObjects, c)
		}
	}
}

func (m *Mission) recenter(scene Scene) {
	focus := scene.FocusPosition()
	limit := m.ctx.Settings.SceneRecenterDistance
	if limit <= 0 || focus.Len() <= limit {
		return
	}
	offset := focus.Scale(-1)
	for _, c := range m.spacecrafts {
		c.Translate(offset)
	}
	m.ctx.Projectiles.ExecuteForLockedObjects(func(p *Projectile, _ int) { p.Translate(offset) })
	m.ctx.Particles.ExecuteForLockedObjects(func(p *Particle, _ int) { p.Translate(offset) })
	scene.MoveCenter(offset)
	m.ctx.notifySceneMoved(offset)
	m.log.Debug("scene re-centered", "offset", offset)
}

// EventStatus reports, per event, whether it fired, is armed (every event it
// waits for has fired) or still waiting.
func (m *Mission) EventStatus() map[string]dag.Status {
	if m.eventGraph != nil {
		m.eventState.Arm(m.eventGraph)
	}
	out := make(map[string]dag.Status, len(m.events))
	for _, ev := range m.events {
		out[ev.Name] = m.eventState.Get(dag.NodeID(ev.Name))
	}
	return out
}

// EventFires is how often the named event fired so far.
func (m *Mission) EventFires(name string) int {
	return m.eventState.FireCount(dag.NodeID(name))
}

// Destroy releases the roster and returns pooled objects. The mission must
// not be ticked afterwards.
func (m *Mission) Destroy() {
	for _, c := range m.spacecrafts {
		c.Destroy()
	}
	m.spacecrafts = nil
	m.hitObjects = nil
	m.escorted = nil
	m.escortedCached = false
	m.pilot = nil
	m.events = nil
	m.winActions = nil
	m.loseActions = nil
	m.teams = nil
	m.ctx.Projectiles.Clear()
	m.ctx.Particles.Clear()
	if m.ownsEnvironment {
		m.environment = nil
	}
}
