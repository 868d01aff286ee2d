package game

import (
	"encoding/json"
	"fmt"

	"SpaceArmada/internal/dag"
)

// MissionDescriptor is the JSON form of a mission.
type MissionDescriptor struct {
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Environment json.RawMessage        `json:"environment,omitempty"` // name of a shared environment, or inline
	Teams       []TeamDescriptor       `json:"teams,omitempty"`
	Views       []View                 `json:"views,omitempty"`
	Spacecrafts []SpacecraftDescriptor `json:"spacecrafts"`
	Events      []EventDescriptor      `json:"events,omitempty"`
	RandomShips *RandomShipsConfig     `json:"randomShips,omitempty"`
}

type TeamDescriptor struct {
	ID    string      `json:"id"`
	Name  string      `json:"name,omitempty"`
	Color *[4]float64 `json:"color,omitempty"`
}

type SpacecraftDescriptor struct {
	ID            string     `json:"id,omitempty"`
	Name          string     `json:"name,omitempty"`
	Class         string     `json:"class"`
	Equipment     string     `json:"equipment,omitempty"`
	Team          string     `json:"team,omitempty"`
	Squad         string     `json:"squad,omitempty"`
	AI            string     `json:"ai,omitempty"`
	Piloted       bool       `json:"piloted,omitempty"`
	Away          bool       `json:"away,omitempty"`
	Position      Vec3       `json:"position"`
	Rotations     []Rotation `json:"rotations,omitempty"`
	InitialTarget string     `json:"initialTarget,omitempty"`
}

// LoadMission builds a mission from its JSON document.
func LoadMission(name string, data []byte, ctx *Context, records RecordStore) (*Mission, error) {
	m := NewMission(name, ctx, records)
	if err := m.LoadFromJSON(data); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFromJSON populates the mission. Only an unreadable document or one with
// no usable spacecraft is an error; faulty entries are logged and skipped.
func (m *Mission) LoadFromJSON(data []byte) error {
	var desc MissionDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMission, err)
	}
	m.title = desc.Title
	m.description = desc.Description
	m.views = desc.Views
	if len(desc.Environment) > 0 {
		if err := m.LoadEnvironment(desc.Environment); err != nil {
			m.log.Error("environment not loaded", "error", err)
		}
	}
	for _, td := range desc.Teams {
		if td.ID == "" || m.GetTeam(td.ID) != nil {
			m.log.Error("skipping team with empty or duplicate id", "team", td.ID)
			continue
		}
		m.AddTeam(NewTeam(td.ID, td.Name, td.Color))
	}
	m.loadSpacecrafts(desc.Spacecrafts)
	m.LoadObjectives(desc.Events)
	if desc.RandomShips != nil {
		m.AddRandomShips(*desc.RandomShips)
	}
	if len(m.spacecrafts) == 0 {
		return fmt.Errorf("%w: no spacecraft", ErrInvalidMission)
	}
	m.UpdateReferenceScore()
	m.log.Info("mission loaded",
		"spacecrafts", len(m.spacecrafts),
		"teams", len(m.teams),
		"events", len(m.events),
		"state", m.state.String())
	return nil
}

// LoadEnvironment accepts either the name of a shared environment or an inline
// definition owned by this mission.
func (m *Mission) LoadEnvironment(raw json.RawMessage) error {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		env, err := m.ctx.Environment(name)
		if err != nil {
			return err
		}
		m.environment = env
		m.ownsEnvironment = false
		return nil
	}
	env := &Environment{}
	if err := json.Unmarshal(raw, env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	m.environment = env
	m.ownsEnvironment = true
	return nil
}

func (m *Mission) loadSpacecrafts(list []SpacecraftDescriptor) {
	for i, sd := range list {
		orientation, err := OrientationFromRotations(sd.Rotations)
		if err != nil {
			m.log.Error("invalid spacecraft orientation, using identity", "index", i, "craft", sd.ID, "error", err)
		}
		craft, err := NewSpacecraft(SpacecraftOptions{
			ID:          sd.ID,
			Name:        sd.Name,
			Class:       sd.Class,
			Equipment:   sd.Equipment,
			Position:    sd.Position,
			Orientation: orientation,
			Squad:       sd.Squad,
			Piloted:     sd.Piloted,
			AI:          sd.AI,
			Away:        sd.Away,
		}, m.ctx)
		if err != nil {
			m.log.Error("skipping spacecraft", "index", i, "craft", sd.ID, "error", err)
			continue
		}
		if sd.ID != "" && m.GetSpacecraftByID(sd.ID) != nil {
			m.log.Error("skipping spacecraft with duplicate id", "index", i, "craft", sd.ID)
			continue
		}
		if sd.Team != "" {
			if team := m.GetTeam(sd.Team); team != nil {
				team.AddSpacecraft(craft)
			} else {
				m.log.Error("unknown team, spacecraft stays unaligned", "craft", sd.ID, "team", sd.Team)
			}
		}
		m.AddSpacecraft(craft)
	}
	for _, sd := range list {
		if sd.InitialTarget == "" || sd.ID == "" {
			continue
		}
		craft := m.GetSpacecraftByID(sd.ID)
		target := m.GetSpacecraftByID(sd.InitialTarget)
		if craft == nil {
			continue
		}
		if target == nil {
			m.log.Error("unknown initial target", "craft", sd.ID, "target", sd.InitialTarget)
			continue
		}
		craft.SetTarget(target)
	}
}

// LoadObjectives creates the mission events, classifies win and lose actions
// and wires timers that wait for other events.
func (m *Mission) LoadObjectives(events []EventDescriptor) {
	for i, ed := range events {
		if ed.Name == "" {
			ed.Name = fmt.Sprintf("event-%d", i+1)
		}
		if m.GetEvent(ed.Name) != nil {
			m.log.Error("skipping event with duplicate name", "event", ed.Name)
			continue
		}
		ev := NewMissionEvent(ed, m.log)
		for _, a := range ev.Actions {
			if !a.IsValid() {
				continue
			}
			switch a.Type {
			case ActionWin:
				m.winActions = append(m.winActions, a)
			case ActionLose:
				m.loseActions = append(m.loseActions, a)
			}
		}
		name := dag.NodeID(ev.Name)
		ev.Trigger.AddFireHandler(func(*Mission) { m.eventState.Fire(name) })
		m.events = append(m.events, ev)
	}
	if len(m.winActions) > 0 || len(m.loseActions) > 0 {
		m.state = StateInProgress
	}
	m.escortedCached = false
	m.escorted = nil
	m.linkTimers()
}

// linkTimers starts gated timers when their start event fires and validates
// the dependencies between events.
func (m *Mission) linkTimers() {
	nodes := make([]*dag.Node, 0, len(m.events))
	for _, ev := range m.events {
		node := &dag.Node{ID: dag.NodeID(ev.Name), Label: ev.Name}
		for _, c := range ev.Trigger.Conditions() {
			if !c.IsValid() || c.StartEvent() == "" {
				continue
			}
			startEvent := m.GetEvent(c.StartEvent())
			if startEvent == nil {
				m.log.Error("timer waits for an unknown event and will never start", "event", ev.Name, "start", c.StartEvent())
				continue
			}
			startEvent.Trigger.AddFireHandler(func(*Mission) { c.startTimer() })
			node.Requires = append(node.Requires, dag.NodeID(startEvent.Name))
		}
		nodes = append(nodes, node)
	}
	graph, err := dag.Build(nodes)
	if err != nil {
		m.log.Error("event timers depend on each other in a cycle and will never start", "error", err)
		return
	}
	m.eventGraph = graph
}
