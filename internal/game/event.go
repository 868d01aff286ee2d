package game

import "log/slog"

type EventDescriptor struct {
	Name    string             `json:"name"`
	Trigger TriggerDescriptor  `json:"trigger"`
	Actions []ActionDescriptor `json:"actions"`
}

// MissionEvent is a named trigger with the actions it runs.
type MissionEvent struct {
	Name    string
	Trigger *Trigger
	Actions []*Action
}

func NewMissionEvent(desc EventDescriptor, log *slog.Logger) *MissionEvent {
	if log == nil {
		log = discardLogger()
	}
	ev := &MissionEvent{
		Name:    desc.Name,
		Trigger: NewTrigger(desc.Name, desc.Trigger, log),
	}
	for _, ad := range desc.Actions {
		ev.Actions = append(ev.Actions, NewAction(ad, ev.Trigger, log.With("event", desc.Name)))
	}
	return ev
}

func (e *MissionEvent) Simulate(m *Mission, dt float64) {
	e.Trigger.Simulate(m, dt)
}
