package game

import (
	"log/slog"
)

type ConditionsRequired string

const (
	RequireAll ConditionsRequired = "all"
	RequireAny ConditionsRequired = "any"
)

type FireWhen string

const (
	FireMissionStarts FireWhen = "missionStarts"
	FireTrue          FireWhen = "true"
	FireFalse         FireWhen = "false"
	FireChange        FireWhen = "change"
	FireChangeToTrue  FireWhen = "changeToTrue"
	FireChangeToFalse FireWhen = "changeToFalse"
)

func validFireWhen(f FireWhen) bool {
	switch f {
	case FireMissionStarts, FireTrue, FireFalse, FireChange, FireChangeToTrue, FireChangeToFalse:
		return true
	}
	return false
}

type TriggerDescriptor struct {
	Conditions         []ConditionDescriptor `json:"conditions,omitempty"`
	ConditionsRequired string                `json:"conditionsRequired,omitempty"`
	FireWhen           string                `json:"fireWhen,omitempty"`
	OneShot            *bool                 `json:"oneShot,omitempty"`
}

// Trigger combines its conditions every tick and fires its handlers according
// to the firing rule.
type Trigger struct {
	log        *slog.Logger
	event      string
	conditions []*Condition
	required   ConditionsRequired
	fireWhen   FireWhen
	oneShot    bool
	handlers   []func(*Mission)

	previous bool
	fired    bool
	firing   bool
}

// NewTrigger builds a trigger. Without conditions it always fires once when
// the mission starts; other settings are logged and corrected.
func NewTrigger(event string, desc TriggerDescriptor, log *slog.Logger) *Trigger {
	if log == nil {
		log = discardLogger()
	}
	t := &Trigger{log: log, event: event, required: RequireAll}
	for _, cd := range desc.Conditions {
		t.conditions = append(t.conditions, NewCondition(cd, log.With("event", event)))
	}
	switch ConditionsRequired(desc.ConditionsRequired) {
	case "", RequireAll:
	case RequireAny:
		t.required = RequireAny
	default:
		log.Error("invalid conditionsRequired, using all", "event", event, "value", desc.ConditionsRequired)
	}

	if len(t.conditions) == 0 {
		t.fireWhen = FireMissionStarts
		t.oneShot = true
		if desc.FireWhen != "" && FireWhen(desc.FireWhen) != FireMissionStarts {
			log.Error("trigger without conditions can only fire when the mission starts", "event", event, "fireWhen", desc.FireWhen)
		}
		if desc.OneShot != nil && !*desc.OneShot {
			log.Error("trigger without conditions must be one shot", "event", event)
		}
		return t
	}

	t.fireWhen = FireChangeToTrue
	if desc.FireWhen != "" {
		if fw := FireWhen(desc.FireWhen); validFireWhen(fw) {
			t.fireWhen = fw
		} else {
			log.Error("invalid fireWhen, using changeToTrue", "event", event, "value", desc.FireWhen)
		}
	}
	if t.fireWhen == FireMissionStarts {
		log.Warn("trigger fires when the mission starts, its conditions are ignored", "event", event)
	}
	if desc.OneShot != nil {
		t.oneShot = *desc.OneShot
	}
	return t
}

func (t *Trigger) Conditions() []*Condition               { return t.conditions }
func (t *Trigger) ConditionsRequired() ConditionsRequired { return t.required }
func (t *Trigger) FireWhen() FireWhen                     { return t.fireWhen }
func (t *Trigger) OneShot() bool                          { return t.oneShot }
func (t *Trigger) HasFired() bool                         { return t.fired }

// AddFireHandler registers a callback invoked, in registration order, every
// time the trigger fires.
func (t *Trigger) AddFireHandler(fn func(*Mission)) {
	t.handlers = append(t.handlers, fn)
}

func (t *Trigger) evaluate(m *Mission, dt float64) bool {
	if t.required == RequireAny {
		for _, c := range t.conditions {
			if c.IsSatisfied(m, dt) {
				return true
			}
		}
		return false
	}
	for _, c := range t.conditions {
		if !c.IsSatisfied(m, dt) {
			return false
		}
	}
	return true
}

// Simulate evaluates the trigger for one tick. A missionStarts trigger fires
// on every call; the mission only calls it on the first tick.
func (t *Trigger) Simulate(m *Mission, dt float64) {
	if t.oneShot && t.fired {
		return
	}
	if t.fireWhen == FireMissionStarts {
		t.Fire(m)
		return
	}
	state := t.evaluate(m, dt)
	fire := false
	switch t.fireWhen {
	case FireTrue:
		fire = state
	case FireFalse:
		fire = !state
	case FireChange:
		fire = state != t.previous
	case FireChangeToTrue:
		fire = state && !t.previous
	case FireChangeToFalse:
		fire = !state && t.previous
	}
	t.previous = state
	if fire {
		t.Fire(m)
	}
}

// Fire runs the handlers. A handler that makes the same trigger fire again
// synchronously is reported and the nested fire is dropped.
func (t *Trigger) Fire(m *Mission) {
	if t.firing {
		t.log.Error("trigger fired again from its own handler, ignoring", "event", t.event)
		return
	}
	t.firing = true
	for _, fn := range t.handlers {
		fn(m)
	}
	t.firing = false
	t.fired = true
	if m != nil {
		m.ctx.metrics().TriggerFired(t.event)
	}
}

// winShaped reports whether the trigger reads as "all of these happened".
// With a single condition all and any are the same.
func (t *Trigger) winShaped() bool {
	return (t.required == RequireAll || len(t.conditions) == 1) &&
		(t.fireWhen == FireTrue || t.fireWhen == FireChangeToTrue)
}

// loseShaped reports whether the trigger reads as "any of these happened".
func (t *Trigger) loseShaped() bool {
	return (t.required == RequireAny || len(t.conditions) == 1) &&
		(t.fireWhen == FireTrue || t.fireWhen == FireChangeToTrue)
}

// WinObjectives returns one line per condition, or nil (logged) when the
// trigger is not shaped like a win objective.
func (t *Trigger) WinObjectives(m *Mission) []string {
	if !t.winShaped() {
		t.log.Error("trigger is not a win objective", "event", t.event, "conditionsRequired", t.required, "fireWhen", t.fireWhen)
		return nil
	}
	lines := make([]string, 0, len(t.conditions))
	for _, c := range t.conditions {
		if c.IsValid() {
			lines = append(lines, c.winText(m))
		}
	}
	return lines
}

// LoseObjectives is the counterpart of WinObjectives for lose triggers.
func (t *Trigger) LoseObjectives(m *Mission) []string {
	if !t.loseShaped() {
		t.log.Error("trigger is not a lose objective", "event", t.event, "conditionsRequired", t.required, "fireWhen", t.fireWhen)
		return nil
	}
	lines := make([]string, 0, len(t.conditions))
	for _, c := range t.conditions {
		if c.IsValid() {
			lines = append(lines, c.loseText(m))
		}
	}
	return lines
}
