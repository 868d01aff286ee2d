package game

import (
	"log/slog"
)

type ActionType string

const (
	ActionWin           ActionType = "win"
	ActionLose          ActionType = "lose"
	ActionMessage       ActionType = "message"
	ActionClearMessages ActionType = "clearMessages"
	ActionCommand       ActionType = "command"
)

type ActionDescriptor struct {
	Type     string         `json:"type"`
	Subjects *SubjectGroup  `json:"subjects,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// Action is a side effect bound to one trigger. An action with invalid
// parameters does nothing.
type Action struct {
	Type    ActionType
	log     *slog.Logger
	trigger *Trigger
	valid   bool

	message  HUDMessage
	command  SpacecraftCommand
	subjects SubjectGroup
	resolved []*Spacecraft
	isCached bool
}

// NewAction validates the descriptor and registers the action with its trigger.
func NewAction(desc ActionDescriptor, trigger *Trigger, log *slog.Logger) *Action {
	if log == nil {
		log = discardLogger()
	}
	a := &Action{Type: ActionType(desc.Type), log: log, trigger: trigger}
	if desc.Subjects != nil {
		a.subjects = *desc.Subjects
	}
	r := newParamReader(desc.Params)
	switch a.Type {
	case ActionWin, ActionLose, ActionClearMessages:
	case ActionMessage:
		a.message.Text, _ = r.str("text", true)
		if ms, ok := r.number("duration", false); ok {
			a.message.Duration = ms / 1000
		}
		a.message.Permanent = r.boolean("permanent")
		a.message.Urgent = r.boolean("urgent")
		a.message.Color = r.color("color")
	case ActionCommand:
		if a.subjects.IsEmpty() {
			r.fail("subjects need at least one spacecraft, squad or team")
		}
		cmd, err := ParseSpacecraftCommand(desc.Params)
		if err != nil {
			r.fail("%v", err)
		}
		a.command = cmd
	default:
		r.fail("unknown action type %q", desc.Type)
	}
	if err := r.err(); err != nil {
		log.Error("invalid action, it will do nothing", "action", desc.Type, "error", err)
	} else {
		a.valid = true
	}
	if trigger != nil {
		trigger.AddFireHandler(a.Execute)
	}
	return a
}

func (a *Action) Trigger() *Trigger { return a.trigger }
func (a *Action) IsValid() bool     { return a.valid }

func (a *Action) Execute(m *Mission) {
	if !a.valid || m == nil {
		return
	}
	switch a.Type {
	case ActionWin:
		m.CompleteMission()
	case ActionLose:
		m.FailMission()
	case ActionMessage:
		m.ctx.Messages.QueueHUDMessage(a.message)
	case ActionClearMessages:
		m.ctx.Messages.ClearHUDMessages()
	case ActionCommand:
		for _, craft := range a.spacecrafts(m) {
			if !craft.IsAlive() {
				continue
			}
			if !craft.ExecuteCommand(a.command) {
				a.log.Warn("spacecraft has no pilot to take commands", "action", a.Type, "craft", craft.ID())
			}
		}
	}
}

func (a *Action) spacecrafts(m *Mission) []*Spacecraft {
	if !a.isCached {
		for _, craft := range m.Spacecrafts() {
			if a.subjects.Has(craft) {
				a.resolved = append(a.resolved, craft)
			}
		}
		a.isCached = true
	}
	return a.resolved
}

// ObjectiveStrings returns the objective lines of a win or lose action. Other
// action types, and triggers not shaped like objectives, yield nil.
func (a *Action) ObjectiveStrings(m *Mission) []string {
	if !a.valid || a.trigger == nil {
		return nil
	}
	switch a.Type {
	case ActionWin:
		return a.trigger.WinObjectives(m)
	case ActionLose:
		return a.trigger.LoseObjectives(m)
	}
	a.log.Error("action is not an objective", "action", a.Type)
	return nil
}
