package game

// ObjectiveStatus is the HUD state of one objective line.
type ObjectiveStatus string

const (
	ObjectiveInProgress ObjectiveStatus = "inProgress"
	ObjectiveCompleted  ObjectiveStatus = "completed"
	ObjectiveFailed     ObjectiveStatus = "failed"
)

// ObjectiveState captures current progress for an objective.
type ObjectiveState struct {
	Text     string          `json:"text"`
	Status   ObjectiveStatus `json:"status"`
	Progress float64         `json:"progress"` // 0.0-1.0
	Lose     bool            `json:"lose,omitempty"`
}

const implicitObjectiveText = "Destroy all enemies"

// GetObjectives returns the objective lines: win objectives first, then the
// conditions the pilot has to prevent.
func (m *Mission) GetObjectives() []string {
	var lines []string
	if len(m.winActions) == 0 {
		lines = append(lines, implicitObjectiveText)
	}
	for _, a := range m.winActions {
		lines = append(lines, a.ObjectiveStrings(m)...)
	}
	for _, a := range m.loseActions {
		lines = append(lines, a.ObjectiveStrings(m)...)
	}
	return lines
}

// GetObjectivesState pairs every objective line with its progress.
func (m *Mission) GetObjectivesState() []ObjectiveState {
	var states []ObjectiveState
	if len(m.winActions) == 0 {
		st := ObjectiveState{Text: implicitObjectiveText, Status: m.objectiveStatus(false, false)}
		if m.hostileTotal > 0 {
			st.Progress = Clamp(1-float64(len(m.GetEnemies()))/float64(m.hostileTotal), 0, 1)
		}
		if m.state == StateCompleted {
			st.Progress = 1
		}
		states = append(states, st)
	}
	for _, a := range m.winActions {
		if a.ObjectiveStrings(m) == nil {
			continue
		}
		for _, c := range a.Trigger().Conditions() {
			if !c.IsValid() {
				continue
			}
			progress := c.Progress(m)
			if m.state == StateCompleted {
				progress = 1
			}
			states = append(states, ObjectiveState{
				Text:     c.winText(m),
				Status:   m.objectiveStatus(false, progress >= 1),
				Progress: progress,
			})
		}
	}
	for _, a := range m.loseActions {
		if a.ObjectiveStrings(m) == nil {
			continue
		}
		for _, c := range a.Trigger().Conditions() {
			if !c.IsValid() {
				continue
			}
			states = append(states, ObjectiveState{
				Text:     c.loseText(m),
				Status:   m.objectiveStatus(true, false),
				Progress: 1 - c.Progress(m),
				Lose:     true,
			})
		}
	}
	return states
}

func (m *Mission) objectiveStatus(lose, done bool) ObjectiveStatus {
	switch m.state {
	case StateCompleted:
		return ObjectiveCompleted
	case StateFailed:
		return ObjectiveFailed
	}
	if !lose && done {
		return ObjectiveCompleted
	}
	return ObjectiveInProgress
}
