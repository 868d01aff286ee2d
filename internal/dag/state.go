package dag

// Status is where an event stands in the mission script.
type Status string

const (
	// StatusWaiting: some event it waits for has not fired yet.
	StatusWaiting Status = "waiting"
	// StatusArmed: everything it waits for has fired.
	StatusArmed Status = "armed"
	// StatusFired: the event fired at least once.
	StatusFired Status = "fired"
)

// State tracks the events of one running mission.
type State struct {
	Nodes map[NodeID]Status
	Fires map[NodeID]int
}

func NewState() *State {
	return &State{Nodes: map[NodeID]Status{}, Fires: map[NodeID]int{}}
}

// Get returns the status of id; unknown nodes are waiting.
func (s *State) Get(id NodeID) Status {
	if status, ok := s.Nodes[id]; ok {
		return status
	}
	return StatusWaiting
}

// Fire records one firing of id.
func (s *State) Fire(id NodeID) {
	s.Nodes[id] = StatusFired
	s.Fires[id]++
}

func (s *State) FireCount(id NodeID) int { return s.Fires[id] }
