package dag

// Armable lists, in graph order, the waiting nodes whose requirements have
// all fired. It does not touch s.
func Armable(g *Graph, s *State) []NodeID {
	var out []NodeID
	for _, id := range g.Order {
		if s.Get(id) != StatusWaiting {
			continue
		}
		ready := true
		for _, req := range g.Nodes[id].Requires {
			if s.Get(req) != StatusFired {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, id)
		}
	}
	return out
}

// Arm marks every armable node armed and returns them.
func (s *State) Arm(g *Graph) []NodeID {
	ids := Armable(g, s)
	for _, id := range ids {
		s.Nodes[id] = StatusArmed
	}
	return ids
}
