// Package dag orders mission events by their start dependencies.
//
// A node stands for a mission event; it requires the events whose firing
// starts one of its timers. The graph is validated when a mission loads.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// NodeID uniquely identifies a node in the graph.
type NodeID string

// Node is a single vertex of the graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Label    string   `json:"label,omitempty"`
	Requires []NodeID `json:"requires,omitempty"` // must fire first
}

// Graph is a validated, acyclic dependency graph.
type Graph struct {
	Nodes map[NodeID]*Node
	// every node after all of its requirements, ties in declaration order
	Order []NodeID

	dependents map[NodeID][]NodeID
}

var (
	// ErrCycleDetected is returned when a cycle is detected in the graph.
	ErrCycleDetected = errors.New("dag: cycle detected in graph")
	// ErrNodeNotFound is returned when a referenced node doesn't exist.
	ErrNodeNotFound = errors.New("dag: node not found")
	// ErrDuplicateNode is returned when two nodes share an ID.
	ErrDuplicateNode = errors.New("dag: duplicate node")
)

// CycleError lists the nodes that could not be ordered: members of a cycle
// and everything depending on one.
type CycleError struct {
	Nodes []NodeID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.Nodes))
	for i, id := range e.Nodes {
		ids[i] = string(id)
	}
	return fmt.Sprintf("%v: %s", ErrCycleDetected, strings.Join(ids, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// Build indexes and validates the nodes.
func Build(nodes []*Node) (*Graph, error) {
	g := &Graph{
		Nodes:      make(map[NodeID]*Node, len(nodes)),
		dependents: make(map[NodeID][]NodeID),
	}
	for _, node := range nodes {
		if _, exists := g.Nodes[node.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
		}
		g.Nodes[node.ID] = node
	}

	for _, node := range nodes {
		for _, req := range node.Requires {
			if _, exists := g.Nodes[req]; !exists {
				return nil, fmt.Errorf("%w: %s requires %s", ErrNodeNotFound, node.ID, req)
			}
			g.dependents[req] = append(g.dependents[req], node.ID)
		}
	}

	order, err := g.sort(nodes)
	if err != nil {
		return nil, err
	}
	g.Order = order
	return g, nil
}

// Dependents returns the nodes that directly require id.
func (g *Graph) Dependents(id NodeID) []NodeID {
	return g.dependents[id]
}

// sort is Kahn's algorithm; a node listed twice in Requires is waited on
// twice, which changes nothing about the order.
func (g *Graph) sort(nodes []*Node) ([]NodeID, error) {
	pending := make(map[NodeID]int, len(nodes))
	var ready []NodeID
	for _, node := range nodes {
		pending[node.ID] = len(node.Requires)
		if len(node.Requires) == 0 {
			ready = append(ready, node.ID)
		}
	}

	order := make([]NodeID, 0, len(nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, dep := range g.dependents[id] {
			pending[dep]--
			if pending[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}
	if len(order) == len(nodes) {
		return order, nil
	}

	var stuck []NodeID
	for id, n := range pending {
		if n > 0 {
			stuck = append(stuck, id)
		}
	}
	slices.Sort(stuck)
	return nil, &CycleError{Nodes: stuck}
}
