package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdersRequirementsFirst(t *testing.T) {
	graph, err := Build([]*Node{
		{ID: "reinforcements", Requires: []NodeID{"intro"}},
		{ID: "intro"},
		{ID: "final", Requires: []NodeID{"reinforcements", "intro"}},
	})
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 3)
	assert.Equal(t, []NodeID{"intro", "reinforcements", "final"}, graph.Order)
	assert.ElementsMatch(t, []NodeID{"reinforcements", "final"}, graph.Dependents("intro"))
}

func TestBuildKeepsDeclarationOrderForTies(t *testing.T) {
	graph, err := Build([]*Node{{ID: "c"}, {ID: "a"}, {ID: "b", Requires: []NodeID{"a", "a"}}})
	require.NoError(t, err)
	assert.Equal(t, []NodeID{"c", "a", "b"}, graph.Order)
}

func TestBuildDetectsCycles(t *testing.T) {
	_, err := Build([]*Node{
		{ID: "a", Requires: []NodeID{"b"}},
		{ID: "b", Requires: []NodeID{"a"}},
		{ID: "c"},
		{ID: "d", Requires: []NodeID{"a"}},
	})
	require.ErrorIs(t, err, ErrCycleDetected)
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	// d is stuck behind the cycle
	assert.Equal(t, []NodeID{"a", "b", "d"}, cycle.Nodes)
	assert.Contains(t, err.Error(), "a, b, d")
}

func TestBuildErrors(t *testing.T) {
	_, err := Build([]*Node{{ID: "deadline", Requires: []NodeID{"ghost"}}})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = Build([]*Node{{ID: "x"}, {ID: "x"}})
	assert.ErrorIs(t, err, ErrDuplicateNode)
}

func TestArmAfterRequirementsFire(t *testing.T) {
	graph, err := Build([]*Node{
		{ID: "intro"},
		{ID: "deadline", Requires: []NodeID{"intro"}},
	})
	require.NoError(t, err)
	state := NewState()

	assert.Equal(t, []NodeID{"intro"}, Armable(graph, state))
	assert.Equal(t, StatusWaiting, state.Get("intro"))

	assert.Equal(t, []NodeID{"intro"}, state.Arm(graph))
	assert.Equal(t, StatusArmed, state.Get("intro"))
	assert.Empty(t, state.Arm(graph))

	state.Fire("intro")
	state.Fire("intro")
	assert.Equal(t, 2, state.FireCount("intro"))
	assert.Equal(t, []NodeID{"deadline"}, state.Arm(graph))
	assert.Equal(t, StatusFired, state.Get("intro"))
}
