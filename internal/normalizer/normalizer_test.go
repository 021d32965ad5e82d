package normalizer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/ir"
)

func buildLinear() *ir.WorkflowIR {
	wf := ir.New("demo", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "b", SchemaID: "robot.stop", Kind: ir.KindStop, UI: &ir.IRNodeUI{X: 100}})
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "Stand ", ParamType: ir.TypeString}},
		UI:     &ir.IRNodeUI{X: 0}})
	wf.AddEdge(ir.IREdge{FromNode: "a", FromPort: "flow_out", ToNode: "b", ToPort: "flow_in", EdgeType: ir.EdgeFlow})
	return wf
}

func TestNormalizeStripsUIAndMetadataFields(t *testing.T) {
	wf := buildLinear()
	norm := Normalize(wf)

	require.Equal(t, "", norm.Name)
	require.Nil(t, norm.Variables)
	require.Equal(t, "go2", norm.RobotType)
	require.Equal(t, "unitree", norm.Brand)
	for _, n := range norm.Nodes {
		require.Nil(t, n.UI)
	}
}

func TestNormalizeTopoSortsAndReassignsSequentialIDs(t *testing.T) {
	wf := buildLinear()
	norm := Normalize(wf)

	require.Len(t, norm.Nodes, 2)
	require.Equal(t, "0", norm.Nodes[0].ID)
	require.Equal(t, "robot.action_execution", norm.Nodes[0].SchemaID)
	require.Equal(t, "1", norm.Nodes[1].ID)
	require.Equal(t, "robot.stop", norm.Nodes[1].SchemaID)

	require.Len(t, norm.Edges, 1)
	require.Equal(t, "0", norm.Edges[0].FromNode)
	require.Equal(t, "1", norm.Edges[0].ToNode)
}

func TestNormalizeTopoSortTieBreaksLexicographically(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "zed", SchemaID: "robot.stop", Kind: ir.KindStop})
	wf.AddNode(ir.IRNode{ID: "alpha", SchemaID: "robot.timer", Kind: ir.KindTimer})

	norm := Normalize(wf)
	require.Equal(t, "robot.timer", norm.Nodes[0].SchemaID)
	require.Equal(t, "robot.stop", norm.Nodes[1].SchemaID)
}

func TestNormalizeCoercesNumericStringParams(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.timer", Kind: ir.KindTimer,
		Params: map[string]ir.IRParam{"duration": {Name: "duration", Value: "5.5", ParamType: ir.TypeString}}})

	norm := Normalize(wf)
	require.InDelta(t, 5.5, norm.Nodes[0].Params["duration"].Value, 0.0001)
}

func TestCompareIdenticalWorkflowsScoresOne(t *testing.T) {
	wf := buildLinear()
	score := Compare(wf, buildLinear())
	require.InDelta(t, 1.0, score, 0.0001)
}

func TestCompareEmptyWorkflows(t *testing.T) {
	empty1 := ir.New("a", "go2", "unitree")
	empty2 := ir.New("b", "go2", "unitree")
	require.Equal(t, 1.0, Compare(empty1, empty2))

	require.Equal(t, 0.0, Compare(empty1, buildLinear()))
}

func TestCompareDifferentWorkflowsScoresLower(t *testing.T) {
	wfA := buildLinear()

	wfB := ir.New("other", "go2", "unitree")
	wfB.AddNode(ir.IRNode{ID: "x", SchemaID: "robot.sensor_input", Kind: ir.KindSensor})

	score := Compare(wfA, wfB)
	require.Less(t, score, 1.0)
}

func TestCompareCloseMatchGivesPartialCredit(t *testing.T) {
	wfA := ir.New("a", "go2", "unitree")
	wfA.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.timer", Kind: ir.KindTimer,
		Params: map[string]ir.IRParam{"duration": {Name: "duration", Value: "5.0", ParamType: ir.TypeString}}})

	wfB := ir.New("b", "go2", "unitree")
	wfB.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.timer", Kind: ir.KindTimer,
		Params: map[string]ir.IRParam{"duration": {Name: "duration", Value: 5, ParamType: ir.TypeInt}}})

	score := Compare(wfA, wfB)
	require.Less(t, score, 1.0)
	require.Greater(t, score, 0.5)
}
