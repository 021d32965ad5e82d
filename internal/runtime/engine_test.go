package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
)

func hasCode(diags []diagnostics.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func baseScenario() Scenario {
	return Scenario{
		Target:          "simulation",
		RobotType:       "go2",
		RobotModel:      "go2",
		SafetyPolicy:    DefaultSafetyPolicy(),
		HasRobotAdapter: true,
	}
}

func TestRunBlockedByCompileGuardOnEmptyMission(t *testing.T) {
	engine := NewEngine()
	result := engine.Run(context.Background(), &ir.WorkflowIR{}, baseScenario(), nil)
	require.False(t, result.Completed)
	require.True(t, hasCode(result.Diags, "E2009"))
}

func TestRunBlockedByExecuteGuardOnInvalidTarget(t *testing.T) {
	engine := NewEngine()
	wf := ir.New("m", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.stop", Kind: ir.KindStop})

	scenario := baseScenario()
	scenario.Target = "bogus"

	result := engine.Run(context.Background(), wf, scenario, nil)
	require.False(t, result.Completed)
	require.True(t, hasCode(result.Diags, "E2009"))
}

func TestRunBlockedBySafetyCheckWhenNoAdapterForActions(t *testing.T) {
	engine := NewEngine()
	wf := ir.New("m", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "stand", ParamType: ir.TypeString}}})

	scenario := baseScenario()
	scenario.HasRobotAdapter = false

	result := engine.Run(context.Background(), wf, scenario, nil)
	require.False(t, result.Completed)
	require.True(t, hasCode(result.Diags, "E2009"))
}

func TestRunExecutesActionSequenceAgainstAdapter(t *testing.T) {
	engine := NewEngine()
	wf := ir.New("m", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "stand", ParamType: ir.TypeString}}})
	wf.AddNode(ir.IRNode{ID: "b", SchemaID: "robot.stop", Kind: ir.KindStop})
	wf.AddEdge(ir.IREdge{FromNode: "a", FromPort: "flow_out", ToNode: "b", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	ad := &fakeAdapter{}
	result := engine.Run(context.Background(), wf, baseScenario(), ad)

	require.True(t, result.Completed)
	require.Equal(t, []string{"stand"}, ad.seenActions())
	require.True(t, ad.stopped)
	require.True(t, hasCode(result.Diags, "I4005"))
}

func TestRunIfElseFollowsComparisonResult(t *testing.T) {
	engine := NewEngine()
	wf := ir.New("m", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "cmp", SchemaID: "builtin.comparison", Kind: ir.KindComparison, Params: map[string]ir.IRParam{
		"input_expr":    {Name: "input_expr", Value: "1", ParamType: ir.TypeString},
		"compare_value": {Name: "compare_value", Value: "1", ParamType: ir.TypeString},
		"operator":      {Name: "operator", Value: "==", ParamType: ir.TypeString},
	}})
	wf.AddNode(ir.IRNode{ID: "ifnode", SchemaID: "logic.if", Kind: ir.KindLogic})
	wf.AddNode(ir.IRNode{ID: "onTrue", SchemaID: "robot.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "sit", ParamType: ir.TypeString}}})
	wf.AddNode(ir.IRNode{ID: "onFalse", SchemaID: "robot.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "stand", ParamType: ir.TypeString}}})
	wf.AddEdge(ir.IREdge{FromNode: "cmp", FromPort: "result", ToNode: "ifnode", ToPort: "condition", EdgeType: ir.EdgeData})
	wf.AddEdge(ir.IREdge{FromNode: "ifnode", FromPort: "out_if", ToNode: "onTrue", ToPort: "flow_in", EdgeType: ir.EdgeFlow})
	wf.AddEdge(ir.IREdge{FromNode: "ifnode", FromPort: "out_else", ToNode: "onFalse", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	ad := &fakeAdapter{}
	result := engine.Run(context.Background(), wf, baseScenario(), ad)

	require.True(t, result.Completed)
	require.Equal(t, []string{"sit"}, ad.seenActions())
}

func TestRunWhileLoopRespectsIterationCap(t *testing.T) {
	engine := NewEngine()
	wf := ir.New("m", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "loop", SchemaID: "logic.while_loop", Kind: ir.KindLogic, Params: map[string]ir.IRParam{
		"condition_expr": {Name: "condition_expr", Value: "True", ParamType: ir.TypeString},
		"loop_type":      {Name: "loop_type", Value: "while", ParamType: ir.TypeString},
	}})
	wf.AddNode(ir.IRNode{ID: "body", SchemaID: "robot.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "wave", ParamType: ir.TypeString}}})
	wf.AddEdge(ir.IREdge{FromNode: "loop", FromPort: "loop_body", ToNode: "body", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	scenario := baseScenario()
	scenario.SafetyPolicy.MaxLoopIterations = 3

	ad := &fakeAdapter{}
	result := engine.Run(context.Background(), wf, scenario, ad)

	require.True(t, result.Completed)
	require.Len(t, ad.seenActions(), 3)
	require.True(t, hasCode(result.Diags, "W3006"))
}

func TestRunCancellationStopsBeforeEntryNodes(t *testing.T) {
	engine := NewEngine()
	wf := ir.New("m", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "robot.stop", Kind: ir.KindStop})

	taskID := engine.Scheduler().Schedule()
	require.NoError(t, engine.Scheduler().Cancel(taskID))
	require.True(t, engine.Scheduler().StopRequested(taskID))

	ad := &fakeAdapter{}
	diags := newRunner(wf, baseScenario(), ad, engine.Scheduler(), NewMonitor(), taskID).Run(context.Background())
	require.False(t, ad.stopped)
	require.True(t, hasCode(diags, "I4006"))
}
