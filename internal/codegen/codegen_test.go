package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/lowering/canvastoir"
	"github.com/unitport/compiler/internal/schema"
)

func TestGenerateSimpleActionSequence(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "0", SchemaID: "builtin.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "stand", ParamType: ir.TypeString}},
		UI:     &ir.IRNodeUI{X: 0}})
	wf.AddNode(ir.IRNode{ID: "1", SchemaID: "builtin.stop", Kind: ir.KindStop, UI: &ir.IRNodeUI{X: 100}})
	wf.AddEdge(ir.IREdge{FromNode: "0", FromPort: "flow_out", ToNode: "1", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	code, diags, sm := Generate(wf, schema.Get())
	require.Contains(t, code, "RobotContext.run_action('stand')")
	require.Contains(t, code, "RobotContext.stop()")
	require.Contains(t, code, "def execute_workflow(robot=None):")

	var sawInfo bool
	for _, d := range diags {
		if d.Code == "I4001" {
			sawInfo = true
		}
	}
	require.True(t, sawInfo)

	start, end, ok := sm.Get("0")
	require.True(t, ok)
	require.LessOrEqual(t, start, end)
}

func TestGenerateIfElseWithComparisonCondition(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "cmp", SchemaID: "builtin.comparison", Kind: ir.KindComparison, Params: map[string]ir.IRParam{
		"input_expr":    {Name: "input_expr", Value: "x", ParamType: ir.TypeString},
		"compare_value": {Name: "compare_value", Value: "1", ParamType: ir.TypeString},
		"operator":      {Name: "operator", Value: "==", ParamType: ir.TypeString},
		"output_name":   {Name: "output_name", Value: "cond_1", ParamType: ir.TypeString},
	}})
	wf.AddNode(ir.IRNode{ID: "ifnode", SchemaID: "builtin.if", Kind: ir.KindLogic, UI: &ir.IRNodeUI{X: 50}})
	wf.AddNode(ir.IRNode{ID: "act", SchemaID: "builtin.action_execution", Kind: ir.KindAction, Params: map[string]ir.IRParam{
		"action": {Name: "action", Value: "sit", ParamType: ir.TypeString},
	}})
	wf.AddEdge(ir.IREdge{FromNode: "cmp", FromPort: "result", ToNode: "ifnode", ToPort: "condition", EdgeType: ir.EdgeData})
	wf.AddEdge(ir.IREdge{FromNode: "ifnode", FromPort: "out_if", ToNode: "act", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	code, _, _ := Generate(wf, schema.Get())
	require.Contains(t, code, "cond_1 = x == 1")
	require.Contains(t, code, "if cond_1:")
	require.Contains(t, code, "RobotContext.run_action('sit')")
}

func TestGenerateEmptyWorkflowEmitsPass(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	code, _, _ := Generate(wf, schema.Get())
	require.Contains(t, code, "pass  # No connected workflow")
}

// TestCanvasToCodeIfElseWithTimer exercises the full canvas -> IR -> Python
// path: a comparison-gated if/else with a timer in the true branch. It is
// the regression test for the schema_id namespace break between
// canvastoir's registry-resolved ids and codegen's switch cases.
func TestCanvasToCodeIfElseWithTimer(t *testing.T) {
	graph := canvastoir.CanvasGraph{
		Nodes: []canvastoir.CanvasNode{
			{ID: 1, DisplayName: "Condition", UISelection: "Greater Than", LeftValue: "x", RightValue: "10"},
			{ID: 2, DisplayName: "Logic Control", UISelection: "If"},
			{ID: 3, DisplayName: "Timer", Duration: "2"},
			{ID: 4, DisplayName: "Action Execution", UISelection: "Stand"},
			{ID: 5, DisplayName: "Action Execution", UISelection: "Sit"},
		},
		Connections: []canvastoir.CanvasConnection{
			{FromNode: 1, FromPort: "result", ToNode: 2, ToPort: "condition"},
			{FromNode: 2, FromPort: "out_if", ToNode: 3, ToPort: "flow_in"},
			{FromNode: 3, FromPort: "flow_out", ToNode: 4, ToPort: "flow_in"},
			{FromNode: 2, FromPort: "out_else", ToNode: 5, ToPort: "flow_in"},
		},
	}

	wf, convDiags := canvastoir.Convert(graph, "go2")
	for _, d := range convDiags {
		require.NotEqual(t, "E2001", d.Code, "unexpected unresolved schema: %s", d.Message)
	}

	code, _, _ := Generate(wf, schema.Get())
	require.Contains(t, code, "if condition_1:")
	require.Contains(t, code, "time.sleep(2.0)")
	require.Contains(t, code, "RobotContext.run_action('stand')")
	require.Contains(t, code, "else:")
	require.Contains(t, code, "RobotContext.run_action('sit')")
}

func TestGenerateEntryNodesOrderedByX(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "right", SchemaID: "builtin.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "walk", ParamType: ir.TypeString}}, UI: &ir.IRNodeUI{X: 200}})
	wf.AddNode(ir.IRNode{ID: "left", SchemaID: "builtin.action_execution", Kind: ir.KindAction,
		Params: map[string]ir.IRParam{"action": {Name: "action", Value: "sit", ParamType: ir.TypeString}}, UI: &ir.IRNodeUI{X: 0}})

	code, _, _ := Generate(wf, schema.Get())
	require.Less(t, strings.Index(code, "'sit'"), strings.Index(code, "'walk'"))
}
