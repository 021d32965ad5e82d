package asttoir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/parser"
)

func TestLowerSimpleActionSequence(t *testing.T) {
	src := "RobotContext.run_action(\"stand\")\nRobotContext.stop()\n"
	mod, parseDiags := parser.Parse(src)
	require.Empty(t, parseDiags)

	wf, diags := Lower(mod, "go2")
	var infoSeen bool
	for _, d := range diags {
		if d.Code == "I4002" {
			infoSeen = true
		}
	}
	require.True(t, infoSeen)

	require.Len(t, wf.Nodes, 2)
	require.Equal(t, ir.KindAction, wf.Nodes[0].Kind)
	require.Equal(t, ir.KindStop, wf.Nodes[1].Kind)
	require.Len(t, wf.Edges, 1)
	require.Equal(t, "unitree", wf.Brand)
}

func TestLowerIfElifElse(t *testing.T) {
	src := "if x == 1:\n    robot.stop()\nelif x == 2:\n    robot.run_action(\"sit\")\nelse:\n    robot.run_action(\"stand\")\n"
	mod, _ := parser.Parse(src)
	wf, _ := Lower(mod, "go2")

	require.Len(t, wf.Nodes, 4) // if + 3 branch nodes
	ifNode := wf.Nodes[0]
	require.Equal(t, ir.KindLogic, ifNode.Kind)
	require.Equal(t, "x == 1", ifNode.GetParamValue("condition_expr", nil))

	var sawElifBranch, sawElseBranch bool
	for _, e := range wf.Edges {
		if e.FromPort == "out_elif_0" {
			sawElifBranch = true
		}
		if e.FromPort == "out_else" {
			sawElseBranch = true
		}
	}
	require.True(t, sawElifBranch)
	require.True(t, sawElseBranch)
}

func TestLowerUnknownCallBecomesOpaque(t *testing.T) {
	mod, _ := parser.Parse("os.system(\"rm -rf /\")\n")
	wf, diags := Lower(mod, "go2")
	require.Len(t, wf.Nodes, 1)
	require.Equal(t, ir.KindOpaque, wf.Nodes[0].Kind)

	var sawWarn bool
	for _, d := range diags {
		if d.Code == "W3002" {
			sawWarn = true
		}
	}
	require.True(t, sawWarn)
}

func TestLowerExecuteWorkflowFunctionPreferred(t *testing.T) {
	src := "def setup():\n    pass\ndef execute_workflow(robot):\n    RobotContext.stop()\n"
	mod, _ := parser.Parse(src)
	wf, _ := Lower(mod, "go2")
	require.Len(t, wf.Nodes, 1)
	require.Equal(t, ir.KindStop, wf.Nodes[0].Kind)
}

func TestLowerSkipsMainGuard(t *testing.T) {
	src := "RobotContext.stop()\nif __name__ == \"__main__\":\n    robot.run_action(\"stand\")\n"
	mod, _ := parser.Parse(src)
	wf, _ := Lower(mod, "go2")
	require.Len(t, wf.Nodes, 1)
	require.Equal(t, ir.KindStop, wf.Nodes[0].Kind)
}
