package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/ir"
)

func buildChain() *ir.WorkflowIR {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", Kind: ir.KindAction})
	wf.AddNode(ir.IRNode{ID: "b", Kind: ir.KindLogic})
	wf.AddNode(ir.IRNode{ID: "c", Kind: ir.KindAction})
	wf.AddEdge(ir.IREdge{FromNode: "a", FromPort: "flow_out", ToNode: "b", ToPort: "flow_in", EdgeType: ir.EdgeFlow})
	wf.AddEdge(ir.IREdge{FromNode: "b", FromPort: "out_if", ToNode: "c", ToPort: "flow_in", EdgeType: ir.EdgeFlow})
	return wf
}

func TestLayoutAssignsIncreasingX(t *testing.T) {
	wf := buildChain()
	Layout(wf)

	a, _ := wf.GetNode("a")
	b, _ := wf.GetNode("b")
	c, _ := wf.GetNode("c")
	require.NotNil(t, a.UI)
	require.NotNil(t, b.UI)
	require.NotNil(t, c.UI)
	require.Less(t, a.UI.X, b.UI.X)
	require.Less(t, b.UI.X, c.UI.X)
}

func TestLayoutUsesLogicSizeForLogicNodes(t *testing.T) {
	wf := buildChain()
	Layout(wf)
	b, _ := wf.GetNode("b")
	require.Equal(t, LogicWidth, b.UI.Width)
	require.Equal(t, LogicHeight, b.UI.Height)
}

func TestLayoutOnEmptyGraphDoesNothing(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	require.NotPanics(t, func() { Layout(wf) })
}

func TestLayoutSameLayerNodesCenteredVertically(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "x", Kind: ir.KindAction})
	wf.AddNode(ir.IRNode{ID: "y", Kind: ir.KindAction})
	Layout(wf)
	x, _ := wf.GetNode("x")
	y, _ := wf.GetNode("y")
	require.Equal(t, x.UI.X, y.UI.X)
	require.NotEqual(t, x.UI.Y, y.UI.Y)
}
