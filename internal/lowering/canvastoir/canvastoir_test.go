package canvastoir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/ir"
)

func TestConvertActionAndStop(t *testing.T) {
	graph := CanvasGraph{
		Nodes: []CanvasNode{
			{ID: 1, DisplayName: "Action Execution", UISelection: "Stand", Position: CanvasPos{X: 10, Y: 20}},
			{ID: 2, DisplayName: "Stop", UISelection: "Stop"},
		},
		Connections: []CanvasConnection{
			{FromNode: 1, FromPort: "flow_out", ToNode: 2, ToPort: "flow_in"},
		},
	}

	wf, diags := Convert(graph, "go2")
	require.Empty(t, diags)
	require.Len(t, wf.Nodes, 2)
	require.Equal(t, ir.KindAction, wf.Nodes[0].Kind)
	require.Equal(t, "stand", wf.Nodes[0].GetParamValue("action", nil))
	require.Equal(t, ir.KindStop, wf.Nodes[1].Kind)
	require.Len(t, wf.Edges, 1)
	require.Equal(t, ir.EdgeFlow, wf.Edges[0].EdgeType)
}

func TestConvertStopDisguisedAsActionExecution(t *testing.T) {
	graph := CanvasGraph{Nodes: []CanvasNode{
		{ID: 1, DisplayName: "Action Execution", NodeType: "action_execution", UISelection: "Stop"},
	}}
	wf, _ := Convert(graph, "go2")
	require.Equal(t, ir.KindStop, wf.Nodes[0].Kind)
}

func TestConvertLogicControlDisambiguation(t *testing.T) {
	graph := CanvasGraph{Nodes: []CanvasNode{
		{ID: 1, DisplayName: "Logic Control", UISelection: "If"},
		{ID: 2, DisplayName: "Logic Control", UISelection: "While true"},
	}}
	wf, _ := Convert(graph, "go2")
	require.Equal(t, ir.KindLogic, wf.Nodes[0].Kind)
	require.Equal(t, ir.KindLogic, wf.Nodes[1].Kind)
	require.NotEqual(t, wf.Nodes[0].SchemaID, wf.Nodes[1].SchemaID)
	require.Equal(t, "builtin.if", wf.Nodes[0].SchemaID)
	require.Equal(t, "builtin.while_loop", wf.Nodes[1].SchemaID)
}

func TestConvertUnmappedEdgeIsSkippedWithWarning(t *testing.T) {
	graph := CanvasGraph{
		Nodes: []CanvasNode{{ID: 1, DisplayName: "Stop"}},
		Connections: []CanvasConnection{
			{FromNode: 1, ToNode: 99},
		},
	}
	wf, diags := Convert(graph, "go2")
	require.Empty(t, wf.Edges)
	require.Len(t, diags, 1)
	require.Equal(t, "W3001", diags[0].Code)
}
