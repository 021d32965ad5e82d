package irtocanvas

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/ir"
)

func TestConvertActionAndStopRoundTrips(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", Kind: ir.KindAction, Params: map[string]ir.IRParam{
		"action": {Name: "action", Value: "stand", ParamType: ir.TypeString},
	}})
	wf.AddNode(ir.IRNode{ID: "b", Kind: ir.KindStop})
	wf.AddEdge(ir.IREdge{FromNode: "a", FromPort: "flow_out", ToNode: "b", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	graph, diags := Convert(wf)
	var sawInfo bool
	for _, d := range diags {
		if d.Code == "I4003" {
			sawInfo = true
		}
	}
	require.True(t, sawInfo)

	require.Len(t, graph.Nodes, 2)
	require.Equal(t, "Action Execution", graph.Nodes[0].DisplayName)
	require.Equal(t, "Stand", graph.Nodes[0].UISelection)
	require.Equal(t, "Stop", graph.Nodes[1].UISelection)
	require.Len(t, graph.Connections, 1)
	require.Equal(t, 0, graph.Connections[0].FromNode)
	require.Equal(t, 1, graph.Connections[0].ToNode)
}

func TestConvertTriggersAutoLayoutWhenPositionsMissing(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", Kind: ir.KindAction})
	graph, _ := Convert(wf)
	require.NotEqual(t, 0.0, graph.Nodes[0].Position.X)
}

func TestConvertOpaqueNodeEmitsWarning(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", Kind: ir.KindOpaque, OpaqueCode: "print('hi')"})
	_, diags := Convert(wf)
	var sawWarn bool
	for _, d := range diags {
		if d.Code == "W3002" {
			sawWarn = true
		}
	}
	require.True(t, sawWarn)
}
