package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/schema"
)

func hasCode(diags []diagnostics.Diagnostic, code string) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestValidateCleanWorkflowEmitsOnlySummary(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "builtin.action_execution", Kind: ir.KindAction, Params: map[string]ir.IRParam{
		"action": {Name: "action", Value: "stand", ParamType: ir.TypeString},
	}})
	diags := Validate(wf, schema.Get())
	require.Len(t, diags, 1)
	require.Equal(t, "I4001", diags[0].Code)
}

func TestValidateUnknownSchemaEmitsE2001(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "unknown.mystery", Kind: ir.KindCustom})
	diags := Validate(wf, schema.Get())
	require.True(t, hasCode(diags, "E2001"))
}

func TestValidateInvalidChoiceEmitsE2004(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "builtin.action_execution", Kind: ir.KindAction, Params: map[string]ir.IRParam{
		"action": {Name: "action", Value: "fly", ParamType: ir.TypeString},
	}})
	diags := Validate(wf, schema.Get())
	require.True(t, hasCode(diags, "E2004"))
}

func TestValidateOutOfRangeEmitsE2003(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "builtin.timer", Kind: ir.KindTimer, Params: map[string]ir.IRParam{
		"duration": {Name: "duration", Value: 99999.0, ParamType: ir.TypeFloat},
	}})
	diags := Validate(wf, schema.Get())
	require.True(t, hasCode(diags, "E2003"))
}

func TestValidateDanglingEdgeBothDirectionsUseE2005(t *testing.T) {
	wf := ir.New("t", "go2", "unitree")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "builtin.stop", Kind: ir.KindStop})
	wf.AddEdge(ir.IREdge{FromNode: "missing_source", FromPort: "flow_out", ToNode: "a", ToPort: "flow_in", EdgeType: ir.EdgeFlow})
	wf.AddEdge(ir.IREdge{FromNode: "a", FromPort: "flow_out", ToNode: "missing_target", ToPort: "flow_in", EdgeType: ir.EdgeFlow})

	diags := Validate(wf, schema.Get())
	var count int
	for _, d := range diags {
		if d.Code == "E2005" {
			count++
		}
	}
	require.Equal(t, 2, count)
}

func TestValidateRobotIncompatEmitsE2007Warning(t *testing.T) {
	wf := ir.New("t", "unsupported_bot", "unknown")
	wf.AddNode(ir.IRNode{ID: "a", SchemaID: "builtin.stop", Kind: ir.KindStop})
	diags := Validate(wf, schema.Get())
	require.True(t, hasCode(diags, "E2007"))
	for _, d := range diags {
		if d.Code == "E2007" {
			require.Equal(t, diagnostics.LevelWarn, d.Level)
		}
	}
}
