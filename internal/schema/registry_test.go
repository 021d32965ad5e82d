package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetByNodeTypeFindsAllBuiltins(t *testing.T) {
	r := Get()
	for _, nodeType := range []string{
		"action_execution", "stop", "sensor_input", "if", "while_loop",
		"comparison", "math", "timer", "variable", "opaque",
	} {
		s, ok := r.GetByNodeType(nodeType)
		require.True(t, ok, "missing builtin schema for %s", nodeType)
		require.Equal(t, nodeType, s.NodeType)
		require.True(t, strings.HasPrefix(s.SchemaID, "builtin."), "schema_id %q must use the builtin.* namespace", s.SchemaID)
	}
}

func TestIfAndWhileLoopShareLogicControlDisplayName(t *testing.T) {
	r := Get()
	ifSchema, ok := r.GetByNodeType("if")
	require.True(t, ok)
	require.Equal(t, "Logic Control", ifSchema.DisplayName)

	loopSchema, ok := r.GetByNodeType("while_loop")
	require.True(t, ok)
	require.Equal(t, "Logic Control", loopSchema.DisplayName)
}

func TestRegisterAddsCustomSchema(t *testing.T) {
	r := Get()
	custom := NodeSchema{SchemaID: "custom.greet", DisplayName: "Greet", NodeType: "greet", Version: "1.0"}
	r.Register(custom)
	got, ok := r.GetByID("custom.greet")
	require.True(t, ok)
	require.Equal(t, "greet", got.NodeType)
}

func TestGetParameterAndPortFilters(t *testing.T) {
	r := Get()
	action, ok := r.GetByNodeType("action_execution")
	require.True(t, ok)

	p, ok := action.GetParameter("action")
	require.True(t, ok)
	require.Equal(t, "stand", p.Default)

	require.Len(t, action.GetInputPorts(), 1)
	require.Len(t, action.GetOutputPorts(), 1)
}
