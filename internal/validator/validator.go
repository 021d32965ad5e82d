// Package validator runs the semantic checks a compiled WorkflowIR must
// pass before code generation: schema existence, parameter types and
// constraints, dangling edges, and robot compatibility.
package validator

import (
	"fmt"
	"strconv"

	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/schema"
)

// Validate runs every check against wf and returns the diagnostics produced,
// appending a final informational summary only when no error-level
// diagnostic was raised.
func Validate(wf *ir.WorkflowIR, registry *schema.Registry) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic

	diags = append(diags, checkSchemasExist(wf, registry)...)
	diags = append(diags, checkParamTypes(wf, registry)...)
	diags = append(diags, checkParamConstraints(wf, registry)...)
	diags = append(diags, checkDanglingEdges(wf)...)
	diags = append(diags, checkRobotCompat(wf, registry)...)

	if !diagnostics.HasError(diags) {
		diags = append(diags, diagnostics.MakeInfo("I4001",
			fmt.Sprintf("Code generated: %d nodes, %d edges", len(wf.Nodes), len(wf.Edges))))
	}
	return diags
}

// checkSchemasExist reports E2001 for every node whose schema_id is unknown
// to the registry; opaque nodes are exempt since they never had a schema.
func checkSchemasExist(wf *ir.WorkflowIR, registry *schema.Registry) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, n := range wf.Nodes {
		if n.Kind == ir.KindOpaque {
			continue
		}
		if _, ok := registry.GetByID(n.SchemaID); !ok {
			diags = append(diags, diagnostics.MakeError("E2001",
				fmt.Sprintf("No schema found for node type '%s'", n.SchemaID),
				diagnostics.WithNodeID(n.ID)))
		}
	}
	return diags
}

// checkParamTypes reports E2008 when an int/float parameter cannot coerce
// from its stored value, and a warning when a bool parameter's value isn't
// actually a bool (lenient, since canvas-sourced data often stores strings).
func checkParamTypes(wf *ir.WorkflowIR, registry *schema.Registry) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, n := range wf.Nodes {
		s, ok := registry.GetByID(n.SchemaID)
		if !ok {
			continue
		}
		for _, paramSchema := range s.Parameters {
			p, hasValue := n.Params[paramSchema.Name]
			if !hasValue {
				continue
			}
			switch paramSchema.ParamType {
			case ir.TypeInt:
				if !coercesToInt(p.Value) {
					diags = append(diags, diagnostics.MakeError("E2008",
						fmt.Sprintf("Parameter '%s' on node '%s' could not be coerced to int: %v", paramSchema.Name, n.ID, p.Value),
						diagnostics.WithNodeID(n.ID)))
				}
			case ir.TypeFloat:
				if !coercesToFloat(p.Value) {
					diags = append(diags, diagnostics.MakeError("E2008",
						fmt.Sprintf("Parameter '%s' on node '%s' could not be coerced to float: %v", paramSchema.Name, n.ID, p.Value),
						diagnostics.WithNodeID(n.ID)))
				}
			case ir.TypeBool:
				if _, ok := p.Value.(bool); !ok {
					diags = append(diags, diagnostics.MakeWarning("E2008",
						fmt.Sprintf("Parameter '%s' on node '%s' expected bool, got %T", paramSchema.Name, n.ID, p.Value),
						diagnostics.WithNodeID(n.ID)))
				}
			}
		}
	}
	return diags
}

// checkParamConstraints reports E2004 for values outside a choices list and
// E2003 for values outside a numeric min/max range.
func checkParamConstraints(wf *ir.WorkflowIR, registry *schema.Registry) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, n := range wf.Nodes {
		s, ok := registry.GetByID(n.SchemaID)
		if !ok {
			continue
		}
		for _, paramSchema := range s.Parameters {
			if paramSchema.Constraints == nil {
				continue
			}
			p, hasValue := n.Params[paramSchema.Name]
			if !hasValue {
				continue
			}
			c := paramSchema.Constraints

			if len(c.Choices) > 0 {
				strVal := fmt.Sprintf("%v", p.Value)
				if !stringInSlice(strVal, c.Choices) {
					diags = append(diags, diagnostics.MakeError("E2004",
						fmt.Sprintf("Parameter '%s' on node '%s' has invalid value '%s' (allowed: %v)", paramSchema.Name, n.ID, strVal, c.Choices),
						diagnostics.WithNodeID(n.ID)))
				}
				continue
			}

			if c.MinValue != nil || c.MaxValue != nil {
				f, ok := toFloat(p.Value)
				if !ok {
					continue
				}
				if c.MinValue != nil && f < *c.MinValue {
					diags = append(diags, diagnostics.MakeError("E2003",
						fmt.Sprintf("Parameter '%s' on node '%s' value %v below minimum %v", paramSchema.Name, n.ID, p.Value, *c.MinValue),
						diagnostics.WithNodeID(n.ID)))
				}
				if c.MaxValue != nil && f > *c.MaxValue {
					diags = append(diags, diagnostics.MakeError("E2003",
						fmt.Sprintf("Parameter '%s' on node '%s' value %v above maximum %v", paramSchema.Name, n.ID, p.Value, *c.MaxValue),
						diagnostics.WithNodeID(n.ID)))
				}
			}
		}
	}
	return diags
}

// checkDanglingEdges reports E2005 for an edge referencing a node ID that
// does not exist in the graph, for EITHER the source or the target side —
// both directions use the same code, matching the actual compiler behavior
// rather than assigning a distinct code per direction.
func checkDanglingEdges(wf *ir.WorkflowIR) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, e := range wf.Edges {
		if _, ok := wf.GetNode(e.FromNode); !ok {
			diags = append(diags, diagnostics.MakeError("E2005",
				fmt.Sprintf("Dangling edge: source node '%s' not found", e.FromNode)))
		}
		if _, ok := wf.GetNode(e.ToNode); !ok {
			diags = append(diags, diagnostics.MakeError("E2005",
				fmt.Sprintf("Dangling edge: target node '%s' not found", e.ToNode)))
		}
	}
	return diags
}

// checkRobotCompat reports E2007 at warning level when a node's schema does
// not list the workflow's robot_type as compatible.
func checkRobotCompat(wf *ir.WorkflowIR, registry *schema.Registry) []diagnostics.Diagnostic {
	var diags []diagnostics.Diagnostic
	for _, n := range wf.Nodes {
		s, ok := registry.GetByID(n.SchemaID)
		if !ok || len(s.RobotCompat) == 0 {
			continue
		}
		if !stringInSlice(wf.RobotType, s.RobotCompat) {
			diags = append(diags, diagnostics.MakeWarning("E2007",
				fmt.Sprintf("Node '%s' is not listed as compatible with robot type '%s'", n.SchemaID, wf.RobotType),
				diagnostics.WithNodeID(n.ID)))
		}
	}
	return diags
}

func stringInSlice(s string, list []string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func coercesToInt(v any) bool {
	switch n := v.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.Atoi(n)
		return err == nil
	default:
		return false
	}
}

func coercesToFloat(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
