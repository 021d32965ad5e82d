// Package schema is the node-schema knowledge base: the set of node types
// the compiler understands, their ports, parameters, constraints, code
// generation template, and robot compatibility list.
package schema

import "github.com/unitport/compiler/internal/ir"

// ParamConstraint bounds a parameter's allowed values.
type ParamConstraint struct {
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Regex    string   `json:"regex,omitempty"`
}

// PortSchema describes a single named port on a node.
type PortSchema struct {
	Name        string          `json:"name"`
	Direction   ir.PortDirection `json:"direction"`
	DataType    ir.IRType       `json:"data_type"`
	Required    bool            `json:"required,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ParamSchema describes one configurable parameter.
type ParamSchema struct {
	Name        string           `json:"name"`
	ParamType   ir.IRType        `json:"param_type"`
	Default     any              `json:"default,omitempty"`
	Constraints *ParamConstraint `json:"constraints,omitempty"`
	Unit        string           `json:"unit,omitempty"`
	Description string           `json:"description,omitempty"`
}

// NodeSchema is the complete schema for one node type: ports, parameters,
// code generation template, robot compatibility, and safety metadata.
type NodeSchema struct {
	SchemaID     string          `json:"schema_id"`
	DisplayName  string          `json:"display_name"`
	NodeType     string          `json:"node_type"`
	Kind         ir.NodeKind     `json:"kind"`
	Ports        []PortSchema    `json:"ports,omitempty"`
	Parameters   []ParamSchema   `json:"parameters,omitempty"`
	CodeTemplate string          `json:"code_template,omitempty"`
	RobotCompat  []string        `json:"robot_compat,omitempty"`
	Safety       map[string]any  `json:"safety,omitempty"`
	Version      string          `json:"version"`
}

// GetInputPorts returns the subset of ports facing inward.
func (s *NodeSchema) GetInputPorts() []PortSchema {
	var out []PortSchema
	for _, p := range s.Ports {
		if p.Direction == ir.PortInput {
			out = append(out, p)
		}
	}
	return out
}

// GetOutputPorts returns the subset of ports facing outward.
func (s *NodeSchema) GetOutputPorts() []PortSchema {
	var out []PortSchema
	for _, p := range s.Ports {
		if p.Direction == ir.PortOutput {
			out = append(out, p)
		}
	}
	return out
}

// GetParameter looks up a named parameter schema.
func (s *NodeSchema) GetParameter(name string) (ParamSchema, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSchema{}, false
}

func floatPtr(f float64) *float64 { return &f }
