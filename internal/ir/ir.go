package ir

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// IRVersion is the only wire version this implementation accepts. The
// original program rejects any other value at deserialize time; we do the
// same rather than attempt forward/backward migration we have no spec for.
const IRVersion = "1.0"

// NodeKind is the closed set of node kinds a schema can declare.
type NodeKind string

const (
	KindAction     NodeKind = "action"
	KindSensor     NodeKind = "sensor"
	KindLogic      NodeKind = "logic"
	KindMath       NodeKind = "math"
	KindTimer      NodeKind = "timer"
	KindVariable   NodeKind = "variable"
	KindComparison NodeKind = "comparison"
	KindStop       NodeKind = "stop"
	KindCustom     NodeKind = "custom"
	KindOpaque     NodeKind = "opaque"
)

// ParseNodeKind maps a wire string to a NodeKind, defaulting to KindCustom
// for anything unrecognized so an older/newer schema file never blocks load.
func ParseNodeKind(s string) NodeKind {
	switch NodeKind(s) {
	case KindAction, KindSensor, KindLogic, KindMath, KindTimer, KindVariable,
		KindComparison, KindStop, KindCustom, KindOpaque:
		return NodeKind(s)
	default:
		return KindCustom
	}
}

// EdgeType distinguishes control-flow edges from data edges.
type EdgeType string

const (
	EdgeFlow EdgeType = "flow"
	EdgeData EdgeType = "data"
)

// FlowPorts is the fixed set of port names that carry control flow; any
// other port name carries data. Mirrors the original's _FLOW_PORTS table
// plus the out_elif_<i> family, matched by prefix below.
var FlowPorts = map[string]bool{
	"flow_in":   true,
	"flow_out":  true,
	"out_if":    true,
	"out_else":  true,
	"loop_body": true,
	"loop_end":  true,
}

// IRParam is a tagged-variant parameter value: a name, an untyped Go value
// (string/float64/bool/[]any/map[string]any after JSON round-trip), and a
// declared type tag used by the validator and normalizer for coercion.
type IRParam struct {
	Name      string `json:"name"`
	Value     any    `json:"value"`
	ParamType IRType `json:"param_type"`
}

// IRNodeUI is purely presentational; it is never part of semantic equality
// and the normalizer strips it entirely.
type IRNodeUI struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Collapsed bool    `json:"collapsed"`
}

// SourceSpan locates a node in generated or parsed source text.
type SourceSpan struct {
	LineStart int `json:"line_start"`
	LineEnd   int `json:"line_end"`
	ColStart  int `json:"col_start"`
	ColEnd    int `json:"col_end"`
}

// IRNode is one vertex of the workflow graph.
type IRNode struct {
	ID          string             `json:"id"`
	SchemaID    string             `json:"schema_id"`
	Kind        NodeKind           `json:"kind"`
	Params      map[string]IRParam `json:"params,omitempty"`
	UI          *IRNodeUI          `json:"ui,omitempty"`
	SourceSpan  *SourceSpan        `json:"source_span,omitempty"`
	OpaqueCode  string             `json:"opaque_code,omitempty"`
}

// NewID returns a short opaque token unique within a single IR, matching the
// original's new_id() role (a random short identifier, not a sequential
// counter — lowering stages that need sequential IDs assign "0","1",...
// themselves during the walk).
func NewID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// GetParamValue returns the value of a named parameter, or def if absent.
func (n *IRNode) GetParamValue(name string, def any) any {
	if n.Params == nil {
		return def
	}
	p, ok := n.Params[name]
	if !ok {
		return def
	}
	return p.Value
}

// SetParam sets (or replaces) a named parameter.
func (n *IRNode) SetParam(name string, value any, paramType IRType) {
	if n.Params == nil {
		n.Params = map[string]IRParam{}
	}
	n.Params[name] = IRParam{Name: name, Value: value, ParamType: paramType}
}

// IREdge connects a port on one node to a port on another.
type IREdge struct {
	FromNode string   `json:"from_node"`
	FromPort string   `json:"from_port"`
	ToNode   string   `json:"to_node"`
	ToPort   string   `json:"to_port"`
	EdgeType EdgeType `json:"edge_type"`
}

// IsFlow reports whether this edge carries control flow rather than data,
// matching the original's is_flow rule: either named port is in the fixed
// flow-port set, or the source port starts with "out_elif".
func (e IREdge) IsFlow() bool {
	if FlowPorts[e.FromPort] || FlowPorts[e.ToPort] {
		return true
	}
	return len(e.FromPort) >= len("out_elif") && e.FromPort[:len("out_elif")] == "out_elif"
}

// IRVariable declares a workflow-scoped variable with an initial value.
type IRVariable struct {
	Name         string `json:"name"`
	InitialValue any    `json:"initial_value"`
	ValueType    string `json:"value_type"`
}

// WorkflowIR is the canonical, serializable workflow graph.
type WorkflowIR struct {
	IRVersion string       `json:"ir_version"`
	Name      string       `json:"name"`
	RobotType string       `json:"robot_type"`
	Brand     string       `json:"brand"`
	Nodes     []IRNode     `json:"nodes"`
	Edges     []IREdge     `json:"edges"`
	Variables []IRVariable `json:"variables,omitempty"`
}

// New creates an empty WorkflowIR stamped with the current wire version.
func New(name, robotType, brand string) *WorkflowIR {
	return &WorkflowIR{
		IRVersion: IRVersion,
		Name:      name,
		RobotType: robotType,
		Brand:     brand,
	}
}

// AddNode appends a node to the IR.
func (w *WorkflowIR) AddNode(n IRNode) { w.Nodes = append(w.Nodes, n) }

// AddEdge appends an edge to the IR.
func (w *WorkflowIR) AddEdge(e IREdge) { w.Edges = append(w.Edges, e) }

// GetNode looks up a node by ID, or returns (nil, false).
func (w *WorkflowIR) GetNode(id string) (*IRNode, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// GetEntryNodes returns nodes with no incoming flow edge, excluding
// comparison nodes (which are data producers, never flow roots) — mirrors
// the original's get_entry_nodes, used by codegen and by the runtime
// runner to pick its starting nodes.
func (w *WorkflowIR) GetEntryNodes() []IRNode {
	targeted := map[string]bool{}
	for _, e := range w.Edges {
		if e.EdgeType == EdgeFlow {
			targeted[e.ToNode] = true
		}
	}
	var entries []IRNode
	for _, n := range w.Nodes {
		if n.Kind == KindComparison {
			continue
		}
		if targeted[n.ID] {
			continue
		}
		entries = append(entries, n)
	}
	return entries
}

// ToJSON serializes the IR to its wire format.
func (w *WorkflowIR) ToJSON() ([]byte, error) {
	return json.MarshalIndent(w, "", "  ")
}

// FromJSON deserializes the IR, rejecting any ir_version other than the one
// this implementation understands.
func FromJSON(data []byte) (*WorkflowIR, error) {
	var w WorkflowIR
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("ir: decode: %w", err)
	}
	if w.IRVersion != IRVersion {
		return nil, fmt.Errorf("ir: unsupported ir_version %q (want %q)", w.IRVersion, IRVersion)
	}
	return &w, nil
}
