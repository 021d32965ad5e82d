package schema

import (
	"sync"

	"github.com/unitport/compiler/internal/ir"
)

// Registry is the lazily-built node schema directory. It is populated once
// with the builtin schema set on first use; Register adds or replaces
// schemas at any time, loading the builtin set first if needed.
type Registry struct {
	mu         sync.RWMutex
	once       sync.Once
	byID       map[string]*NodeSchema
	byNodeType map[string]*NodeSchema
	byDisplay  map[string]*NodeSchema
}

var defaultRegistry = &Registry{}

// Get returns the shared process-wide registry, initializing it with the
// builtin schema set on first use.
func Get() *Registry {
	defaultRegistry.ensureLoaded()
	return defaultRegistry
}

func (r *Registry) ensureLoaded() {
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.byID = map[string]*NodeSchema{}
		r.byNodeType = map[string]*NodeSchema{}
		r.byDisplay = map[string]*NodeSchema{}
		for _, s := range builtinSchemas() {
			s := s
			r.byID[s.SchemaID] = &s
			r.byNodeType[s.NodeType] = &s
			r.byDisplay[s.DisplayName] = &s
		}
	})
}

// GetByID looks up a schema by its stable schema_id.
func (r *Registry) GetByID(id string) (*NodeSchema, bool) {
	r.ensureLoaded()
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// GetByNodeType looks up a schema by its node_type string (e.g. "action_execution").
func (r *Registry) GetByNodeType(nodeType string) (*NodeSchema, bool) {
	r.ensureLoaded()
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byNodeType[nodeType]
	return s, ok
}

// GetByDisplayName looks up a schema by its canvas display name.
func (r *Registry) GetByDisplayName(displayName string) (*NodeSchema, bool) {
	r.ensureLoaded()
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byDisplay[displayName]
	return s, ok
}

// ListSchemaIDs returns every registered schema_id.
func (r *Registry) ListSchemaIDs() []string {
	r.ensureLoaded()
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// Register adds or replaces a schema, for callers extending the builtin set
// with robot- or deployment-specific node types.
func (r *Registry) Register(s NodeSchema) {
	r.ensureLoaded()
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := s
	r.byID[s.SchemaID] = &cp
	r.byNodeType[s.NodeType] = &cp
	r.byDisplay[s.DisplayName] = &cp
}

// Reset clears the registry back to an unloaded state, for test isolation.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.byID, r.byNodeType, r.byDisplay = nil, nil, nil
	r.mu.Unlock()
	r.once = sync.Once{}
}

func mathOperations() []string {
	return []string{"add", "subtract", "multiply", "divide", "power", "modulo", "min", "max", "abs", "sum", "average"}
}

func comparisonOperators() []string {
	return []string{"==", "!=", ">", "<", ">=", "<="}
}

// builtinSchemas authors the concrete schema set for every node kind the
// canvas/AST lowering stages and the code generator recognize. No schema
// data files ship with the toolchain; this is the single source of truth
// for port/parameter/robot-compatibility metadata.
func builtinSchemas() []NodeSchema {
	unitreeCompat := []string{"go2", "a1", "b1", "b2", "h1"}

	return []NodeSchema{
		{
			SchemaID: "builtin.action_execution", DisplayName: "Action Execution",
			NodeType: "action_execution", Kind: ir.KindAction, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "flow_out", Direction: ir.PortOutput, DataType: ir.TypeVoid},
			},
			Parameters: []ParamSchema{
				{Name: "action", ParamType: ir.TypeString, Default: "stand",
					Constraints: &ParamConstraint{Choices: []string{"lift_right_leg", "stand", "sit", "walk", "stop"}},
					Description: "robot action identifier"},
			},
			CodeTemplate: "robot.run_action(\"{action}\")",
			RobotCompat:  unitreeCompat,
		},
		{
			SchemaID: "builtin.stop", DisplayName: "Stop",
			NodeType: "stop", Kind: ir.KindStop, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
			},
			CodeTemplate: "robot.stop()",
			RobotCompat:  unitreeCompat,
		},
		{
			SchemaID: "builtin.sensor_input", DisplayName: "Sensor Input",
			NodeType: "sensor_input", Kind: ir.KindSensor, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "flow_out", Direction: ir.PortOutput, DataType: ir.TypeVoid},
				{Name: "value", Direction: ir.PortOutput, DataType: ir.TypeAny},
			},
			Parameters: []ParamSchema{
				{Name: "sensor_type", ParamType: ir.TypeString, Default: "imu",
					Constraints: &ParamConstraint{Choices: []string{"ultrasonic", "infrared", "camera", "imu", "odometry"}}},
			},
			CodeTemplate: "{output} = robot.get_sensor_data(\"{sensor_type}\")",
			RobotCompat:  unitreeCompat,
		},
		{
			SchemaID: "builtin.if", DisplayName: "Logic Control",
			NodeType: "if", Kind: ir.KindLogic, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "condition", Direction: ir.PortInput, DataType: ir.TypeBool},
				{Name: "out_if", Direction: ir.PortOutput, DataType: ir.TypeVoid},
				{Name: "out_else", Direction: ir.PortOutput, DataType: ir.TypeVoid},
			},
			Parameters: []ParamSchema{
				{Name: "condition_expr", ParamType: ir.TypeString, Default: ""},
			},
			RobotCompat: unitreeCompat,
		},
		{
			SchemaID: "builtin.while_loop", DisplayName: "Logic Control",
			NodeType: "while_loop", Kind: ir.KindLogic, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "loop_body", Direction: ir.PortOutput, DataType: ir.TypeVoid},
				{Name: "loop_end", Direction: ir.PortOutput, DataType: ir.TypeVoid},
			},
			Parameters: []ParamSchema{
				{Name: "loop_type", ParamType: ir.TypeString, Default: "while",
					Constraints: &ParamConstraint{Choices: []string{"while", "for"}}},
				{Name: "condition_expr", ParamType: ir.TypeString, Default: ""},
				{Name: "for_start", ParamType: ir.TypeInt, Default: 0},
				{Name: "for_end", ParamType: ir.TypeInt, Default: 10},
				{Name: "for_step", ParamType: ir.TypeInt, Default: 1},
			},
			RobotCompat: unitreeCompat,
		},
		{
			SchemaID: "builtin.comparison", DisplayName: "Condition",
			NodeType: "comparison", Kind: ir.KindComparison, Version: "1.0",
			Ports: []PortSchema{
				{Name: "result", Direction: ir.PortOutput, DataType: ir.TypeBool},
			},
			Parameters: []ParamSchema{
				{Name: "operator", ParamType: ir.TypeString, Default: "==",
					Constraints: &ParamConstraint{Choices: comparisonOperators()}},
				{Name: "input_expr", ParamType: ir.TypeString, Default: ""},
				{Name: "compare_value", ParamType: ir.TypeString, Default: "0"},
				{Name: "output_name", ParamType: ir.TypeString, Default: ""},
			},
			RobotCompat: unitreeCompat,
		},
		{
			SchemaID: "builtin.math", DisplayName: "Math",
			NodeType: "math", Kind: ir.KindMath, Version: "1.0",
			Ports: []PortSchema{
				{Name: "result", Direction: ir.PortOutput, DataType: ir.TypeFloat},
			},
			Parameters: []ParamSchema{
				{Name: "operation", ParamType: ir.TypeString, Default: "add",
					Constraints: &ParamConstraint{Choices: mathOperations()}},
			},
			RobotCompat: unitreeCompat,
		},
		{
			SchemaID: "builtin.timer", DisplayName: "Timer",
			NodeType: "timer", Kind: ir.KindTimer, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "flow_out", Direction: ir.PortOutput, DataType: ir.TypeVoid},
			},
			Parameters: []ParamSchema{
				{Name: "duration", ParamType: ir.TypeFloat, Default: 1.0,
					Constraints: &ParamConstraint{MinValue: floatPtr(0), MaxValue: floatPtr(3600)}, Unit: "seconds"},
				{Name: "unit", ParamType: ir.TypeString, Default: "seconds"},
			},
			CodeTemplate: "time.sleep({duration})",
			RobotCompat:  unitreeCompat,
		},
		{
			SchemaID: "builtin.variable", DisplayName: "Variable",
			NodeType: "variable", Kind: ir.KindVariable, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "flow_out", Direction: ir.PortOutput, DataType: ir.TypeVoid},
			},
			Parameters: []ParamSchema{
				{Name: "name", ParamType: ir.TypeString, Default: "var"},
				{Name: "initial_value", ParamType: ir.TypeAny, Default: 0},
			},
			CodeTemplate: "{name} = {initial_value}",
			RobotCompat:  unitreeCompat,
		},
		{
			SchemaID: "builtin.opaque", DisplayName: "Opaque Code",
			NodeType: "opaque", Kind: ir.KindOpaque, Version: "1.0",
			Ports: []PortSchema{
				{Name: "flow_in", Direction: ir.PortInput, DataType: ir.TypeVoid, Required: true},
				{Name: "flow_out", Direction: ir.PortOutput, DataType: ir.TypeVoid},
			},
			RobotCompat: unitreeCompat,
		},
	}
}
