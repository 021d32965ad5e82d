// Package canvastoir converts GraphScene-exported canvas data into a
// WorkflowIR, the inverse of internal/lowering/irtocanvas.
package canvastoir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/schema"
)

// CanvasNode is one node entry from the canvas export format.
type CanvasNode struct {
	ID             int            `json:"id"`
	DisplayName    string         `json:"display_name"`
	NodeType       string         `json:"node_type"`
	UISelection    string         `json:"ui_selection"`
	Position       CanvasPos      `json:"position"`
	Width          float64        `json:"width"`
	Height         float64        `json:"height"`
	ConditionExpr  string         `json:"condition_expr"`
	ElifConditions []string       `json:"elif_conditions"`
	LoopType       string         `json:"loop_type"`
	ForStart       string         `json:"for_start"`
	ForEnd         string         `json:"for_end"`
	ForStep        string         `json:"for_step"`
	LeftValue      string         `json:"left_value"`
	RightValue     string         `json:"right_value"`
	Duration       string         `json:"duration"`
	Name           string         `json:"name"`
	InitialValue   any            `json:"initial_value"`
	Extra          map[string]any `json:"-"`
}

// CanvasPos is a canvas node's 2D position.
type CanvasPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CanvasConnection is one edge entry from the canvas export format.
type CanvasConnection struct {
	FromNode int    `json:"from_node"`
	FromPort string `json:"from_port"`
	ToNode   int    `json:"to_node"`
	ToPort   string `json:"to_port"`
}

// CanvasGraph is the full GraphScene export payload.
type CanvasGraph struct {
	Nodes       []CanvasNode       `json:"nodes"`
	Connections []CanvasConnection `json:"connections"`
}

var displayNameToNodeType = map[string]string{
	"Action Execution": "action_execution",
	"Sensor Input":     "sensor_input",
	"Logic Control":    "if",
	"Condition":        "comparison",
	"Math":             "math",
	"Timer":            "timer",
	"Variable":         "variable",
	"Stop":             "stop",
}

var actionUIToID = map[string]string{
	"Lift Right Leg": "lift_right_leg",
	"Stand":          "stand",
	"Sit":            "sit",
	"Walk":           "walk",
	"Stop":           "stop",
}

var sensorUIToID = map[string]string{
	"Read Ultrasonic": "ultrasonic",
	"Read Infrared":   "infrared",
	"Read Camera":     "camera",
	"Read IMU":        "imu",
	"Read Odometry":   "odometry",
}

var comparisonUIToOp = map[string]string{
	"Equal": "==", "Not Equal": "!=", "Greater Than": ">",
	"Less Than": "<", "Greater Equal": ">=", "Less Equal": "<=",
}

var mathUIToOp = map[string]string{
	"Add": "add", "Subtract": "subtract", "Multiply": "multiply",
	"Divide": "divide", "Power": "power", "Modulo": "modulo",
	"Min": "min", "Max": "max", "Abs": "abs", "Sum": "sum", "Average": "average",
}

var brandByRobotType = map[string]string{
	"go2": "unitree", "a1": "unitree", "b1": "unitree", "b2": "unitree", "h1": "unitree",
}

func brandFor(robotType string) string {
	if b, ok := brandByRobotType[robotType]; ok {
		return b
	}
	return "unknown"
}

// Convert lowers canvas-exported graph data to a WorkflowIR.
func Convert(graph CanvasGraph, robotType string) (*ir.WorkflowIR, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic
	wf := ir.New("", robotType, brandFor(robotType))

	idMap := map[int]string{}
	for _, nodeData := range graph.Nodes {
		node, nodeDiags := convertNode(nodeData)
		diags = append(diags, nodeDiags...)
		wf.AddNode(node)
		idMap[nodeData.ID] = node.ID
	}

	for _, conn := range graph.Connections {
		edge, edgeDiags, ok := convertEdge(conn, idMap)
		diags = append(diags, edgeDiags...)
		if ok {
			wf.AddEdge(edge)
		}
	}

	return wf, diags
}

func convertNode(data CanvasNode) (ir.IRNode, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic
	nodeID := strconv.Itoa(data.ID)
	if nodeID == "0" {
		nodeID = ir.NewID()
	}

	nodeType := data.NodeType
	if nodeType == "" || nodeType == "unknown" {
		nodeType = displayNameToNodeType[data.DisplayName]
		if nodeType == "" {
			nodeType = "unknown"
		}
	}

	if strings.Contains(data.DisplayName, "Logic Control") {
		sel := strings.ToLower(data.UISelection)
		if strings.HasPrefix(sel, "while") || strings.HasPrefix(sel, "for") {
			nodeType = "while_loop"
		} else {
			nodeType = "if"
		}
	}

	if nodeType == "action_execution" && data.UISelection == "Stop" {
		nodeType = "stop"
	}

	var schemaID string
	var kind ir.NodeKind
	if s, ok := schema.Get().GetByNodeType(nodeType); ok {
		schemaID = s.SchemaID
		kind = s.Kind
	} else {
		diags = append(diags, diagnostics.MakeError("E2001",
			fmt.Sprintf("No schema found for node type '%s' (display: '%s')", nodeType, data.DisplayName),
			diagnostics.WithNodeID(nodeID)))
		schemaID = "unknown." + nodeType
		kind = ir.KindCustom
	}

	params := extractParams(data, nodeType)

	ui := &ir.IRNodeUI{
		X:      data.Position.X,
		Y:      data.Position.Y,
		Width:  defaultFloat(data.Width, 180),
		Height: defaultFloat(data.Height, 110),
	}

	return ir.IRNode{ID: nodeID, SchemaID: schemaID, Kind: kind, Params: params, UI: ui}, diags
}

func defaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func extractParams(data CanvasNode, nodeType string) map[string]ir.IRParam {
	params := map[string]ir.IRParam{}

	switch nodeType {
	case "action_execution":
		action, ok := actionUIToID[data.UISelection]
		if !ok {
			action = strings.ReplaceAll(strings.ToLower(data.UISelection), " ", "_")
		}
		params["action"] = ir.IRParam{Name: "action", Value: action, ParamType: ir.TypeString}

	case "stop":
		// no parameters

	case "sensor_input":
		sensor, ok := sensorUIToID[data.UISelection]
		if !ok {
			sensor = "imu"
		}
		params["sensor_type"] = ir.IRParam{Name: "sensor_type", Value: sensor, ParamType: ir.TypeString}

	case "if":
		params["condition_expr"] = ir.IRParam{Name: "condition_expr", Value: data.ConditionExpr, ParamType: ir.TypeString}
		if len(data.ElifConditions) > 0 {
			params["elif_conditions"] = ir.IRParam{Name: "elif_conditions", Value: data.ElifConditions, ParamType: ir.TypeString}
		}

	case "while_loop":
		loopType := strings.ToLower(data.LoopType)
		if loopType == "" {
			loopType = "while"
		}
		params["loop_type"] = ir.IRParam{Name: "loop_type", Value: loopType, ParamType: ir.TypeString}
		params["condition_expr"] = ir.IRParam{Name: "condition_expr", Value: data.ConditionExpr, ParamType: ir.TypeString}
		params["for_start"] = ir.IRParam{Name: "for_start", Value: safeInt(data.ForStart, 0), ParamType: ir.TypeInt}
		params["for_end"] = ir.IRParam{Name: "for_end", Value: safeInt(data.ForEnd, 10), ParamType: ir.TypeInt}
		params["for_step"] = ir.IRParam{Name: "for_step", Value: safeInt(data.ForStep, 1), ParamType: ir.TypeInt}

	case "comparison":
		operator, ok := comparisonUIToOp[data.UISelection]
		if !ok {
			operator = "=="
		}
		params["operator"] = ir.IRParam{Name: "operator", Value: operator, ParamType: ir.TypeString}
		params["input_expr"] = ir.IRParam{Name: "input_expr", Value: data.LeftValue, ParamType: ir.TypeString}
		compareValue := data.RightValue
		if compareValue == "" {
			compareValue = "0"
		}
		params["compare_value"] = ir.IRParam{Name: "compare_value", Value: compareValue, ParamType: ir.TypeString}
		params["output_name"] = ir.IRParam{Name: "output_name", Value: fmt.Sprintf("condition_%d", data.ID), ParamType: ir.TypeString}

	case "math":
		operation, ok := mathUIToOp[data.UISelection]
		if !ok {
			operation = "add"
		}
		params["operation"] = ir.IRParam{Name: "operation", Value: operation, ParamType: ir.TypeString}

	case "timer":
		duration := 1.0
		if data.Duration != "" {
			if f, err := strconv.ParseFloat(data.Duration, 64); err == nil {
				duration = f
			}
		}
		params["duration"] = ir.IRParam{Name: "duration", Value: duration, ParamType: ir.TypeFloat}
		params["unit"] = ir.IRParam{Name: "unit", Value: "seconds", ParamType: ir.TypeString}

	case "variable":
		name := data.Name
		if name == "" {
			name = "var"
		}
		initial := data.InitialValue
		if initial == nil {
			initial = 0
		}
		params["name"] = ir.IRParam{Name: "name", Value: name, ParamType: ir.TypeString}
		params["initial_value"] = ir.IRParam{Name: "initial_value", Value: initial, ParamType: ir.TypeAny}
	}

	return params
}

func safeInt(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}

func convertEdge(conn CanvasConnection, idMap map[int]string) (ir.IREdge, []diagnostics.Diagnostic, bool) {
	fromID, fromOK := idMap[conn.FromNode]
	toID, toOK := idMap[conn.ToNode]
	if !fromOK || !toOK {
		d := diagnostics.MakeWarning("W3001",
			fmt.Sprintf("Skipping edge with unmapped node ID: %d -> %d", conn.FromNode, conn.ToNode))
		return ir.IREdge{}, []diagnostics.Diagnostic{d}, false
	}

	fromPort := conn.FromPort
	if fromPort == "" {
		fromPort = "flow_out"
	}
	toPort := conn.ToPort
	if toPort == "" {
		toPort = "flow_in"
	}

	edge := ir.IREdge{FromNode: fromID, FromPort: fromPort, ToNode: toID, ToPort: toPort}
	if edge.IsFlow() {
		edge.EdgeType = ir.EdgeFlow
	} else {
		edge.EdgeType = ir.EdgeData
	}
	return edge, nil, true
}
