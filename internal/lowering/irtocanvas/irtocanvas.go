// Package irtocanvas converts a WorkflowIR back into canvas graph data
// suitable for loading into an editor scene — the inverse of
// internal/lowering/canvastoir. Auto-layout runs first whenever any node is
// missing a position.
package irtocanvas

import (
	"fmt"
	"strings"

	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/layout"
)

// CanvasNode mirrors the canvas node shape consumed by the editor.
type CanvasNode struct {
	ID             int      `json:"id"`
	Position       Pos      `json:"position"`
	DisplayName    string   `json:"display_name"`
	NodeType       string   `json:"node_type"`
	UISelection    string   `json:"ui_selection,omitempty"`
	ConditionExpr  string   `json:"condition_expr,omitempty"`
	ElifConditions []string `json:"elif_conditions,omitempty"`
	LoopType       string   `json:"loop_type,omitempty"`
	ForStart       string   `json:"for_start,omitempty"`
	ForEnd         string   `json:"for_end,omitempty"`
	ForStep        string   `json:"for_step,omitempty"`
	LeftValue      string   `json:"left_value,omitempty"`
	RightValue     string   `json:"right_value,omitempty"`
	Duration       string   `json:"duration,omitempty"`
	Name           string   `json:"name,omitempty"`
	InitialValue   any      `json:"initial_value,omitempty"`
	Code           string   `json:"code,omitempty"`
}

// Pos is a canvas node's 2D position.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CanvasConnection mirrors the canvas edge shape.
type CanvasConnection struct {
	FromNode int    `json:"from_node"`
	FromPort string `json:"from_port"`
	ToNode   int    `json:"to_node"`
	ToPort   string `json:"to_port"`
}

// CanvasGraph is the full graph-data payload handed to the editor.
type CanvasGraph struct {
	Nodes       []CanvasNode       `json:"nodes"`
	Connections []CanvasConnection `json:"connections"`
}

var actionIDToUI = map[string]string{
	"lift_right_leg": "Lift Right Leg", "stand": "Stand", "sit": "Sit", "walk": "Walk", "stop": "Stop",
}

var sensorIDToUI = map[string]string{
	"ultrasonic": "Read Ultrasonic", "infrared": "Read Infrared", "camera": "Read Camera",
	"imu": "Read IMU", "odometry": "Read Odometry",
}

var opToComparisonUI = map[string]string{
	"==": "Equal", "!=": "Not Equal", ">": "Greater Than", "<": "Less Than", ">=": "Greater Equal", "<=": "Less Equal",
}

var mathOpToUI = map[string]string{
	"add": "Add", "subtract": "Subtract", "multiply": "Multiply", "divide": "Divide",
	"power": "Power", "modulo": "Modulo", "min": "Min", "max": "Max", "abs": "Abs", "sum": "Sum", "average": "Average",
}

// Convert renders a WorkflowIR into canvas graph data, auto-laying-out any
// node lacking a position first.
func Convert(wf *ir.WorkflowIR) (CanvasGraph, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	needsLayout := false
	for _, n := range wf.Nodes {
		if n.UI == nil || (n.UI.X == 0 && n.UI.Y == 0) {
			needsLayout = true
			break
		}
	}
	if needsLayout {
		layout.Layout(wf)
	}

	var nodes []CanvasNode
	idMap := map[string]int{}
	for idx, n := range wf.Nodes {
		cn, nodeDiags := convertNode(n, idx)
		diags = append(diags, nodeDiags...)
		nodes = append(nodes, cn)
		idMap[n.ID] = idx
	}

	var connections []CanvasConnection
	for _, e := range wf.Edges {
		fromID, fromOK := idMap[e.FromNode]
		toID, toOK := idMap[e.ToNode]
		if fromOK && toOK {
			connections = append(connections, CanvasConnection{
				FromNode: fromID, FromPort: e.FromPort, ToNode: toID, ToPort: e.ToPort,
			})
		}
	}

	diags = append(diags, diagnostics.MakeInfo("I4003",
		fmt.Sprintf("IR to canvas: %d nodes, %d connections", len(nodes), len(connections))))

	return CanvasGraph{Nodes: nodes, Connections: connections}, diags
}

func convertNode(n ir.IRNode, canvasID int) (CanvasNode, []diagnostics.Diagnostic) {
	var diags []diagnostics.Diagnostic

	pos := Pos{X: 100, Y: 100}
	if n.UI != nil {
		pos = Pos{X: n.UI.X, Y: n.UI.Y}
	}

	cn := CanvasNode{ID: canvasID, Position: pos}

	switch {
	case n.Kind == ir.KindAction:
		action, _ := n.GetParamValue("action", "stand").(string)
		uiName, ok := actionIDToUI[action]
		if !ok {
			uiName = titleCase(strings.ReplaceAll(action, "_", " "))
		}
		cn.DisplayName, cn.NodeType, cn.UISelection = "Action Execution", "action_execution", uiName

	case n.Kind == ir.KindStop:
		cn.DisplayName, cn.NodeType, cn.UISelection = "Action Execution", "action_execution", "Stop"

	case n.Kind == ir.KindSensor:
		sensor, _ := n.GetParamValue("sensor_type", "imu").(string)
		uiName, ok := sensorIDToUI[sensor]
		if !ok {
			uiName = "Read " + titleCase(sensor)
		}
		cn.DisplayName, cn.NodeType, cn.UISelection = "Sensor Input", "sensor_input", uiName

	case n.Kind == ir.KindTimer:
		duration := n.GetParamValue("duration", 1.0)
		cn.DisplayName, cn.NodeType = "Timer", "timer"
		cn.Duration = fmt.Sprintf("%v", duration)

	case n.Kind == ir.KindLogic && n.SchemaID == "builtin.if":
		cond, _ := n.GetParamValue("condition_expr", "").(string)
		cn.DisplayName, cn.NodeType, cn.UISelection = "Logic Control", "if", "If"
		cn.ConditionExpr = cond
		if elifs, ok := n.GetParamValue("elif_conditions", nil).([]string); ok && len(elifs) > 0 {
			cn.ElifConditions = elifs
		}

	case n.Kind == ir.KindLogic && n.SchemaID == "builtin.while_loop":
		loopType, _ := n.GetParamValue("loop_type", "while").(string)
		cond, _ := n.GetParamValue("condition_expr", "").(string)
		cn.DisplayName, cn.NodeType, cn.UISelection = "Logic Control", "while_loop", "While Loop"
		cn.ConditionExpr = cond
		if loopType == "for" {
			cn.LoopType = "For"
			cn.ForStart = fmt.Sprintf("%v", n.GetParamValue("for_start", 0))
			cn.ForEnd = fmt.Sprintf("%v", n.GetParamValue("for_end", 10))
			cn.ForStep = fmt.Sprintf("%v", n.GetParamValue("for_step", 1))
		} else {
			cn.LoopType = "While"
		}

	case n.Kind == ir.KindComparison:
		operator, _ := n.GetParamValue("operator", "==").(string)
		uiName, ok := opToComparisonUI[operator]
		if !ok {
			uiName = "Equal"
		}
		cn.DisplayName, cn.NodeType, cn.UISelection = "Condition", "comparison", uiName
		cn.LeftValue, _ = n.GetParamValue("input_expr", "").(string)
		cn.RightValue, _ = n.GetParamValue("compare_value", "0").(string)

	case n.Kind == ir.KindMath:
		operation, _ := n.GetParamValue("operation", "add").(string)
		uiName, ok := mathOpToUI[operation]
		if !ok {
			uiName = titleCase(operation)
		}
		cn.DisplayName, cn.NodeType, cn.UISelection = "Math", "math", uiName

	case n.Kind == ir.KindVariable:
		cn.DisplayName, cn.NodeType = "Variable", "variable"
		cn.Name, _ = n.GetParamValue("name", "var").(string)
		cn.InitialValue = n.GetParamValue("initial_value", 0)

	case n.Kind == ir.KindOpaque:
		code := n.OpaqueCode
		if code == "" {
			code, _ = n.GetParamValue("code", "").(string)
		}
		cn.DisplayName, cn.NodeType, cn.Code = "Opaque Code", "opaque", code
		diags = append(diags, diagnostics.MakeWarning("W3002",
			"Opaque code block: cannot fully reconstruct canvas node", diagnostics.WithNodeID(n.ID)))

	default:
		cn.DisplayName = fmt.Sprintf("Unknown (%s)", n.SchemaID)
		cn.NodeType = "unknown"
		diags = append(diags, diagnostics.MakeWarning("W3003",
			fmt.Sprintf("Unknown node kind: %s", n.Kind), diagnostics.WithNodeID(n.ID)))
	}

	return cn, diags
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
