// Package codegen renders a WorkflowIR into executable Python source,
// recording a source map from IR node ID to generated line range.
package codegen

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/schema"
)

// SourceMap maps IR node IDs to the 1-based [start, end] line range they
// generated, for round-tripping diagnostics back onto canvas nodes.
type SourceMap struct {
	entries map[string][2]int
}

// NewSourceMap returns an empty source map.
func NewSourceMap() *SourceMap { return &SourceMap{entries: map[string][2]int{}} }

// Record stores the line range a node's generated code occupies.
func (m *SourceMap) Record(nodeID string, lineStart, lineEnd int) {
	m.entries[nodeID] = [2]int{lineStart, lineEnd}
}

// Get returns the recorded range for a node, if any.
func (m *SourceMap) Get(nodeID string) (start, end int, ok bool) {
	r, found := m.entries[nodeID]
	if !found {
		return 0, 0, false
	}
	return r[0], r[1], true
}

var mathOpSymbols = map[string]string{
	"add": "+", "subtract": "-", "multiply": "*", "divide": "/", "power": "**", "modulo": "%",
}

type edgeTarget struct {
	nodeID string
	port   string
}

// Generator holds the per-run state needed to walk the flow graph and emit
// code; create one per Generate call.
type Generator struct {
	wf        *ir.WorkflowIR
	registry  *schema.Registry
	diags     []diagnostics.Diagnostic
	sourceMap *SourceMap
	generated map[string]bool
	outgoing  map[string]map[string][]edgeTarget
	incoming  map[string]map[string][]edgeTarget
	lines     []string
}

// Generate renders wf into Python source, returning the code, the
// diagnostics accumulated, and a source map from node ID to line range.
func Generate(wf *ir.WorkflowIR, registry *schema.Registry) (string, []diagnostics.Diagnostic, *SourceMap) {
	g := &Generator{
		wf: wf, registry: registry,
		sourceMap: NewSourceMap(),
		generated: map[string]bool{},
		outgoing:  map[string]map[string][]edgeTarget{},
		incoming:  map[string]map[string][]edgeTarget{},
	}

	for _, n := range wf.Nodes {
		g.outgoing[n.ID] = map[string][]edgeTarget{}
		g.incoming[n.ID] = map[string][]edgeTarget{}
	}
	for _, e := range wf.Edges {
		g.outgoing[e.FromNode][e.FromPort] = append(g.outgoing[e.FromNode][e.FromPort], edgeTarget{e.ToNode, e.ToPort})
		g.incoming[e.ToNode][e.ToPort] = append(g.incoming[e.ToNode][e.ToPort], edgeTarget{e.FromNode, e.FromPort})
	}

	g.lines = []string{
		"#!/usr/bin/env python3",
		"# -*- coding: utf-8 -*-",
		`"""Auto-generated workflow code"""`,
		"",
		"import time",
		"from bin.core.robot_context import RobotContext",
		"",
		"",
		"def execute_workflow(robot=None):",
		"    '''Execute the visual workflow'''",
	}
	headerLen := len(g.lines)

	// Comparison nodes feeding an if's condition port are generated first.
	for _, n := range wf.Nodes {
		if n.Kind != ir.KindComparison {
			continue
		}
		for _, target := range g.outgoing[n.ID]["result"] {
			if target.port == "condition" {
				g.emitNode(n.ID, 1)
				g.lines = append(g.lines, "")
				break
			}
		}
	}

	entries := wf.GetEntryNodes()
	sort.SliceStable(entries, func(i, j int) bool {
		return entryX(entries[i]) < entryX(entries[j])
	})
	for _, entry := range entries {
		if !g.generated[entry.ID] {
			g.emitNode(entry.ID, 1)
			g.lines = append(g.lines, "")
		}
	}

	bodyHasContent := false
	for _, l := range g.lines[headerLen:] {
		if strings.TrimSpace(l) != "" {
			bodyHasContent = true
			break
		}
	}
	if !bodyHasContent {
		g.lines = append(g.lines, "    pass  # No connected workflow")
	}

	g.lines = append(g.lines,
		"",
		"if __name__ == '__main__':",
		"    # Initialize robot (simulation or real)",
		"    # from models import get_robot_model",
		"    # robot = get_robot_model('go2')",
		"    robot = None  # Replace with actual robot instance",
		"    execute_workflow(robot)",
	)

	g.diags = append(g.diags, diagnostics.MakeInfo("I4001",
		fmt.Sprintf("Code generated: %d nodes, %d edges", len(wf.Nodes), len(wf.Edges))))

	return strings.Join(g.lines, "\n"), g.diags, g.sourceMap
}

func entryX(n ir.IRNode) float64 {
	if n.UI == nil {
		return 0
	}
	return n.UI.X
}

// emitNode recursively generates code for a node and everything reachable
// via its flow_out, recording the line range it occupied in the source map.
func (g *Generator) emitNode(nodeID string, indent int) {
	if g.generated[nodeID] {
		return
	}
	node, ok := g.wf.GetNode(nodeID)
	if !ok {
		return
	}
	g.generated[nodeID] = true
	lineStart := len(g.lines) + 1
	indentStr := strings.Repeat("    ", indent)

	switch {
	case node.Kind == ir.KindLogic && node.SchemaID == "builtin.if":
		g.genIf(node, indent)
	case node.Kind == ir.KindLogic && node.SchemaID == "builtin.while_loop":
		if loopType, _ := node.GetParamValue("loop_type", "while").(string); loopType == "for" {
			g.genFor(node, indent)
		} else {
			g.genWhile(node, indent)
		}
	case node.Kind == ir.KindComparison:
		g.lines = append(g.lines, g.genComparison(node, indent)...)
	case node.Kind == ir.KindAction:
		action, _ := node.GetParamValue("action", "stand").(string)
		g.lines = append(g.lines, fmt.Sprintf("%sRobotContext.run_action('%s')", indentStr, action))
		g.followFlow(nodeID, "flow_out", indent)
	case node.Kind == ir.KindStop:
		g.lines = append(g.lines, indentStr+"RobotContext.stop()")
		g.followFlow(nodeID, "flow_out", indent)
	case node.Kind == ir.KindSensor:
		sensorType, _ := node.GetParamValue("sensor_type", "imu").(string)
		g.lines = append(g.lines,
			fmt.Sprintf("%s# Sensor read: %s", indentStr, sensorType),
			fmt.Sprintf("%ssensor_data = RobotContext.get_sensor_data()", indentStr))
		g.followFlow(nodeID, "flow_out", indent)
	case node.Kind == ir.KindTimer:
		duration := node.GetParamValue("duration", 1.0)
		unit, _ := node.GetParamValue("unit", "seconds").(string)
		if unit == "milliseconds" {
			g.lines = append(g.lines, fmt.Sprintf("%stime.sleep(%s / 1000)", indentStr, pyNumber(duration)))
		} else {
			g.lines = append(g.lines, fmt.Sprintf("%stime.sleep(%s)", indentStr, pyNumber(duration)))
		}
		g.followFlow(nodeID, "flow_out", indent)
	case node.Kind == ir.KindMath:
		g.lines = append(g.lines, g.genMath(node, indent)...)
		g.followFlow(nodeID, "flow_out", indent)
	case node.Kind == ir.KindVariable:
		name, _ := node.GetParamValue("name", "var").(string)
		value := node.GetParamValue("initial_value", 0)
		g.lines = append(g.lines, fmt.Sprintf("%s%s = %s", indentStr, name, pyRepr(value)))
		g.followFlow(nodeID, "flow_out", indent)
	case node.Kind == ir.KindOpaque:
		code := node.OpaqueCode
		if code == "" {
			code, _ = node.GetParamValue("code", "").(string)
		}
		if code != "" {
			g.lines = append(g.lines, indentStr+"# [opaque code block]")
			for _, codeLine := range strings.Split(code, "\n") {
				g.lines = append(g.lines, indentStr+codeLine)
			}
		}
		g.followFlow(nodeID, "flow_out", indent)
	default:
		s, hasSchema := g.registry.GetByID(node.SchemaID)
		if hasSchema && s.CodeTemplate != "" {
			template := s.CodeTemplate
			for pname, pparam := range node.Params {
				template = strings.ReplaceAll(template, "{"+pname+"}", fmt.Sprintf("%v", pparam.Value))
			}
			g.lines = append(g.lines, indentStr+template)
		} else {
			g.lines = append(g.lines, fmt.Sprintf("%s# Unknown node: %s", indentStr, node.SchemaID))
			g.diags = append(g.diags, diagnostics.MakeWarning("W3005",
				fmt.Sprintf("Unknown node type in code generation: %s", node.SchemaID), diagnostics.WithNodeID(node.ID)))
		}
		g.followFlow(nodeID, "flow_out", indent)
	}

	g.sourceMap.Record(nodeID, lineStart, len(g.lines))
}

func (g *Generator) followFlow(nodeID, port string, indent int) {
	for _, target := range g.outgoing[nodeID][port] {
		g.emitNode(target.nodeID, indent)
	}
}

func (g *Generator) genIf(node *ir.IRNode, indent int) {
	indentStr := strings.Repeat("    ", indent)
	condition := g.conditionText(node)
	g.lines = append(g.lines, fmt.Sprintf("%sif %s:", indentStr, condition))

	trueTargets := g.outgoing[node.ID]["out_if"]
	if len(trueTargets) > 0 {
		for _, t := range trueTargets {
			g.emitNode(t.nodeID, indent+1)
		}
	} else {
		g.lines = append(g.lines, indentStr+"    pass")
	}

	if elifConds, ok := node.GetParamValue("elif_conditions", nil).([]string); ok {
		for i, cond := range elifConds {
			cond = strings.TrimSpace(cond)
			if cond == "" {
				cond = "False"
			}
			g.lines = append(g.lines, fmt.Sprintf("%selif %s:", indentStr, cond))
			elifTargets := g.outgoing[node.ID][fmt.Sprintf("out_elif_%d", i)]
			if len(elifTargets) > 0 {
				for _, t := range elifTargets {
					g.emitNode(t.nodeID, indent+1)
				}
			} else {
				g.lines = append(g.lines, indentStr+"    pass")
			}
		}
	}

	falseTargets := g.outgoing[node.ID]["out_else"]
	if len(falseTargets) > 0 {
		g.lines = append(g.lines, indentStr+"else:")
		for _, t := range falseTargets {
			g.emitNode(t.nodeID, indent+1)
		}
	}
}

func (g *Generator) genWhile(node *ir.IRNode, indent int) {
	indentStr := strings.Repeat("    ", indent)
	condition := g.conditionText(node)
	g.lines = append(g.lines, fmt.Sprintf("%swhile %s:", indentStr, condition))

	bodyTargets := g.outgoing[node.ID]["loop_body"]
	if len(bodyTargets) > 0 {
		for _, t := range bodyTargets {
			g.emitNode(t.nodeID, indent+1)
		}
	} else {
		g.lines = append(g.lines, indentStr+"    pass")
	}
	for _, t := range g.outgoing[node.ID]["loop_end"] {
		g.emitNode(t.nodeID, indent)
	}
}

func (g *Generator) genFor(node *ir.IRNode, indent int) {
	indentStr := strings.Repeat("    ", indent)
	start := node.GetParamValue("for_start", 0)
	end := node.GetParamValue("for_end", 10)
	step := node.GetParamValue("for_step", 1)
	g.lines = append(g.lines, fmt.Sprintf("%sfor i in range(%s, %s, %s):", indentStr, pyNumber(start), pyNumber(end), pyNumber(step)))

	bodyTargets := g.outgoing[node.ID]["loop_body"]
	if len(bodyTargets) > 0 {
		for _, t := range bodyTargets {
			g.emitNode(t.nodeID, indent+1)
		}
	} else {
		g.lines = append(g.lines, indentStr+"    pass")
	}
	for _, t := range g.outgoing[node.ID]["loop_end"] {
		g.emitNode(t.nodeID, indent)
	}
}

func (g *Generator) genComparison(node *ir.IRNode, indent int) []string {
	indentStr := strings.Repeat("    ", indent)
	inputExpr, _ := node.GetParamValue("input_expr", "0").(string)
	if inputExpr == "" {
		inputExpr = "0"
	}
	compareValue := node.GetParamValue("compare_value", "0")
	operator, _ := node.GetParamValue("operator", "==").(string)
	outputName, _ := node.GetParamValue("output_name", fmt.Sprintf("condition_%s", node.ID)).(string)
	if outputName == "" {
		outputName = fmt.Sprintf("condition_%s", node.ID)
	}
	return []string{fmt.Sprintf("%s%s = %s %s %v", indentStr, outputName, inputExpr, operator, compareValue)}
}

func (g *Generator) genMath(node *ir.IRNode, indent int) []string {
	indentStr := strings.Repeat("    ", indent)
	operation, _ := node.GetParamValue("operation", "add").(string)
	valueA := node.GetParamValue("value_a", 0)
	valueB := node.GetParamValue("value_b", 0)

	if symbol, ok := mathOpSymbols[operation]; ok {
		return []string{fmt.Sprintf("%sresult = %v %s %v", indentStr, valueA, symbol, valueB)}
	}
	switch operation {
	case "abs":
		return []string{fmt.Sprintf("%sresult = abs(%v)", indentStr, valueA)}
	case "min":
		return []string{fmt.Sprintf("%sresult = min(%v, %v)", indentStr, valueA, valueB)}
	case "max":
		return []string{fmt.Sprintf("%sresult = max(%v, %v)", indentStr, valueA, valueB)}
	case "sum":
		return []string{indentStr + "result = sum(values)"}
	case "average":
		return []string{indentStr + "result = sum(values) / len(values)"}
	default:
		return []string{fmt.Sprintf("%s# Unknown math operation: %s", indentStr, operation)}
	}
}

// conditionText resolves the text used for an if/while's condition: a
// connected comparison node's output_name takes priority, then the node's
// own condition_expr parameter, then the literal "condition".
func (g *Generator) conditionText(node *ir.IRNode) string {
	for _, source := range g.incoming[node.ID]["condition"] {
		sourceNode, ok := g.wf.GetNode(source.nodeID)
		if ok && sourceNode.Kind == ir.KindComparison {
			if outputName, _ := sourceNode.GetParamValue("output_name", "").(string); outputName != "" {
				return outputName
			}
		}
	}
	if expr, _ := node.GetParamValue("condition_expr", "").(string); expr != "" {
		return expr
	}
	return "condition"
}

func pyRepr(v any) string {
	switch n := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(n, "'", "\\'") + "'"
	case bool:
		if n {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	default:
		return pyNumber(n)
	}
}

// pyNumber renders a numeric value the way Python's repr would: integral
// floats keep a trailing ".0" (so 2.0 round-trips as "2.0", not "2") while
// plain Go ints render without one.
func pyNumber(v any) string {
	switch n := v.(type) {
	case float64:
		if !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n) {
			return strconv.FormatFloat(n, 'f', 1, 64)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	case float32:
		return pyNumber(float64(n))
	default:
		return fmt.Sprintf("%v", n)
	}
}
