// Package asttoir lowers a parsed DSL module into a WorkflowIR, recognizing
// a closed set of whitelisted call patterns and treating everything else as
// an opaque pass-through block.
package asttoir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/parser"
)

var brandByRobotType = map[string]string{
	"go2": "unitree", "a1": "unitree", "b1": "unitree", "b2": "unitree", "h1": "unitree",
}

func brandFor(robotType string) string {
	if b, ok := brandByRobotType[robotType]; ok {
		return b
	}
	return "unknown"
}

// Lowerer converts an AST Module to IR, one module instance per call since
// it carries per-run sequential-ID and diagnostic state.
type Lowerer struct {
	wf      *ir.WorkflowIR
	diags   []diagnostics.Diagnostic
	counter int
}

// Lower converts a parsed module to a WorkflowIR targeting the given robot.
func Lower(mod *parser.Module, robotType string) (*ir.WorkflowIR, []diagnostics.Diagnostic) {
	l := &Lowerer{wf: ir.New("", robotType, brandFor(robotType))}

	body := l.findWorkflowBody(mod)

	var prevID, prevPort string
	for _, stmt := range body {
		ids := l.convertStatement(stmt)
		if len(ids) > 0 && prevID != "" {
			l.wf.AddEdge(ir.IREdge{FromNode: prevID, FromPort: prevPort, ToNode: ids[0], ToPort: "flow_in", EdgeType: ir.EdgeFlow})
		}
		if len(ids) > 0 {
			prevID = ids[len(ids)-1]
			prevPort = "flow_out"
		}
	}

	l.diags = append(l.diags, diagnostics.MakeInfo("I4002",
		fmt.Sprintf("AST lowered: %d nodes, %d edges", len(l.wf.Nodes), len(l.wf.Edges))))
	return l.wf, l.diags
}

// findWorkflowBody prefers an execute_workflow function's body; otherwise it
// uses top-level statements, skipping imports, bare pass statements, other
// function defs, and an `if __name__ == "__main__":` guard.
func (l *Lowerer) findWorkflowBody(mod *parser.Module) []parser.Stmt {
	for _, stmt := range mod.Body {
		if fn, ok := stmt.(*parser.FuncDef); ok && fn.Name == "execute_workflow" {
			return fn.Body
		}
	}

	var body []parser.Stmt
	for _, stmt := range mod.Body {
		switch s := stmt.(type) {
		case *parser.Import, *parser.Comment, *parser.FuncDef, *parser.Pass:
			continue
		case *parser.If:
			if isMainGuard(s) {
				continue
			}
			body = append(body, s)
		default:
			body = append(body, s)
		}
	}
	return body
}

func isMainGuard(ifStmt *parser.If) bool {
	bin, ok := ifStmt.Test.(*parser.Binary)
	if !ok || bin.Op != "==" {
		return false
	}
	name, ok := bin.Left.(*parser.Name)
	return ok && name.Ident == "__name__"
}

func (l *Lowerer) nextID() string {
	id := strconv.Itoa(l.counter)
	l.counter++
	return id
}

func (l *Lowerer) convertStatement(stmt parser.Stmt) []string {
	switch s := stmt.(type) {
	case *parser.ExprStmt:
		if call, ok := s.Value.(*parser.Call); ok {
			return l.convertCall(call)
		}
		return nil
	case *parser.If:
		return l.convertIf(s)
	case *parser.While:
		return l.convertWhile(s)
	case *parser.ForRange:
		return l.convertFor(s)
	case *parser.Assign:
		return l.convertAssign(s)
	case *parser.OpaqueBlock:
		return l.convertOpaque(s.Code)
	case *parser.Pass, *parser.Comment, *parser.Import, *parser.Return, *parser.Break, *parser.Continue:
		return nil
	default:
		return l.convertOpaque(fmt.Sprintf("# unsupported: %T", stmt))
	}
}

func (l *Lowerer) convertCall(call *parser.Call) []string {
	funcName := funcName(call.Func)

	switch funcName {
	case "RobotContext.run_action":
		nid := l.nextID()
		action := extractStringArg(call.Args, 0, "stand")
		l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.action_execution", Kind: ir.KindAction,
			Params: map[string]ir.IRParam{"action": {Name: "action", Value: action, ParamType: ir.TypeString}}})
		return []string{nid}

	case "RobotContext.stop":
		nid := l.nextID()
		l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.stop", Kind: ir.KindStop})
		return []string{nid}

	case "RobotContext.get_sensor_data":
		nid := l.nextID()
		l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.sensor_input", Kind: ir.KindSensor,
			Params: map[string]ir.IRParam{"sensor_type": {Name: "sensor_type", Value: "imu", ParamType: ir.TypeString}}})
		return []string{nid}

	case "time.sleep":
		nid := l.nextID()
		duration := extractNumberArg(call.Args, 0, 1.0)
		l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.timer", Kind: ir.KindTimer, Params: map[string]ir.IRParam{
			"duration": {Name: "duration", Value: duration, ParamType: ir.TypeFloat},
			"unit":     {Name: "unit", Value: "seconds", ParamType: ir.TypeString},
		}})
		return []string{nid}

	default:
		nid := l.nextID()
		code := reconstructCall(call)
		l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.opaque", Kind: ir.KindOpaque, OpaqueCode: code})
		l.diags = append(l.diags, diagnostics.MakeWarning("W3002",
			fmt.Sprintf("Unknown function call '%s' wrapped as opaque block", funcName)))
		return []string{nid}
	}
}

func (l *Lowerer) convertIf(stmt *parser.If) []string {
	nid := l.nextID()
	condText := exprToString(stmt.Test)

	params := map[string]ir.IRParam{
		"condition_expr": {Name: "condition_expr", Value: condText, ParamType: ir.TypeString},
	}
	if len(stmt.Elif) > 0 {
		var elifConds []string
		for _, ec := range stmt.Elif {
			elifConds = append(elifConds, exprToString(ec.Test))
		}
		params["elif_conditions"] = ir.IRParam{Name: "elif_conditions", Value: elifConds, ParamType: ir.TypeString}
	}

	l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.if", Kind: ir.KindLogic, Params: params})

	l.convertBranch(stmt.Body, nid, "out_if")
	for i, ec := range stmt.Elif {
		l.convertBranch(ec.Body, nid, fmt.Sprintf("out_elif_%d", i))
	}
	if len(stmt.Else) > 0 {
		l.convertBranch(stmt.Else, nid, "out_else")
	}
	return []string{nid}
}

func (l *Lowerer) convertWhile(stmt *parser.While) []string {
	nid := l.nextID()
	condText := exprToString(stmt.Test)
	l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.while_loop", Kind: ir.KindLogic, Params: map[string]ir.IRParam{
		"loop_type":      {Name: "loop_type", Value: "while", ParamType: ir.TypeString},
		"condition_expr": {Name: "condition_expr", Value: condText, ParamType: ir.TypeString},
		"for_start":      {Name: "for_start", Value: 0, ParamType: ir.TypeInt},
		"for_end":        {Name: "for_end", Value: 10, ParamType: ir.TypeInt},
		"for_step":       {Name: "for_step", Value: 1, ParamType: ir.TypeInt},
	}})
	l.convertBranch(stmt.Body, nid, "loop_body")
	return []string{nid}
}

func (l *Lowerer) convertFor(stmt *parser.ForRange) []string {
	nid := l.nextID()
	start := extractIntLiteral(stmt.Start, 0)
	end := extractIntLiteral(stmt.End, 10)
	step := extractIntLiteral(stmt.Step, 1)
	l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.while_loop", Kind: ir.KindLogic, Params: map[string]ir.IRParam{
		"loop_type":      {Name: "loop_type", Value: "for", ParamType: ir.TypeString},
		"condition_expr": {Name: "condition_expr", Value: "", ParamType: ir.TypeString},
		"for_start":      {Name: "for_start", Value: start, ParamType: ir.TypeInt},
		"for_end":        {Name: "for_end", Value: end, ParamType: ir.TypeInt},
		"for_step":       {Name: "for_step", Value: step, ParamType: ir.TypeInt},
	}})
	l.convertBranch(stmt.Body, nid, "loop_body")
	return []string{nid}
}

var assignRecognizedCalls = map[string]bool{
	"RobotContext.get_sensor_data": true,
	"RobotContext.run_action":      true,
	"RobotContext.stop":            true,
	"time.sleep":                   true,
}

func (l *Lowerer) convertAssign(stmt *parser.Assign) []string {
	if call, ok := stmt.Value.(*parser.Call); ok {
		if assignRecognizedCalls[funcName(call.Func)] {
			return l.convertCall(call)
		}
	}

	nid := l.nextID()
	value := extractLiteralValue(stmt.Value, 0)
	l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.variable", Kind: ir.KindVariable, Params: map[string]ir.IRParam{
		"name":          {Name: "name", Value: stmt.Target, ParamType: ir.TypeString},
		"initial_value": {Name: "initial_value", Value: value, ParamType: ir.TypeAny},
	}})
	return []string{nid}
}

func (l *Lowerer) convertOpaque(code string) []string {
	nid := l.nextID()
	l.wf.AddNode(ir.IRNode{ID: nid, SchemaID: "builtin.opaque", Kind: ir.KindOpaque, OpaqueCode: code})
	return []string{nid}
}

// convertBranch converts a block of statements and wires the first into
// parentID:port, chaining the rest sequentially.
func (l *Lowerer) convertBranch(stmts []parser.Stmt, parentID, port string) {
	prevID, prevPort := parentID, port
	for _, stmt := range stmts {
		ids := l.convertStatement(stmt)
		if len(ids) == 0 {
			continue
		}
		l.wf.AddEdge(ir.IREdge{FromNode: prevID, FromPort: prevPort, ToNode: ids[0], ToPort: "flow_in", EdgeType: ir.EdgeFlow})
		prevID = ids[len(ids)-1]
		prevPort = "flow_out"
	}
}

func funcName(e parser.Expr) string {
	switch n := e.(type) {
	case *parser.Name:
		return n.Ident
	case *parser.Attribute:
		return funcName(n.Value) + "." + n.Attr
	default:
		return "unknown"
	}
}

func extractStringArg(args []parser.Expr, idx int, def string) string {
	if idx >= len(args) {
		return def
	}
	switch a := args[idx].(type) {
	case *parser.StringLit:
		return a.Value
	case *parser.Name:
		return a.Ident
	}
	return def
}

func extractNumberArg(args []parser.Expr, idx int, def float64) float64 {
	if idx >= len(args) {
		return def
	}
	if n, ok := args[idx].(*parser.NumberLit); ok {
		if f, err := strconv.ParseFloat(n.Raw, 64); err == nil {
			return f
		}
	}
	return def
}

func extractIntLiteral(e parser.Expr, def int) int {
	if n, ok := e.(*parser.NumberLit); ok {
		if i, err := strconv.Atoi(n.Raw); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(n.Raw, 64); err == nil {
			return int(f)
		}
	}
	return def
}

func extractLiteralValue(e parser.Expr, def any) any {
	switch n := e.(type) {
	case *parser.NumberLit:
		if n.IsFloat {
			if f, err := strconv.ParseFloat(n.Raw, 64); err == nil {
				return f
			}
			return def
		}
		if i, err := strconv.Atoi(n.Raw); err == nil {
			return i
		}
		return def
	case *parser.StringLit:
		return n.Value
	case *parser.BoolLit:
		return n.Value
	case *parser.Name:
		return n.Ident
	default:
		return def
	}
}

// exprToString renders an expression back to source text, used for
// condition_expr params so round-tripping preserves the original text.
func exprToString(e parser.Expr) string {
	switch n := e.(type) {
	case *parser.NumberLit:
		return n.Raw
	case *parser.StringLit:
		return strconv.Quote(n.Value)
	case *parser.BoolLit:
		if n.Value {
			return "True"
		}
		return "False"
	case *parser.NoneLit:
		return "None"
	case *parser.Name:
		return n.Ident
	case *parser.Attribute:
		return exprToString(n.Value) + "." + n.Attr
	case *parser.Binary:
		return fmt.Sprintf("%s %s %s", exprToString(n.Left), n.Op, exprToString(n.Right))
	case *parser.Unary:
		if n.Op == "not" {
			return "not " + exprToString(n.Operand)
		}
		return n.Op + exprToString(n.Operand)
	case *parser.Call:
		return reconstructCall(n)
	default:
		return "???"
	}
}

func reconstructCall(call *parser.Call) string {
	name := funcName(call.Func)
	args := make([]string, len(call.Args))
	for i, a := range call.Args {
		args[i] = exprToString(a)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}
