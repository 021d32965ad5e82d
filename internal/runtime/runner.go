package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/unitport/compiler/internal/adapter"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
)

type edgeTarget struct {
	nodeID string
	port   string
}

// Runner walks a mission's node graph with DFS, evaluating logic nodes'
// conditions and re-entering loop bodies by clearing their executed set on
// every iteration, per the cooperative single-threaded execution model.
type Runner struct {
	wf        *ir.WorkflowIR
	scenario  Scenario
	adapter   adapter.RobotAdapter
	evaluator *ConditionEvaluator
	scheduler *Scheduler
	monitor   *Monitor
	taskID    string

	outgoing map[string]map[string][]edgeTarget
	incoming map[string][]edgeTarget // by target node ID, regardless of port

	results  map[string]any // result_<nodeID>_<key> -> value, flattened
	executed map[string]bool

	diags []diagnostics.Diagnostic
}

func newRunner(wf *ir.WorkflowIR, scenario Scenario, ad adapter.RobotAdapter, scheduler *Scheduler, monitor *Monitor, taskID string) *Runner {
	r := &Runner{
		wf:        wf,
		scenario:  scenario,
		adapter:   ad,
		evaluator: NewConditionEvaluator(),
		scheduler: scheduler,
		monitor:   monitor,
		taskID:    taskID,
		outgoing:  map[string]map[string][]edgeTarget{},
		incoming:  map[string][]edgeTarget{},
		results:   map[string]any{},
		executed:  map[string]bool{},
	}
	for _, e := range wf.Edges {
		if r.outgoing[e.FromNode] == nil {
			r.outgoing[e.FromNode] = map[string][]edgeTarget{}
		}
		r.outgoing[e.FromNode][e.FromPort] = append(r.outgoing[e.FromNode][e.FromPort], edgeTarget{e.ToNode, e.ToPort})
		// each incoming entry records the receiving port (ToPort), not the
		// sender's port, so evalCondition can ask "what feeds my condition port".
		r.incoming[e.ToNode] = append(r.incoming[e.ToNode], edgeTarget{e.FromNode, e.ToPort})
	}
	return r
}

// Run executes every entry node's subtree in turn and returns accumulated
// diagnostics. Comparison nodes feeding a logic node's condition port are
// evaluated first, mirroring the code generator's prefetch so evalCondition
// always finds a cached result rather than racing the DFS order.
func (r *Runner) Run(ctx context.Context) []diagnostics.Diagnostic {
	for _, n := range r.wf.Nodes {
		if n.Kind != ir.KindLogic {
			continue
		}
		for _, in := range r.incoming[n.ID] {
			if in.port != "condition" {
				continue
			}
			if cmp, ok := r.wf.GetNode(in.nodeID); ok && cmp.Kind == ir.KindComparison {
				r.execComparison(cmp)
			}
		}
	}

	for _, entry := range r.wf.GetEntryNodes() {
		if r.scheduler.StopRequested(r.taskID) {
			r.diags = append(r.diags, diagnostics.MakeWarning("I4006", "run cancelled before completion", diagnostics.WithNodeID(entry.ID)))
			return r.diags
		}
		r.execNode(ctx, entry.ID)
	}
	return r.diags
}

func (r *Runner) execNode(ctx context.Context, nodeID string) {
	if r.executed[nodeID] || r.scheduler.StopRequested(r.taskID) {
		return
	}
	node, ok := r.wf.GetNode(nodeID)
	if !ok {
		return
	}

	switch node.Kind {
	case ir.KindComparison:
		r.execComparison(node)
		// Comparison nodes are data producers; they do not mark themselves
		// executed in a way that blocks re-evaluation inside a loop body.
		return
	case ir.KindLogic:
		r.executed[nodeID] = true
		r.execLogic(ctx, node)
		return
	default:
		r.executed[nodeID] = true
		r.execStep(ctx, node)
		r.followFlow(ctx, nodeID, "flow_out")
	}
}

func (r *Runner) execComparison(node *ir.IRNode) {
	inputExpr, _ := node.GetParamValue("input_expr", "").(string)
	compareValue := node.GetParamValue("compare_value", "")
	operator, _ := node.GetParamValue("operator", "==").(string)
	outputName, _ := node.GetParamValue("output_name", "").(string)

	lhs := r.evaluator.EvalValue(inputExpr, r.namespace())

	result := compareValues(lhs, compareValue, operator)
	r.results[fmt.Sprintf("result_%s_result", node.ID)] = result
	if outputName != "" {
		r.results[fmt.Sprintf("result_%s_%s", node.ID, outputName)] = result
		r.results[outputName] = result
	}
}

func (r *Runner) execStep(ctx context.Context, node *ir.IRNode) {
	start := time.Now()
	defer func() { r.monitor.RecordNode(time.Since(start)) }()

	switch node.Kind {
	case ir.KindAction:
		if r.adapter == nil {
			return
		}
		action, _ := node.GetParamValue("action", "").(string)
		params := map[string]any{}
		for k, p := range node.Params {
			if k != "action" {
				params[k] = p.Value
			}
		}
		_, _ = r.adapter.RunAction(ctx, action, params)
	case ir.KindStop:
		if r.adapter != nil {
			_ = r.adapter.Stop(ctx)
		}
	case ir.KindSensor:
		if r.adapter == nil {
			return
		}
		data, err := r.adapter.GetSensorData(ctx)
		if err == nil {
			outputName, _ := node.GetParamValue("output_name", "").(string)
			if outputName != "" {
				r.results[outputName] = data
			}
		}
	case ir.KindTimer:
		// Timer nodes do not wait: the runner does not sleep for the
		// duration and moves straight on to the node's flow_out.
	default:
	}
}

func (r *Runner) execLogic(ctx context.Context, node *ir.IRNode) {
	loopType, _ := node.GetParamValue("loop_type", "").(string)
	if loopType == "while" || loopType == "for" {
		r.execLoop(ctx, node, true)
		return
	}
	r.execIf(ctx, node)
}

func (r *Runner) execIf(ctx context.Context, node *ir.IRNode) {
	cond := r.evalCondition(node)
	if cond {
		r.followFlow(ctx, node.ID, "out_if")
		return
	}
	r.followFlow(ctx, node.ID, "out_else")
}

func (r *Runner) execLoop(ctx context.Context, node *ir.IRNode, _ bool) {
	maxIter := r.scenario.SafetyPolicy.MaxLoopIterations
	if maxIter <= 0 {
		maxIter = 100
	}

	bodyTargets := r.outgoing[node.ID]["loop_body"]

	for i := 0; i < maxIter; i++ {
		if r.scheduler.StopRequested(r.taskID) {
			break
		}
		r.refreshCondition(node)
		if !r.evalCondition(node) {
			break
		}
		r.monitor.RecordLoopIteration(i + 1)

		for _, t := range bodyTargets {
			r.clearSubtree(t.nodeID)
		}
		for _, t := range bodyTargets {
			r.execNode(ctx, t.nodeID)
		}

		if i == maxIter-1 {
			r.diags = append(r.diags, diagnostics.MakeWarning("W3006",
				fmt.Sprintf("loop on node '%s' hit the iteration cap (%d)", node.ID, maxIter), diagnostics.WithNodeID(node.ID)))
		}
	}

	r.followFlow(ctx, node.ID, "loop_end")
}

// clearSubtree removes nodeID and everything it reaches via flow edges from
// the executed set, so a loop body can re-fire every iteration.
func (r *Runner) clearSubtree(nodeID string) {
	if !r.executed[nodeID] {
		return
	}
	delete(r.executed, nodeID)
	for _, targets := range r.outgoing[nodeID] {
		for _, t := range targets {
			r.clearSubtree(t.nodeID)
		}
	}
}

func (r *Runner) followFlow(ctx context.Context, nodeID, port string) {
	for _, t := range r.outgoing[nodeID][port] {
		r.execNode(ctx, t.nodeID)
	}
}

// refreshCondition re-evaluates a connected comparison node ahead of a loop
// iteration, so the loop sees the latest variable values rather than the
// prefetch result from before the body ever ran.
func (r *Runner) refreshCondition(node *ir.IRNode) {
	for _, in := range r.incoming[node.ID] {
		if in.port != "condition" {
			continue
		}
		if cmp, ok := r.wf.GetNode(in.nodeID); ok && cmp.Kind == ir.KindComparison {
			r.execComparison(cmp)
		}
	}
}

// evalCondition implements the priority order: a connected comparison node's
// cached result wins over the node's own condition_expr parameter.
func (r *Runner) evalCondition(node *ir.IRNode) bool {
	for _, in := range r.incoming[node.ID] {
		if in.port != "condition" {
			continue
		}
		if v, ok := r.results[fmt.Sprintf("result_%s_result", in.nodeID)]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
	}

	conditionExpr, _ := node.GetParamValue("condition_expr", "").(string)
	if conditionExpr == "" {
		return false
	}
	return r.evaluator.Evaluate(conditionExpr, r.namespace())
}

// namespace builds the restricted evaluation environment: True/False/None
// plus every result_<nodeID>_<key> recorded so far.
func (r *Runner) namespace() map[string]any {
	ns := map[string]any{"True": true, "False": false, "None": nil}
	for k, v := range r.results {
		ns[k] = v
	}
	return ns
}
