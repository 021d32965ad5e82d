// Package runtime is the minimal Runtime Engine: it takes a compiled
// mission (a WorkflowIR) and a scenario, runs it through compile/execute/
// safety guards, and if admitted, hands it to the workflow runner under a
// scheduled, monitored, audited task.
package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/unitport/compiler/internal/adapter"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
	"github.com/unitport/compiler/internal/tracing"
)

// RunResult is what a mission run produces: the task that ran it, whether
// it completed, and the diagnostics accumulated along the way.
type RunResult struct {
	TaskID    string
	Completed bool
	Diags     []diagnostics.Diagnostic
}

// Engine owns the shared scheduler and audit log across mission runs.
type Engine struct {
	scheduler *Scheduler
	auditLog  *AuditLog
}

// NewEngine returns an engine with a fresh scheduler and audit log.
func NewEngine() *Engine {
	return &Engine{scheduler: NewScheduler(), auditLog: NewAuditLog()}
}

// Scheduler exposes the engine's scheduler so a caller can cancel a running
// task by ID.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// AuditLog exposes the accumulated audit trail.
func (e *Engine) AuditLog() *AuditLog { return e.auditLog }

// Run drives the full guard → audit → schedule → monitor → execute
// pipeline for one mission.
func (e *Engine) Run(ctx context.Context, mission *ir.WorkflowIR, scenario Scenario, ad adapter.RobotAdapter) *RunResult {
	ctx, span := tracing.StartSpan(ctx, "runtime.Engine.Run")
	defer span.End()

	if err := compileGuard(mission); err != nil {
		tracing.RecordError(ctx, err)
		return e.blocked("compile", err)
	}
	if err := executeGuard(scenario); err != nil {
		return e.blocked("execute", err)
	}
	if err := safetyCheck(mission, scenario); err != nil {
		return e.blocked("safety", err)
	}

	taskID := e.scheduler.Schedule()
	e.scheduler.markRunning(taskID)
	monitor := NewMonitor()

	runner := newRunner(mission, scenario, ad, e.scheduler, monitor, taskID)
	diags := runner.Run(ctx)

	cancelled := e.scheduler.StopRequested(taskID)
	e.scheduler.Finish(taskID, false)
	monitor.Finish(outcomeFor(cancelled))

	e.auditLog.Append(AuditEvent{TaskID: taskID, Kind: "completed", Reason: outcomeFor(cancelled), Timestamp: time.Now()})

	if !diagnostics.HasError(diags) {
		diags = append(diags, diagnostics.MakeInfo("I4005",
			fmt.Sprintf("Mission run finished: task %s, outcome %s", taskID, outcomeFor(cancelled))))
	}

	return &RunResult{TaskID: taskID, Completed: !cancelled, Diags: diags}
}

func outcomeFor(cancelled bool) string {
	if cancelled {
		return "cancelled"
	}
	return "completed"
}

func (e *Engine) blocked(stage string, err error) *RunResult {
	taskID := e.scheduler.Schedule()
	e.scheduler.Finish(taskID, true)
	e.auditLog.Append(AuditEvent{TaskID: taskID, Kind: "blocked", Reason: err.Error(), Timestamp: time.Now()})
	monitorMetrics().BlockedTotal.WithLabelValues(stage).Inc()
	return &RunResult{
		TaskID:    taskID,
		Completed: false,
		Diags:     []diagnostics.Diagnostic{diagnostics.MakeError("E2009", fmt.Sprintf("Mission blocked by %s guard: %s", stage, err.Error()))},
	}
}
