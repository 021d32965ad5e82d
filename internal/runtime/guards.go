package runtime

import (
	"fmt"

	"github.com/unitport/compiler/internal/ir"
)

// GuardError is returned when a mission is blocked before execution starts.
// A guard failure means the mission or scenario itself is unfit to run, not
// a transient condition; the engine does not retry it.
type GuardError struct {
	Stage   string
	Message string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("runtime: %s guard blocked mission: %s", e.Stage, e.Message)
}

// compileGuard checks structural sanity of the mission before anything else
// runs: it must exist and declare at least its node list.
func compileGuard(mission *ir.WorkflowIR) error {
	if mission == nil {
		return &GuardError{Stage: "compile", Message: "mission is nil"}
	}
	if mission.Nodes == nil {
		return &GuardError{Stage: "compile", Message: "mission has no nodes"}
	}
	return nil
}

// executeGuard checks scenario preconditions: a valid target, and no
// simulation already running when the policy forbids overlap.
func executeGuard(scenario Scenario) error {
	if scenario.Target != "simulation" && scenario.Target != "hardware" {
		return &GuardError{Stage: "execute", Message: fmt.Sprintf("invalid target %q", scenario.Target)}
	}
	if scenario.SimulationRunning && scenario.SafetyPolicy.BlockWhenSimulationRunning {
		return &GuardError{Stage: "execute", Message: "a simulation is already running"}
	}
	return nil
}

// safetyCheck blocks missions containing action nodes when the policy
// requires a configured robot adapter and none is present.
func safetyCheck(mission *ir.WorkflowIR, scenario Scenario) error {
	if !scenario.SafetyPolicy.RequireRobotForActions {
		return nil
	}
	if scenario.HasRobotAdapter {
		return nil
	}
	for _, n := range mission.Nodes {
		if n.Kind == ir.KindAction {
			return &GuardError{Stage: "safety", Message: "action nodes present but no robot adapter configured"}
		}
	}
	return nil
}
