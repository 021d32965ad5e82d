package runtime

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ConditionEvaluator compiles and runs condition expressions against a
// restricted namespace, caching compiled programs across calls. This
// replaces the sandboxed eval() the original runtime used for
// condition_expr, per the decision recorded in DESIGN.md.
type ConditionEvaluator struct {
	mu            sync.RWMutex
	compiledCache map[string]*vm.Program
}

// NewConditionEvaluator returns an evaluator with an empty compile cache.
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{compiledCache: make(map[string]*vm.Program)}
}

// Evaluate runs condition against namespace, returning false (not an error)
// on any compile or evaluation failure — a bad condition_expr must never
// abort a run, only take the false branch.
func (ce *ConditionEvaluator) Evaluate(condition string, namespace map[string]any) bool {
	if strings.TrimSpace(condition) == "" {
		return false
	}

	program, err := ce.getCompiled(condition)
	if err != nil {
		return false
	}

	result, err := expr.Run(program, namespace)
	if err != nil {
		return false
	}

	b, ok := result.(bool)
	return ok && b
}

// EvalValue evaluates an arbitrary (non-boolean) expression against
// namespace, returning the raw condition string itself if it fails to
// compile or run — callers treat that as "could not resolve, compare as
// literal text" rather than aborting.
func (ce *ConditionEvaluator) EvalValue(expression string, namespace map[string]any) any {
	if strings.TrimSpace(expression) == "" {
		return expression
	}

	program, err := expr.Compile(expression, expr.Env(map[string]any{}))
	if err != nil {
		return expression
	}
	result, err := expr.Run(program, namespace)
	if err != nil {
		return expression
	}
	return result
}

func (ce *ConditionEvaluator) getCompiled(condition string) (*vm.Program, error) {
	ce.mu.RLock()
	program, ok := ce.compiledCache[condition]
	ce.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(condition, expr.Env(map[string]any{}), expr.AsBool())
	if err != nil {
		program, err = expr.Compile(condition, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("runtime: compile condition %q: %w", condition, err)
		}
	}

	ce.mu.Lock()
	ce.compiledCache[condition] = program
	ce.mu.Unlock()
	return program, nil
}
