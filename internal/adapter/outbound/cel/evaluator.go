// Package cel evaluates the supplemental policy item conditions feature
// (SPEC_FULL.md §3.1) using the same compiled-program-per-expression
// pattern the teacher used for its rule-condition evaluator.
package cel

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocel "github.com/google/cel-go/cel"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
	"github.com/ranger-acl/rangeracl/internal/domain/policy"
)

const (
	maxExpressionLength = 1024
	maxCostBudget       = 100_000
	evalTimeout         = 5 * time.Second
	interruptCheckFreq  = 100
)

// ConditionEvaluator implements policy.ConditionEvaluator: each
// Condition.Values entry is a CEL boolean expression, evaluated with
// access to the request tuple. Values within one Condition are ORed;
// Conditions in a list are ANDed (SPEC_FULL.md §3.1). Compiled programs
// are cached by expression text since the same conditions are evaluated
// on every request that reaches their policy item.
type ConditionEvaluator struct {
	env      *gocel.Env
	mu       sync.RWMutex
	programs map[string]gocel.Program
}

// NewConditionEvaluator builds a ConditionEvaluator with the condition CEL
// environment.
func NewConditionEvaluator() (*ConditionEvaluator, error) {
	env, err := newConditionEnvironment()
	if err != nil {
		return nil, fmt.Errorf("build condition environment: %w", err)
	}
	return &ConditionEvaluator{env: env, programs: make(map[string]gocel.Program)}, nil
}

// Evaluate implements policy.ConditionEvaluator.
func (e *ConditionEvaluator) Evaluate(conditions []policy.Condition, req decision.Request) (bool, error) {
	for _, cond := range conditions {
		ok, err := e.evaluateOne(cond, req)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (e *ConditionEvaluator) evaluateOne(cond policy.Condition, req decision.Request) (bool, error) {
	if len(cond.Values) == 0 {
		return true, nil
	}
	for _, expr := range cond.Values {
		prg, err := e.compile(expr)
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", cond.Type, err)
		}
		matched, err := e.run(prg, req)
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", cond.Type, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func (e *ConditionEvaluator) compile(expr string) (gocel.Program, error) {
	if len(expr) > maxExpressionLength {
		return nil, fmt.Errorf("expression too long: %d characters", len(expr))
	}

	e.mu.RLock()
	prg, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	prg, err := e.env.Program(ast,
		gocel.EvalOptions(gocel.OptOptimize),
		gocel.CostLimit(maxCostBudget),
		gocel.InterruptCheckFrequency(interruptCheckFreq),
	)
	if err != nil {
		return nil, fmt.Errorf("build program: %w", err)
	}

	e.mu.Lock()
	e.programs[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

func (e *ConditionEvaluator) run(prg gocel.Program, req decision.Request) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(ctx, activationFor(req))
	if err != nil {
		return false, fmt.Errorf("evaluate: %w", err)
	}
	b, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return b, nil
}

var _ policy.ConditionEvaluator = (*ConditionEvaluator)(nil)
