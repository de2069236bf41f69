// Package rules evaluates configurable outcome tier tables written in CEL.
package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/lucashald/skill-check/internal/engine"
	"go.uber.org/zap"
)

type compiledRule struct {
	TierRule
	prg cel.Program
}

// Table classifies rolls by evaluating its rules in order; the first rule
// that holds decides the tier. A roll no rule matches is a failure.
type Table struct {
	rules []compiledRule
	log   *zap.Logger
}

// NewTable compiles rules. An empty list uses DefaultRules.
func NewTable(rules []TierRule, log *zap.Logger) (*Table, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	env, err := newEnv()
	if err != nil {
		return nil, err
	}

	t := &Table{log: log}
	for i, r := range rules {
		tier, err := engine.ParseTier(string(r.Tier))
		if err != nil {
			return nil, fmt.Errorf("tier rule %d: %w", i+1, err)
		}
		prg, err := compile(env, r.When)
		if err != nil {
			return nil, fmt.Errorf("tier rule %d (%s): %w", i+1, tier, err)
		}
		t.rules = append(t.rules, compiledRule{TierRule: TierRule{Tier: tier, When: r.When}, prg: prg})
	}
	return t, nil
}

// Rules returns the rules in evaluation order.
func (t *Table) Rules() []TierRule {
	out := make([]TierRule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.TierRule
	}
	return out
}

// Evaluate returns the tier of the first rule that holds.
func (t *Table) Evaluate(natural, modifier, difficulty int) (engine.Tier, error) {
	vars := map[string]any{
		"natural":  natural,
		"modifier": modifier,
		"total":    natural + modifier,
		"dc":       difficulty,
	}
	for _, r := range t.rules {
		out, _, err := r.prg.Eval(vars)
		if err != nil {
			return "", fmt.Errorf("evaluate %q: %w", r.When, err)
		}
		if hit, ok := out.Value().(bool); ok && hit {
			return r.Tier, nil
		}
	}
	return engine.TierFailure, nil
}

// Classify implements engine.Classifier. An evaluation error falls back to
// the built-in tiers.
func (t *Table) Classify(natural, modifier, difficulty int) engine.Tier {
	tier, err := t.Evaluate(natural, modifier, difficulty)
	if err != nil {
		t.log.Warn("tier table failed, using built-in tiers", zap.Error(err))
		return engine.Classify(natural, modifier, difficulty)
	}
	return tier
}
