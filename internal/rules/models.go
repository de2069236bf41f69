package rules

import "github.com/lucashald/skill-check/internal/engine"

// TierRule assigns Tier to any roll for which the CEL expression When holds.
// When sees the int variables natural, modifier, total and dc.
type TierRule struct {
	Tier engine.Tier `mapstructure:"tier" yaml:"tier" json:"tier"`
	When string      `mapstructure:"when" yaml:"when" json:"when"`
}

// DefaultRules reproduce engine.Classify: a natural 1 or total of 5 or less,
// then a natural 20 or total of 18 or more, then meeting the difficulty.
func DefaultRules() []TierRule {
	return []TierRule{
		{Tier: engine.TierCriticalFailure, When: "natural == 1 || total <= 5"},
		{Tier: engine.TierStrongSuccess, When: "natural == 20 || total >= 18"},
		{Tier: engine.TierSuccess, When: "total >= dc"},
		{Tier: engine.TierFailure, When: "true"},
	}
}
