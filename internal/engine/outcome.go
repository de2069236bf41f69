package engine

import (
	"fmt"
	"strings"
)

// Tier is the outcome category of a resolved check.
type Tier string

const (
	TierCriticalFailure Tier = "critical_failure"
	TierFailure         Tier = "failure"
	TierSuccess         Tier = "success"
	TierStrongSuccess   Tier = "strong_success"
)

var directives = map[Tier]string{
	TierCriticalFailure: "FAILED BADLY. Narrate a serious setback, complication, or injury. Do not soften the failure. Do not speak for the user.",
	TierStrongSuccess:   "SUCCEEDED EXCEPTIONALLY. Narrate an impressive, skillful, or lucky outcome. Do not speak for the user.",
	TierSuccess:         "SUCCEEDED. Narrate the user achieving their goal. Do not speak for the user.",
	TierFailure:         "FAILED. Narrate the user not achieving their goal. There may be minor consequences. Do not speak for the user.",
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	_, ok := directives[t]
	return ok
}

// Directive is the narration instruction handed to the AI for this tier.
func (t Tier) Directive() string {
	return directives[t]
}

// Label renders the tier for display, e.g. "STRONG SUCCESS".
func (t Tier) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(t), "_", " "))
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown outcome tier %q", s)
	}
	return t, nil
}

// Classify maps a roll to its tier. The checks run in fixed priority: a
// natural 1 or total of 5 or less fails badly, then a natural 20 or total of
// 18 or more succeeds exceptionally, then the total is compared to difficulty.
func Classify(natural, modifier, difficulty int) Tier {
	total := natural + modifier
	switch {
	case natural == 1 || total <= 5:
		return TierCriticalFailure
	case natural == 20 || total >= 18:
		return TierStrongSuccess
	case total >= difficulty:
		return TierSuccess
	default:
		return TierFailure
	}
}

// Classifier decides the tier of a roll.
type Classifier interface {
	Classify(natural, modifier, difficulty int) Tier
}

// StandardTiers is the built-in Classifier.
type StandardTiers struct{}

func (StandardTiers) Classify(natural, modifier, difficulty int) Tier {
	return Classify(natural, modifier, difficulty)
}

// CheckResult is one resolved ability check.
type CheckResult struct {
	Ability    string `json:"ability"`
	Natural    int    `json:"natural"`
	Modifier   int    `json:"modifier"`
	Total      int    `json:"total"`
	Difficulty int    `json:"difficulty"`
	Tier       Tier   `json:"tier"`
}

// Check rolls a d20 for ability and classifies the result. A nil classifier
// uses StandardTiers.
func Check(r Roller, c Classifier, ability string, modifier, difficulty int) CheckResult {
	if c == nil {
		c = StandardTiers{}
	}
	natural := RollD20(r)
	return CheckResult{
		Ability:    ability,
		Natural:    natural,
		Modifier:   modifier,
		Total:      natural + modifier,
		Difficulty: difficulty,
		Tier:       c.Classify(natural, modifier, difficulty),
	}
}

// Summary renders the roll on two lines:
//
//	STR Check: 14 + 2 = 16 vs DC 12
//	├─ SUCCESS
func (r CheckResult) Summary() string {
	return fmt.Sprintf("%s Check: %d %s %d = %d vs DC %d\n├─ %s",
		r.Ability, r.Natural, sign(r.Modifier), abs(r.Modifier), r.Total, r.Difficulty, r.Tier.Label())
}

// Injection builds the narration instruction for the next outgoing message.
// Non-empty action text is kept and the instruction follows after a blank line.
func Injection(actionText, ability string, t Tier) string {
	inj := fmt.Sprintf("[System: The user attempted an action using %s. They %s]", ability, t.Directive())
	if action := strings.TrimSpace(actionText); action != "" {
		return action + "\n\n" + inj
	}
	return inj
}

func sign(n int) string {
	if n < 0 {
		return "-"
	}
	return "+"
}
