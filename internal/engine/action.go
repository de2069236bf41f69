package engine

import (
	"fmt"
	"strings"

	"github.com/lucashald/skill-check/internal/data"
	"github.com/lucashald/skill-check/internal/match"
)

// MatchStatus classifies the outcome of matching a player action.
type MatchStatus int

const (
	// MatchNone means no active challenge was named by the action.
	MatchNone MatchStatus = iota
	// MatchFound means a challenge was matched and its difficulties apply.
	MatchFound
	// MatchNeedsModifier means a challenge was named but requires severity
	// language that narration never supplied. Callers fall back to the
	// default difficulty.
	MatchNeedsModifier
)

func (s MatchStatus) String() string {
	switch s {
	case MatchFound:
		return "found"
	case MatchNeedsModifier:
		return "needs-modifier"
	default:
		return "none"
	}
}

// ActionMatch is the result of matching player text against the active challenges.
type ActionMatch struct {
	Status    MatchStatus
	Challenge *ActiveChallenge
	Verb      string
	Noun      string
	// Modifier is the strongest modifier attached to the challenge, if any.
	Modifier *MatchedModifier
	Source   string
}

// Entry returns the matched entry or nil.
func (m ActionMatch) Entry() *data.Entry {
	if m.Challenge == nil {
		return nil
	}
	return m.Challenge.Entry
}

// DifficultyFor returns the challenge difficulty for ability adjusted by the
// strongest modifier. ok is false when nothing matched or the entry does not
// rate the ability.
func (m ActionMatch) DifficultyFor(ability string) (int, bool) {
	if m.Status != MatchFound {
		return 0, false
	}
	dc, ok := m.Challenge.Entry.DifficultyFor(ability)
	if !ok {
		return 0, false
	}
	if m.Modifier != nil {
		dc += m.Modifier.DifficultyAdjust
	}
	return dc, true
}

// Difficulties returns the adjusted difficulty of every ability the entry rates.
func (m ActionMatch) Difficulties() map[string]int {
	if m.Status != MatchFound {
		return nil
	}
	e := m.Challenge.Entry
	out := make(map[string]int, len(e.BaseDifficulties)+len(e.Difficulties))
	for _, table := range []map[string]int{e.Difficulties, e.BaseDifficulties} {
		for ability := range table {
			if dc, ok := m.DifficultyFor(ability); ok {
				out[strings.ToUpper(ability)] = dc
			}
		}
	}
	return out
}

// MatchAction finds the first active challenge, in tracker order, whose
// action verbs and nouns both occur in text. A challenge flagged
// requireModifier without captured modifiers is passed over; it is reported
// as MatchNeedsModifier only when no later challenge matches.
func MatchAction(m *match.Matcher, text string, active []*ActiveChallenge) ActionMatch {
	if strings.TrimSpace(text) == "" || len(active) == 0 {
		return ActionMatch{Status: MatchNone}
	}
	lowered := strings.ToLower(text)

	var rejected *ActionMatch
	for _, c := range active {
		verb, ok := m.ContainsAny(lowered, c.Entry.Detection.ActionVerbs)
		if !ok {
			continue
		}
		noun, ok := m.ContainsAny(lowered, c.Entry.Nouns())
		if !ok {
			continue
		}
		if c.Entry.RequireModifier && len(c.Modifiers) == 0 {
			if rejected == nil {
				rejected = &ActionMatch{
					Status:    MatchNeedsModifier,
					Challenge: c,
					Verb:      verb,
					Noun:      noun,
					Source:    c.Entry.DisplayName(),
				}
			}
			continue
		}
		return ActionMatch{
			Status:    MatchFound,
			Challenge: c,
			Verb:      verb,
			Noun:      noun,
			Modifier:  strongest(c.Modifiers),
			Source:    sourceLabel(c),
		}
	}
	if rejected != nil {
		return *rejected
	}
	return ActionMatch{Status: MatchNone}
}

// strongest picks the modifier with the greatest absolute adjustment; the
// first one wins ties. Adjustments are never summed.
func strongest(mods []MatchedModifier) *MatchedModifier {
	var best *MatchedModifier
	for i := range mods {
		if best == nil || abs(mods[i].DifficultyAdjust) > abs(best.DifficultyAdjust) {
			best = &mods[i]
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

func sourceLabel(c *ActiveChallenge) string {
	name := c.Entry.DisplayName()
	if len(c.Modifiers) == 0 {
		return name
	}
	kws := make([]string, 0, len(c.Modifiers))
	for _, mod := range c.Modifiers {
		kws = append(kws, mod.Keyword)
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(kws, ", "))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
