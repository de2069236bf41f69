package data

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultStickiness is used for entries that do not configure a positive stickiness.
const DefaultStickiness = 3

// Modifier is a severity qualifier attached to an entry (e.g. "massive", "weakened").
type Modifier struct {
	Name             string   `json:"name" yaml:"-"`
	Keywords         []string `json:"keywords" yaml:"keywords"`
	DifficultyAdjust int      `json:"difficultyAdjust" yaml:"difficultyAdjust"`
}

// Modifiers keeps severity levels in the order they appear in the compendium file.
// On disk it is a mapping from level name to {keywords, difficultyAdjust}.
type Modifiers []Modifier

// UnmarshalYAML decodes the level-name mapping while preserving file order.
func (m *Modifiers) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("modifiers must be a mapping, got %s at line %d", kindName(node.Kind), node.Line)
	}
	mods := make(Modifiers, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var mod Modifier
		if err := node.Content[i+1].Decode(&mod); err != nil {
			return fmt.Errorf("modifier %q: %w", node.Content[i].Value, err)
		}
		mod.Name = node.Content[i].Value
		mods = append(mods, mod)
	}
	*m = mods
	return nil
}

// Detection holds the vocabulary used to spot an entry in narration and in player actions.
type Detection struct {
	Nouns       []string  `json:"nouns" yaml:"nouns"`
	ActionVerbs []string  `json:"action_verbs" yaml:"action_verbs"`
	Modifiers   Modifiers `json:"modifiers" yaml:"modifiers"`
}

// Entry is a detectable narrative challenge: a hazard, creature or obstacle.
type Entry struct {
	ID               string         `json:"id" yaml:"id"`
	Name             string         `json:"name" yaml:"name"`
	Type             string         `json:"type" yaml:"type"`
	Keywords         []string       `json:"keywords" yaml:"keywords"`
	Detection        Detection      `json:"detection" yaml:"detection"`
	ExcludePatterns  []string       `json:"exclude_patterns" yaml:"exclude_patterns"`
	BaseDifficulties map[string]int `json:"base_difficulties" yaml:"base_difficulties"`
	Difficulties     map[string]int `json:"difficulties" yaml:"difficulties"`
	Stickiness       int            `json:"stickiness" yaml:"stickiness"`
	Notes            string         `json:"notes" yaml:"notes"`
	RequireModifier  bool           `json:"requireModifier" yaml:"requireModifier"`
}

// Nouns returns the surface forms that denote the entry. detection.nouns wins
// over the legacy keywords list. An entry with no nouns never matches.
func (e *Entry) Nouns() []string {
	if len(e.Detection.Nouns) > 0 {
		return e.Detection.Nouns
	}
	return e.Keywords
}

// Inert reports whether the entry can never be detected.
func (e *Entry) Inert() bool {
	return len(e.Nouns()) == 0
}

// MaxStickiness returns the configured stickiness or DefaultStickiness.
func (e *Entry) MaxStickiness() int {
	if e.Stickiness <= 0 {
		return DefaultStickiness
	}
	return e.Stickiness
}

// DisplayName falls back to the id for unnamed entries.
func (e *Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// DifficultyFor looks up the difficulty of an ability, first in
// base_difficulties then in difficulties. Ability names compare case-insensitively.
func (e *Entry) DifficultyFor(ability string) (int, bool) {
	for _, table := range []map[string]int{e.BaseDifficulties, e.Difficulties} {
		if dc, ok := table[ability]; ok {
			return dc, true
		}
		for k, dc := range table {
			if strings.EqualFold(k, ability) {
				return dc, true
			}
		}
	}
	return 0, false
}

// Compendium is a named, independently toggleable catalog of entries.
type Compendium struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	EnabledByDefault *bool    `json:"enabled_by_default" yaml:"enabled_by_default"`
	Entries          []*Entry `json:"entries" yaml:"entries"`

	Enabled bool   `json:"-" yaml:"-"`
	Source  string `json:"-" yaml:"-"`
}

// DefaultEnabled reports the enabled state for a compendium seen for the first time.
func (c *Compendium) DefaultEnabled() bool {
	if c.EnabledByDefault == nil {
		return true
	}
	return *c.EnabledByDefault
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
