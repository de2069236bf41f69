package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownAbility is returned when an ability name matches no key or display name.
var ErrUnknownAbility = errors.New("unknown ability")

// AbilityKeys are the internal ability slots in display order.
var AbilityKeys = []string{"stat1", "stat2", "stat3", "stat4", "stat5", "stat6"}

var defaultAbilityNames = map[string]string{
	"stat1": "STR",
	"stat2": "DEX",
	"stat3": "CON",
	"stat4": "INT",
	"stat5": "WIS",
	"stat6": "CHA",
}

const (
	maxAbilityNameLen = 6
	defaultScore      = 10
)

// Style selects how an ability value becomes a roll modifier.
type Style string

const (
	// StyleDerived treats values as 1..30 scores with modifier floor((v-10)/2).
	StyleDerived Style = "derived"
	// StyleFlat treats values as the bonus itself, -10..+20.
	StyleFlat Style = "flat"
)

// Preset is a named default difficulty.
type Preset struct {
	Name       string
	Difficulty int
}

// DifficultyPresets are offered by the sheet and the play command.
var DifficultyPresets = []Preset{
	{"Very Easy", 5},
	{"Easy", 10},
	{"Medium", 12},
	{"Hard", 15},
	{"Very Hard", 20},
	{"Nearly Impossible", 25},
}

// Item is an inventory line. Names are unique case-insensitively.
type Item struct {
	Name     string `json:"name" yaml:"name"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Spell is a known spell.
type Spell struct {
	Name string `json:"name" yaml:"name"`
}

// Character is the persisted player state.
type Character struct {
	Stats      map[string]int    `json:"stats" yaml:"stats"`
	StatNames  map[string]string `json:"stat_names" yaml:"stat_names"`
	Style      Style             `json:"style" yaml:"style"`
	Difficulty int               `json:"difficulty" yaml:"difficulty"`

	Level         int `json:"level" yaml:"level"`
	UnspentPoints int `json:"unspent_points" yaml:"unspent_points"`
	// PendingLevels is a detected level-up waiting for the player's answer.
	PendingLevels      int  `json:"pending_levels" yaml:"pending_levels"`
	LastProcessedIndex int  `json:"last_processed_index" yaml:"last_processed_index"`
	LastLevelUpIndex   *int `json:"last_level_up_index,omitempty" yaml:"last_level_up_index,omitempty"`

	Inventory []Item  `json:"inventory" yaml:"inventory"`
	Spells    []Spell `json:"spells" yaml:"spells"`
}

// DefaultCharacter returns a level 1 character with all abilities at 10.
func DefaultCharacter() *Character {
	c := &Character{
		Stats:              make(map[string]int, len(AbilityKeys)),
		StatNames:          make(map[string]string, len(AbilityKeys)),
		Style:              StyleDerived,
		Difficulty:         DefaultDifficulty,
		Level:              1,
		LastProcessedIndex: -1,
		Inventory:          []Item{},
		Spells:             []Spell{},
	}
	for _, k := range AbilityKeys {
		c.Stats[k] = defaultScore
		c.StatNames[k] = defaultAbilityNames[k]
	}
	return c
}

// Normalize backfills missing fields and clamps out of range values. It is
// run after decoding persisted state.
func (c *Character) Normalize() {
	if c.Style != StyleFlat {
		c.Style = StyleDerived
	}
	if c.Stats == nil {
		c.Stats = make(map[string]int, len(AbilityKeys))
	}
	if c.StatNames == nil {
		c.StatNames = make(map[string]string, len(AbilityKeys))
	}
	for _, k := range AbilityKeys {
		v, ok := c.Stats[k]
		if !ok {
			v = c.defaultScore()
		}
		c.Stats[k] = c.clampScore(v)
		c.StatNames[k] = normalizeAbilityName(c.StatNames[k], k)
	}
	if c.Difficulty == 0 {
		c.Difficulty = DefaultDifficulty
	}
	c.Difficulty = ClampDifficulty(c.Difficulty)
	if c.Level < 1 {
		c.Level = 1
	}
	if c.UnspentPoints < 0 {
		c.UnspentPoints = 0
	}
	if c.PendingLevels < 0 {
		c.PendingLevels = 0
	}
	if c.Inventory == nil {
		c.Inventory = []Item{}
	}
	if c.Spells == nil {
		c.Spells = []Spell{}
	}
}

func (c *Character) defaultScore() int {
	if c.Style == StyleFlat {
		return 0
	}
	return defaultScore
}

func (c *Character) clampScore(v int) int {
	lo, hi := 1, 30
	if c.Style == StyleFlat {
		lo, hi = -10, 20
	}
	return min(max(v, lo), hi)
}

func normalizeAbilityName(name, key string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return defaultAbilityNames[key]
	}
	if r := []rune(name); len(r) > maxAbilityNameLen {
		name = string(r[:maxAbilityNameLen])
	}
	return name
}

// AbilityName returns the display name of an ability key.
func (c *Character) AbilityName(key string) string {
	if n := c.StatNames[key]; n != "" {
		return n
	}
	if n, ok := defaultAbilityNames[key]; ok {
		return n
	}
	return strings.ToUpper(key)
}

// AbilityByName resolves either an ability key ("stat1") or a display name
// ("str") to its key.
func (c *Character) AbilityByName(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, k := range AbilityKeys {
		if strings.EqualFold(name, k) || strings.EqualFold(name, c.AbilityName(k)) {
			return k, nil
		}
	}

	best, bestDist := "", math.MaxInt
	for _, k := range AbilityKeys {
		n := c.AbilityName(k)
		if d := levenshtein.ComputeDistance(strings.ToUpper(name), n); d < bestDist {
			best, bestDist = n, d
		}
	}
	if bestDist <= 1 {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownAbility, name, best)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAbility, name)
}

// Score returns the raw ability value.
func (c *Character) Score(key string) int {
	v, ok := c.Stats[key]
	if !ok {
		return c.defaultScore()
	}
	return v
}

// Modifier is the bonus added to a d20 roll for the ability.
func (c *Character) Modifier(key string) int {
	v := c.Score(key)
	if c.Style == StyleFlat {
		return v
	}
	return int(math.Floor(float64(v-10) / 2))
}

// SetScore stores a clamped ability value.
func (c *Character) SetScore(key string, v int) error {
	if _, ok := defaultAbilityNames[key]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownAbility, key)
	}
	c.Stats[key] = c.clampScore(v)
	return nil
}

// Rename changes an ability's display name, uppercased and cut to six characters.
func (c *Character) Rename(key, name string) error {
	if _, ok := defaultAbilityNames[key]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownAbility, key)
	}
	c.StatNames[key] = normalizeAbilityName(name, key)
	return nil
}

// SetStyle switches the scoring mode and re-clamps every value.
func (c *Character) SetStyle(s Style) {
	c.Style = s
	for _, k := range AbilityKeys {
		c.Stats[k] = c.clampScore(c.Score(k))
	}
}

// SetDifficulty stores a clamped default difficulty.
func (c *Character) SetDifficulty(dc int) {
	c.Difficulty = ClampDifficulty(dc)
}

// ItemIndex finds an inventory line by case-insensitive name.
func (c *Character) ItemIndex(name string) int {
	for i, it := range c.Inventory {
		if strings.EqualFold(it.Name, name) {
			return i
		}
	}
	return -1
}

// AddItem merges qty into an existing line or appends a new one.
func (c *Character) AddItem(name string, qty int) {
	if qty <= 0 {
		return
	}
	if i := c.ItemIndex(name); i >= 0 {
		c.Inventory[i].Quantity += qty
		return
	}
	c.Inventory = append(c.Inventory, Item{Name: name, Quantity: qty})
}

// RemoveItem subtracts qty and deletes the line once nothing is left. It
// reports whether the item was held.
func (c *Character) RemoveItem(name string, qty int) bool {
	i := c.ItemIndex(name)
	if i < 0 {
		return false
	}
	c.Inventory[i].Quantity -= qty
	if c.Inventory[i].Quantity <= 0 {
		c.Inventory = append(c.Inventory[:i], c.Inventory[i+1:]...)
	}
	return true
}

// KnowsSpell compares spell names case-insensitively.
func (c *Character) KnowsSpell(name string) bool {
	for _, s := range c.Spells {
		if strings.EqualFold(s.Name, name) {
			return true
		}
	}
	return false
}

// LearnSpell adds a spell unless it is already known.
func (c *Character) LearnSpell(name string) bool {
	if c.KnowsSpell(name) {
		return false
	}
	c.Spells = append(c.Spells, Spell{Name: name})
	return true
}
