package engine

import (
	"fmt"
)

type EventType string

const (
	EventItemAdded       EventType = "ItemAdded"
	EventItemRemoved     EventType = "ItemRemoved"
	EventSpellLearned    EventType = "SpellLearned"
	EventLevelUpDetected EventType = "LevelUpDetected"
	EventLevelGained     EventType = "LevelGained"
	EventLevelUpDeclined EventType = "LevelUpDeclined"
	EventCheckResolved   EventType = "CheckResolved"
)

// Event is one change to the character. Events are applied in order and
// journaled by the session.
type Event interface {
	Type() EventType
	Apply(c *Character) error
	Message() string
}

// ItemAddedEvent puts items into the inventory.
type ItemAddedEvent struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Turn     int    `json:"turn"`
}

func (e *ItemAddedEvent) Type() EventType { return EventItemAdded }
func (e *ItemAddedEvent) Apply(c *Character) error {
	c.AddItem(e.Name, e.Quantity)
	return nil
}
func (e *ItemAddedEvent) Message() string {
	return fmt.Sprintf("Inventory: +%d %s", e.Quantity, e.Name)
}

// ItemRemovedEvent takes items out of the inventory. Removing an item that is
// not held changes nothing.
type ItemRemovedEvent struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Turn     int    `json:"turn"`
}

func (e *ItemRemovedEvent) Type() EventType { return EventItemRemoved }
func (e *ItemRemovedEvent) Apply(c *Character) error {
	c.RemoveItem(e.Name, e.Quantity)
	return nil
}
func (e *ItemRemovedEvent) Message() string {
	return fmt.Sprintf("Inventory: -%d %s", e.Quantity, e.Name)
}

// SpellLearnedEvent records a new spell.
type SpellLearnedEvent struct {
	Name string `json:"name"`
	Turn int    `json:"turn"`
}

func (e *SpellLearnedEvent) Type() EventType { return EventSpellLearned }
func (e *SpellLearnedEvent) Apply(c *Character) error {
	c.LearnSpell(e.Name)
	return nil
}
func (e *SpellLearnedEvent) Message() string { return fmt.Sprintf("Spell learned: %s", e.Name) }

// LevelUpDetectedEvent parks a level-up prompt and starts the detector cooldown.
type LevelUpDetectedEvent struct {
	Levels int `json:"levels"`
	Turn   int `json:"turn"`
}

func (e *LevelUpDetectedEvent) Type() EventType { return EventLevelUpDetected }
func (e *LevelUpDetectedEvent) Apply(c *Character) error {
	turn := e.Turn
	c.LastLevelUpIndex = &turn
	c.PendingLevels = e.Levels
	return nil
}
func (e *LevelUpDetectedEvent) Message() string {
	return fmt.Sprintf("Level up detected: +%d (accept with /yes)", e.Levels)
}

// LevelGainedEvent is an accepted level-up: levels and unspent points grow together.
type LevelGainedEvent struct {
	Levels int `json:"levels"`
}

func (e *LevelGainedEvent) Type() EventType { return EventLevelGained }
func (e *LevelGainedEvent) Apply(c *Character) error {
	if e.Levels <= 0 {
		return fmt.Errorf("cannot gain %d levels", e.Levels)
	}
	c.Level += e.Levels
	c.UnspentPoints += e.Levels
	c.PendingLevels = 0
	return nil
}
func (e *LevelGainedEvent) Message() string {
	return fmt.Sprintf("Level up! Gained %d level(s).", e.Levels)
}

// LevelUpDeclinedEvent drops a pending prompt. Level and points stay as they are.
type LevelUpDeclinedEvent struct {
	Levels int `json:"levels"`
}

func (e *LevelUpDeclinedEvent) Type() EventType { return EventLevelUpDeclined }
func (e *LevelUpDeclinedEvent) Apply(c *Character) error {
	c.PendingLevels = 0
	return nil
}
func (e *LevelUpDeclinedEvent) Message() string { return "Level up declined." }

// CheckResolvedEvent records a roll. It does not change the character.
type CheckResolvedEvent struct {
	Result CheckResult `json:"result"`
	Source string      `json:"source,omitempty"`
	Action string      `json:"action,omitempty"`
}

func (e *CheckResolvedEvent) Type() EventType { return EventCheckResolved }
func (e *CheckResolvedEvent) Apply(*Character) error { return nil }
func (e *CheckResolvedEvent) Message() string {
	msg := e.Result.Summary()
	if e.Source != "" {
		msg += fmt.Sprintf("\n├─ against %s", e.Source)
	}
	return msg
}

// ApplyAll applies events in order and stops at the first failure.
func ApplyAll(c *Character, events []Event) error {
	for _, ev := range events {
		if err := ev.Apply(c); err != nil {
			return fmt.Errorf("apply %s: %w", ev.Type(), err)
		}
	}
	return nil
}
