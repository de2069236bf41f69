package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCharacter(t *testing.T) {
	c := DefaultCharacter()
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, -1, c.LastProcessedIndex)
	assert.Equal(t, DefaultDifficulty, c.Difficulty)
	assert.Equal(t, StyleDerived, c.Style)
	for _, k := range AbilityKeys {
		assert.Equal(t, 10, c.Score(k))
		assert.Zero(t, c.Modifier(k))
	}
	assert.Equal(t, "CHA", c.AbilityName("stat6"))
}

func TestCharacterNormalizeBackfills(t *testing.T) {
	c := &Character{
		Stats:      map[string]int{"stat1": 40, "stat2": -3},
		StatNames:  map[string]string{"stat1": "might!!", "stat3": " end "},
		Difficulty: 0,
	}
	c.Normalize()

	assert.Equal(t, 30, c.Score("stat1"))
	assert.Equal(t, 1, c.Score("stat2"))
	assert.Equal(t, 10, c.Score("stat4"))
	assert.Equal(t, "MIGHT!", c.AbilityName("stat1"))
	assert.Equal(t, "DEX", c.AbilityName("stat2"))
	assert.Equal(t, "END", c.AbilityName("stat3"))
	assert.Equal(t, DefaultDifficulty, c.Difficulty)
	assert.Equal(t, 1, c.Level)
	assert.NotNil(t, c.Inventory)
	assert.NotNil(t, c.Spells)
}

func TestCharacterModifierStyles(t *testing.T) {
	c := DefaultCharacter()
	cases := map[int]int{1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 18: 4, 30: 10}
	for score, want := range cases {
		require.NoError(t, c.SetScore("stat1", score))
		assert.Equal(t, want, c.Modifier("stat1"), "score %d", score)
	}

	require.NoError(t, c.SetScore("stat1", 30))
	c.SetStyle(StyleFlat)
	require.NoError(t, c.SetScore("stat2", -15))
	assert.Equal(t, -10, c.Modifier("stat2"))
	require.NoError(t, c.SetScore("stat2", 7))
	assert.Equal(t, 7, c.Modifier("stat2"))
	assert.Equal(t, 20, c.Score("stat1"), "switching to flat re-clamps")

	assert.ErrorIs(t, c.SetScore("stat9", 3), ErrUnknownAbility)
}

func TestCharacterAbilityByName(t *testing.T) {
	c := DefaultCharacter()
	require.NoError(t, c.Rename("stat4", "smarts"))

	for name, want := range map[string]string{"str": "stat1", "STAT2": "stat2", "Smarts": "stat4", " wis ": "stat5"} {
		got, err := c.AbilityByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := c.AbilityByName("STT")
	require.ErrorIs(t, err, ErrUnknownAbility)
	assert.Contains(t, err.Error(), `did you mean "STR"`)

	_, err = c.AbilityByName("luck")
	require.ErrorIs(t, err, ErrUnknownAbility)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestCharacterDifficulty(t *testing.T) {
	c := DefaultCharacter()
	c.SetDifficulty(45)
	assert.Equal(t, 30, c.Difficulty)
	c.SetDifficulty(-1)
	assert.Equal(t, 1, c.Difficulty)

	names := []string{}
	for _, p := range DifficultyPresets {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Very Easy", "Easy", "Medium", "Hard", "Very Hard", "Nearly Impossible"}, names)
}

func TestCharacterInventory(t *testing.T) {
	c := DefaultCharacter()
	c.AddItem("Rope", 1)
	c.AddItem("rope", 2)
	c.AddItem("Torches", 3)
	c.AddItem("nothing", 0)

	if diff := cmp.Diff([]Item{{"Rope", 3}, {"Torches", 3}}, c.Inventory); diff != "" {
		t.Errorf("inventory mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, c.RemoveItem("ROPE", 1))
	assert.False(t, c.RemoveItem("torch", 1), "no plural normalisation")
	assert.True(t, c.RemoveItem("torches", 5))

	if diff := cmp.Diff([]Item{{"Rope", 2}}, c.Inventory); diff != "" {
		t.Errorf("inventory mismatch (-want +got):\n%s", diff)
	}
}

func TestCharacterSpells(t *testing.T) {
	c := DefaultCharacter()
	assert.True(t, c.LearnSpell("Fireball"))
	assert.False(t, c.LearnSpell("FIREBALL"))
	assert.True(t, c.KnowsSpell("fireball"))
	assert.Len(t, c.Spells, 1)
}

func TestEventsApplyInOrder(t *testing.T) {
	c := DefaultCharacter()
	err := ApplyAll(c, []Event{
		&ItemAddedEvent{Name: "Lantern", Quantity: 1},
		&SpellLearnedEvent{Name: "Light"},
		&LevelUpDetectedEvent{Levels: 2, Turn: 9},
		&LevelGainedEvent{Levels: 2},
		&ItemRemovedEvent{Name: "lantern", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, c.Inventory)
	assert.Equal(t, 3, c.Level)
	assert.Equal(t, 2, c.UnspentPoints)
	assert.Zero(t, c.PendingLevels)
	require.NotNil(t, c.LastLevelUpIndex)
	assert.Equal(t, 9, *c.LastLevelUpIndex)

	err = ApplyAll(c, []Event{&LevelGainedEvent{Levels: 0}})
	assert.Error(t, err)
}

func TestSheet(t *testing.T) {
	c := DefaultCharacter()
	require.NoError(t, c.SetScore("stat1", 16))
	require.NoError(t, c.SetScore("stat4", 7))
	c.UnspentPoints = 1
	c.Level = 2
	c.AddItem("Rope", 1)
	c.LearnSpell("Light")

	sheet := Sheet(c)
	assert.Contains(t, sheet, "Level 2 (1 unspent point(s))")
	assert.Contains(t, sheet, "├─ STR 16 (+3)")
	assert.Contains(t, sheet, "├─ INT 7 (-2)")
	assert.Contains(t, sheet, "├─ Rope x1")
	assert.Contains(t, sheet, "├─ Light")

	c.SetStyle(StyleFlat)
	assert.Contains(t, Sheet(c), "├─ STR +16")

	empty := Sheet(DefaultCharacter())
	assert.Contains(t, empty, "Inventory: empty")
	assert.Contains(t, empty, "Spells: none")
}
