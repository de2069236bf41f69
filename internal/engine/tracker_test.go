package engine

import (
	"testing"

	"github.com/lucashald/skill-check/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dragonEntry() *data.Entry {
	return &data.Entry{
		ID:   "dragon",
		Name: "Dragon",
		Detection: data.Detection{
			Nouns:       []string{"dragon", "wyrm"},
			ActionVerbs: []string{"fight", "attack"},
			Modifiers: data.Modifiers{
				{Name: "young", Keywords: []string{"young", "hatchling"}, DifficultyAdjust: -3},
				{Name: "ancient", Keywords: []string{"ancient", "elder"}, DifficultyAdjust: 5},
				{Name: "wounded", Keywords: []string{"wounded", "bleeding"}, DifficultyAdjust: -2},
			},
		},
		ExcludePatterns:  []string{"dragonfly", "paper dragon"},
		BaseDifficulties: map[string]int{"STR": 15, "CHA": 18},
		Stickiness:       3,
	}
}

func doorEntry() *data.Entry {
	return &data.Entry{
		ID:   "locked_door",
		Name: "Locked Door",
		Detection: data.Detection{
			Nouns:       []string{"door", "gate"},
			ActionVerbs: []string{"open", "pick", "force"},
		},
		Difficulties: map[string]int{"DEX": 13, "STR": 16},
		Stickiness:   4,
	}
}

func ai(index int, text string) Message {
	return Message{Index: index, Text: text}
}

func TestTrackerDetectsAndDecays(t *testing.T) {
	tr := NewTracker(nil, nil)
	entries := []*data.Entry{dragonEntry()}

	tr.Scan([]Message{ai(0, "A dragon lands on the ridge.")}, entries)
	c, ok := tr.Get("dragon")
	require.True(t, ok)
	assert.Equal(t, 3, c.StickinessRemaining)
	assert.Equal(t, 3, c.MaxStickiness)
	assert.Equal(t, "dragon", c.MatchedNoun)
	assert.Equal(t, 0, c.LastMentionedTurn)

	tr.Scan([]Message{ai(1, "The wind howls.")}, entries)
	assert.Equal(t, 2, c.StickinessRemaining)

	tr.Scan([]Message{ai(2, "Rain begins to fall.")}, entries)
	assert.Equal(t, 1, c.StickinessRemaining)
	assert.Len(t, tr.Active(), 1)

	tr.Scan([]Message{ai(3, "Silence.")}, entries)
	assert.Empty(t, tr.Active(), "evicted once the countdown reaches zero")
}

func TestTrackerRementionResetsCountdown(t *testing.T) {
	tr := NewTracker(nil, nil)
	entries := []*data.Entry{dragonEntry()}

	tr.Scan([]Message{ai(0, "A wyrm circles overhead.")}, entries)
	tr.Scan(nil, entries)
	tr.Scan(nil, entries)
	c, _ := tr.Get("dragon")
	require.Equal(t, 1, c.StickinessRemaining)

	tr.Scan([]Message{ai(3, "The dragon roars.")}, entries)
	c, ok := tr.Get("dragon")
	require.True(t, ok)
	assert.Equal(t, 3, c.StickinessRemaining)
	assert.Equal(t, 3, c.LastMentionedTurn)
	assert.Len(t, tr.Active(), 1, "one challenge per entry id")
}

func TestTrackerNewestMentionWins(t *testing.T) {
	tr := NewTracker(nil, nil)
	window := []Message{
		ai(4, "An ancient dragon sleeps."),
		{Index: 5, IsUser: true, Text: "I sneak past."},
		ai(6, "The wyrm stirs."),
	}
	tr.Scan(window, []*data.Entry{dragonEntry()})

	c, ok := tr.Get("dragon")
	require.True(t, ok)
	assert.Equal(t, 6, c.LastMentionedTurn)
	assert.Equal(t, "wyrm", c.MatchedNoun)
	assert.Empty(t, c.Modifiers, "modifiers come from the matched message only")
}

func TestTrackerExcludePatternsVetoMessage(t *testing.T) {
	tr := NewTracker(nil, nil)
	entries := []*data.Entry{dragonEntry()}

	tr.Scan([]Message{ai(1, "A dragonfly buzzes past a dragon statue, like a paper dragon.")}, entries)
	assert.Empty(t, tr.Active())

	tr.Scan([]Message{
		ai(2, "A dragon sleeps."),
		ai(3, "A paper dragon hangs from the dragon's lair."),
	}, entries)
	c, ok := tr.Get("dragon")
	require.True(t, ok)
	assert.Equal(t, 2, c.LastMentionedTurn, "the excluded message is skipped, the older one matches")
}

func TestTrackerCollectsAllModifiers(t *testing.T) {
	tr := NewTracker(nil, nil)
	entries := []*data.Entry{dragonEntry()}

	tr.Scan([]Message{ai(0, "An ancient dragon, wounded and bleeding, blocks the pass.")}, entries)
	c, _ := tr.Get("dragon")
	require.Len(t, c.Modifiers, 2)
	assert.Equal(t, MatchedModifier{Name: "ancient", Keyword: "ancient", DifficultyAdjust: 5}, c.Modifiers[0])
	assert.Equal(t, MatchedModifier{Name: "wounded", Keyword: "wounded", DifficultyAdjust: -2}, c.Modifiers[1])

	tr.Scan([]Message{ai(1, "The dragon breathes fire.")}, entries)
	assert.Len(t, c.Modifiers, 2, "a plain remention keeps the last known modifiers")

	tr.Scan([]Message{ai(2, "The hatchling dragon cowers.")}, entries)
	require.Len(t, c.Modifiers, 1)
	assert.Equal(t, "young", c.Modifiers[0].Name)
}

func TestTrackerKeepsInsertionOrder(t *testing.T) {
	tr := NewTracker(nil, nil)
	entries := []*data.Entry{dragonEntry(), doorEntry()}

	tr.Scan([]Message{ai(0, "A locked door.")}, entries)
	tr.Scan([]Message{ai(1, "A dragon appears.")}, entries)
	tr.Scan([]Message{ai(2, "The dragon glares at the door.")}, entries)

	ids := []string{}
	for _, c := range tr.Active() {
		ids = append(ids, c.Entry.ID)
	}
	assert.Equal(t, []string{"locked_door", "dragon"}, ids)
}

func TestTrackerIgnoresInertEntries(t *testing.T) {
	tr := NewTracker(nil, nil)
	inert := &data.Entry{ID: "ghost", Name: "Ghost"}
	tr.Scan([]Message{ai(0, "A ghost drifts by.")}, []*data.Entry{inert})
	assert.Empty(t, tr.Active())

	tr.Scan([]Message{ai(1, "A dragon.")}, []*data.Entry{dragonEntry()})
	tr.Reset()
	assert.Empty(t, tr.Active())
}

func TestTrackerRebindAfterReload(t *testing.T) {
	tr := NewTracker(nil, nil)
	tr.Scan([]Message{ai(0, "A dragon and a locked door.")}, []*data.Entry{dragonEntry(), doorEntry()})
	require.Len(t, tr.Active(), 2)

	reloaded := dragonEntry()
	reloaded.Stickiness = 2
	tr.Rebind([]*data.Entry{reloaded})

	require.Len(t, tr.Active(), 1, "the door entry is gone")
	c := tr.Active()[0]
	assert.Same(t, reloaded, c.Entry)
	assert.Equal(t, 2, c.MaxStickiness)
	assert.Equal(t, 2, c.StickinessRemaining)
}
