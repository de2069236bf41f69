package engine

import (
	"testing"

	"github.com/lucashald/skill-check/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog []*data.Entry

func (c fakeCatalog) EntryList() []*data.Entry { return c }

func (c fakeCatalog) Lookup(id string) (*data.Entry, bool) {
	for _, e := range c {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

func scenarioEntry() *data.Entry {
	return &data.Entry{
		ID:   "dragon",
		Name: "Dragon",
		Detection: data.Detection{
			Nouns:       []string{"dragon"},
			ActionVerbs: []string{"fight", "attack"},
		},
		BaseDifficulties: map[string]int{"STR": 15},
		Stickiness:       3,
		Notes:            "Breathes fire every other round.",
	}
}

func TestResolveDifficultyStickinessScenario(t *testing.T) {
	s := DefaultSettings()
	s.ContextWindow = 1
	eng := NewEngine(fakeCatalog{scenarioEntry()}, s, nil)

	transcript := []Message{
		ai(0, "A dragon descends from the clouds."),
		ai(1, "Its shadow sweeps the valley."),
		ai(2, "You stand your ground."),
		ai(3, "Smoke fills the air."),
		ai(4, "The village burns."),
	}

	eng.Scan(transcript[:1])
	eng.Scan(transcript[:2])

	res := eng.ResolveDifficulty("STR", "I attack the dragon", transcript[:3])
	assert.Equal(t, 15, res.Difficulty)
	require.NotNil(t, res.Source)
	assert.Equal(t, "Dragon", *res.Source)
	require.NotNil(t, res.Notes)
	assert.Equal(t, "Dragon", res.Entry.Name)
	assert.Equal(t, MatchFound, res.Match.Status)

	eng.Scan(transcript[:4])

	res = eng.ResolveDifficulty("STR", "I attack the dragon", transcript[:5])
	assert.Equal(t, DefaultDifficulty, res.Difficulty)
	assert.Nil(t, res.Source)
	assert.Nil(t, res.Entry)
	assert.Equal(t, MatchNone, res.Match.Status)
}

func TestResolveDifficultyDetectionDisabled(t *testing.T) {
	s := DefaultSettings()
	s.Detection = false
	s.DefaultDifficulty = 14
	eng := NewEngine(fakeCatalog{scenarioEntry()}, s, nil)

	res := eng.ResolveDifficulty("STR", "I attack the dragon", []Message{ai(0, "A dragon!")})
	assert.Equal(t, 14, res.Difficulty)
	assert.Nil(t, res.Source)
	assert.Empty(t, eng.Tracker().Active(), "no scan runs while detection is off")
}

func TestResolveDifficultyOverrideWins(t *testing.T) {
	door := doorEntry()
	eng := NewEngine(fakeCatalog{scenarioEntry(), door}, DefaultSettings(), nil)
	eng.SetOverride("locked_door")

	window := []Message{ai(0, "A dragon descends.")}
	res := eng.ResolveDifficulty("STR", "I attack the dragon", window)
	assert.Equal(t, 16, res.Difficulty)
	require.NotNil(t, res.Source)
	assert.Equal(t, "Locked Door", *res.Source)
	assert.Nil(t, res.Notes)

	_, tracked := eng.Tracker().Get("dragon")
	assert.True(t, tracked, "the tracker still refreshes under an override")

	res = eng.ResolveDifficulty("CHA", "I attack the dragon", window)
	assert.Equal(t, DefaultDifficulty, res.Difficulty, "override entry without the ability falls back")
	assert.Nil(t, res.Source)

	eng.SetOverride("basilisk")
	res = eng.ResolveDifficulty("STR", "I attack the dragon", window)
	assert.Equal(t, DefaultDifficulty, res.Difficulty)
	assert.Nil(t, res.Source)

	eng.SetOverride("")
	res = eng.ResolveDifficulty("STR", "I attack the dragon", window)
	assert.Equal(t, 15, res.Difficulty)
}

func TestResolveDifficultyFallbacks(t *testing.T) {
	strict := scenarioEntry()
	strict.RequireModifier = true
	eng := NewEngine(fakeCatalog{strict}, Settings{Detection: true}, nil)
	assert.Equal(t, DefaultDifficulty, eng.Settings().DefaultDifficulty)
	assert.Equal(t, DefaultContextWindow, eng.Settings().ContextWindow)

	window := []Message{ai(0, "A dragon sleeps.")}
	res := eng.ResolveDifficulty("STR", "I attack the dragon", window)
	assert.Equal(t, DefaultDifficulty, res.Difficulty)
	assert.Nil(t, res.Source)
	assert.Equal(t, MatchNeedsModifier, res.Match.Status, "rejection is reported, not hidden")

	res = eng.ResolveDifficulty("STR", "", nil)
	assert.Equal(t, DefaultDifficulty, res.Difficulty)

	eng = NewEngine(fakeCatalog{scenarioEntry()}, DefaultSettings(), nil)
	res = eng.ResolveDifficulty("WIS", "I attack the dragon", window)
	assert.Equal(t, DefaultDifficulty, res.Difficulty, "the entry does not rate WIS")
	assert.Equal(t, MatchFound, res.Match.Status)
}

func TestResolveDifficultyClamps(t *testing.T) {
	e := scenarioEntry()
	e.Detection.Modifiers = data.Modifiers{{Name: "ancient", Keywords: []string{"ancient"}, DifficultyAdjust: 40}}
	s := DefaultSettings()
	s.DefaultDifficulty = 99
	eng := NewEngine(fakeCatalog{e}, s, nil)
	assert.Equal(t, MaxDifficulty, eng.Settings().DefaultDifficulty)

	res := eng.ResolveDifficulty("STR", "I fight the dragon", []Message{ai(0, "An ancient dragon.")})
	assert.Equal(t, MaxDifficulty, res.Difficulty)

	assert.Equal(t, MinDifficulty, ClampDifficulty(-3))
	assert.Equal(t, 17, ClampDifficulty(17))
}

func TestScanHonoursContextWindow(t *testing.T) {
	s := DefaultSettings()
	s.ContextWindow = 2
	eng := NewEngine(fakeCatalog{scenarioEntry()}, s, nil)

	eng.Scan([]Message{ai(0, "A dragon."), ai(1, "Quiet."), ai(2, "Still quiet.")})
	assert.Empty(t, eng.Tracker().Active())

	eng.Scan([]Message{ai(0, "Quiet."), ai(1, "A dragon."), ai(2, "Still quiet.")})
	assert.Len(t, eng.Tracker().Active(), 1)
}
