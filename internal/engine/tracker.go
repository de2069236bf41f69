// Package engine turns narration into game state: it tracks the challenges
// currently in play, matches player actions against them, resolves the
// difficulty and outcome of checks, and extracts progression from AI text.
//
// Everything here is synchronous and single-threaded. The host serializes
// calls; no type in this package locks.
package engine

import (
	"strings"

	"github.com/lucashald/skill-check/internal/data"
	"github.com/lucashald/skill-check/internal/match"
	"go.uber.org/zap"
)

// Message is one chat turn as seen by the engine.
type Message struct {
	Index  int    `json:"index" yaml:"index"`
	IsUser bool   `json:"is_user" yaml:"is_user"`
	Text   string `json:"text" yaml:"text"`
}

// MatchedModifier records a severity level found next to a challenge noun.
type MatchedModifier struct {
	Name             string `json:"name"`
	Keyword          string `json:"keyword"`
	DifficultyAdjust int    `json:"difficulty_adjust"`
}

// ActiveChallenge is a compendium entry currently in scope of the narrative.
type ActiveChallenge struct {
	Entry               *data.Entry
	MatchedNoun         string
	Modifiers           []MatchedModifier
	StickinessRemaining int
	MaxStickiness       int
	LastMentionedTurn   int
}

// Tracker holds the active challenges of one session.
//
// Active challenges are kept in insertion order. A refreshed challenge keeps
// its slot; new challenges are appended. Action matching relies on this order.
type Tracker struct {
	matcher *match.Matcher
	log     *zap.Logger
	active  []*ActiveChallenge
}

// NewTracker returns an empty tracker.
func NewTracker(matcher *match.Matcher, log *zap.Logger) *Tracker {
	if matcher == nil {
		matcher = match.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{matcher: matcher, log: log}
}

// Active returns the tracked challenges in insertion order.
func (t *Tracker) Active() []*ActiveChallenge {
	return t.active
}

// Get returns the tracked challenge for an entry id.
func (t *Tracker) Get(id string) (*ActiveChallenge, bool) {
	for _, c := range t.active {
		if c.Entry.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Reset forgets every tracked challenge.
func (t *Tracker) Reset() {
	t.active = nil
}

// Rebind points tracked challenges at reloaded entries with the same id and
// drops those whose entry is gone. Countdowns are kept.
func (t *Tracker) Rebind(entries []*data.Entry) {
	byID := make(map[string]*data.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	kept := t.active[:0]
	for _, c := range t.active {
		e, ok := byID[c.Entry.ID]
		if !ok || e.Inert() {
			t.log.Debug("challenge dropped on reload", zap.String("entry", c.Entry.ID))
			continue
		}
		c.Entry = e
		c.MaxStickiness = e.MaxStickiness()
		if c.StickinessRemaining > c.MaxStickiness {
			c.StickinessRemaining = c.MaxStickiness
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(t.active); i++ {
		t.active[i] = nil
	}
	t.active = kept
}

type detection struct {
	entry     *data.Entry
	noun      string
	modifiers []MatchedModifier
	turn      int
}

// Scan runs one scan cycle over window (oldest first): detect entries in the
// window, decay what was tracked before, then merge the detections.
func (t *Tracker) Scan(window []Message, entries []*data.Entry) {
	found := t.detect(window, entries)

	// Decay before merging so fresh detections start from full stickiness.
	kept := t.active[:0]
	for _, c := range t.active {
		c.StickinessRemaining--
		if c.StickinessRemaining <= 0 {
			t.log.Debug("challenge expired", zap.String("entry", c.Entry.ID))
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(t.active); i++ {
		t.active[i] = nil
	}
	t.active = kept

	for _, d := range found {
		if c, ok := t.Get(d.entry.ID); ok {
			c.StickinessRemaining = c.MaxStickiness
			c.LastMentionedTurn = d.turn
			c.MatchedNoun = d.noun
			if len(d.modifiers) > 0 {
				c.Modifiers = d.modifiers
			}
			t.log.Debug("challenge refreshed", zap.String("entry", c.Entry.ID), zap.Int("turn", d.turn))
			continue
		}
		t.active = append(t.active, &ActiveChallenge{
			Entry:               d.entry,
			MatchedNoun:         d.noun,
			Modifiers:           d.modifiers,
			StickinessRemaining: d.entry.MaxStickiness(),
			MaxStickiness:       d.entry.MaxStickiness(),
			LastMentionedTurn:   d.turn,
		})
		t.log.Debug("challenge detected", zap.String("entry", d.entry.ID), zap.String("noun", d.noun), zap.Int("turn", d.turn))
	}
}

// detect finds, for each entry, its most recent mention in the window.
func (t *Tracker) detect(window []Message, entries []*data.Entry) []detection {
	lowered := make([]string, len(window))
	for i, m := range window {
		lowered[i] = strings.ToLower(m.Text)
	}

	var found []detection
	for _, e := range entries {
		nouns := e.Nouns()
		if len(nouns) == 0 {
			continue
		}
		for i := len(window) - 1; i >= 0; i-- {
			text := lowered[i]
			if _, excluded := t.matcher.ContainsAny(text, e.ExcludePatterns); excluded {
				continue
			}
			noun, ok := t.matcher.ContainsAny(text, nouns)
			if !ok {
				continue
			}
			found = append(found, detection{
				entry:     e,
				noun:      noun,
				modifiers: t.modifiersIn(text, e),
				turn:      window[i].Index,
			})
			break
		}
	}
	return found
}

// modifiersIn collects every modifier level whose keywords appear in text.
func (t *Tracker) modifiersIn(text string, e *data.Entry) []MatchedModifier {
	var mods []MatchedModifier
	for _, m := range e.Detection.Modifiers {
		if kw, ok := t.matcher.ContainsAny(text, m.Keywords); ok {
			mods = append(mods, MatchedModifier{
				Name:             m.Name,
				Keyword:          kw,
				DifficultyAdjust: m.DifficultyAdjust,
			})
		}
	}
	return mods
}
