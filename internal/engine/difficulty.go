package engine

import (
	"github.com/lucashald/skill-check/internal/data"
	"github.com/lucashald/skill-check/internal/match"
	"go.uber.org/zap"
)

const (
	// DefaultContextWindow is how many recent messages Phase 1 scans.
	DefaultContextWindow = 5
	// DefaultDifficulty is used when nothing else sets a difficulty.
	DefaultDifficulty = 12
	MinDifficulty     = 1
	MaxDifficulty     = 30
)

// Catalog is the read side of the compendium store used by the engine.
type Catalog interface {
	EntryList() []*data.Entry
	Lookup(id string) (*data.Entry, bool)
}

// Settings controls how difficulties are resolved.
type Settings struct {
	Detection         bool
	DefaultDifficulty int
	ContextWindow     int
	// Override is an entry id that replaces auto-detection when set.
	Override string
}

// DefaultSettings returns detection on, DC 12 and a five message window.
func DefaultSettings() Settings {
	return Settings{
		Detection:         true,
		DefaultDifficulty: DefaultDifficulty,
		ContextWindow:     DefaultContextWindow,
	}
}

func (s Settings) normalized() Settings {
	if s.DefaultDifficulty == 0 {
		s.DefaultDifficulty = DefaultDifficulty
	}
	s.DefaultDifficulty = ClampDifficulty(s.DefaultDifficulty)
	if s.ContextWindow <= 0 {
		s.ContextWindow = DefaultContextWindow
	}
	return s
}

// ClampDifficulty bounds a difficulty to 1..30.
func ClampDifficulty(dc int) int {
	switch {
	case dc < MinDifficulty:
		return MinDifficulty
	case dc > MaxDifficulty:
		return MaxDifficulty
	}
	return dc
}

// DifficultyResolution is the difficulty chosen for one check and where it came from.
type DifficultyResolution struct {
	Difficulty int
	// Source names the challenge that set the difficulty; nil for the default.
	Source *string
	Notes  *string
	Entry  *data.Entry
	Match  ActionMatch
}

// Engine owns the challenge tracker of one session and resolves difficulties
// against it. It holds no global state; create one per session.
type Engine struct {
	catalog  Catalog
	matcher  *match.Matcher
	tracker  *Tracker
	settings Settings
	log      *zap.Logger
}

// NewEngine builds an engine over catalog.
func NewEngine(catalog Catalog, settings Settings, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	m := match.New()
	return &Engine{
		catalog:  catalog,
		matcher:  m,
		tracker:  NewTracker(m, log),
		settings: settings.normalized(),
		log:      log,
	}
}

// Tracker exposes the active challenge registry.
func (e *Engine) Tracker() *Tracker { return e.tracker }

// Matcher exposes the shared pattern cache.
func (e *Engine) Matcher() *match.Matcher { return e.matcher }

// Settings returns the effective settings.
func (e *Engine) Settings() Settings { return e.settings }

// SetSettings replaces the settings.
func (e *Engine) SetSettings(s Settings) { e.settings = s.normalized() }

// SetOverride sets or, with "", clears the manual override entry.
func (e *Engine) SetOverride(id string) { e.settings.Override = id }

// Scan runs Phase 1 over the most recent ContextWindow messages of window.
func (e *Engine) Scan(window []Message) {
	if n := e.settings.ContextWindow; len(window) > n {
		window = window[len(window)-n:]
	}
	e.tracker.Scan(window, e.catalog.EntryList())
}

// Rebind refreshes tracked challenges after the catalog was reloaded.
func (e *Engine) Rebind() {
	e.tracker.Rebind(e.catalog.EntryList())
}

// ResolveDifficulty picks the difficulty of a check on ability for the player's
// action text. window is the recent transcript, oldest first. Detection off
// yields the default; otherwise the tracker is refreshed from window, then a
// manual override wins over matching the action against active challenges.
func (e *Engine) ResolveDifficulty(ability, actionText string, window []Message) DifficultyResolution {
	fallback := DifficultyResolution{Difficulty: e.settings.DefaultDifficulty}
	if !e.settings.Detection {
		return fallback
	}

	e.Scan(window)

	if id := e.settings.Override; id != "" {
		entry, ok := e.catalog.Lookup(id)
		if !ok {
			e.log.Warn("override entry not found", zap.String("entry", id))
			return fallback
		}
		dc, ok := entry.DifficultyFor(ability)
		if !ok {
			e.log.Debug("override entry does not rate ability", zap.String("entry", id), zap.String("ability", ability))
			return fallback
		}
		return e.resolved(dc, entry.DisplayName(), entry, ActionMatch{Status: MatchNone})
	}

	m := MatchAction(e.matcher, actionText, e.tracker.Active())
	switch m.Status {
	case MatchFound:
		if dc, ok := m.DifficultyFor(ability); ok {
			return e.resolved(dc, m.Source, m.Entry(), m)
		}
		e.log.Debug("challenge does not rate ability", zap.String("entry", m.Entry().ID), zap.String("ability", ability))
	case MatchNeedsModifier:
		e.log.Debug("challenge requires a modifier", zap.String("entry", m.Entry().ID))
	}
	fallback.Match = m
	return fallback
}

func (e *Engine) resolved(dc int, source string, entry *data.Entry, m ActionMatch) DifficultyResolution {
	res := DifficultyResolution{
		Difficulty: ClampDifficulty(dc),
		Source:     &source,
		Entry:      entry,
		Match:      m,
	}
	if entry.Notes != "" {
		notes := entry.Notes
		res.Notes = &notes
	}
	e.log.Debug("difficulty resolved", zap.Int("dc", res.Difficulty), zap.String("source", source))
	return res
}
