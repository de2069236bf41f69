// Package session wires the engine to its files: compendium directories, the
// character file, the event journal and the running transcript.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/lucashald/skill-check/internal/config"
	"github.com/lucashald/skill-check/internal/data"
	"github.com/lucashald/skill-check/internal/engine"
	"github.com/lucashald/skill-check/internal/parser"
	"github.com/lucashald/skill-check/internal/rules"
	"go.uber.org/zap"
)

// Persister stores a configuration key, e.g. config.Persist bound to a viper instance.
type Persister func(key string, value any) error

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger shared by every component.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithRoller replaces the crypto dice, mostly for tests.
func WithRoller(r engine.Roller) Option {
	return func(s *Session) { s.roller = r }
}

// WithJournal replaces the file journal named in the config.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithPersister makes compendium toggles and the override survive restarts.
func WithPersister(p Persister) Option {
	return func(s *Session) { s.persist = p }
}

// WithLoaderOptions is passed through to data.NewLoader.
func WithLoaderOptions(opts ...data.LoaderOption) Option {
	return func(s *Session) { s.loaderOpts = append(s.loaderOpts, opts...) }
}

// Session owns one engine and everything it reads and writes. Calls must be
// serialized by the caller.
type Session struct {
	cfg        config.Config
	log        *zap.Logger
	store      *data.Store
	engine     *engine.Engine
	extractor  *engine.Extractor
	table      *rules.Table
	roller     engine.Roller
	journal    Journal
	persist    Persister
	loaderOpts []data.LoaderOption
	parser     *participle.Parser[parser.Line]

	character  *engine.Character
	transcript []engine.Message
}

// CheckOutcome is everything a resolved check produced.
type CheckOutcome struct {
	Resolution engine.DifficultyResolution
	Result     engine.CheckResult
	Action     string
	// Injection is the text to send in place of the player's message.
	Injection string
}

// Source is the resolved source label or "".
func (o CheckOutcome) Source() string {
	if o.Resolution.Source == nil {
		return ""
	}
	return *o.Resolution.Source
}

// New loads compendiums, the character and the journal named in cfg.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.roller == nil {
		s.roller = engine.CryptoRoller{}
	}

	loader := data.NewLoader(cfg.DataDirs, append([]data.LoaderOption{data.WithLogger(s.log)}, s.loaderOpts...)...)
	s.store = data.NewStore(loader, cfg.Compendiums, s.log)
	s.store.Load()

	table, err := rules.NewTable(cfg.Outcome.Tiers, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to build outcome tiers: %w", err)
	}
	s.table = table

	ch, found, err := LoadCharacter(cfg.CharacterFile)
	if err != nil {
		return nil, err
	}
	if !found {
		ch.SetDifficulty(cfg.Difficulty.Default)
	}
	s.character = ch

	settings := cfg.EngineSettings()
	settings.DefaultDifficulty = ch.Difficulty
	s.engine = engine.NewEngine(s.store, settings, s.log)
	s.extractor = engine.NewExtractor(cfg.Progression.Cooldown, s.log)
	s.parser = parser.Build()

	if s.journal == nil {
		if cfg.JournalFile == "" {
			s.journal = discardJournal{}
		} else {
			j, err := OpenJournal(cfg.JournalFile)
			if err != nil {
				return nil, err
			}
			s.journal = j
		}
	}
	return s, nil
}

// Close releases the journal.
func (s *Session) Close() error {
	return s.journal.Close()
}

// Character returns the live character.
func (s *Session) Character() *engine.Character { return s.character }

// Engine returns the difficulty engine.
func (s *Session) Engine() *engine.Engine { return s.engine }

// Store returns the compendium store.
func (s *Session) Store() *data.Store { return s.store }

// Config returns the configuration the session was built from.
func (s *Session) Config() config.Config { return s.cfg }

// Transcript returns the messages observed so far, oldest first.
func (s *Session) Transcript() []engine.Message { return s.transcript }

// Observe records a chat turn. AI-authored turns are run through the
// progression extractor; the resulting events are journaled and the character
// file is saved.
func (s *Session) Observe(msg engine.Message) (engine.Extraction, error) {
	s.transcript = append(s.transcript, msg)
	if msg.IsUser {
		return engine.Extraction{}, nil
	}

	before := s.character.LastProcessedIndex
	out := s.extractor.Extract(msg, s.character)
	if out.Empty() && s.character.LastProcessedIndex == before {
		return out, nil
	}
	if err := s.record(out.Events...); err != nil {
		return out, err
	}
	return out, nil
}

// Narrate observes an AI turn numbered after the last one seen.
func (s *Session) Narrate(text string) (engine.Extraction, error) {
	return s.Observe(engine.Message{Index: s.nextIndex(), Text: text})
}

// Say observes a player turn numbered after the last one seen.
func (s *Session) Say(text string) {
	s.transcript = append(s.transcript, engine.Message{Index: s.nextIndex(), IsUser: true, Text: text})
}

func (s *Session) nextIndex() int {
	next := s.character.LastProcessedIndex + 1
	if n := len(s.transcript); n > 0 && s.transcript[n-1].Index >= next {
		next = s.transcript[n-1].Index + 1
	}
	return next
}

// PendingLevelUp returns the level-up waiting for an answer, if any.
func (s *Session) PendingLevelUp() (int, bool) {
	return s.character.PendingLevels, s.character.PendingLevels > 0
}

// AcceptLevelUp applies the pending level-up. It returns nil when nothing is pending.
func (s *Session) AcceptLevelUp() (engine.Event, error) {
	evt := engine.AcceptLevelUp(s.character)
	if evt == nil {
		return nil, nil
	}
	return evt, s.record(evt)
}

// DeclineLevelUp drops the pending level-up. It returns nil when nothing is pending.
func (s *Session) DeclineLevelUp() (engine.Event, error) {
	evt := engine.DeclineLevelUp(s.character)
	if evt == nil {
		return nil, nil
	}
	return evt, s.record(evt)
}

// Check resolves an ability check for the player's action. abilityName is a
// key or display name. A nil window uses the observed transcript.
func (s *Session) Check(abilityName, action string, window []engine.Message) (CheckOutcome, error) {
	key, err := s.character.AbilityByName(abilityName)
	if err != nil {
		return CheckOutcome{}, err
	}
	if window == nil {
		window = s.transcript
	}
	ability := s.character.AbilityName(key)

	res := s.engine.ResolveDifficulty(ability, action, window)
	result := engine.Check(s.roller, s.table, ability, s.character.Modifier(key), res.Difficulty)
	out := CheckOutcome{
		Resolution: res,
		Result:     result,
		Action:     strings.TrimSpace(action),
		Injection:  engine.Injection(action, ability, result.Tier),
	}

	s.log.Debug("check resolved",
		zap.String("ability", ability),
		zap.Int("natural", result.Natural),
		zap.Int("dc", result.Difficulty),
		zap.String("tier", string(result.Tier)),
		zap.String("source", out.Source()))

	if err := s.journal.Append(&engine.CheckResolvedEvent{Result: result, Source: out.Source(), Action: out.Action}); err != nil {
		return out, fmt.Errorf("failed to journal check: %w", err)
	}
	return out, nil
}

// Sheet renders the character sheet.
func (s *Session) Sheet() string {
	return engine.Sheet(s.character)
}

// UpdateCharacter applies edit to the character and saves it when edit succeeds.
func (s *Session) UpdateCharacter(edit func(*engine.Character) error) error {
	if err := edit(s.character); err != nil {
		return err
	}
	if settings := s.engine.Settings(); settings.DefaultDifficulty != s.character.Difficulty {
		settings.DefaultDifficulty = s.character.Difficulty
		s.engine.SetSettings(settings)
	}
	return s.save()
}

// SetDifficulty changes the default difficulty used when no challenge applies.
func (s *Session) SetDifficulty(dc int) error {
	return s.UpdateCharacter(func(c *engine.Character) error {
		c.SetDifficulty(dc)
		return nil
	})
}

// SetEnabled toggles a compendium and persists the flags.
func (s *Session) SetEnabled(id string, enabled bool) error {
	if err := s.store.SetEnabled(id, enabled); err != nil {
		return err
	}
	s.engine.Rebind()
	s.log.Info("compendium toggled", zap.String("compendium", id), zap.Bool("enabled", enabled))
	return s.persistKey("compendiums", s.store.EnabledFlags())
}

// SetOverride pins the difficulty source to an entry; "" clears it. Unknown ids
// are rejected with a suggestion.
func (s *Session) SetOverride(id string) error {
	if id != "" {
		if _, err := s.store.Resolve(id); err != nil {
			return err
		}
	}
	s.engine.SetOverride(id)
	return s.persistKey("detection.override", id)
}

// Reload rereads the compendium directories. Active challenges whose entry is
// gone are dropped, the rest keep their countdown.
func (s *Session) Reload() int {
	s.store.Load()
	s.engine.Rebind()
	n := len(s.store.EntryList())
	s.log.Info("compendiums reloaded", zap.Int("entries", n))
	return n
}

// History returns the journal, oldest first.
func (s *Session) History() ([]Record, error) {
	return s.journal.Load()
}

func (s *Session) record(events ...engine.Event) error {
	var errs []error
	for _, evt := range events {
		if err := s.journal.Append(evt); err != nil {
			errs = append(errs, fmt.Errorf("failed to journal %s: %w", evt.Type(), err))
		}
	}
	if err := s.save(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Session) save() error {
	if s.cfg.CharacterFile == "" {
		return nil
	}
	return SaveCharacter(s.cfg.CharacterFile, s.character)
}

func (s *Session) persistKey(key string, value any) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist(key, value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
