package data

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

// ErrUnknownCompendium is returned when toggling a compendium that is not loaded.
var ErrUnknownCompendium = errors.New("unknown compendium")

// ErrUnknownEntry is returned when an entry id cannot be resolved.
var ErrUnknownEntry = errors.New("unknown compendium entry")

// Store holds the loaded compendiums and their enabled flags. The flags survive
// reloads: a compendium seen before keeps its flag, a new one gets its default.
// A Store is not safe for concurrent use.
type Store struct {
	loader      *Loader
	log         *zap.Logger
	compendiums []*Compendium
	flags       map[string]bool
}

// NewStore creates a store backed by loader. flags are the enabled states
// previously persisted by the host; the map is copied.
func NewStore(loader *Loader, flags map[string]bool, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		loader: loader,
		log:    log,
		flags:  make(map[string]bool, len(flags)),
	}
	for id, on := range flags {
		s.flags[CompendiumID(id)] = on
	}
	return s
}

// Load replaces the in-memory compendium set with a fresh read of the data
// directories. It can be called any number of times.
func (s *Store) Load() []*Compendium {
	loaded := s.loader.LoadAll()
	for _, c := range loaded {
		on, known := s.flags[c.ID]
		if !known {
			on = c.DefaultEnabled()
			s.flags[c.ID] = on
		}
		c.Enabled = on
	}
	s.compendiums = loaded

	s.log.Debug("compendiums loaded", zap.Int("count", len(loaded)))
	return loaded
}

// Compendiums returns every loaded compendium, enabled or not.
func (s *Store) Compendiums() []*Compendium {
	return s.compendiums
}

// SetEnabled toggles a loaded compendium. Ids are case-insensitive.
func (s *Store) SetEnabled(id string, enabled bool) error {
	id = CompendiumID(id)
	for _, c := range s.compendiums {
		if c.ID == id {
			c.Enabled = enabled
			s.flags[id] = enabled
			return nil
		}
	}
	if hint := s.suggestCompendium(id); hint != "" {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownCompendium, id, hint)
	}
	return fmt.Errorf("%w %q", ErrUnknownCompendium, id)
}

// EnabledFlags returns a copy of the enabled flags for persistence.
func (s *Store) EnabledFlags() map[string]bool {
	out := make(map[string]bool, len(s.flags))
	for id, on := range s.flags {
		out[id] = on
	}
	return out
}

// Entries yields (compendium, entry) pairs of enabled compendiums in load order.
// An entry id already yielded by an earlier enabled compendium is skipped, so
// ids stay unique across the enabled set.
func (s *Store) Entries() iter.Seq2[*Compendium, *Entry] {
	return func(yield func(*Compendium, *Entry) bool) {
		seen := make(map[string]bool)
		for _, c := range s.compendiums {
			if !c.Enabled {
				continue
			}
			for _, e := range c.Entries {
				if seen[e.ID] {
					continue
				}
				seen[e.ID] = true
				if !yield(c, e) {
					return
				}
			}
		}
	}
}

// EntryList collects Entries into a slice.
func (s *Store) EntryList() []*Entry {
	var out []*Entry
	for _, e := range s.Entries() {
		out = append(out, e)
	}
	return out
}

// Lookup finds an entry by id among the enabled compendiums.
func (s *Store) Lookup(id string) (*Entry, bool) {
	for _, e := range s.Entries() {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Resolve is Lookup with an error that suggests the closest known id.
func (s *Store) Resolve(id string) (*Entry, error) {
	if e, ok := s.Lookup(id); ok {
		return e, nil
	}
	if hint := s.Suggest(id); hint != "" {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownEntry, id, hint)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEntry, id)
}

// Suggest returns the enabled entry id closest to id, or "" when nothing is close.
func (s *Store) Suggest(id string) string {
	var ids []string
	for _, e := range s.Entries() {
		ids = append(ids, e.ID)
	}
	return closest(id, ids)
}

func (s *Store) suggestCompendium(id string) string {
	ids := make([]string, 0, len(s.compendiums))
	for _, c := range s.compendiums {
		ids = append(ids, c.ID)
	}
	return closest(id, ids)
}

func closest(target string, candidates []string) string {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return ""
	}
	sort.Strings(candidates)

	best, bestDist := "", -1
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(target, strings.ToLower(cand))
		if dist > suggestLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
