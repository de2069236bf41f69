package data

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed compendiums/*.yaml
var embedded embed.FS

// Loader reads compendium files from a list of data directories, one compendium
// per file. The compendiums bundled with the binary are used as a fallback layer.
type Loader struct {
	dataDirs     []string
	skipEmbedded bool
	log          *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger routes skipped-file warnings to log.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// WithoutEmbedded disables the bundled compendiums.
func WithoutEmbedded() LoaderOption {
	return func(l *Loader) { l.skipEmbedded = true }
}

// NewLoader initializes a Loader with the given data directory hierarchy.
func NewLoader(dataDirs []string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dataDirs: dataDirs,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dirs returns the configured data directories.
func (l *Loader) Dirs() []string {
	return l.dataDirs
}

// LoadAll reads every compendium it can find. Files that cannot be read or
// decoded are logged and omitted; they never prevent the others from loading.
// When two files declare the same compendium id, the first one wins.
func (l *Loader) LoadAll() []*Compendium {
	var out []*Compendium
	seen := make(map[string]bool)

	add := func(c *Compendium) {
		if seen[c.ID] {
			l.log.Warn("duplicate compendium id, skipping", zap.String("id", c.ID), zap.String("source", c.Source))
			return
		}
		seen[c.ID] = true
		out = append(out, c)
	}

	for _, dir := range l.dataDirs {
		for _, path := range compendiumFiles(dir) {
			c, err := l.LoadFile(path)
			if err != nil {
				l.log.Warn("skipping compendium", zap.String("path", path), zap.Error(err))
				continue
			}
			add(c)
		}
	}

	if !l.skipEmbedded {
		names, _ := fs.Glob(embedded, "compendiums/*.yaml")
		sort.Strings(names)
		for _, name := range names {
			raw, err := embedded.ReadFile(name)
			if err != nil {
				l.log.Warn("skipping bundled compendium", zap.String("name", name), zap.Error(err))
				continue
			}
			c, err := l.decode(raw, name)
			if err != nil {
				l.log.Warn("skipping bundled compendium", zap.String("name", name), zap.Error(err))
				continue
			}
			add(c)
		}
	}

	return out
}

// CompendiumID normalizes a compendium id the way the loader stores it.
func CompendiumID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// LoadFile decodes a single compendium file. JSON files are decoded by the YAML
// decoder as well.
func (l *Loader) LoadFile(path string) (*Compendium, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compendium %s: %w", path, err)
	}
	return l.decode(raw, path)
}

func (l *Loader) decode(raw []byte, source string) (*Compendium, error) {
	var c Compendium
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode compendium %s: %w", source, err)
	}

	if c.ID == "" {
		base := filepath.Base(source)
		c.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	// Ids key the persisted enabled flags, and viper folds map keys to lower case.
	c.ID = CompendiumID(c.ID)
	c.Source = source

	// Drop entries without an id and repeated ids; the first definition wins.
	kept := c.Entries[:0]
	ids := make(map[string]bool, len(c.Entries))
	for _, e := range c.Entries {
		if e == nil || e.ID == "" {
			l.log.Warn("entry without id, skipping", zap.String("compendium", c.ID))
			continue
		}
		if ids[e.ID] {
			l.log.Warn("duplicate entry id, skipping", zap.String("compendium", c.ID), zap.String("entry", e.ID))
			continue
		}
		ids[e.ID] = true
		if e.Inert() {
			l.log.Debug("entry has no nouns and will never match", zap.String("compendium", c.ID), zap.String("entry", e.ID))
		}
		kept = append(kept, e)
	}
	c.Entries = kept

	return &c, nil
}

// compendiumFiles lists the compendium files of a directory in name order.
func compendiumFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isCompendiumFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths
}

func isCompendiumFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return !strings.HasPrefix(name, ".")
	}
	return false
}
