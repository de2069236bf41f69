package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const beastsYAML = `
name: Beasts
entries:
  - id: wolf
    name: Wolf
    detection:
      nouns: [wolf, wolves]
      action_verbs: [fight, tame]
      modifiers:
        rabid:
          keywords: [rabid, foaming]
          difficultyAdjust: 3
        pup:
          keywords: [pup, cub]
          difficultyAdjust: -4
        alpha:
          keywords: [alpha]
          difficultyAdjust: 2
    base_difficulties: {STR: 12}
    difficulties: {WIS: 14}
  - id: wolf
    name: Duplicate Wolf
  - id: ghost
    name: Ghost
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoaderEmbeddedFallback(t *testing.T) {
	l := NewLoader(nil)
	comps := l.LoadAll()
	require.NotEmpty(t, comps)

	var core *Compendium
	for _, c := range comps {
		if c.ID == "core" {
			core = c
		}
	}
	require.NotNil(t, core, "bundled core compendium should load without any data dir")
	assert.NotEmpty(t, core.Entries)
}

func TestLoaderDecodesEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "beasts.yaml", beastsYAML)

	comps := NewLoader([]string{dir}, WithoutEmbedded()).LoadAll()
	require.Len(t, comps, 1)

	c := comps[0]
	assert.Equal(t, "beasts", c.ID, "id defaults to the file stem")
	assert.Equal(t, "Beasts", c.Name)
	assert.True(t, c.DefaultEnabled())
	require.Len(t, c.Entries, 2, "duplicate ids are dropped")

	wolf := c.Entries[0]
	assert.Equal(t, "Wolf", wolf.Name)
	assert.Equal(t, []string{"wolf", "wolves"}, wolf.Nouns())
	assert.Equal(t, DefaultStickiness, wolf.MaxStickiness())

	names := []string{}
	for _, m := range wolf.Detection.Modifiers {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"rabid", "pup", "alpha"}, names, "modifier order follows the file")
	assert.Equal(t, -4, wolf.Detection.Modifiers[1].DifficultyAdjust)

	dc, ok := wolf.DifficultyFor("str")
	assert.True(t, ok)
	assert.Equal(t, 12, dc)
	dc, ok = wolf.DifficultyFor("WIS")
	assert.True(t, ok)
	assert.Equal(t, 14, dc)
	_, ok = wolf.DifficultyFor("CHA")
	assert.False(t, ok)

	assert.True(t, c.Entries[1].Inert(), "entries without nouns are inert")
}

func TestLoaderJSONAndKeywordsFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "weather.json", `{
  "id": "weather",
  "name": "Weather",
  "enabled_by_default": false,
  "entries": [
    {"id": "fog", "name": "Fog", "keywords": ["fog", "mist"], "stickiness": 2,
     "detection": {"action_verbs": ["navigate"]}, "difficulties": {"WIS": 11}}
  ]
}`)

	comps := NewLoader([]string{dir}, WithoutEmbedded()).LoadAll()
	require.Len(t, comps, 1)
	assert.False(t, comps[0].DefaultEnabled())

	fog := comps[0].Entries[0]
	assert.Equal(t, []string{"fog", "mist"}, fog.Nouns())
	assert.Equal(t, 2, fog.MaxStickiness())
}

func TestLoaderSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "beasts.yaml", beastsYAML)
	writeFile(t, dir, "broken.yaml", "entries: [: : :")
	writeFile(t, dir, "badmods.yaml", "entries:\n  - id: x\n    detection:\n      modifiers: [a, b]\n")
	writeFile(t, dir, "notes.txt", "not a compendium")

	comps := NewLoader([]string{dir, filepath.Join(dir, "missing")}, WithoutEmbedded()).LoadAll()
	require.Len(t, comps, 1)
	assert.Equal(t, "beasts", comps[0].ID)
}

func TestLoaderFirstDirectoryWins(t *testing.T) {
	campaign := t.TempDir()
	world := t.TempDir()
	writeFile(t, campaign, "beasts.yaml", "name: Campaign Beasts\nentries: []\n")
	writeFile(t, world, "beasts.yaml", beastsYAML)

	comps := NewLoader([]string{campaign, world}, WithoutEmbedded()).LoadAll()
	require.Len(t, comps, 1)
	assert.Equal(t, "Campaign Beasts", comps[0].Name)
}

func TestWatchSignalsOnChange(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed, err := Watch(ctx, []string{dir}, nil)
	require.NoError(t, err)

	writeFile(t, dir, "beasts.yaml", beastsYAML)

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change signal after writing a compendium file")
	}

	cancel()
	for range changed {
	}
}
