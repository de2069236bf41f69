package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucashald/skill-check/internal/engine"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skillcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"./compendiums"}, cfg.DataDirs)
	assert.Equal(t, "./character.yaml", cfg.CharacterFile)
	assert.Equal(t, "./journal.jsonl", cfg.JournalFile)
	assert.Equal(t, engine.DefaultSettings(), cfg.EngineSettings())
	assert.Equal(t, engine.DefaultCooldown, cfg.Progression.Cooldown)
	assert.Empty(t, cfg.Compendiums)
	assert.Empty(t, cfg.Outcome.Tiers)
}

func TestLoadFileAndClamp(t *testing.T) {
	path := writeConfig(t, `
data_dirs: [./campaign, ./world]
difficulty:
  default: 45
detection:
  enabled: false
  context_window: 0
  override: locked_door
progression:
  cooldown: 5
compendiums:
  core: false
  undead: true
outcome:
  tiers:
    - tier: strong_success
      when: natural >= 19
    - tier: success
      when: total >= dc
`)
	v := viper.New()
	require.NoError(t, Init(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"./campaign", "./world"}, cfg.DataDirs)
	assert.Equal(t, engine.MaxDifficulty, cfg.Difficulty.Default)
	assert.False(t, cfg.Detection.Enabled)
	assert.Equal(t, engine.DefaultContextWindow, cfg.Detection.ContextWindow)
	assert.Equal(t, "locked_door", cfg.EngineSettings().Override)
	assert.Equal(t, 5, cfg.Progression.Cooldown)
	assert.Equal(t, map[string]bool{"core": false, "undead": true}, cfg.Compendiums)
	require.Len(t, cfg.Outcome.Tiers, 2)
	assert.Equal(t, engine.TierStrongSuccess, cfg.Outcome.Tiers[0].Tier)
	assert.Equal(t, "natural >= 19", cfg.Outcome.Tiers[0].When)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SKILLCHECK_DIFFICULTY_DEFAULT", "18")
	t.Setenv("SKILLCHECK_DETECTION_OVERRIDE", "chasm")

	v := viper.New()
	require.NoError(t, Init(v, writeConfig(t, "difficulty:\n  default: 10\n")))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 18, cfg.Difficulty.Default)
	assert.Equal(t, "chasm", cfg.Detection.Override)
}

func TestPersistWritesConfigFile(t *testing.T) {
	path := writeConfig(t, "difficulty:\n  default: 14\n")
	v := viper.New()
	require.NoError(t, Init(v, path))

	require.NoError(t, Persist(v, "compendiums", map[string]bool{"core": false}))

	reread := viper.New()
	require.NoError(t, Init(reread, path))
	cfg, err := Load(reread)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"core": false}, cfg.Compendiums)
	assert.Equal(t, 14, cfg.Difficulty.Default)
}
