// Package config loads skillcheck settings through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucashald/skill-check/internal/engine"
	"github.com/lucashald/skill-check/internal/rules"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix namespaces environment overrides, e.g. SKILLCHECK_DIFFICULTY_DEFAULT.
	EnvPrefix = "SKILLCHECK"
	// FileName is the config file looked up in $HOME and the working directory.
	FileName = ".skillcheck"
)

// Config is the decoded configuration.
type Config struct {
	DataDirs      []string          `mapstructure:"data_dirs"`
	CharacterFile string            `mapstructure:"character_file"`
	JournalFile   string            `mapstructure:"journal_file"`
	Difficulty    DifficultyConfig  `mapstructure:"difficulty"`
	Detection     DetectionConfig   `mapstructure:"detection"`
	Progression   ProgressionConfig `mapstructure:"progression"`
	Compendiums   map[string]bool   `mapstructure:"compendiums"`
	Outcome       OutcomeConfig     `mapstructure:"outcome"`
}

type DifficultyConfig struct {
	Default int `mapstructure:"default"`
}

type DetectionConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ContextWindow int    `mapstructure:"context_window"`
	Override      string `mapstructure:"override"`
}

type ProgressionConfig struct {
	Cooldown int `mapstructure:"cooldown"`
}

type OutcomeConfig struct {
	Tiers []rules.TierRule `mapstructure:"tiers"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dirs", []string{"./compendiums"})
	v.SetDefault("character_file", "./character.yaml")
	v.SetDefault("journal_file", "./journal.jsonl")
	v.SetDefault("difficulty.default", engine.DefaultDifficulty)
	v.SetDefault("detection.enabled", true)
	v.SetDefault("detection.context_window", engine.DefaultContextWindow)
	v.SetDefault("detection.override", "")
	v.SetDefault("progression.cooldown", engine.DefaultCooldown)
	v.SetDefault("compendiums", map[string]bool{})
	v.SetDefault("outcome.tiers", []rules.TierRule{})
}

// Init wires the env prefix and config file lookup. An explicit cfgFile wins
// over $HOME/.skillcheck.yaml and ./.skillcheck.yaml. A missing file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(FileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if cfgFile != "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes v and clamps out of range values.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Difficulty.Default == 0 {
		c.Difficulty.Default = engine.DefaultDifficulty
	}
	c.Difficulty.Default = engine.ClampDifficulty(c.Difficulty.Default)
	if c.Detection.ContextWindow <= 0 {
		c.Detection.ContextWindow = engine.DefaultContextWindow
	}
	if c.Progression.Cooldown <= 0 {
		c.Progression.Cooldown = engine.DefaultCooldown
	}
	if c.Compendiums == nil {
		c.Compendiums = map[string]bool{}
	}
	if len(c.DataDirs) == 0 {
		c.DataDirs = []string{"./compendiums"}
	}
}

// EngineSettings maps the detection keys onto the engine.
func (c Config) EngineSettings() engine.Settings {
	return engine.Settings{
		Detection:         c.Detection.Enabled,
		DefaultDifficulty: c.Difficulty.Default,
		ContextWindow:     c.Detection.ContextWindow,
		Override:          c.Detection.Override,
	}
}

// Persist stores key in the config file in use, creating $HOME/.skillcheck.yaml
// when there is none yet.
func Persist(v *viper.Viper, key string, value any) error {
	v.Set(key, value)
	if err := v.WriteConfig(); err == nil {
		return nil
	}
	if err := v.SafeWriteConfig(); err == nil {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home directory: %w", err)
	}
	if err := v.WriteConfigAs(filepath.Join(home, FileName+".yaml")); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
