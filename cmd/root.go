/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/lucashald/skill-check/internal/config"
	"github.com/lucashald/skill-check/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile string
	verbose bool
	logFile string
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skillcheck",
	Short: "Ability checks for narrative chat sessions",
	Long: `skillcheck turns free-text narration into game state and resolves the
player's actions with d20 checks.

It tracks the challenges the narration mentions (creatures, locked doors,
storms), picks the difficulty of an action from the challenge it targets,
rolls, and writes the narration instruction for the outcome. Level-ups,
inventory and spells mentioned by the narrator are kept on the character sheet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(viper.GetViper(), cfgFile); err != nil {
			return err
		}

		// The TUI owns the terminal; only log when a file was asked for.
		if cmd.Name() == "play" && logFile == "" {
			logger = zap.NewNop()
			return nil
		}

		logConfig := zap.NewProductionConfig()
		if verbose {
			logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		if logFile != "" {
			logConfig.OutputPaths = []string{logFile}
			logConfig.ErrorOutputPaths = []string{logFile}
		}
		var err error
		logger, err = logConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.skillcheck.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.StringSlice("data-dir", nil, "compendium directories, searched in order")
	flags.String("character", "", "character file")
	flags.String("journal", "", "journal file")

	_ = viper.BindPFlag("data_dirs", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("character_file", flags.Lookup("character"))
	_ = viper.BindPFlag("journal_file", flags.Lookup("journal"))
}

// openSession builds the session from the merged configuration. Compendium
// toggles and the override are written back to the config file.
func openSession(opts ...session.Option) (*session.Session, error) {
	v := viper.GetViper()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	opts = append([]session.Option{
		session.WithLogger(logger),
		session.WithPersister(func(key string, value any) error {
			return config.Persist(v, key, value)
		}),
	}, opts...)
	return session.New(cfg, opts...)
}
