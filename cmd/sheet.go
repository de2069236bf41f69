package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucashald/skill-check/internal/engine"
	"github.com/spf13/cobra"
)

var sheetBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#874BFD")).
	Padding(0, 2)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Show or edit the character sheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Println(sheetBoxStyle.Render(app.Sheet()))
		if levels, ok := app.PendingLevelUp(); ok {
			fmt.Printf("A level-up (+%d) is waiting: run 'skillcheck play' and answer /yes or /no.\n", levels)
		}
		return nil
	},
}

// editSheet opens the session, applies edit and prints the new sheet.
func editSheet(edit func(c *engine.Character) error) error {
	app, err := openSession()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.UpdateCharacter(edit); err != nil {
		return err
	}
	fmt.Println(sheetBoxStyle.Render(app.Sheet()))
	return nil
}

var sheetSetCmd = &cobra.Command{
	Use:   "set <ability> <value>",
	Short: "Set an ability value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("value must be a number: %w", err)
		}
		return editSheet(func(c *engine.Character) error {
			key, err := c.AbilityByName(args[0])
			if err != nil {
				return err
			}
			return c.SetScore(key, v)
		})
	},
}

var sheetRenameCmd = &cobra.Command{
	Use:   "rename <ability> <name>",
	Short: "Rename an ability (uppercased, at most 6 characters)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSheet(func(c *engine.Character) error {
			key, err := c.AbilityByName(args[0])
			if err != nil {
				return err
			}
			return c.Rename(key, args[1])
		})
	},
}

var sheetStyleCmd = &cobra.Command{
	Use:       "style derived|flat",
	Short:     "Choose how ability values become modifiers",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(engine.StyleDerived), string(engine.StyleFlat)},
	RunE: func(cmd *cobra.Command, args []string) error {
		style := engine.Style(strings.ToLower(args[0]))
		if style != engine.StyleDerived && style != engine.StyleFlat {
			return fmt.Errorf("unknown style %q, expected derived or flat", args[0])
		}
		return editSheet(func(c *engine.Character) error {
			c.SetStyle(style)
			return nil
		})
	},
}

var sheetDifficultyCmd = &cobra.Command{
	Use:   "difficulty <number|preset>",
	Short: "Set the default difficulty",
	Long: `Sets the difficulty used when no challenge applies, either as a number
(1-30) or as one of the presets: Very Easy, Easy, Medium, Hard, Very Hard,
Nearly Impossible.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dc, err := parseDifficulty(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return editSheet(func(c *engine.Character) error {
			c.SetDifficulty(dc)
			return nil
		})
	},
}

func parseDifficulty(s string) (int, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n, nil
	}
	for _, p := range engine.DifficultyPresets {
		if strings.EqualFold(p.Name, strings.TrimSpace(s)) {
			return p.Difficulty, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

func init() {
	rootCmd.AddCommand(sheetCmd)
	sheetCmd.AddCommand(sheetSetCmd, sheetRenameCmd, sheetStyleCmd, sheetDifficultyCmd)
}
