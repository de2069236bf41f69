package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var compendiumCmd = &cobra.Command{
	Use:     "compendium",
	Aliases: []string{"compendiums"},
	Short:   "List and toggle the challenge compendiums",
	Long: `Compendiums are YAML or JSON files of detectable challenges, read from the
data directories (and the bundled core set). Each one can be enabled or disabled;
the choice is saved in the config file.`,
}

var compendiumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded compendiums",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		all := app.Store().Compendiums()
		if len(all) == 0 {
			fmt.Printf("No compendiums found in %s\n", strings.Join(app.Config().DataDirs, ", "))
			return nil
		}
		for _, c := range all {
			mark := " "
			if c.Enabled {
				mark = "x"
			}
			fmt.Printf("[%s] %s (%s): %d entries\n", mark, c.ID, c.Name, len(c.Entries))
			if c.Source != "" {
				fmt.Printf("    ├─ %s\n", c.Source)
			}
		}
		if o := app.Engine().Settings().Override; o != "" {
			fmt.Printf("Override: %s\n", o)
		}
		return nil
	},
}

var compendiumShowCmd = &cobra.Command{
	Use:   "show <entry id>",
	Short: "Show one challenge entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		e, err := app.Store().Resolve(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", e.DisplayName(), e.ID)
		fmt.Printf("├─ nouns: %s\n", strings.Join(e.Nouns(), ", "))
		fmt.Printf("├─ verbs: %s\n", strings.Join(e.Detection.ActionVerbs, ", "))
		for _, m := range e.Detection.Modifiers {
			fmt.Printf("├─ modifier %s %+d: %s\n", m.Name, m.DifficultyAdjust, strings.Join(m.Keywords, ", "))
		}
		names := map[string]bool{}
		for _, table := range []map[string]int{e.BaseDifficulties, e.Difficulties} {
			for k := range table {
				names[strings.ToUpper(k)] = true
			}
		}
		sorted := make([]string, 0, len(names))
		for k := range names {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			dc, _ := e.DifficultyFor(k)
			fmt.Printf("├─ %s DC %d\n", k, dc)
		}
		fmt.Printf("├─ stickiness: %d\n", e.MaxStickiness())
		if e.Notes != "" {
			fmt.Printf("└─ %s\n", e.Notes)
		}
		return nil
	},
}

func toggleCompendium(enabled bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		for _, id := range args {
			if err := app.SetEnabled(id, enabled); err != nil {
				return err
			}
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Printf("%s %s\n", strings.Join(args, ", "), state)
		return nil
	}
}

var compendiumEnableCmd = &cobra.Command{
	Use:   "enable <id>...",
	Short: "Enable compendiums",
	Args:  cobra.MinimumNArgs(1),
	RunE:  toggleCompendium(true),
}

var compendiumDisableCmd = &cobra.Command{
	Use:   "disable <id>...",
	Short: "Disable compendiums",
	Args:  cobra.MinimumNArgs(1),
	RunE:  toggleCompendium(false),
}

var compendiumOverrideCmd = &cobra.Command{
	Use:   "override <entry id>|off",
	Short: "Pin every check to one entry's difficulties",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		id := args[0]
		if strings.EqualFold(id, "off") {
			id = ""
		}
		if err := app.SetOverride(id); err != nil {
			return err
		}
		if id == "" {
			fmt.Println("Override cleared.")
		} else {
			fmt.Printf("Difficulty pinned to %s.\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compendiumCmd)
	compendiumCmd.AddCommand(compendiumListCmd, compendiumShowCmd, compendiumEnableCmd, compendiumDisableCmd, compendiumOverrideCmd)
}
