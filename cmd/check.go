package cmd

import (
	"fmt"
	"strings"

	"github.com/lucashald/skill-check/internal/engine"
	"github.com/lucashald/skill-check/internal/session"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <ability> [action text...]",
	Short: "Roll an ability check against the challenges of a transcript",
	Long: `Resolves the difficulty of an action from the challenges mentioned in the
last turns of a transcript, rolls a d20 with the character's modifier and prints
the narration instruction to send to the AI.

	skillcheck check str I attack the dragon --transcript chat.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, _ := cmd.Flags().GetString("transcript")
		roll, _ := cmd.Flags().GetInt("roll")

		var opts []session.Option
		if roll != 0 {
			opts = append(opts, session.WithRoller(engine.NewSequenceRoller(roll)))
		}
		app, err := openSession(opts...)
		if err != nil {
			return err
		}
		defer app.Close()

		window := []engine.Message{}
		if transcript != "" {
			if window, err = session.LoadTranscript(transcript); err != nil {
				return err
			}
		}

		out, err := app.Check(args[0], strings.Join(args[1:], " "), window)
		if err != nil {
			return err
		}

		if src := out.Source(); src != "" {
			fmt.Printf("DC %d from %s\n", out.Result.Difficulty, src)
		} else {
			fmt.Printf("DC %d (default)\n", out.Result.Difficulty)
		}
		if out.Resolution.Notes != nil {
			fmt.Printf("Notes: %s\n", *out.Resolution.Notes)
		}
		fmt.Println(out.Result.Summary())
		fmt.Printf("\n%s\n", out.Injection)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("transcript", "t", "", "transcript file (yaml, json or jsonl)")
	checkCmd.Flags().Int("roll", 0, "use this natural roll instead of a random one")
}
