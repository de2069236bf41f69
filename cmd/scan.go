package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/lucashald/skill-check/internal/session"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Apply the level-ups, items and spells narrated in a transcript",
	Long: `Runs the progression detectors over every AI turn of a transcript that the
character has not seen yet, applies the changes to the character file and
journals them. Detected level-ups are asked about unless --yes or --no is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transcript, _ := cmd.Flags().GetString("transcript")
		yes, _ := cmd.Flags().GetBool("yes")
		no, _ := cmd.Flags().GetBool("no")
		if yes && no {
			return fmt.Errorf("--yes and --no are mutually exclusive")
		}

		msgs, err := session.LoadTranscript(transcript)
		if err != nil {
			return err
		}
		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		in := bufio.NewReader(os.Stdin)
		var changes []string
		bar := progressbar.Default(int64(len(msgs)), "Scanning transcript")
		for _, msg := range msgs {
			out, err := app.Observe(msg)
			if err != nil {
				return err
			}
			for _, evt := range out.Events {
				changes = append(changes, evt.Message())
			}

			if out.LevelUp != nil {
				accept := yes
				if !yes && !no {
					_ = bar.Clear()
					fmt.Printf("Turn %d: level up detected (+%d). Accept? [y/N] ", out.LevelUp.Turn, out.LevelUp.Levels)
					answer, _ := in.ReadString('\n')
					answer = strings.ToLower(strings.TrimSpace(answer))
					accept = answer == "y" || answer == "yes"
				}
				answerFn := app.DeclineLevelUp
				if accept {
					answerFn = app.AcceptLevelUp
				}
				evt, err := answerFn()
				if err != nil {
					return err
				}
				if evt != nil {
					changes = append(changes, evt.Message())
				}
			}
			_ = bar.Add(1)
		}
		_ = bar.Finish()

		fmt.Println()
		if len(changes) == 0 {
			fmt.Println("No new progression found.")
			return nil
		}
		for _, c := range changes {
			fmt.Printf("├─ %s\n", c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("transcript", "t", "", "transcript file (yaml, json or jsonl)")
	scanCmd.Flags().Bool("yes", false, "accept every detected level-up")
	scanCmd.Flags().Bool("no", false, "decline every detected level-up")
	_ = scanCmd.MarkFlagRequired("transcript")
}
