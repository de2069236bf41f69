package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the journal of checks and character changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		app, err := openSession()
		if err != nil {
			return err
		}
		defer app.Close()

		records, err := app.History()
		if err != nil {
			return err
		}
		if limit > 0 && len(records) > limit {
			records = records[len(records)-limit:]
		}
		if len(records) == 0 {
			fmt.Println("The journal is empty.")
			return nil
		}
		for _, r := range records {
			msg := strings.ReplaceAll(r.Event.Message(), "\n", "\n    ")
			fmt.Printf("%s  %-16s %s\n", r.Time.Local().Format("2006-01-02 15:04"), r.Event.Type(), msg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "show only the last n entries (0 for all)")
}
