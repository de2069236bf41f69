package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/lucashald/skill-check/internal/data"
	"github.com/spf13/cobra"
)

// Set through -ldflags "-X github.com/lucashald/skill-check/cmd.Version=..." on release builds.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the skillcheck build and its bundled compendiums",
	Long: `Prints the skillcheck build followed by the compendiums compiled into the
binary. Bundled compendiums load after every data directory, so a file with the
same id in a data directory replaces them.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), data.NewLoader(nil).LoadAll())
	},
}

func printVersion(w io.Writer, bundled []*data.Compendium) {
	fmt.Fprintf(w, "skillcheck %s (%s, built %s, %s/%s)\n", Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Bundled compendiums: %d\n", len(bundled))
	for _, c := range bundled {
		fmt.Fprintf(w, "├─ %s: %s (%d entries)\n", c.ID, c.Name, len(c.Entries))
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
