package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "omen",
	Short: "Seeded stochastic voltage modules on a daisy chain",
	Long: `go-omen runs a small rack of chained noise modules.

An Oracle at the left of the chain broadcasts a seed and a 24 PPQN clock.
Fate, Kron, Moira and Tale modules to its right reseed and step from it, so
the same seed always plays back the same decisions.

Available commands:
  run      - Run the rack with the terminal monitor (default)
  seed     - Show the seed for a button configuration
  patch    - Write or inspect patch files
  project  - List and remove saved rack states`,
	SilenceUsage: true,
	RunE:         runRack,
}

func init() {
	addRunFlags(rootCmd)
	rootCmd.AddCommand(runCmd, seedCmd, patchCmd, projectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
