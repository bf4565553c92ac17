package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"go-omen/seed"
)

var seedRandom bool

var seedCmd = &cobra.Command{
	Use:   "seed [CONFIG...]",
	Short: "Show the seed for a button configuration",
	Long: `Print the seed an Oracle broadcasts for each six-letter configuration.

Each letter is one button state, A through F. With --random a fresh
configuration is drawn instead.`,
	Example: "  omen seed AAAAAA BCAFEA",
	RunE: func(cmd *cobra.Command, args []string) error {
		var configs []seed.Configuration
		for _, a := range args {
			c, err := seed.Parse(a)
			if err != nil {
				return err
			}
			configs = append(configs, c)
		}
		if seedRandom {
			var c seed.Configuration
			c.Randomize(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
			configs = append(configs, c)
		}
		if len(configs) == 0 {
			return fmt.Errorf("give a configuration or --random")
		}
		for _, c := range configs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %d\n", c, c.Seed())
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVarP(&seedRandom, "random", "r", false, "draw a random configuration")
}
