// Package cmd is the gaml command line: a single command that reads a
// config file and runs the annealing search to completion.
package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var seedFlag int64

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:     "gaml <config-path>",
	Short:   "Assemble a genome by simulated-annealing local search over a sequence graph",
	Version: "0.1.0",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0], seedFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "random seed (defaults to the current Unix time)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to
// happen once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
