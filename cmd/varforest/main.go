package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "varforest",
		Short: "varforest grows regression random forests",
		Long: `A tool to train variance-reduction random forests on numeric CSV data
and pick the ensemble size with the lowest validation error`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(sweepCmd())
	return rootCmd
}
