package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rbaciam",
	Short: "rbaciam — team access matrix service",
	Long:  "Serves the normalized team access matrix with fuzzy team lookup, plus tooling for offline CSV processing.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(processCSVCmd)
	rootCmd.AddCommand(tokenCmd)
}
