package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anahernandes-vtex/rbaciam-novo/internal/matrix/ingest"
)

var processCSVOut string

var processCSVCmd = &cobra.Command{
	Use:   "process-csv <file.csv>",
	Short: "Convert an access matrix CSV export to normalized JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcessCSV,
}

func init() {
	processCSVCmd.Flags().StringVarP(&processCSVOut, "output", "o", "matrix.json", "output file")
}

func runProcessCSV(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	m, stats, err := ingest.Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(processCSVOut, encoded, 0o644); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d teams, %d accesses (%d rows skipped)\n",
		processCSVOut, stats.Teams, stats.Accesses, stats.SkippedRows)
	return nil
}
