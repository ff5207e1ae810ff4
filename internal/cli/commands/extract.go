package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Pull the SQL statement out of raw model output",
		Long: `Strip think tags, code fences, label prefixes, and surrounding prose
from raw model output and print the candidate SQL statement. No safety
validation is applied; pipe into 'munerosql validate' for that.`,
		Example: `  munerosql extract response.txt
  munerosql extract response.txt | munerosql validate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), safesql.ExtractSQL(raw))
			return nil
		},
	}
}
