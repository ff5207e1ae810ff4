package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a statement against the read-only safety rules",
		Long: `Validate that the input is a single, read-only SELECT or WITH statement
with balanced parentheses and no forbidden keywords outside string
literals, quoted identifiers, and comments. Exits non-zero on rejection.`,
		Example: `  munerosql validate query.sql
  echo "SELECT 1" | munerosql validate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			if !safesql.ParenthesesBalanced(sql) {
				return safesql.ErrTruncatedQuery
			}
			if err := safesql.Validate(sql); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
