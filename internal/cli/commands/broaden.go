package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/engine"
)

// NewBroadenCommand creates the broaden command.
func NewBroadenCommand() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "broaden [file]",
		Short: "Relax exact-equality text predicates to substring matches",
		Long: `Rewrite '<column> = '<literal>'' predicates on the configured text
columns into case-insensitive substring matches. This is the retry
transformation for queries that execute cleanly but return zero rows
because the user typed a partial name.`,
		Example: `  munerosql broaden query.sql
  munerosql broaden query.sql --column client_name`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getSetup(cmd)
			if err != nil {
				return err
			}
			if len(columns) > 0 {
				s.Cfg.BroadenColumns = columns
			}
			eng, err := engine.New(s.Cfg, s.Logger)
			if err != nil {
				return err
			}

			sql, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			out, warnings, ok := eng.Broaden(sql)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "No matching predicate found; output is unchanged.")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&columns, "column", nil, "Column to broaden (repeatable; default from config)")
	return cmd
}
