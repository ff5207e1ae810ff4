package commands

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/zmasarw3h/munero-hybrid-dashboard/pkg/safesql"
)

// ProcessOptions holds options for the process command.
type ProcessOptions struct {
	StartDate    string
	EndDate      string
	Countries    []string
	ProductTypes []string
	Clients      []string
	Brands       []string
	Suppliers    []string
	JSON         bool
}

// NewProcessCommand creates the process command.
func NewProcessCommand() *cobra.Command {
	opts := &ProcessOptions{}
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Run raw model output through the full pipeline",
		Long: `Extract a SQL statement from raw model output, validate it, inject the
given dashboard filters at the placeholder token, and apply deterministic
rewrites. Prints the final statement, its bind parameters, and any
rewrite warnings.`,
		Example: `  # Process a saved model response with a date range
  munerosql process response.txt --start-date 2025-01-01 --end-date 2025-03-31

  # Pipe from stdin with list filters
  cat response.txt | munerosql process --country AE --country SA

  # Machine-readable output
  munerosql process response.txt --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.StartDate, "start-date", "", "Inclusive start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.EndDate, "end-date", "", "Inclusive end date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.Countries, "country", nil, "Country filter (repeatable)")
	cmd.Flags().StringSliceVar(&opts.ProductTypes, "product-type", nil, "Product type filter (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Clients, "client", nil, "Client filter (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Brands, "brand", nil, "Brand filter (repeatable)")
	cmd.Flags().StringSliceVar(&opts.Suppliers, "supplier", nil, "Supplier filter (repeatable)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Emit JSON instead of tables")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string, opts *ProcessOptions) error {
	eng, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	filters := safesql.FilterDescriptor{
		StartDate:    opts.StartDate,
		EndDate:      opts.EndDate,
		Countries:    opts.Countries,
		ProductTypes: opts.ProductTypes,
		Clients:      opts.Clients,
		Brands:       opts.Brands,
		Suppliers:    opts.Suppliers,
	}

	res, err := eng.ProcessResponse(raw, filters)
	if err != nil {
		return err
	}

	if opts.JSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"sql":            res.SQL,
			"params":         res.Params,
			"warnings":       res.Warnings,
			"correlation_id": res.CorrelationID,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, res.SQL)

	if len(res.Params) > 0 {
		fmt.Fprintln(out)
		renderParams(cmd, res.Params)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return nil
}

func renderParams(cmd *cobra.Command, params map[string]any) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Parameter", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, fmt.Sprintf("%v", params[k])})
	}
	t.Render()
}
