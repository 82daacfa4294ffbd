package main

import (
	"github.com/spf13/cobra"
)

func newFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Print the distinct districts, generations and member types",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, b, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer b.close()

			opts, err := b.exporter.FilterOptions(ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			return writeJSONLine(cmd.OutOrStdout(), opts)
		},
	}
}
