package main

import (
	"github.com/spf13/cobra"

	"github.com/sanjaithai/backoffice/pkg/configuration"
	"github.com/sanjaithai/backoffice/pkg/migrations"
)

type migrationLine struct {
	Version  int64  `json:"version"`
	Source   string `json:"source"`
	Duration string `json:"duration"`
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := migrations.Up(cmd.Context(), configuration.Use().Database.Opts)
			if err != nil {
				return withCode(exitDB, err)
			}
			for _, r := range results {
				if err := writeJSONLine(cmd.OutOrStdout(), migrationLine{
					Version:  r.Source.Version,
					Source:   r.Source.Path,
					Duration: r.Duration.String(),
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
