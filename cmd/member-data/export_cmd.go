package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
)

type exportOptions struct {
	mode   string
	output string
	filter transfer.Filter
	actor  string
}

type exportSummary struct {
	File string `json:"file"`
	Mode string `json:"mode"`
	Rows int    `json:"rows"`
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export members and accounts into an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "type", "", "Export type: members, users or both (required)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file, or a directory for the default file name (required)")
	cmd.Flags().StringVar(&opts.filter.District, "district", "", "Only members of this district")
	cmd.Flags().StringVar(&opts.filter.Generation, "generation", "", "Only members of this graduation year")
	cmd.Flags().StringVar(&opts.filter.MemberType, "member-type", "", "Only members of this type")
	cmd.Flags().StringVar(&opts.actor, "actor", "system", "Name recorded in the transfer log")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// resolveOutput joins the export file name onto output when it names a directory.
func resolveOutput(output, filename string) string {
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, filename)
	}
	return output
}

func runExport(ctx context.Context, out io.Writer, opts exportOptions) error {
	mode, err := transfer.ParseMode(opts.mode)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid --type: %w", err))
	}
	if strings.TrimSpace(opts.output) == "" {
		return withCode(exitUsage, fmt.Errorf("--output is required"))
	}

	ctx, b, err := connect(ctx)
	if err != nil {
		return err
	}
	defer b.close()

	export, err := b.exporter.Export(ctx, transfer.ExportRequest{
		Mode:        mode,
		Filter:      opts.filter,
		PerformedBy: strings.TrimSpace(opts.actor),
	})
	if err != nil {
		return withCode(exitDB, err)
	}

	path := resolveOutput(opts.output, export.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return withCode(exitDB, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err))
	}
	if err := os.WriteFile(path, export.Content, 0o644); err != nil {
		return withCode(exitDB, fmt.Errorf("write %s: %w", path, err))
	}
	return writeJSONLine(out, exportSummary{File: path, Mode: string(mode), Rows: export.Rows})
}
