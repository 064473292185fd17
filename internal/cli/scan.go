package cli

import (
	"fmt"

	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/domain/registry"
	"github.com/GriffinCanCode/unchive/internal/domain/summary"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var exts []string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Summarize every project archive below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := registry.FindArchives(cmd.Context(), args[0], exts...)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", args[0], err)
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No project archives found.")
				return nil
			}

			failed := 0
			for _, path := range paths {
				project, err := opts.app.Ingestor.Ingest(cmd.Context(), archive.File(path), "")
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, summary.Generate(project).Line())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d archives failed", failed, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exts, "ext", registry.ProjectExtensions, "Archive extensions to match")
	return cmd
}
