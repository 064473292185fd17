package cli

import (
	"fmt"

	"github.com/GriffinCanCode/unchive/internal/domain/summary"
	"github.com/spf13/cobra"
)

// formatLine prints the one-line digest instead of a document
const formatLine = "line"

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary <file|url>",
		Short: "Print project statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f summary.Format
			if format != formatLine {
				parsed, err := summary.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}

			project, err := opts.app.Ingestor.Ingest(cmd.Context(), sourceOf(args[0]), "")
			if err != nil {
				return err
			}
			s := summary.Generate(project)

			if format == formatLine {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), s.Line())
				return err
			}
			out, err := summary.Encode(s, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(summary.FormatJSON), "Output format (json, yaml, toml, line)")
	return cmd
}
