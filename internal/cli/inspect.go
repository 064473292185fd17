package cli

import (
	"github.com/spf13/cobra"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "inspect <file|url>",
		Short: "Print the project model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := opts.app.Ingestor.Ingest(cmd.Context(), sourceOf(args[0]), name)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), project)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Override the project name")
	return cmd
}
