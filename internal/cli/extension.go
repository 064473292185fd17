package cli

import (
	"fmt"

	"github.com/GriffinCanCode/unchive/internal/domain/extension"
	"github.com/spf13/cobra"
)

func newExtensionCmd(opts *rootOptions) *cobra.Command {
	var showDiagnostics bool

	cmd := &cobra.Command{
		Use:   "extension <aix|aia>",
		Short: "Describe the extensions packaged in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.app.Ingestor.ReadExtensions(cmd.Context(), sourceOf(args[0]))
			if err != nil {
				return err
			}

			infos := make([]extension.Info, 0, reg.Len())
			for _, ext := range reg.Extensions() {
				infos = append(infos, extension.Describe(ext))
			}
			if err := writeJSON(cmd.OutOrStdout(), infos); err != nil {
				return err
			}

			if showDiagnostics {
				for _, d := range reg.Diagnostics() {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", d.Subject, d.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiagnostics, "diagnostics", true, "Print skipped or ambiguous entries to stderr")
	return cmd
}
