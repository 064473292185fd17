package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/unchive/internal/bootstrap"
	"github.com/GriffinCanCode/unchive/internal/domain/archive"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/config"
	"github.com/GriffinCanCode/unchive/internal/infrastructure/logging"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags and the stack built from them
type rootOptions struct {
	catalogPath string
	catalogURL  string
	namespace   string
	logLevel    string
	workers     int

	app *bootstrap.App
}

// NewRootCmd assembles the unchive command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	defaults := config.LoadOrDefault()

	root := &cobra.Command{
		Use:   "unchive",
		Short: "Read App Inventor project archives",
		Long: `unchive opens App Inventor project (.aia) and extension (.aix) archives and prints
their screens, component trees, blocks and assets.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(defaults)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.catalogPath, "catalog", defaults.Catalog.Path, "Built-in component catalog file (simple_components.json)")
	flags.StringVar(&opts.catalogURL, "catalog-url", defaults.Catalog.URL, "Fetch the built-in catalog from this URL instead")
	flags.StringVar(&opts.namespace, "namespace", defaults.Catalog.Namespace, "Namespace stripped from built-in type names")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.IntVar(&opts.workers, "workers", defaults.Ingest.Workers, "Property resolution workers")

	root.AddCommand(
		newInspectCmd(opts),
		newSummaryCmd(opts),
		newExtensionCmd(opts),
		newScanCmd(opts),
	)
	return root
}

// Execute runs the command tree against os.Args
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func (o *rootOptions) setup(defaults *config.Config) error {
	cfg := *defaults
	cfg.Catalog.Path = o.catalogPath
	cfg.Catalog.URL = o.catalogURL
	cfg.Catalog.Namespace = o.namespace
	cfg.Ingest.Workers = o.workers
	cfg.Logging.Level = o.logLevel

	app, err := bootstrap.New(&cfg, bootstrap.Options{
		Logger:  logging.NewFromLevel(o.logLevel, false),
		Service: "unchive-cli",
	})
	if err != nil {
		return err
	}
	o.app = app
	return nil
}

// sourceOf treats http(s) arguments as URLs and everything else as a path
func sourceOf(arg string) archive.Source {
	lower := strings.ToLower(arg)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return archive.URL(arg)
	}
	return archive.File(arg)
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
