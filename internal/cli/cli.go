// Package cli implements the qretty command-line interface.
//
// # Commands
//
//   - render: write a styled symbol to a PNG or JPEG file
//   - verify: score existing images with the readability checker
//   - serve: run the HTTP API
//
// All commands accept --config (a TOML file layered over the defaults) and
// --verbose (-v) for debug logging. The logger travels through the command
// context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qretty/internal/config"
)

type rootOpts struct {
	verbose    bool
	configPath string
}

// loadConfig reads the --config file, or the defaults when none was given.
func (o *rootOpts) loadConfig() (config.Config, error) {
	return config.Load(o.configPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:           "qretty",
		Short:         "qretty renders decorative QR codes that still scan",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(newRenderCmd(opts))
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newServeCmd(opts))
	return root
}

// Execute runs the CLI until ctx is cancelled or the command returns.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
