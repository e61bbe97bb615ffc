// Package cli implements the pkgscout command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pkgscout/pkgscout/internal/config"
	"github.com/pkgscout/pkgscout/pkg/buildinfo"
)

var (
	flagConfig  string
	flagVerbose bool
	flagDebug   bool
)

// app bundles what every subcommand needs. Built per invocation by
// setupApp, torn down by close.
type app struct {
	cfg     config.Config
	log     *log.Logger
	cleanup func()
}

func setupApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	logger, cleanup, err := newLogger(flagVerbose, flagDebug)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, cleanup: cleanup}, nil
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pkgscout",
		Short: "Report how much of a dependency tree a Linux distribution already packages",
		Long: `pkgscout resolves the transitive dependency tree of a package from its
upstream registry (crates.io, PyPI) and checks every node against the
distribution's package index via dnf repoquery.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(buildinfo.Template())

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/pkgscout/config.toml)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "also write a per-run debug log file")

	cmd.AddCommand(
		newCheckCmd(),
		newCacheCmd(),
		newLanguagesCmd(),
		newFormatsCmd(),
		newServeCmd(),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
