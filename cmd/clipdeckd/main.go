// Command clipdeckd runs the clipdeck daemon in the foreground, for service
// managers that supervise the process themselves.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"clipdeck/internal/config"
	"clipdeck/internal/daemonrun"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var opts daemonrun.Options

	cmd := &cobra.Command{
		Use:           "clipdeckd",
		Short:         "Run the clipdeck daemon in the foreground",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, resolveOptions(cfg, opts))
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&opts.SocketPath, "socket", "", "IPC socket path (default: <log_dir>/clipdeck.sock)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&opts.Diagnostic, "diagnostic", false, "Enable diagnostic mode with separate DEBUG logs")
	return cmd
}

func resolveOptions(cfg *config.Config, opts daemonrun.Options) daemonrun.Options {
	if strings.TrimSpace(opts.SocketPath) == "" && cfg != nil {
		opts.SocketPath = cfg.SocketPath()
	}
	if strings.TrimSpace(opts.LogLevel) == "" {
		if opts.Diagnostic {
			opts.LogLevel = "debug"
		} else if cfg != nil {
			opts.LogLevel = cfg.Logging.Level
		}
	}
	return opts
}
