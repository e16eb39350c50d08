package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"clipdeck/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var capture bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs or the latest encoder capture log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "clipdeck.log")
			if capture {
				path, err = logs.Latest(cfg.ToolLogDir(), "capture-*.log")
				if errors.Is(err, logs.ErrNoLogs) {
					fmt.Fprintln(cmd.OutOrStdout(), "No capture logs available")
					return nil
				}
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			result, err := logs.Tail(path, lines)
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(result.Lines) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, result.Offset, 500*time.Millisecond, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().BoolVar(&capture, "capture", false, "Show the most recent encoder capture log instead of the daemon log")
	return cmd
}
