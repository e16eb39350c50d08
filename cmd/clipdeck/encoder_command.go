package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipdeck/internal/ipc"
)

func newEncoderCommand(ctx *commandContext) *cobra.Command {
	encoderCmd := &cobra.Command{
		Use:   "encoder",
		Short: "Inspect the external encoder",
	}
	encoderCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run the encoder version probe through the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.CheckEncoder()
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if status.Available {
					fmt.Fprintln(out, renderStatusLine("Encoder", statusOK, status.Version, colorize))
					return nil
				}
				fmt.Fprintln(out, renderStatusLine("Encoder", statusError, status.Detail, colorize))
				return fmt.Errorf("encoder unavailable")
			})
		},
	})
	return encoderCmd
}
