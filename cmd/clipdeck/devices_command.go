package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipdeck/internal/ipc"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List screen, webcam and audio capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ListDevices(refresh)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Devices) == 0 {
					fmt.Fprintln(out, "No capture devices found")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Type", "Index", "Name"},
					buildDeviceRows(resp.Devices),
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				if resp.RefreshedAt != "" {
					fmt.Fprintf(out, "Refreshed %s\n", formatDisplayTime(resp.RefreshedAt))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-enumerate devices instead of using the cached catalog")
	return cmd
}
