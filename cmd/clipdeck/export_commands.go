package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"clipdeck/internal/ipc"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Trim recordings and composite picture-in-picture exports",
	}
	exportCmd.AddCommand(newExportTrimCommand(ctx))
	exportCmd.AddCommand(newExportPipCommand(ctx))
	return exportCmd
}

func newExportTrimCommand(ctx *commandContext) *cobra.Command {
	var start float64
	var end float64

	cmd := &cobra.Command{
		Use:   "trim <input> <output>",
		Short: "Re-encode the [start, end) window of a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := resolveLocalPaths(args...)
			if err != nil {
				return err
			}
			req := ipc.ExportRequest{
				InputPath:  paths[0],
				OutputPath: paths[1],
				StartTime:  start,
				EndTime:    end,
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExportVideo(req)
				if err != nil {
					return err
				}
				return printExport(cmd, ctx, resp)
			})
		},
	}
	cmd.Flags().Float64Var(&start, "start", 0, "Window start in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "Window end in seconds")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newExportPipCommand(ctx *commandContext) *cobra.Command {
	var mainStart, mainEnd float64
	var pipStart, pipEnd float64
	var position string

	cmd := &cobra.Command{
		Use:   "pip <main> <pip> <output>",
		Short: "Overlay a trimmed webcam clip onto a trimmed screen clip",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := resolveLocalPaths(args...)
			if err != nil {
				return err
			}
			req := ipc.ExportPipRequest{
				MainPath:      paths[0],
				PipPath:       paths[1],
				OutputPath:    paths[2],
				MainStartTime: mainStart,
				MainEndTime:   mainEnd,
				PipStartTime:  pipStart,
				PipEndTime:    pipEnd,
				PipPosition:   position,
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExportVideoWithPip(req)
				if err != nil {
					return err
				}
				return printExport(cmd, ctx, resp)
			})
		},
	}
	cmd.Flags().Float64Var(&mainStart, "main-start", 0, "Main clip window start in seconds")
	cmd.Flags().Float64Var(&mainEnd, "main-end", 0, "Main clip window end in seconds")
	cmd.Flags().Float64Var(&pipStart, "pip-start", 0, "Overlay clip window start in seconds")
	cmd.Flags().Float64Var(&pipEnd, "pip-end", 0, "Overlay clip window end in seconds")
	cmd.Flags().StringVar(&position, "position", "", "Overlay corner (default: overlay.export_position)")
	_ = cmd.MarkFlagRequired("main-end")
	_ = cmd.MarkFlagRequired("pip-end")
	return cmd
}

func printExport(cmd *cobra.Command, ctx *commandContext, resp *ipc.ExportResponse) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, resp)
	}
	printExportSummary(cmd.OutOrStdout(), resp)
	return nil
}

func printExportSummary(out io.Writer, resp *ipc.ExportResponse) {
	fmt.Fprintf(out, "%s export written to %s\n", formatLabel(resp.Kind), resp.OutputPath)
	fmt.Fprintf(out, "Encoded in %s\n", formatSeconds(resp.ElapsedSeconds))
}

func resolveLocalPaths(paths ...string) ([]string, error) {
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := resolveLocalPath(path)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, abs)
	}
	return resolved, nil
}
