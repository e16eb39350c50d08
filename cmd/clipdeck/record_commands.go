package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"clipdeck/internal/config"
	"clipdeck/internal/ipc"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Control screen and webcam recordings",
	}
	recordCmd.AddCommand(newRecordStartCommand(ctx))
	recordCmd.AddCommand(newRecordStopCommand(ctx))
	recordCmd.AddCommand(newRecordStatusCommand(ctx))
	return recordCmd
}

func newRecordStartCommand(ctx *commandContext) *cobra.Command {
	var recordingType string
	var screenIndex int
	var webcamIndex int
	var pipPosition string
	var pipSize string

	cmd := &cobra.Command{
		Use:   "start [output]",
		Short: "Start a recording (screen, webcam or pip)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := ipc.StartRecordingRequest{
				RecordingType: recordingType,
				PipPosition:   strings.TrimSpace(pipPosition),
				PipSize:       strings.TrimSpace(pipSize),
			}
			if len(args) == 1 {
				output, err := resolveLocalPath(args[0])
				if err != nil {
					return err
				}
				req.OutputPath = output
			}
			if cmd.Flags().Changed("screen") {
				req.ScreenIndex = &screenIndex
			}
			if cmd.Flags().Changed("webcam") {
				req.WebcamIndex = &webcamIndex
			}

			return ctx.withClient(func(client *ipc.Client) error {
				info, err := client.StartRecording(req)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, info)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recording %s to %s\n", info.RecordingType, info.OutputPath)
				fmt.Fprintf(out, "Recording ID: %s (pid %d)\n", info.ID, info.PID)
				fmt.Fprintln(out, "Run `clipdeck record stop` to finish")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&recordingType, "type", "t", "screen", "Recording type: screen, webcam or pip")
	cmd.Flags().IntVar(&screenIndex, "screen", 0, "Screen device index (default: capture.default_screen_index)")
	cmd.Flags().IntVar(&webcamIndex, "webcam", 0, "Webcam device index (default: capture.default_webcam_index)")
	cmd.Flags().StringVar(&pipPosition, "pip-position", "", "Overlay corner for pip recordings (default: overlay.capture_position)")
	cmd.Flags().StringVar(&pipSize, "pip-size", "", "Overlay size for pip recordings: small, medium or large")
	return cmd
}

func newRecordStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active recording and finalize the file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				result, err := client.StopRecording()
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, result.Message)
				fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
				fmt.Fprintf(out, "Duration: %s\n", formatSeconds(result.DurationSeconds))
				if result.Error != "" {
					fmt.Fprintf(out, "Encoder reported: %s\n", result.Error)
				}
				return nil
			})
		},
	}
}

func newRecordStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a recording is in progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.RecordingStatus()
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, status)
				}
				printRecordingStatus(cmd.OutOrStdout(), status, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}
}

func printRecordingStatus(out io.Writer, status *ipc.RecordingStatus, colorize bool) {
	if status == nil || !status.Recording || status.Current == nil {
		fmt.Fprintln(out, renderStatusLine("Recording", statusInfo, "Idle", colorize))
		return
	}
	current := status.Current
	fmt.Fprintln(out, renderStatusLine("Recording", statusOK, formatLabel(current.RecordingType), colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, current.OutputPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatDisplayTime(current.StartedAt), colorize))
	fmt.Fprintln(out, renderStatusLine("Encoder PID", statusInfo, fmt.Sprintf("%d", current.PID), colorize))
}

// resolveLocalPath expands ~ and makes path absolute against the CLI's
// working directory, since the daemon resolves paths from its own.
func resolveLocalPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return expanded, nil
}
