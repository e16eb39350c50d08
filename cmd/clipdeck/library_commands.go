package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipdeck/internal/ipc"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Browse and prune the recording and export history",
	}
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	libraryCmd.AddCommand(newLibraryClearCommand(ctx))
	return libraryCmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List finished recordings and exports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LibraryList(ipc.LibraryListRequest{Category: strings.TrimSpace(category), Limit: limit})
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(out, "Library is empty")
					return nil
				}
				fmt.Fprintln(out, renderTableWithWidths(
					[]string{"ID", "Category", "Kind", "Output", "Duration", "Size", "Created", "Result"},
					buildLibraryRows(resp.Entries, time.Now()),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
					[]int{0, 0, 0, pathColumnWidth},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only show recordings or exports")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of entries (0 for all)")
	return cmd
}

func newLibraryClearCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove history entries (files on disk are kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			category = strings.TrimSpace(category)
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.LibraryClear(category)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, resp)
				}
				label := "library entries"
				if category != "" {
					label = strings.TrimSuffix(strings.ToLower(category), "s") + " entries"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s\n", resp.Removed, label)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only clear recordings or exports")
	return cmd
}
