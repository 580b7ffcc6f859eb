// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dify-kb/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the upload ledger",
	Long: `History reads the SQLite ledger written by upload --ledger and shows
recorded per-file outcomes, newest first. Use export to write the full
ledger to a YAML file.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("ledger")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := ledger.Open(path, "")
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Ledger is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-9s  %-38s  %s\n",
		"When", "File", "Status", "Document", "Error")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for _, e := range entries {
		when := ""
		if !e.UploadedAt.IsZero() {
			when = e.UploadedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-30s  %-9s  %-38s  %s\n",
			when, truncate(e.File, 30), e.Status, e.DocumentID, truncate(e.Error, 40))
	}
	fmt.Fprintf(os.Stdout, "\n%d entries\n", len(entries))
	return nil
}

var historyExportCmd = &cobra.Command{
	Use:   "export <output.yaml>",
	Short: "Export the upload ledger to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("ledger")

		store, err := ledger.Open(path, "")
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ExportYAML(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("exported ledger to %s\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().String("ledger", "ledger.db", "path to the upload ledger")
	historyCmd.Flags().Int("limit", 50, "maximum entries to show (0 for all)")
	historyCmd.Flags().Bool("json", false, "output as JSON")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
