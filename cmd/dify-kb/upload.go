// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/dify-kb/internal/ledger"
	"github.com/pdiddy/dify-kb/internal/upload"
	"github.com/pdiddy/dify-kb/pkg/types"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a directory of Markdown files into a dataset",
	Long: `Upload pushes every .md/.markdown file in a directory to the target
dataset. Files whose names already exist in the dataset are skipped. Each
upload batch is polled until indexing completes; documents stuck past the
fallback timeout are deleted and re-uploaded once.

With --ledger, per-file outcomes are recorded in a SQLite ledger for the
history subcommand. With --copy-missing-from-output, Markdown files from
the output directory that are neither uploaded nor staged are copied into
the upload directory first.`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().String("dataset-id", "", "target dataset id")
	uploadCmd.Flags().String("dir", "markdown", "directory of Markdown files to upload")
	uploadCmd.Flags().String("output-dir", "output", "directory of generated Markdown used by --copy-missing-from-output")
	uploadCmd.Flags().Bool("copy-missing-from-output", false, "copy missing Markdown from the output directory before uploading")
	uploadCmd.Flags().Bool("copy-missing-only", false, "only perform the copy step, skip uploading")
	uploadCmd.Flags().String("indexing-technique", "", "indexing technique for new documents (default high_quality)")
	uploadCmd.Flags().Duration("indexing-timeout", 0, "per-document indexing wait budget (default 10m)")
	uploadCmd.Flags().Duration("poll-interval", 0, "indexing status poll interval (default 5s)")
	uploadCmd.Flags().Duration("fallback-timeout", 0, "stuck-document threshold before delete-and-retry (default 5m)")
	uploadCmd.Flags().Duration("fallback-retry-wait", 0, "grace period between delete and re-upload (default 5m)")
	uploadCmd.Flags().String("ledger", "", "path to a SQLite ledger recording per-file outcomes")
	uploadCmd.Flags().String("report", "", "write a YAML batch report to this path")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	cfg := uploadConfig(cmd, datasetID)

	copyFromOutput, _ := cmd.Flags().GetBool("copy-missing-from-output")
	copyOnly, _ := cmd.Flags().GetBool("copy-missing-only")
	if copyFromOutput || copyOnly {
		copied, skipped, considered, err := upload.CopyMissing(ctx, client, datasetID, cfg.OutputDir, cfg.MarkdownDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "copy step: %d copied, %d skipped, %d considered\n",
			copied, skipped, considered)
		if copyOnly {
			return nil
		}
	}

	var recorders multiRecorder
	if cfg.LedgerPath != "" {
		store, err := ledger.Open(cfg.LedgerPath, cfg.MarkdownDir)
		if err != nil {
			return err
		}
		defer store.Close()
		recorders = append(recorders, store)
	}

	reportPath, _ := cmd.Flags().GetString("report")
	var report *reportRecorder
	if reportPath != "" {
		report = &reportRecorder{}
		recorders = append(recorders, report)
	}

	var rec upload.Recorder
	if len(recorders) > 0 {
		rec = recorders
	}

	result, err := upload.Run(ctx, client, cfg, rec, os.Stdout)
	if err != nil {
		return err
	}

	if report != nil {
		if err := report.write(reportPath, result); err != nil {
			return err
		}
		fmt.Printf("wrote report to %s\n", reportPath)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to upload", result.Failed)
	}
	return nil
}

// multiRecorder fans one outcome out to several recorders.
type multiRecorder []upload.Recorder

func (m multiRecorder) Record(ctx context.Context, o upload.Outcome) error {
	for _, rec := range m {
		if err := rec.Record(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

// reportRecorder accumulates outcomes for the YAML batch report.
type reportRecorder struct {
	outcomes []upload.Outcome
}

func (r *reportRecorder) Record(_ context.Context, o upload.Outcome) error {
	r.outcomes = append(r.outcomes, o)
	return nil
}

// batchReport is the YAML document written by --report.
type batchReport struct {
	Uploaded int              `yaml:"uploaded"`
	Skipped  int              `yaml:"skipped"`
	Failed   int              `yaml:"failed"`
	Files    []upload.Outcome `yaml:"files"`
}

func (r *reportRecorder) write(path string, result upload.BatchResult) error {
	data, err := yaml.Marshal(batchReport{
		Uploaded: result.Uploaded,
		Skipped:  result.Skipped,
		Failed:   result.Failed,
		Files:    r.outcomes,
	})
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// uploadConfig assembles the upload settings from flags with config-file
// fallbacks for the timing knobs.
func uploadConfig(cmd *cobra.Command, datasetID string) types.UploadConfig {
	dir, _ := cmd.Flags().GetString("dir")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	technique, _ := cmd.Flags().GetString("indexing-technique")
	ledgerPath, _ := cmd.Flags().GetString("ledger")

	indexingTimeout, _ := cmd.Flags().GetDuration("indexing-timeout")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	fallbackTimeout, _ := cmd.Flags().GetDuration("fallback-timeout")
	fallbackRetryWait, _ := cmd.Flags().GetDuration("fallback-retry-wait")

	return types.UploadConfig{
		DatasetID:         datasetID,
		MarkdownDir:       dir,
		OutputDir:         outputDir,
		IndexingTechnique: technique,
		IndexingTimeout:   durationOr(indexingTimeout, viperDuration("indexing_timeout")),
		PollInterval:      durationOr(pollInterval, viperDuration("poll_interval")),
		FallbackTimeout:   durationOr(fallbackTimeout, viperDuration("fallback_timeout")),
		FallbackRetryWait: durationOr(fallbackRetryWait, viperDuration("fallback_retry_wait")),
		LedgerPath:        ledgerPath,
	}
}
