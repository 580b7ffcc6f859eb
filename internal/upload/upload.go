// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload pushes local Markdown files into a Dify dataset. It skips
// files whose names already exist remotely, waits for each upload batch to
// finish indexing, and falls back to delete-and-retry when a document gets
// stuck.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/dify-kb/pkg/dify"
	"github.com/pdiddy/dify-kb/pkg/types"
)

// existingNamesPageLimit is the page size used when walking the remote
// document listing for the skip-check.
const existingNamesPageLimit = 100

// BatchResult holds the outcome of a batch upload run.
type BatchResult struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Uploaded + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Outcome statuses recorded per file.
const (
	StatusUploaded = "uploaded"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// Outcome is the per-file result handed to a Recorder.
type Outcome struct {
	File       string `json:"file" yaml:"file"`
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`
	Batch      string `json:"batch,omitempty" yaml:"batch,omitempty"`
	Status     string `json:"status" yaml:"status"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Recorder receives per-file outcomes. Implementations may persist them;
// a nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// FindMarkdownFiles returns the sorted paths of .md/.markdown regular files
// directly inside dir. A missing directory yields an empty list.
func FindMarkdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !isMarkdownName(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// isMarkdownName matches .md/.markdown case-insensitively.
func isMarkdownName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}

// ExistingDocumentNames walks the dataset's document listing and returns the
// set of normalized names already present: each name lowercased, both with
// and without its extension.
func ExistingDocumentNames(ctx context.Context, client *dify.Client, datasetID string) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	for page := 1; ; page++ {
		list, err := client.Documents.List(ctx, datasetID, dify.ListDocumentsOptions{
			Page:  page,
			Limit: existingNamesPageLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("listing documents (page %d): %w", page, err)
		}
		for _, doc := range list.Data {
			if doc.Name == "" {
				continue
			}
			lower := strings.ToLower(doc.Name)
			names[lower] = struct{}{}
			names[strings.TrimSuffix(lower, filepath.Ext(lower))] = struct{}{}
		}
		if !list.HasMore {
			break
		}
	}
	return names, nil
}

// nameExists checks a filename against the normalized existing-name set.
func nameExists(existing map[string]struct{}, fileName string) bool {
	lower := strings.ToLower(fileName)
	if _, ok := existing[lower]; ok {
		return true
	}
	base := strings.TrimSuffix(lower, filepath.Ext(lower))
	_, ok := existing[base]
	return ok
}

// Run uploads every Markdown file in cfg.MarkdownDir to the dataset,
// sequentially. Files whose names are already in the dataset are skipped.
// After each upload the batch is polled until indexing completes; a batch
// still incomplete after cfg.FallbackTimeout triggers the fallback: delete
// the stuck document, wait cfg.FallbackRetryWait, re-upload once and wait
// with the full cfg.IndexingTimeout budget.
//
// Progress lines go to w. rec, when non-nil, receives one Outcome per file.
// The returned error reports setup problems only; per-file failures are
// tallied in the BatchResult.
func Run(ctx context.Context, client *dify.Client, cfg types.UploadConfig, rec Recorder, w io.Writer) (BatchResult, error) {
	var result BatchResult

	if err := cfg.Validate(); err != nil {
		return result, fmt.Errorf("upload config: %w", err)
	}
	applyDefaults(&cfg)

	files, err := FindMarkdownFiles(cfg.MarkdownDir)
	if err != nil {
		return result, err
	}
	if len(files) == 0 {
		fmt.Fprintf(w, "no Markdown files found in %s\n", cfg.MarkdownDir)
		return result, nil
	}

	fmt.Fprintf(w, "uploading %d Markdown file(s) from %s to dataset %s\n",
		len(files), cfg.MarkdownDir, cfg.DatasetID)

	existing, err := ExistingDocumentNames(ctx, client, cfg.DatasetID)
	if err != nil {
		// The skip-check is an optimization; uploads can proceed without it.
		fmt.Fprintf(w, "warning: could not fetch existing documents: %v\n", err)
		existing = map[string]struct{}{}
	} else {
		fmt.Fprintf(w, "found %d existing name entries\n", len(existing))
	}

	total := len(files)
	for i, filePath := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fileName := filepath.Base(filePath)
		if nameExists(existing, fileName) {
			result.Skipped++
			fmt.Fprintf(w, "[%d/%d] skipped (exists): %s\n", i+1, total, fileName)
			record(ctx, rec, Outcome{File: fileName, Status: StatusSkipped})
			continue
		}

		fmt.Fprintf(w, "[%d/%d] uploading: %s\n", i+1, total, fileName)
		outcome := uploadOne(ctx, client, cfg, filePath, w)
		switch outcome.Status {
		case StatusUploaded:
			result.Uploaded++
		default:
			result.Failed++
		}
		record(ctx, rec, outcome)
	}

	fmt.Fprintf(w, "done. uploaded: %d, skipped: %d, failed: %d, total: %d\n",
		result.Uploaded, result.Skipped, result.Failed, result.Total())
	return result, nil
}

// uploadOne uploads a single file and sees its batch through indexing,
// including the delete-and-retry fallback.
func uploadOne(ctx context.Context, client *dify.Client, cfg types.UploadConfig, filePath string, w io.Writer) Outcome {
	fileName := filepath.Base(filePath)
	opts := dify.DocumentOptions{IndexingTechnique: cfg.IndexingTechnique}

	resp, err := client.Documents.CreateByFile(ctx, cfg.DatasetID, filePath, opts)
	if err != nil {
		fmt.Fprintf(w, "    -> failed: %v\n", err)
		return Outcome{File: fileName, Status: StatusFailed, Error: err.Error()}
	}

	fmt.Fprintf(w, "    -> document %s, batch %s\n",
		orDash(resp.Document.ID), orDash(resp.Batch))

	if resp.Batch == "" {
		// Nothing to poll; treat the accepted upload as done.
		return Outcome{File: fileName, DocumentID: resp.Document.ID, Status: StatusUploaded}
	}

	fmt.Fprintf(w, "       waiting for indexing...\n")
	budget := min(cfg.IndexingTimeout, cfg.FallbackTimeout)
	completed, items := WaitForIndexing(ctx, client, cfg.DatasetID, resp.Batch, cfg.PollInterval, budget, w)
	if completed {
		fmt.Fprintf(w, "       -> indexing completed\n")
		return Outcome{File: fileName, DocumentID: resp.Document.ID, Batch: resp.Batch, Status: StatusUploaded}
	}

	if msg := firstIndexingError(items); msg != "" {
		fmt.Fprintf(w, "       -> indexing failed: %s\n", msg)
		return Outcome{File: fileName, DocumentID: resp.Document.ID, Batch: resp.Batch, Status: StatusFailed, Error: msg}
	}

	// The batch never reached a terminal state: treat the document as stuck,
	// delete it, and retry once after a grace period.
	fmt.Fprintf(w, "       -> indexing exceeded fallback timeout; deleting and retrying\n")
	if resp.Document.ID == "" {
		return Outcome{File: fileName, Batch: resp.Batch, Status: StatusFailed, Error: "no document id; cannot delete and retry"}
	}
	if err := client.Documents.Delete(ctx, cfg.DatasetID, resp.Document.ID); err != nil {
		fmt.Fprintf(w, "       -> delete failed: %v\n", err)
		return Outcome{File: fileName, DocumentID: resp.Document.ID, Status: StatusFailed, Error: fmt.Sprintf("deleting stuck document: %v", err)}
	}

	select {
	case <-ctx.Done():
		return Outcome{File: fileName, Status: StatusFailed, Error: ctx.Err().Error()}
	case <-time.After(cfg.FallbackRetryWait):
	}

	fmt.Fprintf(w, "       -> retrying upload\n")
	retry, err := client.Documents.CreateByFile(ctx, cfg.DatasetID, filePath, opts)
	if err != nil {
		return Outcome{File: fileName, Status: StatusFailed, Error: fmt.Sprintf("retry upload: %v", err)}
	}
	if retry.Batch == "" {
		return Outcome{File: fileName, DocumentID: retry.Document.ID, Status: StatusFailed, Error: "retry upload returned no batch id"}
	}

	completed, items = WaitForIndexing(ctx, client, cfg.DatasetID, retry.Batch, cfg.PollInterval, cfg.IndexingTimeout, w)
	if !completed {
		msg := firstIndexingError(items)
		if msg == "" {
			msg = "retry indexing timed out"
		}
		fmt.Fprintf(w, "       -> %s\n", msg)
		return Outcome{File: fileName, DocumentID: retry.Document.ID, Batch: retry.Batch, Status: StatusFailed, Error: msg}
	}

	fmt.Fprintf(w, "       -> retry indexing completed\n")
	return Outcome{File: fileName, DocumentID: retry.Document.ID, Batch: retry.Batch, Status: StatusUploaded}
}

// firstIndexingError returns the first per-document error in a batch.
func firstIndexingError(items []types.IndexingStatus) string {
	for _, item := range items {
		if item.Error != "" {
			return item.Error
		}
	}
	return ""
}

func record(ctx context.Context, rec Recorder, o Outcome) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, o); err != nil {
		fmt.Fprintf(os.Stderr, "warning: recording outcome for %s: %v\n", o.File, err)
	}
}

func applyDefaults(cfg *types.UploadConfig) {
	if cfg.IndexingTechnique == "" {
		cfg.IndexingTechnique = types.DefaultIndexingTechnique
	}
	if cfg.IndexingTimeout <= 0 {
		cfg.IndexingTimeout = types.DefaultIndexingTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = types.DefaultPollInterval
	}
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = types.DefaultFallbackTimeout
	}
	if cfg.FallbackRetryWait <= 0 {
		cfg.FallbackRetryWait = types.DefaultFallbackRetryWait
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
