// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dify-kb/internal/httputil"
	"github.com/pdiddy/dify-kb/pkg/dify"
	"github.com/pdiddy/dify-kb/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

// fakeDify is an in-memory stand-in for the document endpoints the uploader
// touches: list, create-by-file, indexing-status, and delete.
type fakeDify struct {
	mu sync.Mutex

	// existing document names served by the list endpoint.
	existingNames []string

	// uploads records the filenames received by create-by-file, in order.
	uploads []string

	// batches maps each upload (by call order) to the batch id returned.
	nextBatch int

	// statusSequences maps batch id to the status lists served on
	// successive polls; the last entry repeats.
	statusSequences map[string][][]types.IndexingStatus
	statusCalls     map[string]int

	// deleted records document ids passed to delete.
	deleted []string
}

func newFakeDify(existingNames ...string) *fakeDify {
	return &fakeDify{
		existingNames:   existingNames,
		statusSequences: make(map[string][][]types.IndexingStatus),
		statusCalls:     make(map[string]int),
	}
}

// setStatuses configures the poll responses for a batch.
func (f *fakeDify) setStatuses(batch string, seq ...[]types.IndexingStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusSequences[batch] = seq
}

func (f *fakeDify) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/documents") && r.Method == http.MethodGet:
			var docs []types.Document
			for i, name := range f.existingNames {
				docs = append(docs, types.Document{ID: fmt.Sprintf("doc-%d", i), Name: name})
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": docs, "has_more": false, "total": len(docs),
			})

		case strings.HasSuffix(path, "/document/create-by-file"):
			require.NoError(t, r.ParseMultipartForm(1<<20))
			_, header, err := r.FormFile("file")
			require.NoError(t, err)
			f.uploads = append(f.uploads, header.Filename)
			f.nextBatch++
			batch := "batch-" + strconv.Itoa(f.nextBatch)
			json.NewEncoder(w).Encode(map[string]any{
				"document": map[string]any{"id": "doc-" + strconv.Itoa(f.nextBatch), "name": header.Filename},
				"batch":    batch,
			})

		case strings.HasSuffix(path, "/indexing-status"):
			parts := strings.Split(path, "/")
			batch := parts[len(parts)-2]
			seq := f.statusSequences[batch]
			if len(seq) == 0 {
				json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
				return
			}
			idx := f.statusCalls[batch]
			if idx >= len(seq) {
				idx = len(seq) - 1
			}
			f.statusCalls[batch]++
			json.NewEncoder(w).Encode(map[string]any{"data": seq[idx]})

		case r.Method == http.MethodDelete:
			parts := strings.Split(path, "/")
			f.deleted = append(f.deleted, parts[len(parts)-1])
			w.WriteHeader(http.StatusNoContent)

		default:
			t.Errorf("unexpected request: %s %s", r.Method, path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newUploadClient(t *testing.T, f *fakeDify) *dify.Client {
	t.Helper()
	ts := httptest.NewServer(f.handler(t))
	t.Cleanup(ts.Close)

	c, err := dify.New(types.ClientConfig{BaseURL: ts.URL, APIKey: "sk-test"})
	require.NoError(t, err)
	return c
}

func completedStatus(id string) types.IndexingStatus {
	done := float64(time.Now().Unix())
	return types.IndexingStatus{ID: id, IndexingStatus: "completed", CompletedAt: &done}
}

func indexingStatus(id string, completed, total int) types.IndexingStatus {
	return types.IndexingStatus{
		ID: id, IndexingStatus: "indexing",
		CompletedSegments: &completed, TotalSegments: &total,
	}
}

func writeMarkdown(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fastConfig(datasetID, markdownDir string) types.UploadConfig {
	return types.UploadConfig{
		DatasetID:         datasetID,
		MarkdownDir:       markdownDir,
		IndexingTimeout:   200 * time.Millisecond,
		PollInterval:      5 * time.Millisecond,
		FallbackTimeout:   100 * time.Millisecond,
		FallbackRetryWait: 1 * time.Millisecond,
	}
}

// --- FindMarkdownFiles ---

func TestFindMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writeMarkdown(t, dir, "b.md", "b")
	writeMarkdown(t, dir, "a.MD", "a")
	writeMarkdown(t, dir, "c.markdown", "c")
	writeMarkdown(t, dir, "notes.txt", "not markdown")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.md"), 0o755))

	files, err := FindMarkdownFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.MD", "b.md", "c.markdown"}, names)
}

func TestFindMarkdownFilesMissingDir(t *testing.T) {
	files, err := FindMarkdownFiles(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

// --- ExistingDocumentNames ---

func TestExistingDocumentNames(t *testing.T) {
	f := newFakeDify("Guide.md", "README")
	c := newUploadClient(t, f)

	names, err := ExistingDocumentNames(context.Background(), c, "ds-1")
	require.NoError(t, err)

	// Lowercased, with and without extension.
	assert.Contains(t, names, "guide.md")
	assert.Contains(t, names, "guide")
	assert.Contains(t, names, "readme")
}

func TestNameExists(t *testing.T) {
	existing := map[string]struct{}{"guide.md": {}, "guide": {}, "readme": {}}

	tests := []struct {
		fileName string
		want     bool
	}{
		{"Guide.md", true},
		{"guide.markdown", true}, // extensionless form matches
		{"README.md", true},
		{"other.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, nameExists(existing, tt.fileName))
		})
	}
}

// --- Run ---

// recorderFunc adapts a function to the Recorder interface.
type recorderFunc func(ctx context.Context, o Outcome) error

func (f recorderFunc) Record(ctx context.Context, o Outcome) error { return f(ctx, o) }

func TestRunUploadsAndSkips(t *testing.T) {
	dir := t.TempDir()
	writeMarkdown(t, dir, "existing.md", "already there")
	writeMarkdown(t, dir, "new.md", "fresh")

	f := newFakeDify("existing.md")
	f.setStatuses("batch-1", []types.IndexingStatus{completedStatus("doc-1")})
	c := newUploadClient(t, f)

	var outcomes []Outcome
	rec := recorderFunc(func(_ context.Context, o Outcome) error {
		outcomes = append(outcomes, o)
		return nil
	})

	var buf bytes.Buffer
	result, err := Run(context.Background(), c, fastConfig("ds-1", dir), rec, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.False(t, result.HasFailures())
	assert.Equal(t, []string{"new.md"}, f.uploads)

	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusSkipped, outcomes[0].Status)
	assert.Equal(t, "existing.md", outcomes[0].File)
	assert.Equal(t, StatusUploaded, outcomes[1].Status)
	assert.Equal(t, "batch-1", outcomes[1].Batch)

	assert.Contains(t, buf.String(), "skipped (exists): existing.md")
	assert.Contains(t, buf.String(), "uploading: new.md")
}

func TestRunIndexingErrorFails(t *testing.T) {
	dir := t.TempDir()
	writeMarkdown(t, dir, "bad.md", "content")

	f := newFakeDify()
	f.setStatuses("batch-1", []types.IndexingStatus{
		{ID: "doc-1", IndexingStatus: "error", Error: "embedding quota exceeded"},
	})
	c := newUploadClient(t, f)

	var buf bytes.Buffer
	result, err := Run(context.Background(), c, fastConfig("ds-1", dir), nil, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Contains(t, buf.String(), "embedding quota exceeded")
	// An indexing error is terminal, not a stuck batch: no fallback delete.
	assert.Empty(t, f.deleted)
}

func TestRunFallbackDeleteAndRetry(t *testing.T) {
	dir := t.TempDir()
	writeMarkdown(t, dir, "slow.md", "content")

	f := newFakeDify()
	// First batch never completes; the retry batch completes immediately.
	f.setStatuses("batch-1", []types.IndexingStatus{indexingStatus("doc-1", 1, 10)})
	f.setStatuses("batch-2", []types.IndexingStatus{completedStatus("doc-2")})
	c := newUploadClient(t, f)

	var buf bytes.Buffer
	result, err := Run(context.Background(), c, fastConfig("ds-1", dir), nil, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, 0, result.Failed)
	// The stuck document was deleted and the file uploaded twice.
	assert.Equal(t, []string{"doc-1"}, f.deleted)
	assert.Equal(t, []string{"slow.md", "slow.md"}, f.uploads)
	assert.Contains(t, buf.String(), "deleting and retrying")
	assert.Contains(t, buf.String(), "retry indexing completed")
}

func TestRunFallbackRetryAlsoStuck(t *testing.T) {
	dir := t.TempDir()
	writeMarkdown(t, dir, "stuck.md", "content")

	f := newFakeDify()
	f.setStatuses("batch-1", []types.IndexingStatus{indexingStatus("doc-1", 0, 10)})
	f.setStatuses("batch-2", []types.IndexingStatus{indexingStatus("doc-2", 0, 10)})
	c := newUploadClient(t, f)

	var buf bytes.Buffer
	result, err := Run(context.Background(), c, fastConfig("ds-1", dir), nil, &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"doc-1"}, f.deleted)
}

func TestRunEmptyDirectory(t *testing.T) {
	f := newFakeDify()
	c := newUploadClient(t, f)

	var buf bytes.Buffer
	result, err := Run(context.Background(), c, fastConfig("ds-1", t.TempDir()), nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	assert.Contains(t, buf.String(), "no Markdown files found")
}

func TestRunValidatesConfig(t *testing.T) {
	f := newFakeDify()
	c := newUploadClient(t, f)

	_, err := Run(context.Background(), c, types.UploadConfig{}, nil, &bytes.Buffer{})
	assert.Error(t, err)
}
