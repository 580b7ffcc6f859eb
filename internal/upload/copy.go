// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/dify-kb/pkg/dify"
)

// CopyMissing copies Markdown files from outputDir into markdownDir when
// they are neither in the dataset (by normalized name) nor already present
// at the destination. Source modification times are preserved so repeated
// preparation runs stay idempotent. A missing outputDir is not an error.
//
// Returns the number of files copied and skipped, and the number of
// candidates considered.
func CopyMissing(ctx context.Context, client *dify.Client, datasetID, outputDir, markdownDir string) (copied, skipped, considered int, err error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, 0, nil
		}
		return 0, 0, 0, fmt.Errorf("reading %s: %w", outputDir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdownName(entry.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(outputDir, entry.Name()))
	}
	if len(candidates) == 0 {
		return 0, 0, 0, nil
	}

	if err := os.MkdirAll(markdownDir, 0o755); err != nil {
		return 0, 0, 0, fmt.Errorf("creating %s: %w", markdownDir, err)
	}

	existing, err := ExistingDocumentNames(ctx, client, datasetID)
	if err != nil {
		return 0, 0, 0, err
	}

	for _, sourcePath := range candidates {
		fileName := filepath.Base(sourcePath)
		if nameExists(existing, fileName) {
			skipped++
			continue
		}

		destPath := filepath.Join(markdownDir, fileName)
		if _, err := os.Stat(destPath); err == nil {
			skipped++
			continue
		}

		if err := copyFile(sourcePath, destPath); err != nil {
			return copied, skipped, len(candidates), err
		}
		copied++
	}
	return copied, skipped, len(candidates), nil
}

// copyFile copies src to dst and carries over the source's mtime.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
