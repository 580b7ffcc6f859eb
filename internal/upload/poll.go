// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pdiddy/dify-kb/pkg/dify"
	"github.com/pdiddy/dify-kb/pkg/types"
)

// errIndexingInProgress signals the poll loop to keep waiting.
var errIndexingInProgress = errors.New("indexing in progress")

// WaitForIndexing polls the batch's indexing status every interval until all
// documents complete, any document reports an error, the wall-clock budget
// is spent, or ctx is cancelled. Transient poll failures and empty status
// lists are retried. Progress lines go to w only when the progress text
// changes.
//
// completed is true only when every document in the batch finished without
// error. items holds the last status list observed, which may be nil when
// no poll succeeded.
func WaitForIndexing(ctx context.Context, client *dify.Client, datasetID, batch string, interval, timeout time.Duration, w io.Writer) (completed bool, items []types.IndexingStatus) {
	if interval <= 0 {
		interval = types.DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = types.DefaultIndexingTimeout
	}

	var lastProgress string
	var failed bool

	poll := func() error {
		statuses, err := client.Documents.IndexingStatus(ctx, datasetID, batch)
		if err != nil {
			// Transient; keep polling until the budget runs out.
			return err
		}
		if len(statuses) == 0 {
			return errIndexingInProgress
		}
		items = statuses

		progress := describeProgress(statuses)
		if progress != lastProgress {
			fmt.Fprintf(w, "       indexing: %s\n", progress)
			lastProgress = progress
		}

		for _, s := range statuses {
			if s.Error != "" {
				failed = true
				return nil
			}
		}
		for _, s := range statuses {
			if !s.Completed() {
				return errIndexingInProgress
			}
		}
		return nil
	}

	// Constant-interval polling with a wall-clock budget.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = interval
	bo.MaxInterval = interval
	bo.Multiplier = 1
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = timeout

	if err := backoff.Retry(poll, backoff.WithContext(bo, ctx)); err != nil {
		return false, items
	}
	return !failed, items
}

// describeProgress renders one line of batch progress: segment counts when
// the service reports them, bare statuses otherwise.
func describeProgress(statuses []types.IndexingStatus) string {
	var notes []string
	for _, s := range statuses {
		switch {
		case s.CompletedSegments != nil && s.TotalSegments != nil:
			notes = append(notes, strconv.Itoa(*s.CompletedSegments)+"/"+strconv.Itoa(*s.TotalSegments))
		case s.IndexingStatus != "":
			notes = append(notes, s.IndexingStatus)
		}
	}
	if len(notes) == 0 {
		return "waiting"
	}
	return strings.Join(notes, ", ")
}
