// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dify-kb/pkg/dify"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify API connectivity and credentials",
	Long: `Check calls the dataset listing endpoint with the configured credentials
and reports whether the API is reachable and the key is accepted. With a
dataset id configured, it also verifies the dataset exists.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("API base: %s\n", client.BaseURL())

	list, err := client.Datasets.List(ctx, dify.ListDatasetsOptions{Limit: 1})
	if err != nil {
		var apiErr *dify.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			return fmt.Errorf("authentication failed: check the API key")
		}
		return fmt.Errorf("API unreachable: %w", err)
	}
	fmt.Printf("connection ok (%d dataset(s) visible)\n", list.Total)

	providers, err := client.Models.ListTextEmbedding(ctx)
	if err != nil {
		fmt.Printf("warning: could not list embedding models: %v\n", err)
	} else {
		fmt.Printf("embedding models ok (%d provider(s))\n", len(providers))
	}

	// Dataset check is best-effort: only when an id is configured.
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return nil
	}
	ds, err := client.Datasets.Get(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", datasetID, err)
	}
	fmt.Printf("dataset ok: %s (%d documents)\n", ds.Name, ds.DocumentCount)
	return nil
}

func init() {
	checkCmd.Flags().String("dataset-id", "", "dataset id to verify")
	rootCmd.AddCommand(checkCmd)
}
