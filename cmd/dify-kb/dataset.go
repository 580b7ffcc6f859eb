// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dify-kb/pkg/dify"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage datasets (create, list, get, update, delete, retrieve)",
}

// --- create subcommand ---

var datasetCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetCreate,
}

func runDatasetCreate(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	technique, _ := cmd.Flags().GetString("indexing-technique")
	permission, _ := cmd.Flags().GetString("permission")

	ds, err := client.Datasets.Create(context.Background(), dify.CreateDatasetRequest{
		Name:              args[0],
		Description:       description,
		IndexingTechnique: technique,
		Permission:        permission,
	})
	if err != nil {
		return err
	}

	fmt.Printf("created dataset %s (%s)\n", ds.Name, ds.ID)
	return nil
}

// --- list subcommand ---

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets",
	RunE:  runDatasetList,
}

func runDatasetList(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	keyword, _ := cmd.Flags().GetString("keyword")
	tagIDs, _ := cmd.Flags().GetStringSlice("tag-id")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	list, err := client.Datasets.List(context.Background(), dify.ListDatasetsOptions{
		Keyword: keyword,
		TagIDs:  tagIDs,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(list)
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-30s  %-12s  %-9s  %s\n",
		"ID", "Name", "Technique", "Documents", "Words")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, ds := range list.Data {
		fmt.Fprintf(os.Stdout, "%-38s  %-30s  %-12s  %-9d  %d\n",
			ds.ID, truncate(ds.Name, 30), ds.IndexingTechnique, ds.DocumentCount, ds.WordCount)
	}
	fmt.Fprintf(os.Stdout, "\n%d of %d datasets\n", len(list.Data), list.Total)
	return nil
}

// --- get subcommand ---

var datasetGetCmd = &cobra.Command{
	Use:   "get <dataset-id>",
	Short: "Show one dataset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		ds, err := client.Datasets.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(ds)
	},
}

// --- update subcommand ---

var datasetUpdateCmd = &cobra.Command{
	Use:   "update <dataset-id>",
	Short: "Update dataset fields",
	Long: `Update applies a partial update to a dataset. Only fields given as
flags are sent; everything else is left unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runDatasetUpdate,
}

func runDatasetUpdate(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	var req dify.UpdateDatasetRequest
	changed := false
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		req.Name = &v
		changed = true
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		req.Description = &v
		changed = true
	}
	if cmd.Flags().Changed("indexing-technique") {
		v, _ := cmd.Flags().GetString("indexing-technique")
		req.IndexingTechnique = &v
		changed = true
	}
	if cmd.Flags().Changed("permission") {
		v, _ := cmd.Flags().GetString("permission")
		req.Permission = &v
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to update: provide --name, --description, --indexing-technique, or --permission")
	}

	ds, err := client.Datasets.Update(context.Background(), args[0], req)
	if err != nil {
		return err
	}
	fmt.Printf("updated dataset %s (%s)\n", ds.Name, ds.ID)
	return nil
}

// --- delete subcommand ---

var datasetDeleteCmd = &cobra.Command{
	Use:   "delete <dataset-id>",
	Short: "Delete a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Datasets.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted dataset %s\n", args[0])
		return nil
	},
}

// --- retrieve subcommand ---

var datasetRetrieveCmd = &cobra.Command{
	Use:   "retrieve <dataset-id> <query>",
	Short: "Run a retrieval query against a dataset",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDatasetRetrieve,
}

func runDatasetRetrieve(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	query := strings.Join(args[1:], " ")
	result, err := client.Datasets.Retrieve(context.Background(), args[0], query, nil)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(result)
	}

	if len(result.Records) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, rec := range result.Records {
		fmt.Fprintf(os.Stdout, "%d. [%.4f] %s\n", i+1, rec.Score, truncate(rec.Segment.Content, 120))
		if rec.Segment.Document != nil && rec.Segment.Document.Name != "" {
			fmt.Fprintf(os.Stdout, "   from %s\n", rec.Segment.Document.Name)
		}
	}
	fmt.Fprintf(os.Stdout, "\n%d records\n", len(result.Records))
	return nil
}

func init() {
	datasetCreateCmd.Flags().String("description", "", "dataset description")
	datasetCreateCmd.Flags().String("indexing-technique", "", "indexing technique (default high_quality)")
	datasetCreateCmd.Flags().String("permission", "", "dataset permission (default only_me)")

	datasetListCmd.Flags().String("keyword", "", "filter datasets by keyword")
	datasetListCmd.Flags().StringSlice("tag-id", nil, "filter datasets by tag id (repeatable)")
	datasetListCmd.Flags().Int("page", 0, "page number (1-based)")
	datasetListCmd.Flags().Int("limit", 0, "page size (default 20)")
	datasetListCmd.Flags().Bool("json", false, "output as JSON")

	datasetUpdateCmd.Flags().String("name", "", "new dataset name")
	datasetUpdateCmd.Flags().String("description", "", "new dataset description")
	datasetUpdateCmd.Flags().String("indexing-technique", "", "new indexing technique")
	datasetUpdateCmd.Flags().String("permission", "", "new permission")

	datasetRetrieveCmd.Flags().Bool("json", false, "output as JSON")

	datasetCmd.AddCommand(datasetCreateCmd, datasetListCmd, datasetGetCmd,
		datasetUpdateCmd, datasetDeleteCmd, datasetRetrieveCmd)
	rootCmd.AddCommand(datasetCmd)
}
