// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/dify-kb/pkg/dify"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents inside a dataset",
}

// --- create-text subcommand ---

var documentCreateTextCmd = &cobra.Command{
	Use:   "create-text <name> <file>",
	Short: "Create a document from the text contents of a local file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentCreateText,
}

func runDocumentCreateText(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}

	resp, err := client.Documents.CreateByText(context.Background(), datasetID,
		args[0], string(data), documentOptions(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("created document %s (batch %s)\n", resp.Document.ID, resp.Batch)
	return nil
}

// --- create-file subcommand ---

var documentCreateFileCmd = &cobra.Command{
	Use:   "create-file <file>",
	Short: "Create a document by uploading a local file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentCreateFile,
}

func runDocumentCreateFile(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	resp, err := client.Documents.CreateByFile(context.Background(), datasetID,
		args[0], documentOptions(cmd))
	if err != nil {
		return err
	}
	fmt.Printf("created document %s from %s (batch %s)\n",
		resp.Document.ID, filepath.Base(args[0]), resp.Batch)
	return nil
}

// --- update-text subcommand ---

var documentUpdateTextCmd = &cobra.Command{
	Use:   "update-text <document-id> <file>",
	Short: "Replace a document's content from a local file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentUpdateText,
}

func runDocumentUpdateText(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}
	text := string(data)

	req := dify.UpdateDocumentByTextRequest{Text: &text}
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		req.Name = &v
	}

	resp, err := client.Documents.UpdateByText(context.Background(), datasetID, args[0], req)
	if err != nil {
		return err
	}
	fmt.Printf("updated document %s (batch %s)\n", resp.Document.ID, resp.Batch)
	return nil
}

// --- update-file subcommand ---

var documentUpdateFileCmd = &cobra.Command{
	Use:   "update-file <document-id> <file>",
	Short: "Replace a document's content by uploading a new file",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentUpdateFile,
}

func runDocumentUpdateFile(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	var opts dify.UpdateDocumentByFileOptions
	if cmd.Flags().Changed("name") {
		opts.Name, _ = cmd.Flags().GetString("name")
	}

	resp, err := client.Documents.UpdateByFile(context.Background(), datasetID, args[0], args[1], opts)
	if err != nil {
		return err
	}
	fmt.Printf("updated document %s (batch %s)\n", resp.Document.ID, resp.Batch)
	return nil
}

// --- get subcommand ---

var documentGetCmd = &cobra.Command{
	Use:   "get <document-id>",
	Short: "Show one document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		metadata, _ := cmd.Flags().GetString("metadata")
		doc, err := client.Documents.Get(context.Background(), datasetID, args[0], metadata)
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

// --- list subcommand ---

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in a dataset",
	RunE:  runDocumentList,
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	keyword, _ := cmd.Flags().GetString("keyword")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	list, err := client.Documents.List(context.Background(), datasetID, dify.ListDocumentsOptions{
		Keyword: keyword,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(list)
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-40s  %-12s  %s\n", "ID", "Name", "Status", "Words")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 104))
	for _, doc := range list.Data {
		fmt.Fprintf(os.Stdout, "%-38s  %-40s  %-12s  %d\n",
			doc.ID, truncate(doc.Name, 40), doc.IndexingStatus, doc.WordCount)
	}
	fmt.Fprintf(os.Stdout, "\n%d of %d documents\n", len(list.Data), list.Total)
	return nil
}

// --- delete subcommand ---

var documentDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Documents.Delete(context.Background(), datasetID, args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted document %s\n", args[0])
		return nil
	},
}

// --- status subcommand ---

var documentStatusCmd = &cobra.Command{
	Use:   "status <batch>",
	Short: "Show the indexing status of an upload batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		statuses, err := client.Documents.IndexingStatus(context.Background(), datasetID, args[0])
		if err != nil {
			return err
		}
		return printJSON(statuses)
	},
}

// --- enable/disable/archive/unarchive subcommands ---

func newStatusActionCmd(use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <document-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, err := resolveDatasetID(cmd, "dataset-id")
			if err != nil {
				return err
			}
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Documents.UpdateStatus(context.Background(), datasetID, action, args); err != nil {
				return err
			}
			fmt.Printf("%s %d document(s)\n", use+"d", len(args))
			return nil
		},
	}
}

// --- upload-file subcommand ---

var documentUploadFileCmd = &cobra.Command{
	Use:   "upload-file <document-id>",
	Short: "Show the source file a document was created from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		info, err := client.Documents.UploadFile(context.Background(), datasetID, args[0])
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

// documentOptions builds the shared creation options from flags.
func documentOptions(cmd *cobra.Command) dify.DocumentOptions {
	technique, _ := cmd.Flags().GetString("indexing-technique")
	docForm, _ := cmd.Flags().GetString("doc-form")
	docLanguage, _ := cmd.Flags().GetString("doc-language")
	return dify.DocumentOptions{
		IndexingTechnique: technique,
		DocForm:           docForm,
		DocLanguage:       docLanguage,
	}
}

func init() {
	// Shared flag on the parent command, inherited by subcommands.
	documentCmd.PersistentFlags().String("dataset-id", "", "target dataset id")

	for _, c := range []*cobra.Command{documentCreateTextCmd, documentCreateFileCmd} {
		c.Flags().String("indexing-technique", "", "indexing technique (default high_quality)")
		c.Flags().String("doc-form", "", "document form (default text_model)")
		c.Flags().String("doc-language", "", "document language")
	}

	documentUpdateTextCmd.Flags().String("name", "", "new document name")
	documentUpdateFileCmd.Flags().String("name", "", "new document name")

	documentGetCmd.Flags().String("metadata", "", "metadata detail: all, only, or without (default all)")

	documentListCmd.Flags().String("keyword", "", "filter documents by keyword")
	documentListCmd.Flags().Int("page", 0, "page number (1-based)")
	documentListCmd.Flags().Int("limit", 0, "page size (default 20)")
	documentListCmd.Flags().Bool("json", false, "output as JSON")

	documentCmd.AddCommand(
		documentCreateTextCmd, documentCreateFileCmd,
		documentUpdateTextCmd, documentUpdateFileCmd,
		documentGetCmd, documentListCmd, documentDeleteCmd,
		documentStatusCmd, documentUploadFileCmd,
		newStatusActionCmd("enable", "Enable documents for retrieval", dify.StatusActionEnable),
		newStatusActionCmd("disable", "Disable documents from retrieval", dify.StatusActionDisable),
		newStatusActionCmd("archive", "Archive documents", dify.StatusActionArchive),
		newStatusActionCmd("unarchive", "Restore archived documents", dify.StatusActionUnArchive),
	)
	rootCmd.AddCommand(documentCmd)
}
