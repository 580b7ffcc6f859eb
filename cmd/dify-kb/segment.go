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

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Manage a document's segments and child chunks",
}

// --- add subcommand ---

var segmentAddCmd = &cobra.Command{
	Use:   "add <document-id> <content>",
	Short: "Add a segment to a document",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSegmentAdd,
}

func runSegmentAdd(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	answer, _ := cmd.Flags().GetString("answer")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")

	list, err := client.Segments.Create(context.Background(), datasetID, args[0],
		[]dify.NewSegment{{
			Content:  strings.Join(args[1:], " "),
			Answer:   answer,
			Keywords: keywords,
		}})
	if err != nil {
		return err
	}
	for _, seg := range list.Data {
		fmt.Printf("created segment %s\n", seg.ID)
	}
	return nil
}

// --- list subcommand ---

var segmentListCmd = &cobra.Command{
	Use:   "list <document-id>",
	Short: "List a document's segments",
	Args:  cobra.ExactArgs(1),
	RunE:  runSegmentList,
}

func runSegmentList(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	keyword, _ := cmd.Flags().GetString("keyword")
	status, _ := cmd.Flags().GetString("status")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	list, err := client.Segments.List(context.Background(), datasetID, args[0],
		dify.ListSegmentsOptions{Keyword: keyword, Status: status, Page: page, Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(list)
	}

	fmt.Fprintf(os.Stdout, "%-38s  %-5s  %-10s  %s\n", "ID", "Pos", "Status", "Content")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for _, seg := range list.Data {
		fmt.Fprintf(os.Stdout, "%-38s  %-5d  %-10s  %s\n",
			seg.ID, seg.Position, seg.Status, truncate(seg.Content, 60))
	}
	fmt.Fprintf(os.Stdout, "\n%d segments\n", len(list.Data))
	return nil
}

// --- get subcommand ---

var segmentGetCmd = &cobra.Command{
	Use:   "get <document-id> <segment-id>",
	Short: "Show one segment as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		seg, err := client.Segments.Get(context.Background(), datasetID, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(seg)
	},
}

// --- update subcommand ---

var segmentUpdateCmd = &cobra.Command{
	Use:   "update <document-id> <segment-id>",
	Short: "Update segment fields",
	Args:  cobra.ExactArgs(2),
	RunE:  runSegmentUpdate,
}

func runSegmentUpdate(cmd *cobra.Command, args []string) error {
	datasetID, err := resolveDatasetID(cmd, "dataset-id")
	if err != nil {
		return err
	}
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	var req dify.UpdateSegmentRequest
	changed := false
	if cmd.Flags().Changed("content") {
		v, _ := cmd.Flags().GetString("content")
		req.Content = &v
		changed = true
	}
	if cmd.Flags().Changed("answer") {
		v, _ := cmd.Flags().GetString("answer")
		req.Answer = &v
		changed = true
	}
	if cmd.Flags().Changed("keyword") {
		req.Keywords, _ = cmd.Flags().GetStringSlice("keyword")
		changed = true
	}
	if cmd.Flags().Changed("enabled") {
		v, _ := cmd.Flags().GetBool("enabled")
		req.Enabled = &v
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to update: provide --content, --answer, --keyword, or --enabled")
	}

	seg, err := client.Segments.Update(context.Background(), datasetID, args[0], args[1], req)
	if err != nil {
		return err
	}
	fmt.Printf("updated segment %s\n", seg.ID)
	return nil
}

// --- delete subcommand ---

var segmentDeleteCmd = &cobra.Command{
	Use:   "delete <document-id> <segment-id>",
	Short: "Delete a segment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Segments.Delete(context.Background(), datasetID, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted segment %s\n", args[1])
		return nil
	},
}

// --- chunk subcommands ---

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Manage a segment's child chunks",
}

var chunkAddCmd = &cobra.Command{
	Use:   "add <document-id> <segment-id> <content>",
	Short: "Add a child chunk to a segment",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		chunk, err := client.Segments.CreateChildChunk(context.Background(),
			datasetID, args[0], args[1], strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("created child chunk %s\n", chunk.ID)
		return nil
	},
}

var chunkListCmd = &cobra.Command{
	Use:   "list <document-id> <segment-id>",
	Short: "List a segment's child chunks",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		list, err := client.Segments.ListChildChunks(context.Background(),
			datasetID, args[0], args[1],
			dify.ListChildChunksOptions{Keyword: keyword, Page: page, Limit: limit})
		if err != nil {
			return err
		}
		return printJSON(list)
	},
}

var chunkUpdateCmd = &cobra.Command{
	Use:   "update <document-id> <segment-id> <chunk-id> <content>",
	Short: "Replace a child chunk's content",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		chunk, err := client.Segments.UpdateChildChunk(context.Background(),
			datasetID, args[0], args[1], args[2], strings.Join(args[3:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("updated child chunk %s\n", chunk.ID)
		return nil
	},
}

var chunkDeleteCmd = &cobra.Command{
	Use:   "delete <document-id> <segment-id> <chunk-id>",
	Short: "Delete a child chunk",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := resolveDatasetID(cmd, "dataset-id")
		if err != nil {
			return err
		}
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Segments.DeleteChildChunk(context.Background(),
			datasetID, args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Printf("deleted child chunk %s\n", args[2])
		return nil
	},
}

func init() {
	segmentCmd.PersistentFlags().String("dataset-id", "", "target dataset id")

	segmentAddCmd.Flags().String("answer", "", "answer text for Q&A datasets")
	segmentAddCmd.Flags().StringSlice("keyword", nil, "segment keyword (repeatable)")

	segmentListCmd.Flags().String("keyword", "", "filter segments by keyword")
	segmentListCmd.Flags().String("status", "", "filter segments by status (e.g. completed)")
	segmentListCmd.Flags().Int("page", 0, "page number (1-based)")
	segmentListCmd.Flags().Int("limit", 0, "page size (default 20)")
	segmentListCmd.Flags().Bool("json", false, "output as JSON")

	segmentUpdateCmd.Flags().String("content", "", "new segment content")
	segmentUpdateCmd.Flags().String("answer", "", "new answer text")
	segmentUpdateCmd.Flags().StringSlice("keyword", nil, "new segment keyword (repeatable)")
	segmentUpdateCmd.Flags().Bool("enabled", true, "enable or disable the segment")

	chunkListCmd.Flags().String("keyword", "", "filter chunks by keyword")
	chunkListCmd.Flags().Int("page", 0, "page number (1-based)")
	chunkListCmd.Flags().Int("limit", 0, "page size (default 20)")

	chunkCmd.AddCommand(chunkAddCmd, chunkListCmd, chunkUpdateCmd, chunkDeleteCmd)
	segmentCmd.AddCommand(segmentAddCmd, segmentListCmd, segmentGetCmd,
		segmentUpdateCmd, segmentDeleteCmd, chunkCmd)
	rootCmd.AddCommand(segmentCmd)
}
