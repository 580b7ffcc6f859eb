// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage knowledge-type tags and dataset bindings",
}

var tagCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		tag, err := client.Tags.Create(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created tag %s (%s)\n", tag.Name, tag.ID)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all knowledge-type tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		tags, err := client.Tags.List(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return printJSON(tags)
		}

		fmt.Fprintf(os.Stdout, "%-38s  %-30s  %s\n", "ID", "Name", "Bindings")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
		for _, tag := range tags {
			fmt.Fprintf(os.Stdout, "%-38s  %-30s  %d\n", tag.ID, tag.Name, tag.BindingCount)
		}
		fmt.Fprintf(os.Stdout, "\n%d tags\n", len(tags))
		return nil
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <tag-id> <name>",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		tag, err := client.Tags.Update(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("renamed tag %s to %s\n", tag.ID, tag.Name)
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag-id>",
	Short: "Delete a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Tags.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted tag %s\n", args[0])
		return nil
	},
}

var tagBindCmd = &cobra.Command{
	Use:   "bind <dataset-id> <tag-id>...",
	Short: "Bind tags to a dataset",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Tags.Bind(context.Background(), args[0], args[1:]); err != nil {
			return err
		}
		fmt.Printf("bound %d tag(s) to dataset %s\n", len(args)-1, args[0])
		return nil
	},
}

var tagUnbindCmd = &cobra.Command{
	Use:   "unbind <dataset-id> <tag-id>",
	Short: "Unbind a tag from a dataset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := client.Tags.Unbind(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("unbound tag %s from dataset %s\n", args[1], args[0])
		return nil
	},
}

var tagShowCmd = &cobra.Command{
	Use:   "show <dataset-id>",
	Short: "Show the tags bound to a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		tags, err := client.Tags.OfDataset(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(tags)
	},
}

func init() {
	tagListCmd.Flags().Bool("json", false, "output as JSON")

	tagCmd.AddCommand(tagCreateCmd, tagListCmd, tagRenameCmd, tagDeleteCmd,
		tagBindCmd, tagUnbindCmd, tagShowCmd)
	rootCmd.AddCommand(tagCmd)
}
