// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the workspace's text-embedding models",
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	providers, err := client.Models.ListTextEmbedding(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return printJSON(providers)
	}

	if len(providers) == 0 {
		fmt.Println("No embedding model providers configured.")
		return nil
	}

	for _, p := range providers {
		fmt.Fprintf(os.Stdout, "%s (%s)\n", p.Provider, p.Status)
		for _, m := range p.Models {
			fmt.Fprintf(os.Stdout, "  %s  %s\n", m.Model, m.Status)
		}
	}
	return nil
}

func init() {
	modelsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(modelsCmd)
}
