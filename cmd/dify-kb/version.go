package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of dify-kb",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dify-kb %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
