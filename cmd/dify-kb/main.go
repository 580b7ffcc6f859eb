// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the dify-kb CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/dify-kb/internal/secrets"
	"github.com/pdiddy/dify-kb/pkg/dify"
	"github.com/pdiddy/dify-kb/pkg/types"
)

const defaultAPIBase = "https://api.dify.ai/v1"

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the dify-kb CLI.
var rootCmd = &cobra.Command{
	Use:   "dify-kb",
	Short: "Manage Dify knowledge-base datasets from the command line",
	Long: `dify-kb manages Dify knowledge bases over the service REST API: datasets,
documents, segments, metadata tags, and embedding models.

The upload subcommand pushes a directory of Markdown files into a dataset,
skips files already present, and waits for indexing to finish, retrying
documents that get stuck.

Credentials resolve from --api-key, the DIFY_API_KEY environment variable,
the config file, or .secrets/dify-api-key, in that order.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./dify-kb.yaml or ~/.config/dify-kb/config.yaml)")
	rootCmd.PersistentFlags().String("api-base", "", "Dify API base URL (default "+defaultAPIBase+")")
	rootCmd.PersistentFlags().String("api-key", "", "Dify API key (overrides env and secrets)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 120s)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("dify-kb")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "dify-kb"))
		}
	}

	viper.SetEnvPrefix("DIFY")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// clientConfig resolves the API connection settings from flags, environment,
// config file, and secrets.
func clientConfig(cmd *cobra.Command) types.ClientConfig {
	base, _ := cmd.Flags().GetString("api-base")
	if base == "" {
		base = viper.GetString("api_base")
	}
	if base == "" {
		base = defaultAPIBase
	}

	key, _ := cmd.Flags().GetString("api-key")
	if key == "" {
		key = viper.GetString("api_key")
	}
	if key == "" {
		key = loadedSecrets[secrets.KeyAPIKey]
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viperDuration("http_timeout")
	}

	return types.ClientConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout},
		BaseURL:    base,
		APIKey:     key,
	}
}

func newClient(cmd *cobra.Command) (*dify.Client, error) {
	return dify.New(clientConfig(cmd))
}

// resolveDatasetID resolves the target dataset from the given flag,
// environment, config file, or secrets.
func resolveDatasetID(cmd *cobra.Command, flag string) (string, error) {
	id, _ := cmd.Flags().GetString(flag)
	if id == "" {
		id = viper.GetString("dataset_id")
	}
	if id == "" {
		id = loadedSecrets[secrets.KeyDatasetID]
	}
	if id == "" {
		return "", fmt.Errorf("dataset id required: set --%s, DIFY_DATASET_ID, or .secrets/dify-dataset-id", flag)
	}
	return id, nil
}

// viperDuration reads a duration setting, accepting both Go duration
// strings ("90s", "2m") and the bare-seconds form ("120") used by the
// DIFY_* environment variables.
func viperDuration(key string) time.Duration {
	v := viper.GetString(key)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring invalid duration %q for %s\n", v, key)
		return 0
	}
	return d
}

// durationOr returns d unless it is zero, then the fallback.
func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
