// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestViperDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"bare seconds", "120", 120 * time.Second},
		{"zero", "0", 0},
		{"duration string", "90s", 90 * time.Second},
		{"minutes", "2m", 2 * time.Minute},
		{"unset", "", 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			if tt.value != "" {
				viper.Set("some_timeout", tt.value)
			}
			assert.Equal(t, tt.want, viperDuration("some_timeout"))
		})
	}
}

func TestClientConfigEnvHTTPTimeout(t *testing.T) {
	// The documented environment form is integer seconds.
	viper.Reset()
	t.Setenv("DIFY_HTTP_TIMEOUT", "120")
	t.Setenv("DIFY_API_KEY", "sk-env")
	initConfig()

	cfg := clientConfig(rootCmd)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
	assert.Equal(t, "sk-env", cfg.APIKey)
}

func TestUploadConfigEnvDurations(t *testing.T) {
	viper.Reset()
	t.Setenv("DIFY_POLL_INTERVAL", "5")
	t.Setenv("DIFY_INDEXING_TIMEOUT", "90s")
	initConfig()

	cfg := uploadConfig(uploadCmd, "ds-1")
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.IndexingTimeout)
}
