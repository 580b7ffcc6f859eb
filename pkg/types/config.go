package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Default values applied by config consumers when a field is zero.
const (
	DefaultTimeout           = 120 * time.Second
	DefaultIndexingTimeout   = 600 * time.Second
	DefaultPollInterval      = 5 * time.Second
	DefaultFallbackTimeout   = 300 * time.Second
	DefaultFallbackRetryWait = 300 * time.Second
	DefaultIndexingTechnique = "high_quality"
)

// HTTPConfig holds shared HTTP settings for API calls.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "dify-kb/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig holds the settings needed to talk to a Dify instance.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API base, including the version prefix
	// (e.g. "https://api.dify.ai/v1"). A trailing slash is ignored.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the knowledge-base API key, sent as a bearer token.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// Validate checks that the config is sufficient to construct a client.
func (c ClientConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.APIKey, validation.Required),
	)
}

// UploadConfig holds settings for the Markdown batch uploader.
type UploadConfig struct {
	// DatasetID is the target knowledge base.
	DatasetID string `json:"dataset_id" yaml:"dataset_id"`

	// MarkdownDir is the directory scanned for .md/.markdown files.
	MarkdownDir string `json:"markdown_dir" yaml:"markdown_dir"`

	// OutputDir is the directory the copy-missing preparation step
	// reads candidate files from.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// IndexingTechnique is passed on document creation (default "high_quality").
	IndexingTechnique string `json:"indexing_technique" yaml:"indexing_technique"`

	// IndexingTimeout is the maximum wall-clock wait for a document to
	// finish indexing (default 600s).
	IndexingTimeout time.Duration `json:"indexing_timeout" yaml:"indexing_timeout"`

	// PollInterval is the delay between indexing-status polls (default 5s).
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// FallbackTimeout is how long to wait before treating a document as
	// stuck and triggering the delete-and-retry fallback (default 300s).
	FallbackTimeout time.Duration `json:"fallback_timeout" yaml:"fallback_timeout"`

	// FallbackRetryWait is the grace period between deleting a stuck
	// document and re-uploading it (default 300s).
	FallbackRetryWait time.Duration `json:"fallback_retry_wait" yaml:"fallback_retry_wait"`

	// LedgerPath enables the SQLite upload ledger when non-empty.
	LedgerPath string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty"`
}

// Validate checks that the uploader has a target and sane intervals.
func (c UploadConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DatasetID, validation.Required),
		validation.Field(&c.MarkdownDir, validation.Required),
		validation.Field(&c.PollInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.IndexingTimeout, validation.Min(time.Duration(0))),
	)
}
