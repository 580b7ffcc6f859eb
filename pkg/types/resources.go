// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration and resource structs shared by the
// client library and the CLI. Resource structs mirror the JSON documents the
// Dify service returns; the service owns all lifecycle semantics, so no
// invariants are enforced locally beyond field presence.
package types

// Dataset is a knowledge-base collection on the Dify service.
type Dataset struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description,omitempty"`
	Provider               string          `json:"provider,omitempty"`
	Permission             string          `json:"permission,omitempty"`
	DataSourceType         string          `json:"data_source_type,omitempty"`
	IndexingTechnique      string          `json:"indexing_technique,omitempty"`
	AppCount               int             `json:"app_count,omitempty"`
	DocumentCount          int             `json:"document_count,omitempty"`
	WordCount              int             `json:"word_count,omitempty"`
	CreatedBy              string          `json:"created_by,omitempty"`
	CreatedAt              int64           `json:"created_at,omitempty"`
	UpdatedBy              string          `json:"updated_by,omitempty"`
	UpdatedAt              int64           `json:"updated_at,omitempty"`
	EmbeddingModel         string          `json:"embedding_model,omitempty"`
	EmbeddingModelProvider string          `json:"embedding_model_provider,omitempty"`
	EmbeddingAvailable     *bool           `json:"embedding_available,omitempty"`
	RetrievalModelDict     *RetrievalModel `json:"retrieval_model_dict,omitempty"`
	Tags                   []Tag           `json:"tags,omitempty"`
}

// Document is an uploaded file or text resource within a dataset. Indexing
// happens asynchronously after creation; IndexingStatus tracks its progress
// per batch.
type Document struct {
	ID                   string         `json:"id"`
	Position             int            `json:"position,omitempty"`
	DataSourceType       string         `json:"data_source_type,omitempty"`
	DataSourceInfo       map[string]any `json:"data_source_info,omitempty"`
	DatasetProcessRuleID string         `json:"dataset_process_rule_id,omitempty"`
	Name                 string         `json:"name"`
	CreatedFrom          string         `json:"created_from,omitempty"`
	CreatedBy            string         `json:"created_by,omitempty"`
	CreatedAt            int64          `json:"created_at,omitempty"`
	Tokens               int            `json:"tokens,omitempty"`
	IndexingStatus       string         `json:"indexing_status,omitempty"`
	Error                string         `json:"error,omitempty"`
	Enabled              bool           `json:"enabled,omitempty"`
	DisabledAt           *int64         `json:"disabled_at,omitempty"`
	DisabledBy           string         `json:"disabled_by,omitempty"`
	Archived             bool           `json:"archived,omitempty"`
	DisplayStatus        string         `json:"display_status,omitempty"`
	WordCount            int            `json:"word_count,omitempty"`
	HitCount             int            `json:"hit_count,omitempty"`
	DocForm              string         `json:"doc_form,omitempty"`
}

// Segment is a retrieval chunk of a document's content.
type Segment struct {
	ID            string        `json:"id"`
	Position      int           `json:"position,omitempty"`
	DocumentID    string        `json:"document_id,omitempty"`
	Content       string        `json:"content"`
	Answer        string        `json:"answer,omitempty"`
	WordCount     int           `json:"word_count,omitempty"`
	Tokens        int           `json:"tokens,omitempty"`
	Keywords      []string      `json:"keywords,omitempty"`
	IndexNodeID   string        `json:"index_node_id,omitempty"`
	IndexNodeHash string        `json:"index_node_hash,omitempty"`
	HitCount      int           `json:"hit_count,omitempty"`
	Enabled       bool          `json:"enabled,omitempty"`
	Status        string        `json:"status,omitempty"`
	CreatedBy     string        `json:"created_by,omitempty"`
	CreatedAt     int64         `json:"created_at,omitempty"`
	IndexingAt    *float64      `json:"indexing_at,omitempty"`
	CompletedAt   *float64      `json:"completed_at,omitempty"`
	Error         string        `json:"error,omitempty"`
	Document      *DocumentRef  `json:"document,omitempty"`
	ChildChunks   []ChildChunk  `json:"child_chunks,omitempty"`
}

// DocumentRef is the abbreviated document record embedded in retrieval results.
type DocumentRef struct {
	ID             string `json:"id"`
	DataSourceType string `json:"data_source_type,omitempty"`
	Name           string `json:"name,omitempty"`
}

// ChildChunk is a sub-chunk of a segment under hierarchical segmentation.
type ChildChunk struct {
	ID            string   `json:"id"`
	SegmentID     string   `json:"segment_id,omitempty"`
	Content       string   `json:"content"`
	WordCount     int      `json:"word_count,omitempty"`
	Tokens        int      `json:"tokens,omitempty"`
	IndexNodeID   string   `json:"index_node_id,omitempty"`
	IndexNodeHash string   `json:"index_node_hash,omitempty"`
	Status        string   `json:"status,omitempty"`
	CreatedBy     string   `json:"created_by,omitempty"`
	CreatedAt     int64    `json:"created_at,omitempty"`
	CompletedAt   *float64 `json:"completed_at,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Tag is a knowledge-base tag that can be bound to datasets.
type Tag struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	BindingCount int    `json:"binding_count,omitempty"`
}

// IndexingStatus tracks the asynchronous indexing of one document within an
// upload batch. Timestamps are Unix epoch seconds with fractions; nil means
// the stage has not happened yet.
type IndexingStatus struct {
	ID                   string   `json:"id"`
	IndexingStatus       string   `json:"indexing_status"`
	ProcessingStartedAt  *float64 `json:"processing_started_at,omitempty"`
	ParsingCompletedAt   *float64 `json:"parsing_completed_at,omitempty"`
	CleaningCompletedAt  *float64 `json:"cleaning_completed_at,omitempty"`
	SplittingCompletedAt *float64 `json:"splitting_completed_at,omitempty"`
	CompletedAt          *float64 `json:"completed_at,omitempty"`
	PausedAt             *float64 `json:"paused_at,omitempty"`
	StoppedAt            *float64 `json:"stopped_at,omitempty"`
	Error                string   `json:"error,omitempty"`
	CompletedSegments    *int     `json:"completed_segments,omitempty"`
	TotalSegments        *int     `json:"total_segments,omitempty"`
}

// Completed reports whether this document's indexing has finished.
func (s IndexingStatus) Completed() bool {
	return s.CompletedAt != nil || s.IndexingStatus == "completed"
}

// RetrievalModel configures how segments are retrieved from a dataset.
type RetrievalModel struct {
	SearchMethod          string          `json:"search_method,omitempty"`
	RerankingEnable       *bool           `json:"reranking_enable,omitempty"`
	RerankingMode         string          `json:"reranking_mode,omitempty"`
	RerankingModel        *RerankingModel `json:"reranking_model,omitempty"`
	Weights               *float64        `json:"weights,omitempty"`
	TopK                  int             `json:"top_k,omitempty"`
	ScoreThresholdEnabled *bool           `json:"score_threshold_enabled,omitempty"`
	ScoreThreshold        *float64        `json:"score_threshold,omitempty"`
}

// RerankingModel names the provider and model used for reranking.
type RerankingModel struct {
	RerankingProviderName string `json:"reranking_provider_name,omitempty"`
	RerankingModelName    string `json:"reranking_model_name,omitempty"`
}

// ProcessRule controls how the service cleans and segments a document.
type ProcessRule struct {
	// Mode is "automatic" or "custom".
	Mode  string             `json:"mode"`
	Rules *ProcessRuleDetail `json:"rules,omitempty"`
}

// ProcessRuleDetail holds the custom-mode cleaning and segmentation rules.
type ProcessRuleDetail struct {
	PreProcessingRules []PreProcessingRule `json:"pre_processing_rules,omitempty"`
	Segmentation       *Segmentation       `json:"segmentation,omitempty"`
	ParentMode         string              `json:"parent_mode,omitempty"`
}

// PreProcessingRule toggles one cleaning step (e.g. "remove_extra_spaces").
type PreProcessingRule struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
}

// Segmentation sets the chunking separator and size.
type Segmentation struct {
	Separator string `json:"separator,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// ModelProvider groups the embedding models one provider offers.
type ModelProvider struct {
	Provider  string            `json:"provider"`
	Label     map[string]string `json:"label,omitempty"`
	IconSmall map[string]string `json:"icon_small,omitempty"`
	Status    string            `json:"status,omitempty"`
	Models    []EmbeddingModel  `json:"models,omitempty"`
}

// EmbeddingModel is one text-embedding model within a provider.
type EmbeddingModel struct {
	Model           string            `json:"model"`
	Label           map[string]string `json:"label,omitempty"`
	ModelType       string            `json:"model_type,omitempty"`
	Features        []string          `json:"features,omitempty"`
	FetchFrom       string            `json:"fetch_from,omitempty"`
	ModelProperties map[string]any    `json:"model_properties,omitempty"`
	Deprecated      bool              `json:"deprecated,omitempty"`
	Status          string            `json:"status,omitempty"`
}
