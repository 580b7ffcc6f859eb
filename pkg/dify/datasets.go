// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/dify-kb/pkg/types"
)

// DatasetService manages knowledge-base datasets.
type DatasetService struct {
	client *Client
}

// CreateDatasetRequest holds the fields for dataset creation. Name is
// required; zero-valued fields fall back to the service defaults
// (high_quality / only_me / vendor).
type CreateDatasetRequest struct {
	Name                   string                `json:"name"`
	Description            string                `json:"description,omitempty"`
	IndexingTechnique      string                `json:"indexing_technique"`
	Permission             string                `json:"permission"`
	Provider               string                `json:"provider"`
	EmbeddingModel         string                `json:"embedding_model,omitempty"`
	EmbeddingModelProvider string                `json:"embedding_model_provider,omitempty"`
	RetrievalModel         *types.RetrievalModel `json:"retrieval_model,omitempty"`
}

// Create creates a new dataset.
func (s *DatasetService) Create(ctx context.Context, req CreateDatasetRequest) (*types.Dataset, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("dataset name is required")
	}
	if req.IndexingTechnique == "" {
		req.IndexingTechnique = types.DefaultIndexingTechnique
	}
	if req.Permission == "" {
		req.Permission = "only_me"
	}
	if req.Provider == "" {
		req.Provider = "vendor"
	}

	var out types.Dataset
	if err := s.client.sendJSON(ctx, http.MethodPost, "/datasets", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDatasetsOptions filters and pages the dataset listing.
type ListDatasetsOptions struct {
	Keyword    string
	TagIDs     []string
	Page       int // 1-based; 0 means page 1
	Limit      int // 0 means the service default of 20
	IncludeAll bool
}

// DatasetList is one page of datasets.
type DatasetList struct {
	Data    []types.Dataset `json:"data"`
	HasMore bool            `json:"has_more"`
	Limit   int             `json:"limit"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
}

// List returns one page of datasets matching the options.
func (s *DatasetService) List(ctx context.Context, opts ListDatasetsOptions) (*DatasetList, error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{
		"page":        {strconv.Itoa(page)},
		"limit":       {strconv.Itoa(limit)},
		"include_all": {strconv.FormatBool(opts.IncludeAll)},
	}
	if opts.Keyword != "" {
		q.Set("keyword", opts.Keyword)
	}
	for _, id := range opts.TagIDs {
		q.Add("tag_ids", id)
	}

	var out DatasetList
	if err := s.client.getJSON(ctx, "/datasets", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get returns the dataset's details.
func (s *DatasetService) Get(ctx context.Context, datasetID string) (*types.Dataset, error) {
	var out types.Dataset
	path := fmt.Sprintf("/datasets/%s", url.PathEscape(datasetID))
	if err := s.client.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDatasetRequest holds the fields for a partial dataset update. Only
// non-nil fields are sent.
type UpdateDatasetRequest struct {
	Name                   *string               `json:"name,omitempty"`
	Description            *string               `json:"description,omitempty"`
	IndexingTechnique      *string               `json:"indexing_technique,omitempty"`
	Permission             *string               `json:"permission,omitempty"`
	EmbeddingModel         *string               `json:"embedding_model,omitempty"`
	EmbeddingModelProvider *string               `json:"embedding_model_provider,omitempty"`
	RetrievalModel         *types.RetrievalModel `json:"retrieval_model,omitempty"`
}

// Update applies a partial update to the dataset.
func (s *DatasetService) Update(ctx context.Context, datasetID string, req UpdateDatasetRequest) (*types.Dataset, error) {
	var out types.Dataset
	path := fmt.Sprintf("/datasets/%s", url.PathEscape(datasetID))
	if err := s.client.sendJSON(ctx, http.MethodPatch, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the dataset and everything in it.
func (s *DatasetService) Delete(ctx context.Context, datasetID string) error {
	path := fmt.Sprintf("/datasets/%s", url.PathEscape(datasetID))
	return s.client.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// RetrievalRecord is one scored segment from a retrieval query.
type RetrievalRecord struct {
	Segment types.Segment `json:"segment"`
	Score   float64       `json:"score"`
}

// RetrieveResult holds the echoed query and the scored records.
type RetrieveResult struct {
	Query struct {
		Content string `json:"content"`
	} `json:"query"`
	Records []RetrievalRecord `json:"records"`
}

// Retrieve runs a retrieval query against the dataset. retrievalModel is
// optional; nil uses the dataset's configured retrieval settings.
func (s *DatasetService) Retrieve(ctx context.Context, datasetID, query string, retrievalModel *types.RetrievalModel) (*RetrieveResult, error) {
	if query == "" {
		return nil, fmt.Errorf("retrieval query is required")
	}

	body := struct {
		Query          string                `json:"query"`
		RetrievalModel *types.RetrievalModel `json:"retrieval_model,omitempty"`
	}{Query: query, RetrievalModel: retrievalModel}

	var out RetrieveResult
	path := fmt.Sprintf("/datasets/%s/retrieve", url.PathEscape(datasetID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
