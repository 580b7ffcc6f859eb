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

// SegmentService manages document segments and their child chunks.
type SegmentService struct {
	client *Client
}

// NewSegment holds the fields for segment creation. Answer is only
// meaningful for Q&A-form documents.
type NewSegment struct {
	Content  string   `json:"content"`
	Answer   string   `json:"answer,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// SegmentList is one page of segments. DocForm is set on responses from the
// segment endpoints.
type SegmentList struct {
	Data    []types.Segment `json:"data"`
	DocForm string          `json:"doc_form,omitempty"`
	HasMore bool            `json:"has_more"`
	Limit   int             `json:"limit"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
}

// Create adds segments to a document.
func (s *SegmentService) Create(ctx context.Context, datasetID, documentID string, segments []NewSegment) (*SegmentList, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("at least one segment is required")
	}

	body := struct {
		Segments []NewSegment `json:"segments"`
	}{Segments: segments}

	var out SegmentList
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSegmentsOptions filters and pages the segment listing.
type ListSegmentsOptions struct {
	Keyword string
	Status  string // e.g. "completed"
	Page    int
	Limit   int
}

// List returns one page of the document's segments.
func (s *SegmentService) List(ctx context.Context, datasetID, documentID string, opts ListSegmentsOptions) (*SegmentList, error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if opts.Keyword != "" {
		q.Set("keyword", opts.Keyword)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}

	var out SegmentList
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments",
		url.PathEscape(datasetID), url.PathEscape(documentID))
	if err := s.client.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// segmentEnvelope wraps the single-segment responses.
type segmentEnvelope struct {
	Data    types.Segment `json:"data"`
	DocForm string        `json:"doc_form,omitempty"`
}

// Get returns one segment's details.
func (s *SegmentService) Get(ctx context.Context, datasetID, documentID, segmentID string) (*types.Segment, error) {
	var out segmentEnvelope
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID))
	if err := s.client.getJSON(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateSegmentRequest holds a partial segment update. Only non-nil fields
// are sent; Keywords replaces the keyword list when non-nil.
type UpdateSegmentRequest struct {
	Content               *string  `json:"content,omitempty"`
	Answer                *string  `json:"answer,omitempty"`
	Keywords              []string `json:"keywords,omitempty"`
	Enabled               *bool    `json:"enabled,omitempty"`
	RegenerateChildChunks *bool    `json:"regenerate_child_chunks,omitempty"`
}

// Update applies a partial update to a segment.
func (s *SegmentService) Update(ctx context.Context, datasetID, documentID, segmentID string, req UpdateSegmentRequest) (*types.Segment, error) {
	body := struct {
		Segment UpdateSegmentRequest `json:"segment"`
	}{Segment: req}

	var out segmentEnvelope
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Delete removes a segment.
func (s *SegmentService) Delete(ctx context.Context, datasetID, documentID, segmentID string) error {
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID))
	return s.client.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}

// --- child chunks (hierarchical segmentation) ---

// ChildChunkList is one page of child chunks.
type ChildChunkList struct {
	Data       []types.ChildChunk `json:"data"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

// childChunkEnvelope wraps the single-chunk responses.
type childChunkEnvelope struct {
	Data types.ChildChunk `json:"data"`
}

// CreateChildChunk adds a child chunk to a segment.
func (s *SegmentService) CreateChildChunk(ctx context.Context, datasetID, documentID, segmentID, content string) (*types.ChildChunk, error) {
	if content == "" {
		return nil, fmt.Errorf("child chunk content is required")
	}

	body := struct {
		Content string `json:"content"`
	}{Content: content}

	var out childChunkEnvelope
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s/child_chunks",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ListChildChunksOptions filters and pages the child-chunk listing.
type ListChildChunksOptions struct {
	Keyword string
	Page    int
	Limit   int
}

// ListChildChunks returns one page of a segment's child chunks.
func (s *SegmentService) ListChildChunks(ctx context.Context, datasetID, documentID, segmentID string, opts ListChildChunksOptions) (*ChildChunkList, error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if opts.Keyword != "" {
		q.Set("keyword", opts.Keyword)
	}

	var out ChildChunkList
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s/child_chunks",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID))
	if err := s.client.getJSON(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateChildChunk replaces a child chunk's content.
func (s *SegmentService) UpdateChildChunk(ctx context.Context, datasetID, documentID, segmentID, childChunkID, content string) (*types.ChildChunk, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	var out childChunkEnvelope
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s/child_chunks/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID), url.PathEscape(childChunkID))
	if err := s.client.sendJSON(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteChildChunk removes a child chunk.
func (s *SegmentService) DeleteChildChunk(ctx context.Context, datasetID, documentID, segmentID, childChunkID string) error {
	path := fmt.Sprintf("/datasets/%s/documents/%s/segments/%s/child_chunks/%s",
		url.PathEscape(datasetID), url.PathEscape(documentID), url.PathEscape(segmentID), url.PathEscape(childChunkID))
	return s.client.sendJSON(ctx, http.MethodDelete, path, nil, nil)
}
