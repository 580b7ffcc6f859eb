// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/dify-kb/pkg/types"
)

// TagService manages knowledge-base tags and their dataset bindings. The
// tag endpoints are unusual: update and delete address the tag through the
// request body rather than the path, and delete carries a JSON body.
type TagService struct {
	client *Client
}

// Create creates a new knowledge-base tag.
func (s *TagService) Create(ctx context.Context, name string) (*types.Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("tag name is required")
	}

	body := struct {
		Name string `json:"name"`
	}{Name: name}

	var out types.Tag
	if err := s.client.sendJSON(ctx, http.MethodPost, "/datasets/tags", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all knowledge-base tags.
func (s *TagService) List(ctx context.Context) ([]types.Tag, error) {
	var out []types.Tag
	if err := s.client.getJSON(ctx, "/datasets/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update renames a tag.
func (s *TagService) Update(ctx context.Context, tagID, name string) (*types.Tag, error) {
	body := struct {
		TagID string `json:"tag_id"`
		Name  string `json:"name"`
	}{TagID: tagID, Name: name}

	var out types.Tag
	if err := s.client.sendJSON(ctx, http.MethodPatch, "/datasets/tags", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a tag. The tag id travels in the request body.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	body := struct {
		TagID string `json:"tag_id"`
	}{TagID: tagID}
	return s.client.sendJSON(ctx, http.MethodDelete, "/datasets/tags", body, nil)
}

// Bind attaches tags to a dataset.
func (s *TagService) Bind(ctx context.Context, datasetID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return fmt.Errorf("at least one tag id is required")
	}

	body := struct {
		TargetID string   `json:"target_id"`
		TagIDs   []string `json:"tag_ids"`
	}{TargetID: datasetID, TagIDs: tagIDs}
	return s.client.sendJSON(ctx, http.MethodPost, "/datasets/tags/binding", body, nil)
}

// Unbind detaches one tag from a dataset.
func (s *TagService) Unbind(ctx context.Context, datasetID, tagID string) error {
	body := struct {
		TargetID string `json:"target_id"`
		TagID    string `json:"tag_id"`
	}{TargetID: datasetID, TagID: tagID}
	return s.client.sendJSON(ctx, http.MethodPost, "/datasets/tags/unbinding", body, nil)
}

// OfDataset returns the tags bound to a dataset.
func (s *TagService) OfDataset(ctx context.Context, datasetID string) ([]types.Tag, error) {
	var out struct {
		Data  []types.Tag `json:"data"`
		Total int         `json:"total"`
	}
	path := fmt.Sprintf("/datasets/%s/tags", url.PathEscape(datasetID))
	if err := s.client.sendJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
