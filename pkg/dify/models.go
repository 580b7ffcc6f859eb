// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dify

import (
	"context"

	"github.com/pdiddy/dify-kb/pkg/types"
)

// ModelService exposes the workspace's model catalog.
type ModelService struct {
	client *Client
}

// ListTextEmbedding returns the text-embedding models available to the
// workspace, grouped by provider.
func (s *ModelService) ListTextEmbedding(ctx context.Context) ([]types.ModelProvider, error) {
	var out struct {
		Data []types.ModelProvider `json:"data"`
	}
	if err := s.client.getJSON(ctx, "/workspaces/current/models/model-types/text-embedding", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
