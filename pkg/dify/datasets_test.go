// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dify-kb/pkg/types"
)

func TestDatasetCreate(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id":"ds-1","name":"papers","permission":"only_me","document_count":0}`)
	})

	ds, err := c.Datasets.Create(context.Background(), CreateDatasetRequest{
		Name:        "papers",
		Description: "research papers",
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/datasets", gotPath)
	assert.Equal(t, "papers", gotBody["name"])
	assert.Equal(t, "research papers", gotBody["description"])
	// Defaults filled in when unset.
	assert.Equal(t, "high_quality", gotBody["indexing_technique"])
	assert.Equal(t, "only_me", gotBody["permission"])
	assert.Equal(t, "vendor", gotBody["provider"])

	assert.Equal(t, "ds-1", ds.ID)
	assert.Equal(t, "papers", ds.Name)
}

func TestDatasetCreateRequiresName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Datasets.Create(context.Background(), CreateDatasetRequest{})
	assert.Error(t, err)
}

func TestDatasetList(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"data":[{"id":"ds-1","name":"a"},{"id":"ds-2","name":"b"}],"has_more":false,"limit":50,"total":2,"page":2}`)
	})

	list, err := c.Datasets.List(context.Background(), ListDatasetsOptions{
		Keyword:    "kb",
		TagIDs:     []string{"t1", "t2"},
		Page:       2,
		Limit:      50,
		IncludeAll: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"50"}, gotQuery["limit"])
	assert.Equal(t, []string{"true"}, gotQuery["include_all"])
	assert.Equal(t, []string{"kb"}, gotQuery["keyword"])
	assert.Equal(t, []string{"t1", "t2"}, gotQuery["tag_ids"])

	require.Len(t, list.Data, 2)
	assert.Equal(t, "ds-2", list.Data[1].ID)
	assert.False(t, list.HasMore)
	assert.Equal(t, 2, list.Total)
}

func TestDatasetListDefaults(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"data":[]}`)
	})

	_, err := c.Datasets.List(context.Background(), ListDatasetsOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, gotQuery["page"])
	assert.Equal(t, []string{"20"}, gotQuery["limit"])
	assert.Equal(t, []string{"false"}, gotQuery["include_all"])
	assert.NotContains(t, gotQuery, "keyword")
}

func TestDatasetGet(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"id":"ds-1","name":"papers","document_count":12,"word_count":34567}`)
	})

	ds, err := c.Datasets.Get(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Equal(t, "/datasets/ds-1", gotPath)
	assert.Equal(t, 12, ds.DocumentCount)
	assert.Equal(t, 34567, ds.WordCount)
}

func TestDatasetUpdateSendsOnlyProvidedFields(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id":"ds-1","name":"renamed"}`)
	})

	name := "renamed"
	ds, err := c.Datasets.Update(context.Background(), "ds-1", UpdateDatasetRequest{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, map[string]any{"name": "renamed"}, gotBody)
	assert.Equal(t, "renamed", ds.Name)
}

func TestDatasetDelete(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Datasets.Delete(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/datasets/ds-1", gotPath)
}

func TestDatasetRetrieve(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{
			"query": {"content": "what is attention"},
			"records": [
				{"segment": {"id": "s1", "content": "Attention is...", "document": {"id": "doc-1", "name": "paper.md"}}, "score": 0.93},
				{"segment": {"id": "s2", "content": "Self-attention..."}, "score": 0.71}
			]
		}`)
	})

	rm := &types.RetrievalModel{TopK: 10}
	res, err := c.Datasets.Retrieve(context.Background(), "ds-1", "what is attention", rm)
	require.NoError(t, err)

	assert.Equal(t, "what is attention", gotBody["query"])
	retrievalModel, ok := gotBody["retrieval_model"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(10), retrievalModel["top_k"])

	assert.Equal(t, "what is attention", res.Query.Content)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "s1", res.Records[0].Segment.ID)
	assert.Equal(t, "doc-1", res.Records[0].Segment.Document.ID)
	assert.InDelta(t, 0.93, res.Records[0].Score, 0.0001)
}

func TestDatasetRetrieveRequiresQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Datasets.Retrieve(context.Background(), "ds-1", "", nil)
	assert.Error(t, err)
}
