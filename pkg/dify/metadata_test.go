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
)

func TestTagCreate(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id":"t1","name":"ml","type":"knowledge","binding_count":0}`)
	})

	tag, err := c.Tags.Create(context.Background(), "ml")
	require.NoError(t, err)
	assert.Equal(t, "/datasets/tags", gotPath)
	assert.Equal(t, "ml", gotBody["name"])
	assert.Equal(t, "t1", tag.ID)
}

func TestTagCreateRequiresName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.Tags.Create(context.Background(), "")
	assert.Error(t, err)
}

func TestTagList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		fmt.Fprint(w, `[{"id":"t1","name":"ml","binding_count":2},{"id":"t2","name":"nlp"}]`)
	})

	tags, err := c.Tags.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, 2, tags[0].BindingCount)
	assert.Equal(t, "nlp", tags[1].Name)
}

func TestTagUpdate(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"id":"t1","name":"machine-learning"}`)
	})

	tag, err := c.Tags.Update(context.Background(), "t1", "machine-learning")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "t1", gotBody["tag_id"])
	assert.Equal(t, "machine-learning", gotBody["name"])
	assert.Equal(t, "machine-learning", tag.Name)
}

func TestTagDeleteSendsBody(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Tags.Delete(context.Background(), "t1")
	require.NoError(t, err)
	// The service addresses the tag through a JSON body on DELETE.
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "t1", gotBody["tag_id"])
}

func TestTagBind(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"result":"success"}`)
	})

	err := c.Tags.Bind(context.Background(), "ds-1", []string{"t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, "/datasets/tags/binding", gotPath)
	assert.Equal(t, "ds-1", gotBody["target_id"])
	assert.Equal(t, []any{"t1", "t2"}, gotBody["tag_ids"])
}

func TestTagBindRequiresIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})

	err := c.Tags.Bind(context.Background(), "ds-1", nil)
	assert.Error(t, err)
}

func TestTagUnbind(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"result":"success"}`)
	})

	err := c.Tags.Unbind(context.Background(), "ds-1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "/datasets/tags/unbinding", gotPath)
	assert.Equal(t, "ds-1", gotBody["target_id"])
	assert.Equal(t, "t1", gotBody["tag_id"])
}

func TestTagOfDataset(t *testing.T) {
	var gotMethod, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"data":[{"id":"t1","name":"ml"}],"total":1}`)
	})

	tags, err := c.Tags.OfDataset(context.Background(), "ds-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/datasets/ds-1/tags", gotPath)
	require.Len(t, tags, 1)
	assert.Equal(t, "ml", tags[0].Name)
}

func TestModelsListTextEmbedding(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"data":[{
			"provider": "openai",
			"label": {"en_US": "OpenAI"},
			"status": "active",
			"models": [
				{"model": "text-embedding-3-small", "model_type": "text-embedding", "status": "active"},
				{"model": "text-embedding-3-large", "model_type": "text-embedding", "status": "active"}
			]
		}]}`)
	})

	providers, err := c.Models.ListTextEmbedding(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/workspaces/current/models/model-types/text-embedding", gotPath)
	require.Len(t, providers, 1)
	assert.Equal(t, "openai", providers[0].Provider)
	require.Len(t, providers[0].Models, 2)
	assert.Equal(t, "text-embedding-3-small", providers[0].Models[0].Model)
}
