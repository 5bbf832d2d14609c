package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
)

// --- Test helpers ---

type apiEmbedding struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

func respondWith(t *testing.T, w http.ResponseWriter, data []apiEmbedding) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	backend, err := NewBackend(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return backend
}

// --- Tests ---

func TestNewBackend_RequiresAPIKey(t *testing.T) {
	_, err := NewBackend(Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestEmbedBatch_SendsBatchRequest(t *testing.T) {
	var got embeddingRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respondWith(t, w, []apiEmbedding{
			{Embedding: []float64{1, 2}, Index: 0},
			{Embedding: []float64{3, 4}, Index: 1},
		})
	})

	vectors, err := backend.EmbedBatch(context.Background(), []string{"first", "second"}, driven.DeviceGPU)

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 2}, vectors[0])
	assert.Equal(t, []float32{3, 4}, vectors[1])
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, []string{"first", "second"}, got.Input)
}

func TestEmbedBatch_OrdersByResponseIndex(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		respondWith(t, w, []apiEmbedding{
			{Embedding: []float64{3, 4}, Index: 1},
			{Embedding: []float64{1, 2}, Index: 0},
		})
	})

	vectors, err := backend.EmbedBatch(context.Background(), []string{"first", "second"}, driven.DeviceGPU)

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vectors[0])
	assert.Equal(t, []float32{3, 4}, vectors[1])
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		respondWith(t, w, []apiEmbedding{
			{Embedding: []float64{1, 2}, Index: 0},
		})
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"one", "two"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 embeddings, got 1")
}

func TestEmbedBatch_IndexOutOfRange(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		respondWith(t, w, []apiEmbedding{
			{Embedding: []float64{1, 2}, Index: 0},
			{Embedding: []float64{3, 4}, Index: 5},
		})
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"one", "two"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 5 out of range")
}

func TestEmbedBatch_APIErrorSurfaced(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		}))
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"text"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	backend, err := NewBackend(Config{APIKey: "test-key"})
	require.NoError(t, err)

	vectors, err := backend.EmbedBatch(context.Background(), nil, driven.DeviceGPU)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestPing(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
	})

	assert.NoError(t, backend.Ping(context.Background()))
}
