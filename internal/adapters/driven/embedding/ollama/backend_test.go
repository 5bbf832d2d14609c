package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexsearch-cli/internal/core/ports/driven"
)

// --- Test helpers ---

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBackend(Config{BaseURL: server.URL})
}

// --- Tests ---

func TestEmbedBatch_SendsBatchRequest(t *testing.T) {
	var got embedRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(embedResponse{ //nolint:errcheck
			Embeddings: [][]float32{{1, 2}, {3, 4}},
		})
	})

	vectors, err := backend.EmbedBatch(context.Background(), []string{"first", "second"}, driven.DeviceGPU)

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 2}, vectors[0])
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, []string{"first", "second"}, got.Input)
	assert.Nil(t, got.Options)
}

func TestEmbedBatch_CPUDeviceDisablesGPULayers(t *testing.T) {
	var got embedRequest
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(embedResponse{ //nolint:errcheck
			Embeddings: [][]float32{{1}},
		})
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"text"}, driven.DeviceCPU)

	require.NoError(t, err)
	require.NotNil(t, got.Options)
	assert.Equal(t, float64(0), got.Options["num_gpu"])
}

func TestEmbedBatch_OOMBodyMapped(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("CUDA error: out of memory")) //nolint:errcheck
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"text"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrOutOfMemory))
}

func TestEmbedBatch_InsufficientStorageStatusMapped(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"text"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.True(t, errors.Is(err, driven.ErrOutOfMemory))
}

func TestEmbedBatch_OtherErrorNotMapped(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`model "missing" not found`)) //nolint:errcheck
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"text"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.False(t, errors.Is(err, driven.ErrOutOfMemory))
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{ //nolint:errcheck
			Embeddings: [][]float32{{1}},
		})
	})

	_, err := backend.EmbedBatch(context.Background(), []string{"one", "two"}, driven.DeviceGPU)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 embeddings for 2 inputs")
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	backend := NewBackend(Config{})

	vectors, err := backend.EmbedBatch(context.Background(), nil, driven.DeviceGPU)

	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestPing(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
	})

	assert.NoError(t, backend.Ping(context.Background()))
}

func TestIsOutOfMemory(t *testing.T) {
	assert.True(t, isOutOfMemory(500, "out of memory"))
	assert.True(t, isOutOfMemory(500, "CUDA failure: not enough device memory"))
	assert.True(t, isOutOfMemory(507, "anything"))
	assert.True(t, isOutOfMemory(500, "insufficient memory available"))
	assert.False(t, isOutOfMemory(500, "model not loaded"))
	assert.False(t, isOutOfMemory(404, "not found"))
}
