package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func testIndex(t *testing.T, handler http.HandlerFunc) *Index {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	client := NewClient(server.URL, "products", logger)
	return NewIndex(client, stubEmbedder{}, logger)
}

func TestIndex_QueryParsesIDs(t *testing.T) {
	index := testIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/collections" {
			json.NewEncoder(w).Encode(Collection{ID: "col-123"})
			return
		}
		json.NewEncoder(w).Encode(QueryResponse{
			IDs: [][]string{{"7", "not-a-number", "3"}},
		})
	})

	ids, err := index.Query(context.Background(), "black leggings", 20, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3}, ids)
}

func TestIndex_QueryCategoryFilter(t *testing.T) {
	var got QueryRequest
	index := testIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/collections" {
			json.NewEncoder(w).Encode(Collection{ID: "col-123"})
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(QueryResponse{})
	})

	_, err := index.Query(context.Background(), "sports bra", 10, "Activewear")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"category": "Activewear"}, got.Where)
}

func TestIndex_IndexProducts(t *testing.T) {
	var got UpsertRequest
	index := testIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/collections" {
			json.NewEncoder(w).Encode(Collection{ID: "col-123"})
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	products := []models.Product{
		{
			BaseModel:   models.BaseModel{ID: 1},
			Title:       "Core Leggings",
			Price:       1499,
			Description: "High waisted leggings.",
			Category:    "Activewear",
		},
	}

	err := index.IndexProducts(context.Background(), products)
	require.NoError(t, err)

	require.Len(t, got.IDs, 1)
	assert.Equal(t, "1", got.IDs[0])
	assert.Equal(t, "Core Leggings. High waisted leggings.", got.Documents[0])
	assert.Equal(t, "Activewear", got.Metadatas[0]["category"])
}

func TestIndex_IndexProductsEmpty(t *testing.T) {
	index := testIndex(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty product set")
	})

	require.NoError(t, index.IndexProducts(context.Background(), nil))
}
