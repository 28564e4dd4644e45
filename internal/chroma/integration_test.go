//go:build integration

package chroma

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RealChroma(t *testing.T) {
	baseURL := os.Getenv("CHROMA_URL")
	if baseURL == "" {
		t.Skip("CHROMA_URL required for integration tests")
	}

	client := NewClient(baseURL, "integration-test", logrus.New())
	ctx := context.Background()

	require.NoError(t, client.Heartbeat(ctx))

	id, err := client.EnsureCollection(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	err = client.Upsert(ctx, UpsertRequest{
		IDs:        []string{"1"},
		Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		Documents:  []string{"Core Leggings. High waisted leggings."},
		Metadatas:  []map[string]interface{}{{"category": "Activewear"}},
	})
	require.NoError(t, err)

	response, err := client.Query(ctx, QueryRequest{
		QueryEmbeddings: [][]float32{{0.1, 0.2, 0.3}},
		NResults:        1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.IDs)
	require.Equal(t, "1", response.IDs[0][0])
}
