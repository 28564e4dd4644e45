package chroma

import (
	"context"
	"fmt"
	"strconv"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

// Embedder vectorizes text for indexing and querying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the product vector index: it pairs the Chroma collection with an
// embedder so callers deal only in text and product ids.
type Index struct {
	client   *Client
	embedder Embedder
	logger   *logrus.Logger
}

func NewIndex(client *Client, embedder Embedder, logger *logrus.Logger) *Index {
	return &Index{
		client:   client,
		embedder: embedder,
		logger:   logger,
	}
}

// Query embeds the query text and returns product ids in the collection's
// relevance order (ascending distance). Category, when non-empty, is pushed
// down as an equality filter.
func (i *Index) Query(ctx context.Context, query string, limit int, category string) ([]uint, error) {
	embedding, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	req := QueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        limit,
	}
	if category != "" {
		req.Where = map[string]interface{}{"category": category}
	}

	response, err := i.client.Query(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(response.IDs) == 0 {
		return []uint{}, nil
	}

	ids := make([]uint, 0, len(response.IDs[0]))
	for _, raw := range response.IDs[0] {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			i.logger.WithField("id", raw).Warn("Skipping non-numeric vector id")
			continue
		}
		ids = append(ids, uint(id))
	}

	return ids, nil
}

// IndexProducts embeds and upserts the given products. Documents are the
// concatenated title and description, matching what gets queried against.
func (i *Index) IndexProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	documents := make([]string, len(products))
	metadatas := make([]map[string]interface{}, len(products))

	for n, p := range products {
		ids[n] = strconv.FormatUint(uint64(p.ID), 10)
		documents[n] = fmt.Sprintf("%s. %s", p.Title, p.Description)
		metadatas[n] = map[string]interface{}{
			"title":      p.Title,
			"price":      p.Price,
			"category":   p.Category,
			"product_id": p.ID,
		}
	}

	embeddings, err := i.embedder.EmbedBatch(ctx, documents)
	if err != nil {
		return fmt.Errorf("failed to embed products: %w", err)
	}

	req := UpsertRequest{
		IDs:        ids,
		Embeddings: embeddings,
		Metadatas:  metadatas,
		Documents:  documents,
	}

	if err := i.client.UpsertWithRetry(ctx, req); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}

	i.logger.WithField("count", len(products)).Info("Indexed products in vector store")
	return nil
}
