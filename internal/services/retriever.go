package services

import (
	"context"
	"fmt"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

// VectorRetriever wraps the vector index. It returns candidate ids in the
// index's relevance order; it never re-sorts.
type VectorRetriever struct {
	index  VectorIndex
	logger *logrus.Logger
}

func NewVectorRetriever(index VectorIndex, logger *logrus.Logger) *VectorRetriever {
	return &VectorRetriever{
		index:  index,
		logger: logger,
	}
}

// Retrieve queries the index with an optional category equality filter.
// Errors are returned to the caller; the pipeline decides degradation policy.
func (r *VectorRetriever) Retrieve(ctx context.Context, query, category string, limit int) ([]uint, error) {
	ids, err := r.index.Query(ctx, query, limit, category)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"query": query,
		"ids":   len(ids),
	}).Debug("Vector retrieval completed")

	return ids, nil
}

// KeywordRetriever wraps the relational store's substring match. Results come
// back in storage-native order with no semantic ranking.
type KeywordRetriever struct {
	store  ProductStore
	logger *logrus.Logger
}

func NewKeywordRetriever(store ProductStore, logger *logrus.Logger) *KeywordRetriever {
	return &KeywordRetriever{
		store:  store,
		logger: logger,
	}
}

func (r *KeywordRetriever) Retrieve(ctx context.Context, query string, limit int) ([]models.Product, error) {
	products, err := r.store.FindByKeyword(query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"query":    query,
		"products": len(products),
	}).Debug("Keyword retrieval completed")

	return products, nil
}
