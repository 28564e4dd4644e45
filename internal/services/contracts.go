package services

import (
	"context"
	"fmt"

	"github.com/neusearch/neusearch/internal/models"
)

// Collaborator contracts for the search pipeline. Components receive these
// at construction so tests can substitute doubles.

// TextExtractor returns a JSON-shaped extraction for the given prompt.
type TextExtractor interface {
	Extract(ctx context.Context, prompt string) (string, error)
}

// TextGenerator produces the user-facing reply from a system instruction and
// grounding content.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// VectorIndex returns product ids ranked by similarity to the query.
// Category, when non-empty, is applied as an equality filter by the index.
type VectorIndex interface {
	Query(ctx context.Context, query string, limit int, category string) ([]uint, error)
}

// ProductStore is the slice of the catalog repository the pipeline needs.
type ProductStore interface {
	GetByIDs(ids []uint) ([]models.Product, error)
	FindByKeyword(query string, limit int) ([]models.Product, error)
}

// QueryError marks a request rejected before any retrieval work began.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

func newQueryError(format string, args ...interface{}) *QueryError {
	return &QueryError{Message: fmt.Sprintf(format, args...)}
}
