package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// MaxQueryLength bounds the trimmed query before any retrieval work.
	MaxQueryLength = 500

	// candidateLimit caps each retrieval strategy and the fused list.
	candidateLimit = 20

	// topN is the final selection size handed to response generation.
	topN = 5

	retrievalTimeout = 10 * time.Second
)

// SearchPipeline sequences query analysis, the two retrievers, fusion, and
// response assembly. Stages communicate only through immutable values; there
// is no shared mutable state across concurrent requests.
type SearchPipeline struct {
	analyzer  *QueryAnalyzer
	vector    *VectorRetriever
	keyword   *KeywordRetriever
	store     ProductStore
	assembler *ResponseAssembler
	logger    *logrus.Logger
}

func NewSearchPipeline(
	analyzer *QueryAnalyzer,
	vector *VectorRetriever,
	keyword *KeywordRetriever,
	store ProductStore,
	assembler *ResponseAssembler,
	logger *logrus.Logger,
) *SearchPipeline {
	return &SearchPipeline{
		analyzer:  analyzer,
		vector:    vector,
		keyword:   keyword,
		store:     store,
		assembler: assembler,
		logger:    logger,
	}
}

// Run executes one search request end to end.
//
// Retrieval-path failures degrade to empty candidate lists; only validation
// and generation failures surface to the caller.
func (p *SearchPipeline) Run(ctx context.Context, rawQuery string) (*models.SearchResult, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return nil, newQueryError("query cannot be empty")
	}
	if len(query) > MaxQueryLength {
		return nil, newQueryError("query too long (max %d characters)", MaxQueryLength)
	}

	analysis := p.analyzer.Analyze(ctx, query)

	p.logger.WithFields(logrus.Fields{
		"query":        query,
		"search_query": analysis.Query,
	}).Info("Running hybrid search")

	vectorProducts, keywordProducts := p.retrieveCandidates(ctx, analysis)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := FuseResults(vectorProducts, keywordProducts, analysis.Filters, candidateLimit)

	p.logger.WithFields(logrus.Fields{
		"vector_candidates":  len(vectorProducts),
		"keyword_candidates": len(keywordProducts),
		"fused":              len(candidates),
	}).Debug("Fusion completed")

	return p.assembler.Assemble(ctx, query, candidates, topN)
}

// retrieveCandidates fans out to both retrievers concurrently and joins on
// both completions. The vector-first ordering guarantee is enforced here at
// the join, not by dispatch order; either source failing degrades to an
// empty list for that source.
func (p *SearchPipeline) retrieveCandidates(ctx context.Context, analysis models.QueryAnalysis) ([]models.Product, []models.Product) {
	retrievalCtx, cancel := context.WithTimeout(ctx, retrievalTimeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		vectorIDs  []uint
		vectorErr  error
		keywordRes []models.Product
		keywordErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		vectorIDs, vectorErr = p.vector.Retrieve(retrievalCtx, analysis.Query, analysis.Filters.Category, candidateLimit)
	}()
	go func() {
		defer wg.Done()
		keywordRes, keywordErr = p.keyword.Retrieve(retrievalCtx, analysis.Query, candidateLimit)
	}()
	wg.Wait()

	var vectorProducts []models.Product
	if vectorErr != nil {
		p.logger.WithError(vectorErr).Warn("Vector retrieval degraded to empty results")
	} else if len(vectorIDs) > 0 {
		rows, err := p.store.GetByIDs(vectorIDs)
		if err != nil {
			p.logger.WithError(err).Warn("Vector id resolution degraded to empty results")
		} else {
			vectorProducts = ResolveVectorOrder(vectorIDs, rows)
		}
	}

	if keywordErr != nil {
		p.logger.WithError(keywordErr).Warn("Keyword retrieval degraded to empty results")
		keywordRes = nil
	}

	return vectorProducts, keywordRes
}
