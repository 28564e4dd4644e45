package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex struct {
	ids          []uint
	err          error
	calls        int
	lastQuery    string
	lastCategory string
}

func (s *stubIndex) Query(ctx context.Context, query string, limit int, category string) ([]uint, error) {
	s.calls++
	s.lastQuery = query
	s.lastCategory = category
	return s.ids, s.err
}

type stubStore struct {
	rows       []models.Product
	keyword    []models.Product
	idsErr     error
	keywordErr error
}

func (s *stubStore) GetByIDs(ids []uint) ([]models.Product, error) {
	if s.idsErr != nil {
		return nil, s.idsErr
	}
	// Rows come back in storage order, not request order.
	var found []models.Product
	for _, p := range s.rows {
		for _, id := range ids {
			if p.ID == id {
				found = append(found, p)
				break
			}
		}
	}
	return found, nil
}

func (s *stubStore) FindByKeyword(query string, limit int) ([]models.Product, error) {
	if s.keywordErr != nil {
		return nil, s.keywordErr
	}
	if len(s.keyword) > limit {
		return s.keyword[:limit], nil
	}
	return s.keyword, nil
}

func newTestPipeline(extractor *stubExtractor, index *stubIndex, store *stubStore, generator *stubGenerator) *SearchPipeline {
	logger := testLogger()
	return NewSearchPipeline(
		NewQueryAnalyzer(extractor, logger),
		NewVectorRetriever(index, logger),
		NewKeywordRetriever(store, logger),
		store,
		NewResponseAssembler(generator, logger),
		logger,
	)
}

func TestPipeline_RejectsEmptyQuery(t *testing.T) {
	pipeline := newTestPipeline(&stubExtractor{}, &stubIndex{}, &stubStore{}, &stubGenerator{})

	_, err := pipeline.Run(context.Background(), "")

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
}

func TestPipeline_RejectsWhitespaceOnlyQuery(t *testing.T) {
	pipeline := newTestPipeline(&stubExtractor{}, &stubIndex{}, &stubStore{}, &stubGenerator{})

	_, err := pipeline.Run(context.Background(), strings.Repeat(" ", 600))

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
}

func TestPipeline_RejectsOverlongQuery(t *testing.T) {
	pipeline := newTestPipeline(&stubExtractor{}, &stubIndex{}, &stubStore{}, &stubGenerator{})

	_, err := pipeline.Run(context.Background(), strings.Repeat("a", MaxQueryLength+1))

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
}

func TestPipeline_AcceptsMaxLengthQuery(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("down")}
	store := &stubStore{keyword: []models.Product{product(1, "A", 10)}}
	generator := &stubGenerator{response: "ok"}
	pipeline := newTestPipeline(extractor, &stubIndex{}, store, generator)

	_, err := pipeline.Run(context.Background(), strings.Repeat("a", MaxQueryLength))
	require.NoError(t, err)
}

func TestPipeline_HybridOrderingAndDedup(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "leggings", "filters": {}}`}
	index := &stubIndex{ids: []uint{3, 1}}
	store := &stubStore{
		rows: []models.Product{
			product(1, "Core Leggings Black", 60),
			product(2, "Training Tee", 25),
			product(3, "Flow Leggings", 55),
		},
		keyword: []models.Product{
			product(1, "Core Leggings Black", 60),
			product(2, "Training Tee", 25),
		},
	}
	generator := &stubGenerator{response: "Here you go"}
	pipeline := newTestPipeline(extractor, index, store, generator)

	result, err := pipeline.Run(context.Background(), "show me something")
	require.NoError(t, err)

	// Vector hits first in index order, then keyword-only records.
	assert.Equal(t, []uint{3, 1, 2}, productIDs(result.Products))
	assert.Equal(t, "leggings", index.lastQuery, "refined query reaches the index")
}

func TestPipeline_CategoryFilterReachesVectorIndexOnly(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "gym wear", "filters": {"category": "Activewear"}}`}
	index := &stubIndex{}
	store := &stubStore{keyword: []models.Product{product(1, "A", 10)}}
	pipeline := newTestPipeline(extractor, index, store, &stubGenerator{response: "ok"})

	_, err := pipeline.Run(context.Background(), "gym wear")
	require.NoError(t, err)

	assert.Equal(t, "Activewear", index.lastCategory)
}

func TestPipeline_VectorFailureDegradesToKeywordResults(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "tee", "filters": {}}`}
	index := &stubIndex{err: errors.New("chroma unreachable")}
	store := &stubStore{
		keyword: []models.Product{
			product(1, "Training Tee", 25),
			product(2, "Running Tee", 30),
			product(3, "Gym Tee", 28),
		},
	}
	generator := &stubGenerator{response: "Three great tees"}
	pipeline := newTestPipeline(extractor, index, store, generator)

	result, err := pipeline.Run(context.Background(), "any tees?")
	require.NoError(t, err, "vector failure must not surface")
	assert.Len(t, result.Products, 3)
}

func TestPipeline_KeywordFailureDegradesToVectorResults(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "tee", "filters": {}}`}
	index := &stubIndex{ids: []uint{1}}
	store := &stubStore{
		rows:       []models.Product{product(1, "Training Tee", 25)},
		keywordErr: errors.New("db down"),
	}
	pipeline := newTestPipeline(extractor, index, store, &stubGenerator{response: "ok"})

	result, err := pipeline.Run(context.Background(), "tee")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, productIDs(result.Products))
}

func TestPipeline_BothRetrieversEmptyShortCircuits(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "unicorn", "filters": {}}`}
	generator := &stubGenerator{response: "should not run"}
	pipeline := newTestPipeline(extractor, &stubIndex{}, &stubStore{}, generator)

	result, err := pipeline.Run(context.Background(), "unicorn onesie")
	require.NoError(t, err)

	assert.Equal(t, ApologyMessage, result.Response)
	assert.Empty(t, result.Products)
	assert.Equal(t, 0, generator.calls)
}

func TestPipeline_GenerationFailureSurfaces(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "tee", "filters": {}}`}
	store := &stubStore{keyword: []models.Product{product(1, "Training Tee", 25)}}
	generator := &stubGenerator{err: errors.New("model overloaded")}
	pipeline := newTestPipeline(extractor, &stubIndex{}, store, generator)

	_, err := pipeline.Run(context.Background(), "tee")
	require.Error(t, err)

	var queryErr *QueryError
	assert.False(t, errors.As(err, &queryErr), "generation failure is not a validation error")
}

func TestPipeline_MaxPriceAppliedAfterFusion(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "leggings", "filters": {"max_price": 50}}`}
	index := &stubIndex{ids: []uint{1, 2}}
	store := &stubStore{
		rows: []models.Product{
			product(1, "Luxe Leggings", 80),
			product(2, "Core Leggings", 45),
		},
	}
	pipeline := newTestPipeline(extractor, index, store, &stubGenerator{response: "ok"})

	result, err := pipeline.Run(context.Background(), "leggings under 50")
	require.NoError(t, err)

	assert.Equal(t, []uint{2}, productIDs(result.Products))
}

func TestPipeline_RepeatedRunsSelectSameProducts(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "tee", "filters": {}}`}
	index := &stubIndex{ids: []uint{2, 1}}
	store := &stubStore{
		rows: []models.Product{
			product(1, "Training Tee", 25),
			product(2, "Running Tee", 30),
		},
		keyword: []models.Product{product(3, "Gym Tee", 28)},
	}
	pipeline := newTestPipeline(extractor, index, store, &stubGenerator{response: "ok"})

	first, err := pipeline.Run(context.Background(), "tee")
	require.NoError(t, err)
	second, err := pipeline.Run(context.Background(), "tee")
	require.NoError(t, err)

	assert.Equal(t, productIDs(first.Products), productIDs(second.Products))
}

func TestPipeline_CancelledContextStopsPipeline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &stubExtractor{err: errors.New("cancelled")}
	generator := &stubGenerator{response: "should not run"}
	store := &stubStore{keyword: []models.Product{product(1, "A", 10)}}
	pipeline := newTestPipeline(extractor, &stubIndex{}, store, generator)

	_, err := pipeline.Run(ctx, "tee")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, generator.calls)
}
