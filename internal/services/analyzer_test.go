package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubExtractor) Extract(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.response, s.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestQueryAnalyzer_ExtractsQueryAndFilters(t *testing.T) {
	extractor := &stubExtractor{
		response: `{"query": "gym wear", "filters": {"category": "Activewear", "max_price": 50, "min_price": 10}}`,
	}
	analyzer := NewQueryAnalyzer(extractor, testLogger())

	analysis := analyzer.Analyze(context.Background(), "cheap gym wear under 50")

	assert.Equal(t, "gym wear", analysis.Query)
	assert.Equal(t, "Activewear", analysis.Filters.Category)
	require.NotNil(t, analysis.Filters.MaxPrice)
	assert.Equal(t, 50.0, *analysis.Filters.MaxPrice)
	require.NotNil(t, analysis.Filters.MinPrice)
	assert.Equal(t, 10.0, *analysis.Filters.MinPrice)
	assert.Contains(t, extractor.lastPrompt, "cheap gym wear under 50")
}

func TestQueryAnalyzer_CoercesStringPrices(t *testing.T) {
	extractor := &stubExtractor{
		response: `{"query": "leggings", "filters": {"max_price": "75.50"}}`,
	}
	analyzer := NewQueryAnalyzer(extractor, testLogger())

	analysis := analyzer.Analyze(context.Background(), "leggings")

	require.NotNil(t, analysis.Filters.MaxPrice)
	assert.Equal(t, 75.50, *analysis.Filters.MaxPrice)
}

func TestQueryAnalyzer_IgnoresNegativePrices(t *testing.T) {
	extractor := &stubExtractor{
		response: `{"query": "leggings", "filters": {"max_price": -5}}`,
	}
	analyzer := NewQueryAnalyzer(extractor, testLogger())

	analysis := analyzer.Analyze(context.Background(), "leggings")
	assert.Nil(t, analysis.Filters.MaxPrice)
}

func TestQueryAnalyzer_FallsBackOnServiceError(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("service unavailable")}
	analyzer := NewQueryAnalyzer(extractor, testLogger())

	analysis := analyzer.Analyze(context.Background(), "sports bra")

	assert.Equal(t, "sports bra", analysis.Query)
	assert.Empty(t, analysis.Filters.Category)
	assert.Nil(t, analysis.Filters.MinPrice)
	assert.Nil(t, analysis.Filters.MaxPrice)
}

func TestQueryAnalyzer_FallsBackOnMalformedJSON(t *testing.T) {
	extractor := &stubExtractor{response: `not json at all`}
	analyzer := NewQueryAnalyzer(extractor, testLogger())

	analysis := analyzer.Analyze(context.Background(), "sports bra")

	assert.Equal(t, "sports bra", analysis.Query)
	assert.Empty(t, analysis.Filters.Category)
}

func TestQueryAnalyzer_EmptyExtractedQueryUsesRaw(t *testing.T) {
	extractor := &stubExtractor{response: `{"query": "", "filters": {}}`}
	analyzer := NewQueryAnalyzer(extractor, testLogger())

	analysis := analyzer.Analyze(context.Background(), "original query")
	assert.Equal(t, "original query", analysis.Query)
}
