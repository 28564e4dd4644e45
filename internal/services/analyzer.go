package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

// QueryAnalyzer turns a raw user query into a refined search string plus
// structured filters via LLM extraction.
type QueryAnalyzer struct {
	extractor TextExtractor
	logger    *logrus.Logger
}

func NewQueryAnalyzer(extractor TextExtractor, logger *logrus.Logger) *QueryAnalyzer {
	return &QueryAnalyzer{
		extractor: extractor,
		logger:    logger,
	}
}

// Analyze extracts a search query and filters from the raw query. Any
// extraction failure degrades to the raw query with empty filters; the
// caller never sees an error from this stage.
func (a *QueryAnalyzer) Analyze(ctx context.Context, rawQuery string) models.QueryAnalysis {
	fallback := models.QueryAnalysis{Query: rawQuery}

	prompt := fmt.Sprintf(`Analyze the user query: %q
Extract a search query and any filters (category, min_price, max_price).
Return JSON only.
Example: {"query": "gym wear", "filters": {"category": "Activewear", "max_price": 50}}`, rawQuery)

	raw, err := a.extractor.Extract(ctx, prompt)
	if err != nil {
		a.logger.WithError(err).WithField("query", rawQuery).Warn("Filter extraction failed, using raw query")
		return fallback
	}

	var extracted struct {
		Query   string                 `json:"query"`
		Filters map[string]interface{} `json:"filters"`
	}
	if err := json.Unmarshal([]byte(raw), &extracted); err != nil {
		a.logger.WithError(err).Warn("Malformed extraction response, using raw query")
		return fallback
	}

	analysis := models.QueryAnalysis{Query: extracted.Query}
	if analysis.Query == "" {
		analysis.Query = rawQuery
	}

	if category, ok := extracted.Filters["category"].(string); ok {
		analysis.Filters.Category = strings.TrimSpace(category)
	}
	analysis.Filters.MinPrice = coercePrice(extracted.Filters["min_price"])
	analysis.Filters.MaxPrice = coercePrice(extracted.Filters["max_price"])

	a.logger.WithFields(logrus.Fields{
		"raw_query":     rawQuery,
		"refined_query": analysis.Query,
		"category":      analysis.Filters.Category,
	}).Debug("Query analyzed")

	return analysis
}

// coercePrice converts a loosely typed extracted value into a price bound.
// Negative and unparseable values are treated as absent.
func coercePrice(value interface{}) *float64 {
	var price float64

	switch v := value.(type) {
	case float64:
		price = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		price = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		price = parsed
	default:
		return nil
	}

	if price < 0 {
		return nil
	}
	return &price
}
