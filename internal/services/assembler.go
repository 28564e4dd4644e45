package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

// ApologyMessage is returned when no candidates survive retrieval. No
// generation call is made for an empty selection.
const ApologyMessage = "I'm sorry, I couldn't find any products matching your query. Could you try searching for gym wear, leggings, sports bras, or other athletic clothing?"

const descriptionPreviewLen = 100

// ResponseAssembler selects the final products and produces the user-facing
// reply through the generation service.
type ResponseAssembler struct {
	generator TextGenerator
	logger    *logrus.Logger
}

func NewResponseAssembler(generator TextGenerator, logger *logrus.Logger) *ResponseAssembler {
	return &ResponseAssembler{
		generator: generator,
		logger:    logger,
	}
}

// Assemble picks the top candidates and generates the reply. Literal title
// matches against the original query override the fused ranking. A
// generation failure is returned to the caller: a reply without generated
// text is not a useful partial result.
func (a *ResponseAssembler) Assemble(ctx context.Context, originalQuery string, candidates []models.Product, topN int) (*models.SearchResult, error) {
	selected := selectTopProducts(originalQuery, candidates, topN)

	if len(selected) == 0 {
		a.logger.WithField("query", originalQuery).Info("No candidates to recommend, returning apology")
		return &models.SearchResult{
			Response: ApologyMessage,
			Products: []models.Product{},
		}, nil
	}

	grounding := buildGroundingContext(selected)

	systemPrompt := fmt.Sprintf(`You are a helpful shopping assistant for Hunnit activewear.

I am showing you %d products that match the user's search for %q.

YOUR JOB: Recommend these products enthusiastically!

RULES:
- These products ARE available and match the search
- Mention product names and prices (₹)
- Be helpful and positive
- DO NOT say "we don't have" - we DO have these products!`, len(selected), originalQuery)

	userPrompt := fmt.Sprintf(`User searched for: %q

Here are the matching products:

%s

Recommend these products to the user!`, originalQuery, grounding)

	response, err := a.generator.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("response generation failed: %w", err)
	}

	a.logger.WithFields(logrus.Fields{
		"query":    originalQuery,
		"products": len(selected),
	}).Debug("Response assembled")

	return &models.SearchResult{
		Response: response,
		Products: selected,
	}, nil
}

// selectTopProducts prefers candidates whose title contains the original
// query as a case-insensitive substring; when any exist, only those are
// selected, in candidate order. Otherwise the first topN candidates win.
func selectTopProducts(originalQuery string, candidates []models.Product, topN int) []models.Product {
	queryLower := strings.ToLower(originalQuery)

	var exactMatches []models.Product
	for _, p := range candidates {
		if strings.Contains(strings.ToLower(p.Title), queryLower) {
			exactMatches = append(exactMatches, p)
		}
	}

	selected := candidates
	if len(exactMatches) > 0 {
		selected = exactMatches
	}

	if len(selected) > topN {
		selected = selected[:topN]
	}
	return selected
}

// buildGroundingContext renders the numbered product list supplied to the
// generation call.
func buildGroundingContext(products []models.Product) string {
	lines := make([]string, 0, len(products))
	for i, p := range products {
		desc := p.Description
		if desc == "" {
			desc = "Activewear product"
		}
		if len(desc) > descriptionPreviewLen {
			desc = desc[:descriptionPreviewLen]
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** - ₹%.2f\n   %s", i+1, p.Title, p.Price, desc))
	}
	return strings.Join(lines, "\n\n")
}
