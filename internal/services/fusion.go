package services

import (
	"github.com/neusearch/neusearch/internal/models"
)

// ResolveVectorOrder rebuilds the batch-fetched products in the vector
// index's ranking order. Ids with no matching row are silently dropped.
func ResolveVectorOrder(ids []uint, products []models.Product) []models.Product {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	ordered := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// FuseResults merges the two retrieval outputs into one deduplicated
// candidate list and applies post-retrieval filters.
//
// Vector-sourced records come first, in their relevance order; keyword
// records fill the gaps but never displace or reorder a vector hit. Records
// above the max-price bound are dropped after the merge. Category filtering
// already happened at the vector boundary; keyword results deliberately stay
// unfiltered by category so they remain a broad fallback.
func FuseResults(vectorProducts, keywordProducts []models.Product, filters models.SearchFilters, limit int) []models.Product {
	seen := make(map[uint]bool)
	fused := make([]models.Product, 0, len(vectorProducts)+len(keywordProducts))

	for _, p := range vectorProducts {
		if !seen[p.ID] {
			fused = append(fused, p)
			seen[p.ID] = true
		}
	}

	for _, p := range keywordProducts {
		if !seen[p.ID] {
			fused = append(fused, p)
			seen[p.ID] = true
		}
	}

	filtered := make([]models.Product, 0, len(fused))
	for _, p := range fused {
		if filters.MaxPrice != nil && p.Price > *filters.MaxPrice {
			continue
		}
		filtered = append(filtered, p)
	}

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered
}
