package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

// productRecord is the on-disk shape of one product. Timestamps and row IDs
// stay out of the file so an import into a fresh database gets clean rows.
type productRecord struct {
	Title       string         `json:"title"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Features    models.JSONMap `json:"features"`
	ImageURL    string         `json:"image_url"`
	Category    string         `json:"category"`
	ProductURL  string         `json:"product_url"`
}

// Export writes the full catalog to path as a JSON array and returns the
// number of products written.
func Export(repo models.ProductRepository, path string, logger *logrus.Logger) (int, error) {
	products, err := repo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load products: %w", err)
	}

	records := make([]productRecord, len(products))
	for i, p := range products {
		records[i] = productRecord{
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			Features:    p.Features,
			ImageURL:    p.ImageURL,
			Category:    p.Category,
			ProductURL:  p.ProductURL,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal backup: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write backup file: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path":     path,
		"products": len(records),
	}).Info("Backup exported")

	return len(records), nil
}

// Import loads products from the backup file at path, skipping URLs that
// already exist, then re-indexes the whole catalog in the vector store.
// Returns the number of newly created products.
func Import(ctx context.Context, repo models.ProductRepository, index *chroma.Index, path string, logger *logrus.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup file: %w", err)
	}

	var records []productRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("failed to parse backup file: %w", err)
	}

	count := 0
	for _, record := range records {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		if record.ProductURL != "" {
			if _, err := repo.GetByURL(record.ProductURL); err == nil {
				logger.WithField("url", record.ProductURL).Debug("Product already exists, skipping")
				continue
			}
		}

		features := record.Features
		if features == nil {
			features = models.JSONMap{}
		}

		product := &models.Product{
			Title:       record.Title,
			Price:       record.Price,
			Description: record.Description,
			Features:    features,
			ImageURL:    record.ImageURL,
			Category:    record.Category,
			ProductURL:  record.ProductURL,
		}

		if err := repo.Create(product); err != nil {
			logger.WithError(err).WithField("title", record.Title).Warn("Failed to import product")
			continue
		}
		count++
	}

	logger.WithFields(logrus.Fields{
		"path":     path,
		"imported": count,
		"total":    len(records),
	}).Info("Backup imported")

	if index == nil {
		logger.Warn("No vector index configured, skipping indexing")
		return count, nil
	}

	products, err := repo.GetAll()
	if err != nil {
		return count, fmt.Errorf("failed to load products for indexing: %w", err)
	}

	if err := index.IndexProducts(ctx, products); err != nil {
		return count, fmt.Errorf("failed to index imported products: %w", err)
	}

	return count, nil
}
