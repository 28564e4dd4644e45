package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neusearch/neusearch/internal/backup"
	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/database"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/neusearch/neusearch/internal/scraper"
	"github.com/neusearch/neusearch/pkg/utils"
	"github.com/sirupsen/logrus"
)

// AdminHandler exposes the ingestion-side operations: scraping the
// storefront and importing a JSON backup.
type AdminHandler struct {
	scraperOpts scraper.Options
	repoManager *repository.RepositoryManager
	index       *chroma.Index
	cache       *database.Cache
	logger      *logrus.Logger
	backupPath  string
}

func NewAdminHandler(
	scraperOpts scraper.Options,
	repoManager *repository.RepositoryManager,
	index *chroma.Index,
	cache *database.Cache,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		scraperOpts: scraperOpts,
		repoManager: repoManager,
		index:       index,
		cache:       cache,
		logger:      logger,
		backupPath:  "products_backup.json",
	}
}

// HandleScrape scrapes the storefront, persists new products, and indexes
// the catalog in the vector store.
func (h *AdminHandler) HandleScrape(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
	defer cancel()

	s := scraper.New(h.scraperOpts, h.repoManager, h.index, h.logger)
	count, err := s.Run(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Scrape failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Scraping failed", err)
		return
	}

	h.invalidateProductCache(ctx)

	utils.SuccessResponse(c, http.StatusOK, "Scraping completed successfully", gin.H{
		"products_scraped": count,
	})
}

// HandleImportBackup imports products from the JSON backup file and
// re-indexes the catalog.
func (h *AdminHandler) HandleImportBackup(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	count, err := backup.Import(ctx, h.repoManager.Product, h.index, h.backupPath, h.logger)
	if err != nil {
		h.logger.WithError(err).Error("Backup import failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Database import failed", err)
		return
	}

	h.invalidateProductCache(ctx)

	utils.SuccessResponse(c, http.StatusOK, "Database import completed successfully", gin.H{
		"products_imported": count,
	})
}

func (h *AdminHandler) invalidateProductCache(ctx context.Context) {
	if err := h.cache.InvalidateProductCache(ctx); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate product cache")
	}
}
