package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neusearch/neusearch/internal/database"
	"github.com/neusearch/neusearch/internal/models"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/neusearch/neusearch/pkg/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const productCacheTTL = 5 * time.Minute

type ProductHandler struct {
	repoManager *repository.RepositoryManager
	cache       *database.Cache
	logger      *logrus.Logger
}

func NewProductHandler(
	repoManager *repository.RepositoryManager,
	cache *database.Cache,
	logger *logrus.Logger,
) *ProductHandler {
	return &ProductHandler{
		repoManager: repoManager,
		cache:       cache,
		logger:      logger,
	}
}

// HandleListProducts returns one page of the catalog, served through the
// redis cache.
func (h *ProductHandler) HandleListProducts(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	cached := &models.ProductListResponse{}
	if err := h.cache.GetCachedProductList(ctx, offset, limit, cached); err == nil {
		h.logger.Debug("Product listing served from cache")
		utils.SuccessResponse(c, http.StatusOK, "Products retrieved", cached)
		return
	}

	products, err := h.repoManager.Product.List(offset, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	total, err := h.repoManager.Product.Count()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count products")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list products", err)
		return
	}

	response := &models.ProductListResponse{
		Products: make([]models.ProductResponse, 0, len(products)),
		Total:    total,
	}
	for _, p := range products {
		response.Products = append(response.Products, models.ToProductResponse(p))
	}

	if err := h.cache.CacheProductList(ctx, offset, limit, response, productCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache product listing")
	}

	utils.SuccessResponse(c, http.StatusOK, "Products retrieved", response)
}

// HandleGetProduct returns one product by id.
func (h *ProductHandler) HandleGetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid product id", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if cached, err := h.cache.GetCachedProduct(ctx, uint(id)); err == nil {
		utils.SuccessResponse(c, http.StatusOK, "Product retrieved", models.ToProductResponse(*cached))
		return
	}

	product, err := h.repoManager.Product.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Product not found", nil)
			return
		}
		h.logger.WithError(err).Error("Failed to get product")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to get product", err)
		return
	}

	if err := h.cache.CacheProduct(ctx, product.ID, product, productCacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache product")
	}

	utils.SuccessResponse(c, http.StatusOK, "Product retrieved", models.ToProductResponse(*product))
}
