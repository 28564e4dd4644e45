package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neusearch/neusearch/internal/models"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/neusearch/neusearch/internal/services"
	"github.com/neusearch/neusearch/pkg/utils"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	pipeline    *services.SearchPipeline
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewChatHandler(
	pipeline *services.SearchPipeline,
	repoManager *repository.RepositoryManager,
	logger *logrus.Logger,
) *ChatHandler {
	return &ChatHandler{
		pipeline:    pipeline,
		repoManager: repoManager,
		logger:      logger,
	}
}

// HandleChat runs one natural-language product query through the search
// pipeline.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid chat request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	userSession := h.getUserSession(c)

	h.logger.WithFields(logrus.Fields{
		"query":        req.Query,
		"user_session": userSession,
		"ip_address":   c.ClientIP(),
	}).Info("Processing chat request")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 90*time.Second)
	defer cancel()

	result, err := h.pipeline.Run(ctx, req.Query)
	if err != nil {
		var queryErr *services.QueryError
		if errors.As(err, &queryErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, queryErr.Message, nil)
			return
		}

		h.logger.WithError(err).Error("Chat pipeline failed")
		go h.trackChatQuery(userSession, req.Query, 0, time.Since(startTime), c)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Chat failed", err)
		return
	}

	products := make([]models.ProductResponse, 0, len(result.Products))
	for _, p := range result.Products {
		products = append(products, models.ToProductResponse(p))
	}

	responseTime := time.Since(startTime)
	go h.trackChatQuery(userSession, req.Query, len(products), responseTime, c)

	h.logger.WithFields(logrus.Fields{
		"products_count": len(products),
		"response_time":  responseTime.Milliseconds(),
	}).Info("Chat completed successfully")

	utils.SuccessResponse(c, http.StatusOK, "Chat completed", models.ChatResponse{
		Response: result.Response,
		Products: products,
	})
}

func (h *ChatHandler) trackChatQuery(session, query string, productsCount int, responseTime time.Duration, c *gin.Context) {
	record := &models.ChatQuery{
		QueryText:      strings.TrimSpace(query),
		UserSession:    session,
		ProductsCount:  productsCount,
		QueryTimestamp: time.Now(),
		ResponseTimeMs: int(responseTime.Milliseconds()),
		UserAgent:      c.GetHeader("User-Agent"),
		IPAddress:      c.ClientIP(),
	}
	if record.QueryText == "" {
		return
	}

	if err := h.repoManager.ChatQuery.Create(record); err != nil {
		h.logger.WithError(err).Warn("Failed to track chat query")
	}
}

func (h *ChatHandler) getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}

	// Basic fingerprint from IP + user agent
	return utils.GenerateSessionID(c.ClientIP() + c.GetHeader("User-Agent"))
}
