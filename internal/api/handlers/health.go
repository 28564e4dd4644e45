package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/neusearch/neusearch/internal/health"
	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	checker *health.Checker
	logger  *logrus.Logger
}

func NewHealthHandler(checker *health.Checker, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

// HandleHealth reports the status of the backing services. A cached
// snapshot is preferred; a live check runs when the cache is cold.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	overall, err := h.checker.CheckCached(c.Request.Context())
	if err != nil {
		live := h.checker.CheckAll()
		overall = &live
	}

	services := make(map[string]string, len(overall.Services))
	for _, s := range overall.Services {
		services[s.Name] = s.Status
	}

	code := http.StatusOK
	if overall.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, models.HealthResponse{
		Status:    overall.Status,
		Service:   "neusearch-api",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}
