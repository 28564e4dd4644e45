package health

import (
	"context"
	"time"

	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/database"
	"github.com/neusearch/neusearch/internal/models"
	"github.com/sirupsen/logrus"
)

// Checker manages health checks for the backing services.
type Checker struct {
	dbManager  *database.Manager
	cache      *database.Cache
	healthRepo models.SystemHealthRepository
	chroma     *chroma.Client
	logger     *logrus.Logger
}

func NewChecker(dbManager *database.Manager, healthRepo models.SystemHealthRepository, chromaClient *chroma.Client, logger *logrus.Logger) *Checker {
	return &Checker{
		dbManager:  dbManager,
		cache:      database.NewCache(dbManager.Redis, logger),
		healthRepo: healthRepo,
		chroma:     chromaClient,
		logger:     logger,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckPostgreSQL checks PostgreSQL database health
func (h *Checker) CheckPostgreSQL() ServiceHealth {
	return h.check("postgresql", func() error {
		return h.dbManager.PingDatabase()
	})
}

// CheckRedis checks Redis cache health
func (h *Checker) CheckRedis() ServiceHealth {
	return h.check("redis", func() error {
		return h.dbManager.PingRedis()
	})
}

// CheckChroma checks the vector store heartbeat
func (h *Checker) CheckChroma() ServiceHealth {
	return h.check("chroma", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return h.chroma.Heartbeat(ctx)
	})
}

func (h *Checker) check(name string, ping func() error) ServiceHealth {
	start := time.Now()
	err := ping()
	responseTime := int(time.Since(start).Milliseconds())

	status := "healthy"
	errorMsg := ""
	if err != nil {
		status = "unhealthy"
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	if repoErr := h.healthRepo.UpdateServiceHealth(name, status, responseTime, errorMsg); repoErr != nil {
		h.logger.WithError(repoErr).WithField("service", name).Warn("Failed to persist health status")
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *Checker) CheckAll() OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(),
		h.CheckRedis(),
		h.CheckChroma(),
	}

	overallStatus := "healthy"
	for _, service := range services {
		if service.Status == "unhealthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	return OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.getUptime(),
	}
}

// CheckCached returns cached health status if available
func (h *Checker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	cachedHealth, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]ServiceHealth, len(cachedHealth))
	overallStatus := "healthy"

	for i, record := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         record.ServiceName,
			Status:       record.Status,
			ResponseTime: record.ResponseTimeMs,
			Error:        record.ErrorMessage,
			LastChecked:  record.CheckedAt.Format(time.RFC3339),
		}

		if record.Status == "unhealthy" {
			overallStatus = "unhealthy"
		}
	}

	return &OverallHealth{
		Status:   overallStatus,
		Services: services,
		Uptime:   h.getUptime(),
	}, nil
}

var startTime = time.Now()

func (h *Checker) getUptime() string {
	return time.Since(startTime).String()
}

// PeriodicHealthCheck runs health checks periodically and caches the result.
func (h *Checker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			overall := h.CheckAll()

			cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			healthModels := make([]models.SystemHealth, len(overall.Services))
			for i, service := range overall.Services {
				checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
				healthModels[i] = models.SystemHealth{
					ServiceName:    service.Name,
					Status:         service.Status,
					ResponseTimeMs: service.ResponseTime,
					ErrorMessage:   service.Error,
					CheckedAt:      checkedAt,
				}
			}

			if err := h.cache.CacheSystemHealth(cacheCtx, healthModels, 2*interval); err != nil {
				h.logger.WithError(err).Error("Failed to cache health status")
			}
			cancel()

			h.logger.WithField("status", overall.Status).Debug("Periodic health check completed")
		}
	}
}
