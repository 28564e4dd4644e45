package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/neusearch/neusearch/internal/api/handlers"
	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/config"
	"github.com/neusearch/neusearch/internal/database"
	"github.com/neusearch/neusearch/internal/health"
	"github.com/neusearch/neusearch/internal/llm"
	"github.com/neusearch/neusearch/internal/middleware"
	"github.com/neusearch/neusearch/internal/migration"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/neusearch/neusearch/internal/scraper"
	"github.com/neusearch/neusearch/internal/services"
	"github.com/neusearch/neusearch/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	logger := utils.GetLogger()
	logger.Info("Starting neusearch API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := cfg.ValidateOpenAI(); err != nil {
		logger.WithError(err).Fatal("OpenAI configuration validation failed")
	}

	// Initialize database manager
	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	// Run migrations
	migrationRunner := migration.NewRunner(dbManager, logger)
	if err := migrationRunner.RunMigrations("migrations"); err != nil {
		logger.WithError(err).Fatal("Database migrations failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	// Initialize LLM client
	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ExtractModel:   cfg.OpenAI.ExtractModel,
		GenerateModel:  cfg.OpenAI.GenerateModel,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
	}, logger)

	// Initialize vector store
	chromaClient := chroma.NewClient(cfg.Chroma.URL, cfg.Chroma.Collection, logger)
	vectorIndex := chroma.NewIndex(chromaClient, llmClient, logger)

	// Wire the search pipeline
	analyzer := services.NewQueryAnalyzer(llmClient, logger)
	vectorRetriever := services.NewVectorRetriever(vectorIndex, logger)
	keywordRetriever := services.NewKeywordRetriever(repoManager.Product, logger)
	assembler := services.NewResponseAssembler(llmClient, logger)
	pipeline := services.NewSearchPipeline(
		analyzer,
		vectorRetriever,
		keywordRetriever,
		repoManager.Product,
		assembler,
		logger,
	)

	// Initialize health checker
	healthChecker := health.NewChecker(dbManager, repoManager.SystemHealth, chromaClient, logger)

	healthCtx, healthCancel := context.WithCancel(context.Background())
	defer healthCancel()
	go healthChecker.PeriodicHealthCheck(healthCtx, 30*time.Second)

	// Initialize handlers
	scraperOpts := scraper.Options{
		StoreURL:    cfg.Scraper.StoreURL,
		MaxProducts: cfg.Scraper.MaxProducts,
	}

	chatHandler := handlers.NewChatHandler(pipeline, repoManager, logger)
	productHandler := handlers.NewProductHandler(repoManager, cache, logger)
	adminHandler := handlers.NewAdminHandler(scraperOpts, repoManager, vectorIndex, cache, logger)
	healthHandler := handlers.NewHealthHandler(healthChecker, logger)

	router := setupRouter(chatHandler, productHandler, adminHandler, healthHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	healthCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}

	logger.Info("Server stopped gracefully")
}

func setupRouter(
	chatHandler *handlers.ChatHandler,
	productHandler *handlers.ProductHandler,
	adminHandler *handlers.AdminHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS([]string{
		"http://localhost:5173",
		"http://localhost:3000",
	}))

	router.GET("/health", healthHandler.HandleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/chat", chatHandler.HandleChat)
		v1.GET("/products", productHandler.HandleListProducts)
		v1.GET("/products/:id", productHandler.HandleGetProduct)
		v1.POST("/scrape", adminHandler.HandleScrape)
		v1.POST("/import-backup", adminHandler.HandleImportBackup)
	}

	return router
}
