package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/config"
	"github.com/neusearch/neusearch/internal/database"
	"github.com/neusearch/neusearch/internal/llm"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/neusearch/neusearch/internal/scraper"
	"github.com/neusearch/neusearch/pkg/utils"
	"github.com/sirupsen/logrus"
)

var (
	dryRun     = flag.Bool("dry-run", false, "Don't persist or index, just print what would be scraped")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	limit      = flag.Int("limit", 0, "Limit number of products to scrape (0 = config default)")
	concurrent = flag.Int("concurrent", 2, "Number of concurrent requests")
	delay      = flag.Duration("delay", 2*time.Second, "Delay between requests")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting product scraper...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	opts := scraper.Options{
		StoreURL:    cfg.Scraper.StoreURL,
		MaxProducts: cfg.Scraper.MaxProducts,
		Concurrent:  *concurrent,
		Delay:       *delay,
		DryRun:      *dryRun,
	}
	if *limit > 0 {
		opts.MaxProducts = *limit
	}

	var repoManager *repository.RepositoryManager
	var index *chroma.Index

	if !*dryRun {
		if err := cfg.ValidateOpenAI(); err != nil {
			logger.WithError(err).Fatal("OpenAI configuration validation failed")
		}

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

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Database migration failed")
		}

		repoManager = repository.NewRepositoryManager(dbManager.DB)

		llmClient := llm.NewClient(llm.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			ExtractModel:   cfg.OpenAI.ExtractModel,
			GenerateModel:  cfg.OpenAI.GenerateModel,
			EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		}, logger)

		chromaClient := chroma.NewClient(cfg.Chroma.URL, cfg.Chroma.Collection, logger)
		index = chroma.NewIndex(chromaClient, llmClient, logger)
	}

	s := scraper.New(opts, repoManager, index, logger)

	ctx := context.Background()
	count, err := s.Run(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Scraping failed")
	}

	logger.WithField("products", count).Info("Scraping completed successfully!")
}
