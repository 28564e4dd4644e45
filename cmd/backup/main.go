package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/neusearch/neusearch/internal/backup"
	"github.com/neusearch/neusearch/internal/chroma"
	"github.com/neusearch/neusearch/internal/config"
	"github.com/neusearch/neusearch/internal/database"
	"github.com/neusearch/neusearch/internal/llm"
	"github.com/neusearch/neusearch/internal/repository"
	"github.com/neusearch/neusearch/pkg/utils"
	"github.com/sirupsen/logrus"
)

var (
	mode    = flag.String("mode", "export", "Backup mode: export or import")
	path    = flag.String("path", "products_backup.json", "Backup file path")
	noIndex = flag.Bool("no-index", false, "Skip vector indexing on import")
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
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

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
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

	repoManager := repository.NewRepositoryManager(dbManager.DB)

	switch *mode {
	case "export":
		count, err := backup.Export(repoManager.Product, *path, logger)
		if err != nil {
			logger.WithError(err).Fatal("Export failed")
		}
		logger.WithField("products", count).Info("Export completed successfully!")

	case "import":
		var index *chroma.Index
		if !*noIndex {
			if err := cfg.ValidateOpenAI(); err != nil {
				logger.WithError(err).Fatal("OpenAI configuration validation failed")
			}

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

		count, err := backup.Import(context.Background(), repoManager.Product, index, *path, logger)
		if err != nil {
			logger.WithError(err).Fatal("Import failed")
		}
		logger.WithField("products", count).Info("Import completed successfully!")

	default:
		logger.WithField("mode", *mode).Fatal("Unknown mode, expected export or import")
	}
}
