package main

import (
	"fmt"
	"os"

	"adintel/internal/delivery"
	"adintel/internal/domain"
	"adintel/internal/infrastructure"
	"adintel/internal/usecase"
	"adintel/pkg/config"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting ad intelligence service")

	m := metrics.New()

	scraper := infrastructure.NewApifyClient(cfg.Apify, cfg.Scan.RequestTimeout, cfg.Scan.RateLimitPerSecond, log, m)

	// The analyzer is optional: without an API key, scans still run and
	// only the multimodal pass is unavailable.
	var analyzer domain.AdAnalyzer
	if cfg.Gemini.APIKey != "" {
		fetcher := infrastructure.NewHTTPImageFetcher(cfg.Scan.ImageFetchTimeout, log)
		analyzer = infrastructure.NewGeminiClient(cfg.Gemini, cfg.Scan.AnalysisTopN, cfg.Scan.RequestTimeout, fetcher, log, m)
	} else {
		log.WithComponent("gemini").Warn("No API key configured, multimodal analysis disabled")
	}

	scanRepo := infrastructure.NewScanRepository(log)
	bookmarks := infrastructure.NewBookmarkRepository(log)

	timeFilter := usecase.NewTimeWindowFilter(log)
	scanService := usecase.NewScanService(scraper, analyzer, scanRepo, timeFilter, log, m)

	handlers := delivery.NewHTTPHandlers(scanService, bookmarks, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m)

	engine := router.SetupRoutes()

	log.WithField("port", cfg.Server.Port).Info("Listening")
	if err := engine.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
