package main

import (
	"os"

	"property-etl/config"
	"property-etl/services"
	"property-etl/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)

	logger.Info("=== Property ETL starting ===")
	logger.Infof("Config — input: %s | backend: %s | duckdb: %s",
		cfg.InputPath, cfg.StorageBackend, cfg.DuckDBPath)

	pipeline := services.NewPipeline(cfg, logger)
	if err := pipeline.Run(); err != nil {
		logger.Errorf("Run failed: %v", err)
		os.Exit(1)
	}

	logger.Info("Run completed")
}
