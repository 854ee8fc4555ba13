package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/coffee_catalog/internal/config"
	"github.com/Pesokrava/coffee_catalog/internal/delivery/events"
	"github.com/Pesokrava/coffee_catalog/internal/importer"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/cache"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/database"
	"github.com/Pesokrava/coffee_catalog/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/coffee_catalog/internal/repository/cache"
	"github.com/Pesokrava/coffee_catalog/internal/repository/postgres"
	"github.com/Pesokrava/coffee_catalog/internal/usecase/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	file := flag.String("file", cfg.Import.File, "catalog YAML file to import")
	migrate := flag.Bool("migrate", true, "apply migrations before importing")
	flag.Parse()

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)
	appLogger.Infof("Starting catalog import from %s...", *file)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, *file, *migrate, appLogger)
	stop()

	if err != nil {
		appLogger.Fatal("Catalog import failed", err)
	}
}

// run imports the catalog file. Connections are closed before it returns.
func run(ctx context.Context, cfg *config.Config, file string, migrate bool, appLogger *logger.Logger) error {
	catalog, err := readCatalog(file)
	if err != nil {
		return err
	}

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(ctx, cfg, 10, 2*time.Second, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if migrate {
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, appLogger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		appLogger.Info("Migrations applied")
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(ctx, cfg, 10, 2*time.Second, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	defer publisher.Close()

	productService := product.NewService(
		postgres.NewProductRepository(db),
		cacheRepo.NewRedisCache(redisClient, cfg.Cache.ProductTTL),
		publisher,
		cfg.NATS.Subject,
		appLogger,
	)

	result, err := importer.New(productService, appLogger).Import(ctx, catalog)
	if err != nil {
		return fmt.Errorf("import stopped after %d products: %w", result.Created, err)
	}

	appLogger.Infof("Imported %d products, skipped %d", result.Created, result.Skipped)
	return nil
}

func readCatalog(file string) (*importer.Catalog, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	catalog, err := importer.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", file, err)
	}

	return catalog, nil
}
