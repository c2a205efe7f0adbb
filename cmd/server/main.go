package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cryptotribes/server/internal/config"
	"github.com/cryptotribes/server/internal/database"
	"github.com/cryptotribes/server/internal/game"
	"github.com/cryptotribes/server/internal/models"
	"github.com/cryptotribes/server/internal/repositories"
	"github.com/cryptotribes/server/internal/scheduler"
	"github.com/cryptotribes/server/internal/services"
	"github.com/cryptotribes/server/internal/worldmap"
	"github.com/cryptotribes/server/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting CryptoTribes engine...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
	}

	// Game balance tables
	tuning, err := game.LoadTuning(cfg.TuningFile)
	if err != nil {
		logger.Fatal("Failed to load tuning tables", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Repositories (the Entity Store)
	villageRepo := repositories.NewVillageRepository(db)
	buildingRepo := repositories.NewBuildingRepository(db)
	troopRepo := repositories.NewTroopRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	tribeRepo := repositories.NewTribeRepository(db)
	playerRepo := repositories.NewPlayerRepository(db)

	// World map cache, invalidated through village creation
	worldMap := worldmap.New(cfg.WorldSize, villageRepo.ListCoordinates)

	// Engine services
	accrual := services.NewAccrualService(villageRepo, buildingRepo, troopRepo, tuning, cfg.GetMaxAccrualWindow())
	queue := services.NewQueueService(orderRepo, tuning, cfg.SweepBatchSize)
	tribes := services.NewTribeService(tribeRepo, playerRepo)
	villages := services.NewVillageService(villageRepo, worldMap, tuning, models.Resources{
		Wood: cfg.StartingWood,
		Clay: cfg.StartingClay,
		Iron: cfg.StartingIron,
		Food: cfg.StartingFood,
	})
	// Keep the barbarian population topped up
	if created, err := villages.SeedBarbarians(context.Background(), cfg.BarbarianMin); err != nil {
		logger.Warn("Barbarian seeding incomplete", "created", created, "error", err)
	} else if created > 0 {
		logger.Info("Seeded barbarian villages", "created", created)
	}

	// Background sweeps
	sched := scheduler.New(accrual, queue, tribes, cfg)
	sched.Start()

	logger.Info("Engine started", "env", cfg.AppEnv)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	sched.Stop()
	logger.Info("Engine stopped")
}
