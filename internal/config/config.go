package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application
	AppEnv   string
	LogLevel string

	// Sweeps
	ResourceSweepSeconds     int
	ConstructionSweepSeconds int
	TrainingSweepSeconds     int
	RankingSweepSeconds      int
	SweepBatchSize           int

	// Accrual
	MaxAccrualHours int

	// World
	WorldSize    int
	BarbarianMin int

	// Game balance tuning overrides (optional YAML file)
	TuningFile string

	// Starting resources for new villages
	StartingWood float64
	StartingClay float64
	StartingIron float64
	StartingFood float64
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cryptotribes"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "cryptotribes_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		ResourceSweepSeconds:     getEnvInt("RESOURCE_SWEEP_SECONDS", 60),
		ConstructionSweepSeconds: getEnvInt("CONSTRUCTION_SWEEP_SECONDS", 60),
		TrainingSweepSeconds:     getEnvInt("TRAINING_SWEEP_SECONDS", 60),
		RankingSweepSeconds:      getEnvInt("RANKING_SWEEP_SECONDS", 300),
		SweepBatchSize:           getEnvInt("SWEEP_BATCH_SIZE", 100),

		MaxAccrualHours: getEnvInt("MAX_ACCRUAL_HOURS", 12),

		WorldSize:    getEnvInt("WORLD_SIZE", 100),
		BarbarianMin: getEnvInt("BARBARIAN_MIN", 20),

		TuningFile: getEnv("TUNING_FILE", ""),

		StartingWood: getEnvFloat("STARTING_WOOD", 500),
		StartingClay: getEnvFloat("STARTING_CLAY", 500),
		StartingIron: getEnvFloat("STARTING_IRON", 400),
		StartingFood: getEnvFloat("STARTING_FOOD", 300),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.SweepBatchSize < 1 {
		return fmt.Errorf("SWEEP_BATCH_SIZE must be at least 1")
	}
	if c.MaxAccrualHours < 1 {
		return fmt.Errorf("MAX_ACCRUAL_HOURS must be at least 1")
	}
	if c.WorldSize < 10 {
		return fmt.Errorf("WORLD_SIZE must be at least 10")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) GetResourceSweepInterval() time.Duration {
	return time.Duration(c.ResourceSweepSeconds) * time.Second
}

func (c *Config) GetConstructionSweepInterval() time.Duration {
	return time.Duration(c.ConstructionSweepSeconds) * time.Second
}

func (c *Config) GetTrainingSweepInterval() time.Duration {
	return time.Duration(c.TrainingSweepSeconds) * time.Second
}

func (c *Config) GetRankingSweepInterval() time.Duration {
	return time.Duration(c.RankingSweepSeconds) * time.Second
}

func (c *Config) GetMaxAccrualWindow() time.Duration {
	return time.Duration(c.MaxAccrualHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
