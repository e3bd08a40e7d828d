// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/comanda-app/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port       string
	GinMode    string
	LogLevel   string
	DBDriver   string
	DBDSN      string
	JWTSecret  string
	CORSOrigin string

	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	RateBurst int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	AlertInterval time.Duration
	StaleTabAfter time.Duration
	SeedDemo      bool
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug(".env file not found, using process environment")
	}

	cfg := &Config{
		Port:          env("PORT", "8080"),
		GinMode:       env("GIN_MODE", "debug"),
		LogLevel:      env("LOG_LEVEL", "info"),
		DBDriver:      strings.ToLower(env("DB_DRIVER", "sqlite")),
		DBDSN:         env("DB_DSN", "comanda.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigin:    env("CORS_ORIGIN", "*"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisChannel:  env("REDIS_CHANNEL", "comanda:events"),
	}

	var err error
	if cfg.RateLimit, err = strconv.ParseFloat(env("RATE_LIMIT", "20"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	if cfg.RateBurst, err = strconv.Atoi(env("RATE_BURST", "40")); err != nil {
		return nil, fmt.Errorf("RATE_BURST: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(env("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.AlertInterval, err = time.ParseDuration(env("ALERT_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("ALERT_INTERVAL: %w", err)
	}
	if cfg.StaleTabAfter, err = time.ParseDuration(env("STALE_TAB_AFTER", "2h")); err != nil {
		return nil, fmt.Errorf("STALE_TAB_AFTER: %w", err)
	}
	if cfg.SeedDemo, err = strconv.ParseBool(env("SEED_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("SEED_DEMO: %w", err)
	}

	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("DB_DRIVER %q is not supported", cfg.DBDriver)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "release" {
		logLevel = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	utils.InfoLogger.Infof("Connected to %s database", cfg.DBDriver)
	return db, nil
}
