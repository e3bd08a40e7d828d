package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/router"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

const blacklistCleanupInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if cfg.SeedDemo {
		if _, err := database.SeedDemo(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := kds.NewHub()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		relay := kds.NewRedisRelay(client, cfg.RedisChannel)
		hub.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx, hub, nil); err != nil {
				utils.ErrorLogger.Errorf("KDS relay stopped: %v", err)
			}
		}()
	}

	s := store.NewGormStore(db)
	monitor := services.NewAlertMonitor(s, hub, cfg.AlertInterval, cfg.StaleTabAfter)
	monitor.Start()
	defer monitor.Stop()

	go func() {
		ticker := time.NewTicker(blacklistCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if n := utils.CleanupBlacklist(now); n > 0 {
					utils.InfoLogger.Debugf("Dropped %d expired revoked tokens", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	r := router.SetupRouter(router.Deps{
		Store:         s,
		Hub:           hub,
		Alerts:        monitor,
		CORSOrigin:    cfg.CORSOrigin,
		RateLimit:     cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
		StaleTabAfter: cfg.StaleTabAfter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Shutdown: %v", err)
	}
}
