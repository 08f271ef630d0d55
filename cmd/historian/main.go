// cmd/historian/main.go is an asynchronous historian service that pops finalized
// match outcomes from the Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/arcade/internal/cache"
	"github.com/jason-s-yu/arcade/internal/config"
	"github.com/jason-s-yu/arcade/internal/database"
	"github.com/jason-s-yu/arcade/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal(errors.New("historian needs both REDIS_ADDR and a database configuration"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
	}
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database unavailable")
	}
	defer pool.Close()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Fatal("redis unavailable")
	}
	defer rdb.Close()

	svc := historian.New(rdb, database.NewResultStore(pool), historian.Options{
		Queue:  cfg.ResultsQueue,
		Logger: logger,
	})
	if err := svc.Run(ctx); err != nil {
		logger.WithError(err).Error("historian exited")
	}
}
