// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jason-s-yu/arcade/internal/auth"
	"github.com/jason-s-yu/arcade/internal/cache"
	"github.com/jason-s-yu/arcade/internal/catalog"
	"github.com/jason-s-yu/arcade/internal/config"
	"github.com/jason-s-yu/arcade/internal/database"
	"github.com/jason-s-yu/arcade/internal/handlers"
	"github.com/jason-s-yu/arcade/internal/middleware"
	"github.com/jason-s-yu/arcade/internal/room"
	"github.com/jason-s-yu/arcade/internal/session"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("invalid log level")
	}
	logger.SetLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return err
	}
	verifier, err := newVerifier(cfg, logger)
	if err != nil {
		return err
	}
	opts := session.Options{Logger: logger, Verifier: verifier}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts.Sinks = append(opts.Sinks, cache.NewOutcomePublisher(rdb, cfg.ResultsQueue))
		logger.WithFields(logrus.Fields{"addr": cfg.RedisAddr, "queue": cfg.ResultsQueue}).Info("publishing match outcomes to redis")
	}

	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := database.Migrate(cfg.DatabaseURL, logger); err != nil {
				return err
			}
		}
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		opts.Sinks = append(opts.Sinks, database.NewResultStore(pool))
		opts.Friends = database.NewFriendStore(pool)
		logger.Info("connected to database")
	}

	rooms := room.NewRegistry(room.NewMemoryStore(), cat, logger)
	hub := session.NewHub(rooms, opts)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handlers.WSHandler(logger, hub, handlers.WSOptions{
		OriginPatterns: originPatterns(cfg.AllowedOrigins),
		OutboxSize:     cfg.OutboxSize,
	}))
	mux.HandleFunc("/healthz", handlers.HealthzHandler())
	mux.HandleFunc("/rooms", handlers.ListRoomsHandler(logger, hub))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.LogMiddleware(logger)(c.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hub.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "auth": cfg.AuthMode, "games": cat.IDs()}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	hub.Wait()
	return err
}

// newVerifier builds the identity verifier selected by AUTH_MODE.
func newVerifier(cfg *config.Config, logger logrus.FieldLogger) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthJWT:
		if cfg.JWTPublicKeyPath != "" {
			v, err := auth.NewJWTVerifierFromPath(cfg.JWTPublicKeyPath)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
		return auth.NewHMACVerifier([]byte(cfg.JWTSecret)), nil
	case config.AuthPaseto:
		v, err := auth.NewPasetoVerifier(auth.DeriveKey(cfg.PasetoSecret, cfg.PasetoSalt))
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		logger.Warn("AUTH_MODE=advisory: client identities are trusted as asserted")
		return auth.AdvisoryVerifier{Logger: logger}, nil
	}
}

// originPatterns turns CORS origins into websocket host patterns.
func originPatterns(origins []string) []string {
	return lo.Map(origins, func(o string, _ int) string {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		return strings.TrimSuffix(o, "/")
	})
}
