// Command server runs the Sweet Shop API.
//
// @title                       Sweet Shop API
// @version                     1.0
// @description                 Inventory management for a sweet shop: catalog, stock and JWT auth.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sweetshop/sweetshop-api/internal/api"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/core/service"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/config"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
	mongostore "github.com/sweetshop/sweetshop-api/internal/infrastructure/db/mongo"
	redisstore "github.com/sweetshop/sweetshop-api/internal/infrastructure/db/redis"
	"github.com/sweetshop/sweetshop-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "sweetshop-api"})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sweetshop-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.UsesDevSecret() {
		log.Warn().Msg("JWT_SECRET not set, signing tokens with the development secret")
	}

	// --- Record store ---
	var (
		users ports.AuthRepository
		items ports.ItemRepository
		db    *mongo.Database
	)
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			return err
		}
		db = database
		users = mongostore.NewUserRepository(database)
		items = mongostore.NewItemRepository(database)
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo store")
	default:
		users = memory.NewUserRepository()
		items = memory.NewItemRepository()
		log.Info().Msg("using in-memory store, data is lost on restart")
	}

	// --- Idempotency replay cache (optional) ---
	var (
		rdb    *goredis.Client
		replay service.ReplayCache
	)
	redisCfg := redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if redisCfg.Enabled() {
		client, err := redisstore.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		replay = redisstore.NewReplayCache(client, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency cache enabled")
	}

	// --- Services and HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:        service.NewAuthService(users, cfg.Secret(), cfg.TokenTTL, logger.Component(log, "auth")),
		Inventory:   service.NewInventoryService(items, replay, logger.Component(log, "inventory")),
		Mongo:       db,
		Redis:       rdb,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
