package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medbook/clinic-scheduling/internal/api"
	"github.com/medbook/clinic-scheduling/internal/config"
	"github.com/medbook/clinic-scheduling/internal/db"
	"github.com/medbook/clinic-scheduling/internal/directory"
	"github.com/medbook/clinic-scheduling/internal/events"
	"github.com/medbook/clinic-scheduling/internal/logging"
	redisclient "github.com/medbook/clinic-scheduling/internal/redis"
	"github.com/medbook/clinic-scheduling/internal/scheduling"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	logging.Setup("clinic-scheduling", cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	if err := db.Migrate(rootCtx, pgPool); err != nil {
		log.Fatal().Err(err).Msg("migration error")
	}

	rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	store := scheduling.NewPgStore(pgPool)
	dir := directory.NewCachedDirectory(directory.NewPgDirectory(pgPool), rdb, cfg.DirectoryCacheTTL)
	locker := redisclient.NewSlotLocker(rdb, cfg.LockTTL)
	publisher := events.NewRedisPublisher(rdb, events.NewPgOutbox(pgPool), cfg.EventChannel)
	defer publisher.Close()

	mgr := scheduling.NewManager(store, dir, dir, locker, publisher)

	router := api.NewRouter(api.RouterConfig{
		Manager:         mgr,
		PgPool:          pgPool,
		Redis:           rdb,
		DefaultSlotSpan: cfg.DefaultSlotSpan,
		Env:             cfg.Env,
		Version:         version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown error")
	}
}
