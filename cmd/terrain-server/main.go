package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/puneet-chandna/water-brakes/internal/cache/redisstore"
	"github.com/puneet-chandna/water-brakes/internal/cache/resultcache"
	"github.com/puneet-chandna/water-brakes/internal/config"
	"github.com/puneet-chandna/water-brakes/internal/logger"
	"github.com/puneet-chandna/water-brakes/internal/metrics"
	"github.com/puneet-chandna/water-brakes/internal/server"
	"github.com/puneet-chandna/water-brakes/pkg/publish/kafka"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	log := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "terrain-server",
	}, os.Stdout)

	log.Info().
		Str("addr", cfg.Addr).
		Str("version", Version).
		Str("interp", string(cfg.Pipeline.Interp)).
		Int("grid_size", cfg.Pipeline.GridSize).
		Msg("starting terrain server")

	m := metrics.Init(metrics.BuildInfo{
		Version:   Version,
		Revision:  os.Getenv("BUILD_REVISION"),
		BuildDate: os.Getenv("BUILD_DATE"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mem := resultcache.New(cfg.ResultCacheSize)

	var redis *redisstore.Store
	if cfg.RedisAddr != "" {
		var err error
		redis, err = redisstore.New(ctx, cfg.RedisAddr, cfg.RedisTTL)
		if err != nil {
			// the service still works on the in-process cache alone
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, shared cache disabled")
			redis = nil
		} else {
			defer func() { _ = redis.Close() }()
		}
	}

	var pub server.Publisher
	if cfg.Kafka.Enabled {
		kp, err := kafka.New(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic, kafka.Options{
			QueueSize: cfg.Kafka.Queue,
			Logger:    log,
			Register:  m.Registerer(),
		})
		if err != nil {
			log.Error().Err(err).Msg("kafka producer setup failed")
			return 1
		}
		defer func() { _ = kp.Close() }()
		pub = kp
	}

	proc := server.NewProcessor(log, mem, redis, pub, m, cfg.H3SummaryRes)

	if err := server.Run(ctx, cfg, log, proc, m); err != nil {
		log.Error().Err(err).Msg("server exited")
		return 1
	}
	return 0
}
