// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/puneet-chandna/water-brakes/internal/model"
)

type KafkaCfg struct {
	Enabled bool
	Brokers string
	Topic   string
	Queue   int
}

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool

	Pipeline model.Options

	H3SummaryRes int

	ResultCacheSize int
	RedisAddr       string // empty disables the shared store
	RedisTTL        time.Duration

	Kafka KafkaCfg
}

func FromEnv() Config {
	d := model.DefaultOptions()
	return Config{
		Addr:       getenv("ADDR", ":8090"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),

		Pipeline: model.Options{
			GridSize:       getint("GRID_SIZE", d.GridSize),
			Interp:         model.InterpMethod(strings.ToLower(getenv("INTERP_METHOD", string(d.Interp)))),
			IDWPower:       getfloat("IDW_POWER", d.IDWPower),
			SlopeNeighbors: getint("SLOPE_NEIGHBORS", d.SlopeNeighbors),
			ClusterSeed:    getint64("CLUSTER_SEED", d.ClusterSeed),
			ClusterMaxIter: getint("CLUSTER_MAX_ITER", d.ClusterMaxIter),
			UTMZone:        getint("UTM_ZONE", 0),
			UTMSouth:       strings.EqualFold(getenv("UTM_HEMISPHERE", "N"), "S"),
		},

		H3SummaryRes: getint("H3_SUMMARY_RES", 8),

		ResultCacheSize: getint("RESULT_CACHE_SIZE", 128),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisTTL:        getduration("REDIS_TTL", time.Hour),

		Kafka: KafkaCfg{
			Enabled: getbool("KAFKA_ENABLED", false),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:   getenv("KAFKA_TOPIC", "terrain-datasets"),
			Queue:   getint("KAFKA_QUEUE", 1024),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
