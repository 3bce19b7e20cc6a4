package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Cache     CacheConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes algorithm selection and the exact solver.
type SchedulerConfig struct {
	// ComplexityThreshold is compared against teachers*classes; above it the
	// greedy scheduler is the primary path.
	ComplexityThreshold int
	SolverTimeLimit     time.Duration
	SolverGapRel        float64
	Workers             int
	QueueBuffer         int
}

// CacheConfig bounds the schedule result cache.
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		ComplexityThreshold: v.GetInt("SCHEDULER_COMPLEXITY_THRESHOLD"),
		SolverTimeLimit:     parseDuration(v.GetString("SCHEDULER_SOLVER_TIME_LIMIT"), 15*time.Second),
		SolverGapRel:        v.GetFloat64("SCHEDULER_SOLVER_GAP_REL"),
		Workers:             v.GetInt("SCHEDULER_WORKERS"),
		QueueBuffer:         v.GetInt("SCHEDULER_QUEUE_BUFFER"),
	}

	cfg.Cache = CacheConfig{
		Capacity: v.GetInt("SCHEDULE_CACHE_CAPACITY"),
		TTL:      parseDuration(v.GetString("SCHEDULE_CACHE_TTL"), 30*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_COMPLEXITY_THRESHOLD", 100)
	v.SetDefault("SCHEDULER_SOLVER_TIME_LIMIT", "15s")
	v.SetDefault("SCHEDULER_SOLVER_GAP_REL", 0.3)
	v.SetDefault("SCHEDULER_WORKERS", 2)
	v.SetDefault("SCHEDULER_QUEUE_BUFFER", 8)

	v.SetDefault("SCHEDULE_CACHE_CAPACITY", 50)
	v.SetDefault("SCHEDULE_CACHE_TTL", "30m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
