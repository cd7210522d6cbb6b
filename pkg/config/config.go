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
	Env       string
	Port      int
	APIPrefix string

	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	PlanCache PlanCacheConfig
	Planner   PlannerConfig
	Docs      DocsConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlanCacheConfig governs memoisation of generated plans in Redis.
type PlanCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// PlannerConfig bounds the work a single request may ask of the allocation engine.
type PlannerConfig struct {
	MaxDays          int
	MaxSubjects      int
	MaxBatch         int
	BatchConcurrency int
	Timeout          time.Duration
}

// DocsConfig toggles the swagger UI.
type DocsConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.PlanCache = PlanCacheConfig{
		Enabled: v.GetBool("ENABLE_PLAN_CACHE"),
		TTL:     parseDuration(v.GetString("PLAN_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Planner = PlannerConfig{
		MaxDays:          positiveOr(v.GetInt("PLANNER_MAX_DAYS"), 730),
		MaxSubjects:      positiveOr(v.GetInt("PLANNER_MAX_SUBJECTS"), 64),
		MaxBatch:         positiveOr(v.GetInt("PLANNER_MAX_BATCH"), 16),
		BatchConcurrency: positiveOr(v.GetInt("PLANNER_BATCH_CONCURRENCY"), 4),
		Timeout:          parseDuration(v.GetString("PLANNER_TIMEOUT"), 5*time.Second),
	}

	cfg.Docs = DocsConfig{
		Enabled: v.GetBool("ENABLE_DOCS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_PLAN_CACHE", false)
	v.SetDefault("PLAN_CACHE_TTL", "15m")

	v.SetDefault("PLANNER_MAX_DAYS", 730)
	v.SetDefault("PLANNER_MAX_SUBJECTS", 64)
	v.SetDefault("PLANNER_MAX_BATCH", 16)
	v.SetDefault("PLANNER_BATCH_CONCURRENCY", 4)
	v.SetDefault("PLANNER_TIMEOUT", "5s")

	v.SetDefault("ENABLE_DOCS", true)
}

// isMissingFile reports whether viper failed only because .env is absent;
// SetConfigFile surfaces that as a filesystem error, not ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
