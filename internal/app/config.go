package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/batchprocess-backend/internal/data/db"
	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/utils"
)

type DBConfig struct {
	Driver           string `yaml:"driver"`
	SQLitePath       string `yaml:"sqlite_path"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
	LogLevel         string `yaml:"log_level"`
	SlowThresholdMS  int    `yaml:"slow_threshold_ms"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
}

type Config struct {
	HTTPAddr    string   `yaml:"http_addr"`
	ServiceName string   `yaml:"service_name"`
	Environment string   `yaml:"environment"`
	Version     string   `yaml:"version"`
	CORSOrigins []string `yaml:"cors_origins"`

	DB DBConfig `yaml:"db"`

	Actor          string `yaml:"actor"`
	MessagesLocale string `yaml:"messages_locale"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisChannel  string `yaml:"redis_channel"`

	MetricsAddr string `yaml:"metrics_addr"`

	RunnerWorkers   int `yaml:"runner_workers"`
	RunnerChunkSize int `yaml:"runner_chunk_size"`

	ShutdownTimeout time.Duration `yaml:"-"`
}

func defaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		ServiceName: "batchprocess",
		Environment: "development",
		DB: DBConfig{
			Driver:          db.DriverSQLite,
			SQLitePath:      "BatchProcess.db",
			PostgresHost:    "localhost",
			PostgresPort:    "5432",
			PostgresName:    "batchprocess",
			PostgresSSLMode: "disable",
			LogLevel:        "warn",
			SlowThresholdMS: 1000,
		},
		Actor:           "system",
		MessagesLocale:  "el",
		RedisChannel:    "batch-process",
		RunnerWorkers:   4,
		RunnerChunkSize: 100,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig layers defaults, the optional YAML file named by CONFIG_FILE, and
// environment variables, in that order.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return Config{}, err
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.HTTPAddr = utils.GetEnv("HTTP_ADDR", cfg.HTTPAddr, log)
	cfg.ServiceName = utils.GetEnv("OTEL_SERVICE_NAME", cfg.ServiceName, log)
	cfg.Environment = utils.GetEnv("APP_ENV", cfg.Environment, log)
	cfg.Version = utils.GetEnv("APP_VERSION", cfg.Version, log)
	if raw := utils.GetEnv("CORS_ALLOW_ORIGINS", strings.Join(cfg.CORSOrigins, ","), log); raw != "" {
		cfg.CORSOrigins = splitList(raw)
	}

	cfg.DB.Driver = utils.GetEnv("DB_DRIVER", cfg.DB.Driver, log)
	cfg.DB.SQLitePath = utils.GetEnv("SQLITE_PATH", cfg.DB.SQLitePath, log)
	cfg.DB.PostgresHost = utils.GetEnv("POSTGRES_HOST", cfg.DB.PostgresHost, log)
	cfg.DB.PostgresPort = utils.GetEnv("POSTGRES_PORT", cfg.DB.PostgresPort, log)
	cfg.DB.PostgresUser = utils.GetEnv("POSTGRES_USER", cfg.DB.PostgresUser, log)
	cfg.DB.PostgresPassword = utils.GetEnv("POSTGRES_PASSWORD", cfg.DB.PostgresPassword, log)
	cfg.DB.PostgresName = utils.GetEnv("POSTGRES_NAME", cfg.DB.PostgresName, log)
	cfg.DB.PostgresSSLMode = utils.GetEnv("POSTGRES_SSLMODE", cfg.DB.PostgresSSLMode, log)
	cfg.DB.LogLevel = utils.GetEnv("DB_LOG_LEVEL", cfg.DB.LogLevel, log)
	cfg.DB.SlowThresholdMS = utils.GetEnvAsInt("DB_SLOW_THRESHOLD_MS", cfg.DB.SlowThresholdMS, log)
	cfg.DB.MaxOpenConns = utils.GetEnvAsInt("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns, log)

	cfg.Actor = utils.GetEnv("BATCH_ACTOR", cfg.Actor, log)
	cfg.MessagesLocale = utils.GetEnv("MESSAGES_LOCALE", cfg.MessagesLocale, log)

	cfg.RedisAddr = utils.GetEnv("REDIS_ADDR", cfg.RedisAddr, log)
	cfg.RedisPassword = utils.GetEnv("REDIS_PASSWORD", cfg.RedisPassword, log)
	cfg.RedisDB = utils.GetEnvAsInt("REDIS_DB", cfg.RedisDB, log)
	cfg.RedisChannel = utils.GetEnv("REDIS_CHANNEL", cfg.RedisChannel, log)

	cfg.MetricsAddr = utils.GetEnv("METRICS_ADDR", cfg.MetricsAddr, log)

	cfg.RunnerWorkers = utils.GetEnvAsInt("RUNNER_WORKERS", cfg.RunnerWorkers, log)
	cfg.RunnerChunkSize = utils.GetEnvAsInt("RUNNER_CHUNK_SIZE", cfg.RunnerChunkSize, log)

	cfg.ShutdownTimeout = utils.GetEnvAsDuration("SHUTDOWN_TIMEOUT_SECONDS", cfg.ShutdownTimeout, log)

	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) DatabaseConfig() db.Config {
	return db.Config{
		Driver:           c.DB.Driver,
		SQLitePath:       c.DB.SQLitePath,
		PostgresHost:     c.DB.PostgresHost,
		PostgresPort:     c.DB.PostgresPort,
		PostgresUser:     c.DB.PostgresUser,
		PostgresPassword: c.DB.PostgresPassword,
		PostgresName:     c.DB.PostgresName,
		PostgresSSLMode:  c.DB.PostgresSSLMode,
		LogLevel:         c.DB.LogLevel,
		SlowThreshold:    time.Duration(c.DB.SlowThresholdMS) * time.Millisecond,
		MaxOpenConns:     c.DB.MaxOpenConns,
	}
}

// RedisClientOptions is nil when no broker is configured.
func (c Config) RedisClientOptions() *goredis.Options {
	if strings.TrimSpace(c.RedisAddr) == "" {
		return nil
	}
	return &goredis.Options{
		Addr:     strings.TrimSpace(c.RedisAddr),
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
