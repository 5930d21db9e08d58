package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Stock    StockConfig
	Jobs     JobsConfig
	I18n     I18nConfig
}

type ServerConfig struct {
	AppEnv   string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	AutoMigrate     bool
}

type JWTConfig struct {
	SecretKey  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
	AlertTopic string
	GroupID    string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type StockConfig struct {
	LockTTL             time.Duration
	LockAttempts        int
	LockBackoff         time.Duration
	DefaultReorderLevel int
}

type JobsConfig struct {
	Enabled          bool
	MetricsInterval  time.Duration
	LowStockInterval time.Duration
}

type I18nConfig struct {
	DefaultLocale string
	LocaleFiles   []string
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			GRPCPort: getEnv("GRPC_PORT", ":8085"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_erp"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			AutoMigrate:     getEnvBool("POSTGRES_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
			Issuer:     getEnv("JWT_ISSUER", "omnipos-erp"),
			AccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrderTopic: getEnv("KAFKA_TOPIC_ORDERS", "erp.orders.events"),
			AlertTopic: getEnv("KAFKA_TOPIC_ALERTS", "erp.inventory.alerts"),
			GroupID:    getEnv("KAFKA_GROUP_ANALYTICS", "erp-analytics"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Stock: StockConfig{
			LockTTL:             getEnvDuration("STOCK_LOCK_TTL", 5*time.Second),
			LockAttempts:        getEnvInt("STOCK_LOCK_ATTEMPTS", 3),
			LockBackoff:         getEnvDuration("STOCK_LOCK_BACKOFF", 100*time.Millisecond),
			DefaultReorderLevel: getEnvInt("STOCK_DEFAULT_REORDER_LEVEL", 10),
		},
		Jobs: JobsConfig{
			Enabled:          getEnvBool("JOBS_ENABLED", true),
			MetricsInterval:  getEnvInterval("JOBS_METRICS_INTERVAL", time.Hour),
			LowStockInterval: getEnvInterval("JOBS_LOW_STOCK_INTERVAL", 30*time.Minute),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("I18N_DEFAULT_LOCALE", "en"),
			LocaleFiles:   getEnvSlice("I18N_LOCALE_FILES", nil),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvInterval is getEnvDuration for ticker periods, which must be positive.
func getEnvInterval(key string, fallback time.Duration) time.Duration {
	if d := getEnvDuration(key, fallback); d > 0 {
		return d
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
