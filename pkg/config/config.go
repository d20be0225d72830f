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

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	School   SchoolConfig
	Hub      HubConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig tunes token issuance and credential hashing.
type AuthConfig struct {
	TokenLength   int
	TokenTTL      time.Duration // zero means tokens never expire
	TokenCacheTTL time.Duration
	BcryptCost    int
}

// SchoolConfig carries the scheduling constants of the school day.
type SchoolConfig struct {
	PeriodLength time.Duration
	ReportDir    string
}

// HubConfig tunes the live notification channel.
type HubConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadLimit    int64
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:          v.GetString("DB_HOST"),
		Port:          v.GetInt("DB_PORT"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		SSLMode:       v.GetString("DB_SSL_MODE"),
		MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		MigrationsDir: v.GetString("DB_MIGRATIONS_DIR"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		TokenLength:   v.GetInt("AUTH_TOKEN_LENGTH"),
		TokenTTL:      parseDuration(v.GetString("AUTH_TOKEN_TTL"), 0),
		TokenCacheTTL: parseDuration(v.GetString("AUTH_TOKEN_CACHE_TTL"), time.Minute),
		BcryptCost:    v.GetInt("AUTH_BCRYPT_COST"),
	}

	cfg.School = SchoolConfig{
		PeriodLength: parseDuration(v.GetString("SCHOOL_PERIOD_LENGTH"), 45*time.Minute),
		ReportDir:    v.GetString("SCHOOL_REPORT_DIR"),
	}

	cfg.Hub = HubConfig{
		WriteTimeout: parseDuration(v.GetString("HUB_WRITE_TIMEOUT"), 10*time.Second),
		PingInterval: parseDuration(v.GetString("HUB_PING_INTERVAL"), 30*time.Second),
		ReadLimit:    v.GetInt64("HUB_READ_LIMIT"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_presence")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATIONS_DIR", "migrations")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_TOKEN_LENGTH", 36)
	v.SetDefault("AUTH_TOKEN_TTL", "0")
	v.SetDefault("AUTH_TOKEN_CACHE_TTL", "1m")
	v.SetDefault("AUTH_BCRYPT_COST", 10)

	v.SetDefault("SCHOOL_PERIOD_LENGTH", "45m")
	v.SetDefault("SCHOOL_REPORT_DIR", "./reports")

	v.SetDefault("HUB_WRITE_TIMEOUT", "10s")
	v.SetDefault("HUB_PING_INTERVAL", "30s")
	v.SetDefault("HUB_READ_LIMIT", 4096)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
