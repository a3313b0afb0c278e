package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session storage drivers.
const (
	SessionDriverFile   = "file"
	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"
)

type Config struct {
	Env string

	Log        LogConfig
	API        APIConfig
	Session    SessionConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Enrollment EnrollmentConfig
	Export     ExportConfig
	MockAPI    MockAPIConfig
	Metrics    MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// APIConfig points the client at the backend services.
type APIConfig struct {
	UsersBaseURL   string
	CatalogBaseURL string
	Timeout        time.Duration
	UserAgent      string
}

// SessionConfig selects where the logged-in session is persisted.
type SessionConfig struct {
	Driver    string
	File      string
	KeyPrefix string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig tunes password hashing.
type AuthConfig struct {
	BcryptCost int
}

// EnrollmentConfig governs the enrollment workflow defaults.
type EnrollmentConfig struct {
	InitialStatus string
	RecentLimit   int
}

type ExportConfig struct {
	Dir string
}

// MockAPIConfig configures the local fake backend.
type MockAPIConfig struct {
	Port              int
	UsersPort         int
	SeedFile          string
	UniqueEnrollments bool
	AllowedOrigins    []string
}

type MetricsConfig struct {
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.API = APIConfig{
		UsersBaseURL:   strings.TrimRight(v.GetString("API_USERS_URL"), "/"),
		CatalogBaseURL: strings.TrimRight(v.GetString("API_CATALOG_URL"), "/"),
		Timeout:        parseDuration(v.GetString("API_TIMEOUT"), 10*time.Second),
		UserAgent:      v.GetString("API_USER_AGENT"),
	}

	cfg.Session = SessionConfig{
		Driver:    strings.ToLower(v.GetString("SESSION_DRIVER")),
		File:      v.GetString("SESSION_FILE"),
		KeyPrefix: v.GetString("SESSION_KEY_PREFIX"),
	}
	if cfg.Session.File == "" {
		cfg.Session.File = defaultSessionFile()
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{BcryptCost: v.GetInt("BCRYPT_COST")}

	recent := v.GetInt("ENROLLMENT_RECENT_LIMIT")
	if recent <= 0 {
		recent = 5
	}
	cfg.Enrollment = EnrollmentConfig{
		InitialStatus: v.GetString("ENROLLMENT_INITIAL_STATUS"),
		RecentLimit:   recent,
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	cfg.MockAPI = MockAPIConfig{
		Port:              v.GetInt("MOCKAPI_PORT"),
		UsersPort:         v.GetInt("MOCKAPI_USERS_PORT"),
		SeedFile:          v.GetString("MOCKAPI_SEED_FILE"),
		UniqueEnrollments: v.GetBool("MOCKAPI_UNIQUE_ENROLLMENTS"),
		AllowedOrigins:    splitAndTrim(v.GetString("MOCKAPI_ALLOWED_ORIGINS")),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("METRICS_ENABLED")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("API_USERS_URL", "http://localhost:3000")
	v.SetDefault("API_CATALOG_URL", "http://localhost:3001")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("API_USER_AGENT", "coursehub-client/0.1")

	v.SetDefault("SESSION_DRIVER", SessionDriverFile)
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("SESSION_KEY_PREFIX", "coursehub:")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("ENROLLMENT_INITIAL_STATUS", "Not Started")
	v.SetDefault("ENROLLMENT_RECENT_LIMIT", 5)

	v.SetDefault("EXPORT_DIR", "./exports")

	v.SetDefault("MOCKAPI_PORT", 3001)
	v.SetDefault("MOCKAPI_USERS_PORT", 3000)
	v.SetDefault("MOCKAPI_SEED_FILE", "")
	v.SetDefault("MOCKAPI_UNIQUE_ENROLLMENTS", false)
	v.SetDefault("MOCKAPI_ALLOWED_ORIGINS", "")

	v.SetDefault("METRICS_ENABLED", true)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".coursehub-session.json")
	}
	return filepath.Join(dir, "coursehub", "session.json")
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
