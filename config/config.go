package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	AWS      AWSConfig
	Client   ClientConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	Production         bool   // secure cookies
	SessionsCacheTTL   time.Duration
	EmbeddedWorker     bool // run the export worker inside the API process
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/agenda?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AdminConfig holds the organizer password gate settings.
type AdminConfig struct {
	Password     string // plain password; hashed at startup when PasswordHash is empty
	PasswordHash string // bcrypt hash, preferred over Password
	JWTSecret    string
	ExpireHours  int
}

// AWSConfig holds AWS credentials and the exports bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportsBucket        string
	PresignExpireMinutes int
}

// ClientConfig holds settings for the attendee/organizer terminal client.
type ClientConfig struct {
	BaseURL         string
	StatePath       string // sqlite file for client-local state
	StateBackend    string // "sqlite" or "redis"
	ClientID        string // scopes redis-backed state
	Timezone        string
	TickInterval    time.Duration
	RefreshInterval time.Duration
	PollInterval    time.Duration // how often sqlite state is re-read for other processes' writes
	AppName         string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			Production:         getEnv("APP_ENV", "development") == "production",
			SessionsCacheTTL:   getEnvDuration("SESSIONS_CACHE_TTL", time.Minute),
			EmbeddedWorker:     getEnv("EMBEDDED_WORKER", "false") == "true",
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "agenda"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			Password:     getEnv("ADMIN_PASSWORD", "julefagdag2025"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("ADMIN_JWT_SECRET", "change-me-in-production"),
			ExpireHours:  getEnvInt("ADMIN_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ExportsBucket:        getEnv("AWS_S3_EXPORTS_BUCKET", "agenda-exports"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Client: ClientConfig{
			BaseURL:         getEnv("AGENDA_BASE_URL", "http://localhost:8080"),
			StatePath:       getEnv("AGENDA_STATE_PATH", defaultStatePath()),
			StateBackend:    getEnv("AGENDA_STATE_BACKEND", "sqlite"),
			ClientID:        getEnv("AGENDA_CLIENT_ID", defaultClientID()),
			Timezone:        getEnv("AGENDA_TIMEZONE", "Europe/Oslo"),
			TickInterval:    getEnvDuration("AGENDA_TICK_INTERVAL", 60*time.Second),
			RefreshInterval: getEnvDuration("AGENDA_REFRESH_INTERVAL", 30*time.Second),
			PollInterval:    getEnvDuration("AGENDA_STATE_POLL_INTERVAL", 2*time.Second),
			AppName:         getEnv("AGENDA_APP_NAME", "Julefagdag"),
		},
	}
	if cfg.Admin.PasswordHash == "" && cfg.Admin.Password == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}
	return cfg, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "agenda-state.db"
	}
	return dir + string(os.PathSeparator) + "julefagdag" + string(os.PathSeparator) + "state.db"
}

func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "default"
	}
	return host
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// SplitTrim splits a separated list and drops empty entries.
func SplitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
