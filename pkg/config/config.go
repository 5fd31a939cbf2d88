package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers.
const (
	StorageRemote = "remote"
	StorageLocal  = "local"
)

// Session persisters.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
	SessionStoreSQLite = "sqlite"
)

type Config struct {
	Env      string
	Port     int
	SiteName string
	PageSize int

	Backend       BackendConfig
	Upload        UploadConfig
	Image         ImageConfig
	Session       SessionConfig
	Redis         RedisConfig
	Cache         CacheConfig
	CORS          CORSConfig
	Log           LogConfig
	Notifications NotificationConfig
}

// BackendConfig points at the hosted backend-as-a-service.
type BackendConfig struct {
	URL           string
	AnonKey       string
	Timeout       time.Duration
	RateLimit     float64
	RateBurst     int
	RetryAttempts int
	RetryDelay    time.Duration
	// DevAdminEmail and DevAdminPassword seed a dashboard account into the
	// in-memory backend used when URL is empty.
	DevAdminEmail    string
	DevAdminPassword string
}

// UploadConfig governs storage uploads.
type UploadConfig struct {
	Driver      string
	LocalDir    string
	PublicBase  string
	MaxFileSize int64
	Timeout     time.Duration
}

// ImageConfig bounds gallery and activity images before upload.
type ImageConfig struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// SessionConfig configures admin sign-in state.
type SessionConfig struct {
	Store      string
	SQLitePath string
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type RedisConfig struct {
	// URL, when set, overrides the other fields (redis:// or rediss://).
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// CacheConfig controls the public listing cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// NotificationConfig configures admin email notices and the scheduled report.
type NotificationConfig struct {
	Enabled        bool
	EmailReports   bool
	ResendAPIKey   string
	From           string
	AdminEmail     string
	ReportSchedule string
	Workers        int
	Retries        int
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
	cfg.SiteName = v.GetString("SITE_NAME")
	cfg.PageSize = clampInt(v.GetInt("PAGE_SIZE"), 1, 100, 20)

	cfg.Backend = BackendConfig{
		URL:           strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		AnonKey:       v.GetString("SUPABASE_ANON_KEY"),
		Timeout:       parseDuration(v.GetString("API_TIMEOUT"), 30*time.Second),
		RateLimit:     v.GetFloat64("API_RATE_LIMIT"),
		RateBurst:     v.GetInt("API_RATE_BURST"),
		RetryAttempts: v.GetInt("API_RETRY_ATTEMPTS"),
		RetryDelay:    parseDuration(v.GetString("API_RETRY_DELAY"), time.Second),

		DevAdminEmail:    v.GetString("DEV_ADMIN_EMAIL"),
		DevAdminPassword: v.GetString("DEV_ADMIN_PASSWORD"),
	}

	maxFileSize := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	cfg.Upload = UploadConfig{
		Driver:      v.GetString("STORAGE_DRIVER"),
		LocalDir:    v.GetString("STORAGE_LOCAL_DIR"),
		PublicBase:  v.GetString("STORAGE_PUBLIC_BASE"),
		MaxFileSize: maxFileSize,
		Timeout:     parseDuration(v.GetString("UPLOAD_TIMEOUT"), 60*time.Second),
	}

	cfg.Image = ImageConfig{
		MaxWidth:  v.GetInt("IMAGE_MAX_WIDTH"),
		MaxHeight: v.GetInt("IMAGE_MAX_HEIGHT"),
		Quality:   clampInt(v.GetInt("IMAGE_QUALITY"), 1, 100, 80),
	}

	cfg.Session = SessionConfig{
		Store:      v.GetString("SESSION_STORE"),
		SQLitePath: v.GetString("SESSION_SQLITE_PATH"),
		Secret:     v.GetString("SESSION_SECRET"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE"),
		Secure:     cfg.Env == EnvProduction,
	}

	cfg.Redis = RedisConfig{
		URL:      v.GetString("REDIS_URL"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:        v.GetBool("ENABLE_NOTIFICATIONS"),
		EmailReports:   v.GetBool("ENABLE_EMAIL_REPORTS"),
		ResendAPIKey:   v.GetString("RESEND_API_KEY"),
		From:           v.GetString("EMAIL_FROM"),
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		ReportSchedule: v.GetString("EMAIL_REPORT_SCHEDULE"),
		Workers:        v.GetInt("NOTIFY_WORKERS"),
		Retries:        v.GetInt("NOTIFY_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("SITE_NAME", "LSA")
	v.SetDefault("PAGE_SIZE", 20)

	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_ANON_KEY", "")
	v.SetDefault("API_TIMEOUT", "30s")
	v.SetDefault("API_RATE_LIMIT", 100)
	v.SetDefault("API_RATE_BURST", 10)
	v.SetDefault("API_RETRY_ATTEMPTS", 0)
	v.SetDefault("API_RETRY_DELAY", "1s")
	v.SetDefault("DEV_ADMIN_EMAIL", "admin@lsa.ma")
	v.SetDefault("DEV_ADMIN_PASSWORD", "")

	v.SetDefault("STORAGE_DRIVER", StorageRemote)
	v.SetDefault("STORAGE_LOCAL_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE", "/uploads")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOAD_TIMEOUT", "60s")

	v.SetDefault("IMAGE_MAX_WIDTH", 1200)
	v.SetDefault("IMAGE_MAX_HEIGHT", 1200)
	v.SetDefault("IMAGE_QUALITY", 80)

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_SQLITE_PATH", "./data/sessions.db")
	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE", "lsa_sid")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("ENABLE_EMAIL_REPORTS", false)
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "LSA <no-reply@lsa.ma>")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("EMAIL_REPORT_SCHEDULE", "0 7 * * *")
	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_RETRIES", 3)
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

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func clampInt(value, min, max, fallback int) int {
	if value < min || value > max {
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
