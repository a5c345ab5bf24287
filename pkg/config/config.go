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

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Uploads      UploadsConfig
	Gamification GamificationConfig
	Assistant    AssistantConfig
	Leaderboard  LeaderboardConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls resource file storage and download links.
type UploadsConfig struct {
	StorageDir       string
	PublicBaseURL    string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// GamificationConfig carries the point awards and badge threshold tables.
// The badge table and the next-badge table intentionally differ: badges are
// assigned from 50/100/500/1000 while progress targets 100/500/1000, so the
// progress tiers sit one badge ahead of the assignment table. Both are kept
// configurable so the mismatch can be resolved deliberately.
type GamificationConfig struct {
	UploadPoints       int
	VerifyPoints       int
	RatePoints         int
	DownloadPoints     int
	BadgeThresholds    []BadgeThreshold
	ProgressThresholds []BadgeThreshold
	CacheTTL           time.Duration
}

// BadgeThreshold maps a badge name to its minimum point total.
type BadgeThreshold struct {
	Name      string
	MinPoints int
}

// AssistantConfig configures the outbound text-generation endpoint.
type AssistantConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// LeaderboardConfig tunes the background recompute queue.
type LeaderboardConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
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
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 20 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		PublicBaseURL:    v.GetString("UPLOADS_PUBLIC_BASE_URL"),
		SignedURLSecret:  v.GetString("UPLOADS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("UPLOADS_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes: maxUploadSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIME_TYPES")),
	}

	cfg.Gamification = GamificationConfig{
		UploadPoints:   v.GetInt("POINTS_UPLOAD"),
		VerifyPoints:   v.GetInt("POINTS_VERIFY"),
		RatePoints:     v.GetInt("POINTS_RATE"),
		DownloadPoints: v.GetInt("POINTS_DOWNLOAD"),
		BadgeThresholds: []BadgeThreshold{
			{Name: "Platinum", MinPoints: v.GetInt("BADGE_PLATINUM_MIN")},
			{Name: "Gold", MinPoints: v.GetInt("BADGE_GOLD_MIN")},
			{Name: "Silver", MinPoints: v.GetInt("BADGE_SILVER_MIN")},
			{Name: "Bronze", MinPoints: v.GetInt("BADGE_BRONZE_MIN")},
		},
		ProgressThresholds: []BadgeThreshold{
			{Name: "Gold", MinPoints: v.GetInt("PROGRESS_GOLD_MIN")},
			{Name: "Silver", MinPoints: v.GetInt("PROGRESS_SILVER_MIN")},
			{Name: "Bronze", MinPoints: v.GetInt("PROGRESS_BRONZE_MIN")},
		},
		CacheTTL: parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Assistant = AssistantConfig{
		Enabled:  v.GetBool("ENABLE_ASSISTANT"),
		Endpoint: v.GetString("ASSISTANT_ENDPOINT"),
		APIKey:   v.GetString("ASSISTANT_API_KEY"),
		Timeout:  parseDuration(v.GetString("ASSISTANT_TIMEOUT"), 10*time.Second),
	}

	cfg.Leaderboard = LeaderboardConfig{
		WorkerConcurrency: v.GetInt("LEADERBOARD_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("LEADERBOARD_WORKER_RETRIES"),
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
	v.SetDefault("DB_NAME", "resource_hub")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "resource-hub-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_PUBLIC_BASE_URL", "/storage/resources")
	v.SetDefault("UPLOADS_SIGNED_URL_SECRET", "dev_uploads_secret")
	v.SetDefault("UPLOADS_SIGNED_URL_TTL", "30m")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_MIME_TYPES", "application/pdf,image/png,image/jpeg,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.openxmlformats-officedocument.presentationml.presentation,application/zip")

	v.SetDefault("POINTS_UPLOAD", 5)
	v.SetDefault("POINTS_VERIFY", 10)
	v.SetDefault("POINTS_RATE", 2)
	v.SetDefault("POINTS_DOWNLOAD", 1)
	v.SetDefault("BADGE_PLATINUM_MIN", 1000)
	v.SetDefault("BADGE_GOLD_MIN", 500)
	v.SetDefault("BADGE_SILVER_MIN", 100)
	v.SetDefault("BADGE_BRONZE_MIN", 50)
	v.SetDefault("PROGRESS_GOLD_MIN", 1000)
	v.SetDefault("PROGRESS_SILVER_MIN", 500)
	v.SetDefault("PROGRESS_BRONZE_MIN", 100)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_ASSISTANT", false)
	v.SetDefault("ASSISTANT_ENDPOINT", "")
	v.SetDefault("ASSISTANT_API_KEY", "")
	v.SetDefault("ASSISTANT_TIMEOUT", "10s")

	v.SetDefault("LEADERBOARD_WORKER_CONCURRENCY", 1)
	v.SetDefault("LEADERBOARD_WORKER_RETRIES", 3)
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
