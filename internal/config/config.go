package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Supabase    SupabaseConfig
	Redis       RedisConfig
	AI          AIConfig
	Storage     StorageConfig
	Tracing     TracingConfig     `mapstructure:"tracing"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Log         LogConfig         `mapstructure:"log"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Timer       TimerConfig       `mapstructure:"timer"`
	Lecture     LectureConfig     `mapstructure:"lecture"`
	Questions   QuestionsConfig   `mapstructure:"questions"`

	// Runtime flags, set from the command line rather than the config file.
	ForceMigrate bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SupabaseConfig holds what is needed to trust access tokens issued by Supabase Auth.
type SupabaseConfig struct {
	URL       string `mapstructure:"url"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
	PoolSize int `mapstructure:"pool_size"`
}

type AIConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	HistorySize int     `mapstructure:"history_size"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type LeaderboardConfig struct {
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// TimerConfig durations are expressed in minutes in the config file.
type TimerConfig struct {
	StudyMinutes      int  `mapstructure:"study_minutes"`
	ShortBreakMinutes int  `mapstructure:"short_break_minutes"`
	LongBreakMinutes  int  `mapstructure:"long_break_minutes"`
	LongBreakEvery    int  `mapstructure:"long_break_every"`
	AutoStart         bool `mapstructure:"auto_start"`
}

type LectureConfig struct {
	Workers        int    `mapstructure:"workers"`
	QueueSize      int    `mapstructure:"queue_size"`
	WorkDir        string `mapstructure:"work_dir"`
	MaxUploadMB    int64  `mapstructure:"max_upload_mb"`
	NormalizeAudio bool   `mapstructure:"normalize_audio"`
}

// QuestionsConfig points at the bank file seeded into an empty questions table.
type QuestionsConfig struct {
	SeedFile string `mapstructure:"seed_file"`
	MaxCount int    `mapstructure:"max_count"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.pool_size", 20)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-flash")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.history_size", 20)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")

	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("log.filename", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("leaderboard.default_limit", 10)
	v.SetDefault("leaderboard.max_limit", 100)
	v.SetDefault("leaderboard.cache_ttl", 30*time.Second)

	v.SetDefault("timer.study_minutes", 25)
	v.SetDefault("timer.short_break_minutes", 5)
	v.SetDefault("timer.long_break_minutes", 15)
	v.SetDefault("timer.long_break_every", 4)

	v.SetDefault("lecture.workers", 2)
	v.SetDefault("lecture.queue_size", 32)
	v.SetDefault("lecture.work_dir", os.TempDir())
	v.SetDefault("lecture.max_upload_mb", 200)
	v.SetDefault("lecture.normalize_audio", true)

	v.SetDefault("questions.seed_file", "configs/questions.json")
	v.SetDefault("questions.max_count", 50)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("DOCDOT")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Supabase
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.jwt_secret", "SUPABASE_JWT_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// AI
	v.BindEnv("ai.api_key", "GEMINI_API_KEY")
	v.BindEnv("ai.model", "AI_MODEL")
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("ai.base_url", "AI_BASE_URL")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Logging
	v.BindEnv("log.level", "LOG_LEVEL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when everything comes from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Mode == "release" && len(c.Supabase.JWTSecret) < 32 {
		return fmt.Errorf("supabase jwt secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Supabase.JWTSecret))
	}
	if c.Timer.StudyMinutes <= 0 || c.Timer.ShortBreakMinutes <= 0 || c.Timer.LongBreakMinutes <= 0 {
		return fmt.Errorf("timer durations must be positive")
	}
	if c.Timer.LongBreakEvery <= 0 {
		return fmt.Errorf("timer.long_break_every must be positive")
	}
	if c.Leaderboard.DefaultLimit <= 0 || c.Leaderboard.MaxLimit < c.Leaderboard.DefaultLimit {
		return fmt.Errorf("leaderboard limits are invalid: default=%d max=%d", c.Leaderboard.DefaultLimit, c.Leaderboard.MaxLimit)
	}
	return nil
}

// ConfigFile returns the path LoadConfig reads from, used by the reload watcher.
func ConfigFile(dir string) string {
	return dir + string(os.PathSeparator) + "config.yaml"
}
