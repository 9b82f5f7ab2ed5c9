package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	API      APIConfig     `mapstructure:"api"`
	Redis    RedisConfig   `mapstructure:"redis"`
	Tracing  TracingConfig `mapstructure:"tracing"`
	Client   ClientConfig  `mapstructure:"client"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceRefresh bool `mapstructure:"-"` // 启动时强制刷新内容缓存
}

type ServerConfig struct {
	Mode        string `mapstructure:"mode"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

// CacheConfig 本地离线缓存（sqlite）
type CacheConfig struct {
	Path               string        `mapstructure:"path"`
	MaxAgeHours        int           `mapstructure:"max_age_hours"`
	EpicListTTLMinutes int           `mapstructure:"epic_list_ttl_minutes"`
	EpicListTTL        time.Duration `mapstructure:"-"`
}

// APIConfig 备用 REST API，主数据服务不可达时回退
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
	MaxRequests    int           `mapstructure:"max_requests"`
	WindowMinutes  int           `mapstructure:"window_minutes"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// ClientConfig 提交时附带的客户端元数据
type ClientConfig struct {
	DeviceType string `mapstructure:"device_type"`
	AppVersion string `mapstructure:"app_version"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("EPIC_QUIZ")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Cache
	viper.BindEnv("cache.path", "CACHE_PATH")
	viper.BindEnv("cache.max_age_hours", "CACHE_MAX_AGE_HOURS")

	// Secondary API
	viper.BindEnv("api.base_url", "API_BASE_URL")
	viper.BindEnv("api.timeout_seconds", "API_TIMEOUT_SECONDS")

	// Redis
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")
	viper.BindEnv("server.metrics_addr", "METRICS_ADDR")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is required (secondary REST endpoint)")
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "data/quiz_cache.db"
	}
	if cfg.Cache.MaxAgeHours <= 0 {
		cfg.Cache.MaxAgeHours = 24
	}
	if cfg.Cache.EpicListTTLMinutes <= 0 {
		cfg.Cache.EpicListTTLMinutes = 5
	}
	cfg.Cache.EpicListTTL = time.Duration(cfg.Cache.EpicListTTLMinutes) * time.Minute

	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 10
	}
	cfg.API.Timeout = time.Duration(cfg.API.TimeoutSeconds) * time.Second
	if cfg.API.MaxRequests <= 0 {
		cfg.API.MaxRequests = 120
	}
	if cfg.API.WindowMinutes <= 0 {
		cfg.API.WindowMinutes = 1
	}

	return &cfg, nil
}
